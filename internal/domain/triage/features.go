package triage

import (
	"strconv"
	"strings"
)

// Sex 患者性别
type Sex string

const (
	SexMale    Sex = "M"
	SexFemale  Sex = "F"
	SexUnknown Sex = "unknown"
)

// PatientFeatures 从最近一条用户消息中抽取的患者特征
// 可选字段使用指针，nil 表示未知；创建后不再修改
type PatientFeatures struct {
	// Age 年龄（岁），0 表示婴儿（一岁以下）
	Age          *int     `json:"age,omitempty"`
	Sex          Sex      `json:"sex"`
	DurationDays *int     `json:"duration_days,omitempty"`
	FeverC       *float64 `json:"fever_c,omitempty"`
	Symptoms     []string `json:"symptoms_list"`
	Meds         []string `json:"meds"`
	// QueryTerms 构造检索查询的有序词项
	QueryTerms []string `json:"query_terms"`
}

// IsInfant 是否为婴儿
func (f *PatientFeatures) IsInfant() bool {
	return f != nil && f.Age != nil && *f.Age == 0
}

// HasFever 是否记录了体温
func (f *PatientFeatures) HasFever() bool {
	return f != nil && f.FeverC != nil
}

// Query 检索查询串
func (f *PatientFeatures) Query() string {
	if f == nil {
		return ""
	}
	return strings.Join(f.QueryTerms, " ")
}

// PromptSummary 生成提示词中的 PATIENT 行
func (f *PatientFeatures) PromptSummary(region string) string {
	age, sex, duration, fever, meds := "unknown", "unknown", "unknown", "none", "none"
	if f != nil {
		if f.Age != nil {
			age = strconv.Itoa(*f.Age)
		}
		if f.Sex != "" {
			sex = string(f.Sex)
		}
		if f.DurationDays != nil {
			duration = strconv.Itoa(*f.DurationDays)
		}
		if f.FeverC != nil {
			fever = strconv.FormatFloat(*f.FeverC, 'f', -1, 64)
		}
		if len(f.Meds) > 0 {
			meds = strings.Join(f.Meds, ", ")
		}
	}
	return "age=" + age + ", sex=" + sex + ", duration_days=" + duration +
		", fever_c=" + fever + ", meds=" + meds + ", region=" + region
}
