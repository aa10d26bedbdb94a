package triage

import (
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	domainTriage "github.com/ontariodoctor/backend/internal/domain/triage"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
)

// 年龄：前两种取数值，月龄一律视为婴儿
var (
	agePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*(?:year|yr|y\.o\.)`),
		regexp.MustCompile(`age\s*(\d+)`),
	}
	infantAgePattern = regexp.MustCompile(`(\d+)\s*(?:months?|mo)\b`)
)

var (
	malePattern   = regexp.MustCompile(`\b(?:male|man|boy|son|father|husband|he|him|his)\b`)
	femalePattern = regexp.MustCompile(`\b(?:female|woman|girl|daughter|mother|wife|she|her)\b`)
)

type durationPattern struct {
	re *regexp.Regexp
	// toDays 将匹配的数值换算为天数
	toDays func(n int) int
}

var durationPatterns = []durationPattern{
	{regexp.MustCompile(`(\d+)\s*day`), func(n int) int { return n }},
	{regexp.MustCompile(`(\d+)\s*week`), func(n int) int { return n * 7 }},
	{regexp.MustCompile(`(\d+)\s*month`), func(n int) int { return n * 30 }},
	// 不足一天按一天计
	{regexp.MustCompile(`(\d+)\s*hour`), func(n int) int { return int(math.Ceil(float64(n) / 24)) }},
}

var (
	celsiusPattern    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*°?\s*c(?:elsius)?\b`)
	fahrenheitPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*°?\s*f(?:ahrenheit)?\b`)
)

// SymptomVocabulary 症状词表，输出顺序按词表顺序
var SymptomVocabulary = []string{
	"fever", "cough", "sore throat", "headache", "nausea", "vomiting",
	"diarrhea", "chest pain", "shortness of breath", "difficulty breathing",
	"rash", "fatigue", "weakness", "dizziness", "confusion",
	"stiff neck", "abdominal pain", "ear pain", "runny nose",
	"congestion", "chills", "sweating", "muscle aches", "joint pain",
}

// MedicationVocabulary 药物词表
var MedicationVocabulary = []string{
	"tylenol", "acetaminophen", "paracetamol",
	"advil", "ibuprofen", "motrin",
	"aspirin",
	"antibiotics", "amoxicillin", "penicillin",
	"antihistamine", "benadryl",
	"cough syrup", "cough medicine",
}

// FeatureExtractor 从最近一条用户消息中抽取患者特征，无 I/O
type FeatureExtractor struct {
	logger *slog.Logger
}

// NewFeatureExtractor 创建特征抽取器
func NewFeatureExtractor() *FeatureExtractor {
	return &FeatureExtractor{
		logger: log.NewModuleLogger("triage", "feature_extractor"),
	}
}

// Extract 没有用户消息时返回 nil, false
func (e *FeatureExtractor) Extract(messages []domainTriage.Message) (*domainTriage.PatientFeatures, bool) {
	userText, ok := domainTriage.LastUserMessage(messages)
	if !ok {
		return nil, false
	}
	features := ExtractFeatures(userText)
	e.logger.Debug("Extracted patient features",
		"age_known", features.Age != nil,
		"sex", features.Sex,
		"symptoms", features.Symptoms,
		"query_terms", features.QueryTerms,
	)
	return features, true
}

// ExtractFeatures 对单条文本做特征抽取
func ExtractFeatures(userText string) *domainTriage.PatientFeatures {
	text := strings.ToLower(userText)

	f := &domainTriage.PatientFeatures{
		Age:          extractAge(text),
		Sex:          extractSex(text),
		DurationDays: extractDuration(text),
		FeverC:       extractFever(text),
		Symptoms:     matchVocabulary(text, SymptomVocabulary),
		Meds:         matchVocabulary(text, MedicationVocabulary),
	}
	f.QueryTerms = buildQueryTerms(f)
	return f
}

func extractAge(text string) *int {
	for _, re := range agePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return &n
			}
		}
	}
	if infantAgePattern.MatchString(text) {
		infant := 0
		return &infant
	}
	return nil
}

func extractSex(text string) domainTriage.Sex {
	switch {
	case malePattern.MatchString(text):
		return domainTriage.SexMale
	case femalePattern.MatchString(text):
		return domainTriage.SexFemale
	default:
		return domainTriage.SexUnknown
	}
}

func extractDuration(text string) *int {
	for _, p := range durationPatterns {
		if m := p.re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				days := p.toDays(n)
				return &days
			}
		}
	}
	return nil
}

// extractFever 摄氏优先，华氏换算为摄氏
func extractFever(text string) *float64 {
	if m := celsiusPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return &v
		}
	}
	if m := fahrenheitPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			c := (v - 32) * 5 / 9
			return &c
		}
	}
	return nil
}

func matchVocabulary(text string, vocabulary []string) []string {
	found := make([]string, 0)
	for _, kw := range vocabulary {
		if strings.Contains(text, kw) {
			found = append(found, kw)
		}
	}
	return found
}

// buildQueryTerms 症状 + 年龄段 + 药物 + 病程
func buildQueryTerms(f *domainTriage.PatientFeatures) []string {
	terms := make([]string, 0, len(f.Symptoms)+len(f.Meds)+2)
	terms = append(terms, f.Symptoms...)

	if f.Age != nil {
		switch {
		case *f.Age == 0:
			terms = append(terms, "infant")
		case *f.Age < 12:
			terms = append(terms, "child")
		default:
			terms = append(terms, "adult")
		}
	}

	terms = append(terms, f.Meds...)

	if f.DurationDays != nil {
		if *f.DurationDays <= 2 {
			terms = append(terms, "acute")
		} else {
			terms = append(terms, "persistent")
		}
	}

	if len(terms) == 0 {
		return append([]string{}, f.Symptoms...)
	}
	return terms
}
