package triage

// Action 红旗规则要求的处置动作
type Action string

const (
	ActionER        Action = "ER"
	ActionEmergency Action = "911"
)

// Level 分诊级别
type Level string

const (
	LevelPrimaryCare Level = "primary-care"
	LevelER          Level = "ER"
	LevelEmergency   Level = "911"
)

// RedFlagRule 红旗规则，Symptoms 全部命中才算匹配
type RedFlagRule struct {
	Symptoms []string `json:"symptoms"`
	Action   Action   `json:"action"`
	Message  string   `json:"message"`
}

// InfantFeverRule 婴儿发热特例规则
var InfantFeverRule = RedFlagRule{
	Symptoms: []string{"infant", "fever"},
	Action:   ActionER,
	Message:  "Fever in infant under 3 months requires immediate ER evaluation",
}

// RedFlagCheck 红旗评估结果，一经产生即为权威结论
type RedFlagCheck struct {
	ERRequired bool     `json:"er_required"`
	RedFlags   []string `json:"red_flags"`
	ERMessage  string   `json:"er_message,omitempty"`
	// Matched 命中的规则，按规则表顺序
	Matched []RedFlagRule `json:"-"`
}

// NewRedFlagCheck 由命中规则构造评估结果
func NewRedFlagCheck(matched []RedFlagRule) *RedFlagCheck {
	check := &RedFlagCheck{
		ERRequired: len(matched) > 0,
		RedFlags:   make([]string, 0, len(matched)),
		Matched:    matched,
	}
	for _, rule := range matched {
		check.RedFlags = append(check.RedFlags, rule.Message)
	}
	if len(matched) > 0 {
		check.ERMessage = matched[0].Message
	}
	return check
}

// Level 计算分诊级别：任一 911 规则优先，其次任一命中为 ER
func (c *RedFlagCheck) Level() Level {
	if c == nil || len(c.Matched) == 0 {
		return LevelPrimaryCare
	}
	for _, rule := range c.Matched {
		if rule.Action == ActionEmergency {
			return LevelEmergency
		}
	}
	return LevelER
}
