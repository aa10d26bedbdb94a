package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedFlagCheck_Level(t *testing.T) {
	er := RedFlagRule{Symptoms: []string{"stiff neck"}, Action: ActionER, Message: "er"}
	emergency := RedFlagRule{Symptoms: []string{"chest pain"}, Action: ActionEmergency, Message: "911"}
	other := RedFlagRule{Symptoms: []string{"rash"}, Action: "urgent-care", Message: "other"}

	t.Run("无命中为 primary-care", func(t *testing.T) {
		check := NewRedFlagCheck(nil)
		assert.False(t, check.ERRequired)
		assert.Empty(t, check.RedFlags)
		assert.Empty(t, check.ERMessage)
		assert.Equal(t, LevelPrimaryCare, check.Level())
	})

	t.Run("单条 911 压过多条 ER", func(t *testing.T) {
		matched := []RedFlagRule{er, er, er, er, er, er, er, er, er, emergency}
		check := NewRedFlagCheck(matched)
		assert.Equal(t, LevelEmergency, check.Level())
		assert.Equal(t, "er", check.ERMessage)
		assert.Len(t, check.RedFlags, 10)
	})

	t.Run("非 911 动作仍为 ER", func(t *testing.T) {
		check := NewRedFlagCheck([]RedFlagRule{other})
		assert.True(t, check.ERRequired)
		assert.Equal(t, LevelER, check.Level())
	})

	t.Run("nil 安全", func(t *testing.T) {
		var check *RedFlagCheck
		assert.Equal(t, LevelPrimaryCare, check.Level())
	})
}

func TestPipelineState_Advance(t *testing.T) {
	msgs := []Message{{Role: RoleUser, Content: "hello"}}
	state := NewPipelineState(msgs)
	msgs[0].Content = "changed"

	assert.NotEmpty(t, state.TraceID)
	assert.Equal(t, "hello", state.UserQuestion(), "状态持有消息副本")
	assert.Equal(t, StageStart, state.Stage)

	state.Advance(StageFeaturesExtracted)
	state.Advance(StageGuardEvaluated)
	assert.Equal(t, 2, state.Version)
	assert.True(t, state.Visited(StageGuardEvaluated))
	assert.False(t, state.Visited(StageRetrieved))
	assert.Equal(t, "guard_evaluated", state.Stage.String())

	other := NewPipelineState(nil)
	assert.NotEqual(t, state.TraceID, other.TraceID)
}

func TestPatientFeatures_PromptSummary(t *testing.T) {
	age, days, fever := 34, 3, 38.5
	f := &PatientFeatures{Age: &age, Sex: SexFemale, DurationDays: &days, FeverC: &fever, Meds: []string{"advil", "tylenol"}}
	assert.Equal(t, "age=34, sex=F, duration_days=3, fever_c=38.5, meds=advil, tylenol, region=CA-ON", f.PromptSummary("CA-ON"))

	var empty *PatientFeatures
	assert.Equal(t, "age=unknown, sex=unknown, duration_days=unknown, fever_c=none, meds=none, region=CA-ON", empty.PromptSummary("CA-ON"))
}

func TestLastUserMessage(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "first"},
		{Role: RoleAssistant, Content: "reply"},
		{Role: RoleUser, Content: "second"},
		{Role: RoleAssistant, Content: "reply 2"},
	}
	text, ok := LastUserMessage(msgs)
	assert.True(t, ok)
	assert.Equal(t, "second", text)

	_, ok = LastUserMessage([]Message{{Role: RoleSystem, Content: "sys"}})
	assert.False(t, ok)
}
