package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ontariodoctor/backend/internal/domain/triage"
	"github.com/ontariodoctor/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Embedded(t *testing.T) {
	rules, err := Load(&config.RulesConfig{})
	require.NoError(t, err)
	require.NotEmpty(t, rules)

	var stiffNeck, chestPain bool
	for _, r := range rules {
		if assert.ObjectsAreEqual([]string{"stiff neck", "fever"}, r.Symptoms) {
			stiffNeck = r.Action == triage.ActionER
		}
		if assert.ObjectsAreEqual([]string{"chest pain", "shortness of breath"}, r.Symptoms) {
			chestPain = r.Action == triage.ActionEmergency
		}
	}
	assert.True(t, stiffNeck, "内置表应包含 stiff neck + fever -> ER")
	assert.True(t, chestPain, "内置表应包含 chest pain + shortness of breath -> 911")
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - symptoms: ["  Rash ", fever]
    action: urgent-care
    message: "Rash with fever"
`), 0644))

	rules, err := Load(&config.RulesConfig{Path: path})
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, []string{"rash", "fever"}, rules[0].Symptoms)
	assert.Equal(t, triage.Action("urgent-care"), rules[0].Action)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(&config.RulesConfig{Path: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"空表", "rules: []"},
		{"无症状", "rules:\n  - symptoms: []\n    action: ER\n    message: m"},
		{"空白症状", "rules:\n  - symptoms: ['  ']\n    action: ER\n    message: m"},
		{"无动作", "rules:\n  - symptoms: [fever]\n    message: m"},
		{"无消息", "rules:\n  - symptoms: [fever]\n    action: ER\n    message: '  '"},
		{"非法 YAML", "rules: [:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
