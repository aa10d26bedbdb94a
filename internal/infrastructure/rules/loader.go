// Package rules 加载并校验红旗规则表
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ontariodoctor/backend/internal/domain/triage"
	"github.com/ontariodoctor/backend/internal/infrastructure/config"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRules []byte

// ruleFile 规则表文件结构
type ruleFile struct {
	Rules []ruleEntry `yaml:"rules" validate:"required,min=1,dive"`
}

type ruleEntry struct {
	Symptoms []string `yaml:"symptoms" validate:"required,min=1,dive,required"`
	Action   string   `yaml:"action" validate:"required"`
	Message  string   `yaml:"message" validate:"required"`
}

// Load 按配置加载规则表：配置了路径则读文件，否则使用内置表
func Load(cfg *config.RulesConfig) ([]triage.RedFlagRule, error) {
	logger := log.NewModuleLogger("rules", "loader")

	data, origin := defaultRules, "embedded"
	if cfg != nil && cfg.Path != "" {
		raw, err := os.ReadFile(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read rule table %s: %w", cfg.Path, err)
		}
		data, origin = raw, cfg.Path
	}

	rules, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid rule table %s: %w", origin, err)
	}

	logger.Info("Red-flag rules loaded", "origin", origin, "count", len(rules))
	return rules, nil
}

// Parse 解析并校验 YAML 规则表
func Parse(data []byte) ([]triage.RedFlagRule, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	// 去掉空白后再校验，"  " 视为空
	for i := range file.Rules {
		r := &file.Rules[i]
		r.Action = strings.TrimSpace(r.Action)
		r.Message = strings.TrimSpace(r.Message)
		for j := range r.Symptoms {
			r.Symptoms[j] = strings.ToLower(strings.TrimSpace(r.Symptoms[j]))
		}
	}

	if err := validator.New().Struct(&file); err != nil {
		return nil, err
	}

	rules := make([]triage.RedFlagRule, len(file.Rules))
	for i, r := range file.Rules {
		rules[i] = triage.RedFlagRule{
			Symptoms: r.Symptoms,
			Action:   triage.Action(r.Action),
			Message:  r.Message,
		}
	}
	return rules, nil
}
