package triage

import (
	"log/slog"
	"strings"

	domainTriage "github.com/ontariodoctor/backend/internal/domain/triage"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
	"github.com/ontariodoctor/backend/internal/infrastructure/metrics"
)

// RedFlagGuard 红旗安全门
type RedFlagGuard struct {
	matcher *RuleMatcher
	logger  *slog.Logger
}

// NewRedFlagGuard 创建安全门，规则表在进程生命周期内不变
func NewRedFlagGuard(rules []domainTriage.RedFlagRule) *RedFlagGuard {
	return &RedFlagGuard{
		matcher: NewRuleMatcher(rules),
		logger:  log.NewModuleLogger("triage", "red_flag_guard"),
	}
}

// Evaluate 用用户原文和抽取出的症状评估红旗规则
func (g *RedFlagGuard) Evaluate(userText string, features *domainTriage.PatientFeatures) *domainTriage.RedFlagCheck {
	if strings.TrimSpace(userText) == "" {
		g.logger.Warn("No user message for red-flag check")
		return domainTriage.NewRedFlagCheck(nil)
	}

	combined := strings.ToLower(userText)
	if features != nil && len(features.Symptoms) > 0 {
		combined += " " + strings.Join(features.Symptoms, " ")
	}

	matched := g.matcher.Match(combined)
	if features.IsInfant() && features.HasFever() {
		matched = append(matched, domainTriage.InfantFeverRule)
	}

	for _, rule := range matched {
		metrics.RecordRedFlag(string(rule.Action))
		g.logger.Warn("Red flag detected", "action", rule.Action, "message", rule.Message)
	}

	check := domainTriage.NewRedFlagCheck(matched)
	g.logger.Info("Red-flag check completed",
		"er_required", check.ERRequired,
		"flags", len(check.RedFlags),
		"level", check.Level(),
	)
	return check
}
