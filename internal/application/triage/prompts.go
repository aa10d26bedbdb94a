package triage

import (
	"fmt"
	"strings"

	domainTriage "github.com/ontariodoctor/backend/internal/domain/triage"
)

// 安大略省求助资源
const (
	TelehealthOntario = "1-866-797-0000"
	EmergencyNumber   = "911"
)

// 固定回复
const (
	SafeHarborAnswer = "I apologize, but I'm having trouble generating a response right now. " +
		"Please call Telehealth Ontario at " + TelehealthOntario + " for medical advice."
	InsufficientInfoAnswer = "I don't have enough information to answer your question."
	Disclaimer             = "This is not medical advice. Call " + EmergencyNumber + " for emergencies."
)

// SystemPrompt 生成模型的系统指令
const SystemPrompt = `You are a Canadian medical assistant for Ontario residents.

Use ONLY the provided CONTEXT to answer. Do not use external knowledge.

Output structure:
1) Possible causes (3–5 conditions; NOT a diagnosis, just possibilities based on the information)
2) Red flags (if any serious symptoms are present that require immediate attention)
3) What to do next in Ontario:
   - For non-urgent concerns: See your family doctor or visit a walk-in clinic
   - For medical questions: Call Telehealth Ontario at ` + TelehealthOntario + ` (available 24/7)
   - For emergencies: Call ` + EmergencyNumber + ` or go to the Emergency Room
4) Numbered citations [1]..[N] matching the CONTEXT sources

IMPORTANT:
- Base your answer ONLY on the provided CONTEXT
- If CONTEXT doesn't contain enough information, say so
- Always mention Ontario-specific resources (family doctor, walk-in clinic, Telehealth Ontario)
- Always append: "` + Disclaimer + `"
- Be concise, clear, and avoid speculation beyond the sources
`

// BuildUserPrompt 组装 CONTEXT / PATIENT / QUESTION 三段
func BuildUserPrompt(contextText string, features *domainTriage.PatientFeatures, question, region string) string {
	var b strings.Builder
	b.WriteString("CONTEXT:\n")
	b.WriteString(contextText)
	b.WriteString("\n\nPATIENT:\n")
	b.WriteString(features.PromptSummary(region))
	b.WriteString("\n\nQUESTION:\n")
	b.WriteString(question)
	b.WriteString("\n")
	return b.String()
}

// BuildEmergencyAnswer 急诊分支的固定模板，不调用生成模型
func BuildEmergencyAnswer(check *domainTriage.RedFlagCheck, level domainTriage.Level, citations []domainTriage.Citation) string {
	if check == nil || len(check.RedFlags) == 0 {
		return ""
	}

	action := "Go to the Emergency Room immediately or call " + EmergencyNumber
	if level == domainTriage.LevelEmergency {
		action = "Call " + EmergencyNumber + " immediately"
	}

	var flags strings.Builder
	flags.WriteString("Red flags detected:")
	for i, msg := range check.RedFlags {
		fmt.Fprintf(&flags, "\n%d. %s", i+1, msg)
	}

	sections := []string{
		"⚠️ URGENT: " + check.RedFlags[0],
		"Based on your symptoms, this requires immediate medical attention.",
		flags.String(),
		"What to do RIGHT NOW:\n- " + action,
	}

	if len(citations) > 0 {
		var sources strings.Builder
		sources.WriteString("Sources:")
		for _, c := range citations {
			fmt.Fprintf(&sources, "\n[%d] %s - %s", c.ID, c.Title, c.Source)
		}
		sections = append(sections, sources.String())
	}

	sections = append(sections, Disclaimer)
	return strings.Join(sections, "\n\n")
}
