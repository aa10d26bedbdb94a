package triage

import (
	"strings"
	"unicode"

	domainTriage "github.com/ontariodoctor/backend/internal/domain/triage"
)

// ruleToken 规则中的一个必需词项
type ruleToken struct {
	text string
	// phrase 多词短语或含标点的词项，按整段子串匹配
	phrase bool
}

type compiledRule struct {
	rule   domainTriage.RedFlagRule
	tokens []ruleToken
}

// RuleMatcher 预编译的红旗规则表
type RuleMatcher struct {
	rules []compiledRule
}

// NewRuleMatcher 预处理每条规则的词项
func NewRuleMatcher(rules []domainTriage.RedFlagRule) *RuleMatcher {
	m := &RuleMatcher{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		cr := compiledRule{rule: r}
		for _, s := range r.Symptoms {
			text := normalizeSpace(strings.ToLower(s))
			if text == "" {
				continue
			}
			cr.tokens = append(cr.tokens, ruleToken{text: text, phrase: !isPlainWord(text)})
		}
		m.rules = append(m.rules, cr)
	}
	return m
}

// MatchedText 归一化后的待匹配文本
type MatchedText struct {
	normalized string
	words      []string
}

// NewMatchedText 小写、合并空白并切出单词
func NewMatchedText(text string) MatchedText {
	normalized := normalizeSpace(strings.ToLower(text))
	return MatchedText{
		normalized: normalized,
		words: strings.FieldsFunc(normalized, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}),
	}
}

// Contains 词项是否出现在文本中
// 单词：是任一单词的子串（整词匹配是其特例）；短语：整段子串
func (t MatchedText) Contains(token ruleToken) bool {
	if token.phrase {
		return strings.Contains(t.normalized, token.text)
	}
	for _, w := range t.words {
		if strings.Contains(w, token.text) {
			return true
		}
	}
	return false
}

// Match 返回全部词项都命中的规则，按规则表顺序
func (m *RuleMatcher) Match(text string) []domainTriage.RedFlagRule {
	mt := NewMatchedText(text)
	matched := make([]domainTriage.RedFlagRule, 0)
	for _, cr := range m.rules {
		if cr.matches(mt) {
			matched = append(matched, cr.rule)
		}
	}
	return matched
}

// Len 规则条数
func (m *RuleMatcher) Len() int {
	return len(m.rules)
}

func (cr compiledRule) matches(mt MatchedText) bool {
	if len(cr.tokens) == 0 {
		return false
	}
	for _, tok := range cr.tokens {
		if !mt.Contains(tok) {
			return false
		}
	}
	return true
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isPlainWord(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
