package triage

// Role 消息角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message 对话消息，由调用方提供，流水线内只读
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// LastUserMessage 返回最近一条用户消息的内容
func LastUserMessage(messages []Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content, true
		}
	}
	return "", false
}
