package triage

import (
	"time"

	"github.com/google/uuid"
	"github.com/ontariodoctor/backend/internal/domain/rag"
)

// Citation 引用，ID 是本次回答上下文中的位置编号（从 1 开始），不是 doc_id
type Citation struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Stage 流水线阶段
type Stage int

const (
	StageStart Stage = iota
	StageFeaturesExtracted
	StageGuardEvaluated
	StageRetrieved
	StageERShortcut
	StageContextAssembled
	StageAnswered
	StageLogged
	StageDone
)

var stageNames = map[Stage]string{
	StageStart:             "start",
	StageFeaturesExtracted: "features_extracted",
	StageGuardEvaluated:    "guard_evaluated",
	StageRetrieved:         "retrieved",
	StageERShortcut:        "er_shortcut",
	StageContextAssembled:  "context_assembled",
	StageAnswered:          "answered",
	StageLogged:            "logged",
	StageDone:              "done",
}

// String 阶段名
func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// PipelineState 单次请求独占的流水线状态
type PipelineState struct {
	// TraceID 创建时生成，之后不变
	TraceID string
	Stage   Stage
	// Version 每推进一个阶段加一
	Version int
	History []Stage

	Messages      []Message
	Features      *PatientFeatures
	RedFlagCheck  *RedFlagCheck
	Triage        Level
	RetrievedDocs []rag.RetrievedDocument
	ContextText   string
	Citations     []Citation
	Answer        string

	StartedAt time.Time
}

// NewPipelineState 创建新状态，消息列表会被复制
func NewPipelineState(messages []Message) *PipelineState {
	copied := make([]Message, len(messages))
	copy(copied, messages)
	return &PipelineState{
		TraceID:   uuid.NewString(),
		Stage:     StageStart,
		History:   []Stage{StageStart},
		Messages:  copied,
		Triage:    LevelPrimaryCare,
		StartedAt: time.Now(),
	}
}

// Advance 推进到下一阶段
func (s *PipelineState) Advance(next Stage) {
	s.Stage = next
	s.Version++
	s.History = append(s.History, next)
}

// Visited 是否经过某阶段
func (s *PipelineState) Visited(stage Stage) bool {
	for _, st := range s.History {
		if st == stage {
			return true
		}
	}
	return false
}

// UserQuestion 最近一条用户消息
func (s *PipelineState) UserQuestion() string {
	text, _ := LastUserMessage(s.Messages)
	return text
}
