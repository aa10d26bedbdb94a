package events

import "time"

// CorpusFileEvent 语料投递目录中的 JSON 批次文件变更
type CorpusFileEvent struct {
	EventType EventType
	FilePath  string
	ModTime   time.Time
	FileSize  int64
	EventTime time.Time
}

// Type 实现 Event
func (e *CorpusFileEvent) Type() EventType {
	return e.EventType
}

// Timestamp 实现 Event
func (e *CorpusFileEvent) Timestamp() time.Time {
	return e.EventTime
}
