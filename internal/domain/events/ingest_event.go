package events

import "time"

// IngestCompletedEvent 一个入库批次完成且词法快照已切换
type IngestCompletedEvent struct {
	Origin        string // http / cli / watcher
	DocumentCount int
	ChunkCount    int
	SnapshotSize  int
	EventTime     time.Time
}

// Type 实现 Event
func (e *IngestCompletedEvent) Type() EventType {
	return IngestCompleted
}

// Timestamp 实现 Event
func (e *IngestCompletedEvent) Timestamp() time.Time {
	return e.EventTime
}
