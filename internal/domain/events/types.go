// Package events 定义进程内领域事件
package events

import "time"

// EventType 事件类型
type EventType string

// 语料投递目录事件
const (
	CorpusFileCreated  EventType = "corpus.file.created"
	CorpusFileModified EventType = "corpus.file.modified"
)

// 入库事件
const (
	IngestCompleted EventType = "ingest.completed"
)

// Event 领域事件
type Event interface {
	Type() EventType
	Timestamp() time.Time
}
