package events

// Handler 事件处理器
type Handler interface {
	// HandleEvent 返回的 error 只记录日志，不会重投
	HandleEvent(event Event) error
}

// HandlerFunc 函数适配器
type HandlerFunc func(event Event) error

// HandleEvent 实现 Handler
func (f HandlerFunc) HandleEvent(event Event) error {
	return f(event)
}

// EventBus 进程内事件总线
type EventBus interface {
	// Subscribe 订阅一种事件，返回取消函数
	Subscribe(eventType EventType, handler Handler) (unsubscribe func())

	// SubscribeMultiple 订阅多种事件，返回取消函数
	SubscribeMultiple(eventTypes []EventType, handler Handler) (unsubscribe func())

	// Publish 异步分发给所有订阅者
	Publish(event Event)

	// Close 拒绝新事件并等待在途事件处理完
	Close()
}
