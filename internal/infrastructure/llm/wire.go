package llm

import (
	"github.com/google/wire"
	"github.com/ontariodoctor/backend/internal/domain/triage"
)

// ProviderSet 文本生成客户端 ProviderSet
var ProviderSet = wire.NewSet(
	NewClient,
	wire.Bind(new(triage.TextGenerator), new(*Client)),
)
