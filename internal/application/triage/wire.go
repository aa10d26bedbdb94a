package triage

import "github.com/google/wire"

// ProviderSet 分诊应用层 ProviderSet
var ProviderSet = wire.NewSet(
	NewFeatureExtractor,
	NewRedFlagGuard,
	NewAnswerGenerator,
	NewTraceLogger,
	NewWorkflow,
)
