package rules

import "github.com/google/wire"

// ProviderSet 红旗规则表 ProviderSet
var ProviderSet = wire.NewSet(
	Load,
)
