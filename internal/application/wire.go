package application

import (
	"github.com/google/wire"
	"github.com/ontariodoctor/backend/internal/application/rag"
	"github.com/ontariodoctor/backend/internal/application/triage"
	domainTriage "github.com/ontariodoctor/backend/internal/domain/triage"
)

// ProviderSet Application 层总 ProviderSet
var ProviderSet = wire.NewSet(
	rag.ProviderSet,
	triage.ProviderSet,
	wire.Bind(new(domainTriage.DocumentRetriever), new(*rag.SearchService)),
)
