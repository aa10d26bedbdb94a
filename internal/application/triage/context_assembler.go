package triage

import (
	"fmt"
	"strings"

	"github.com/ontariodoctor/backend/internal/domain/rag"
	domainTriage "github.com/ontariodoctor/backend/internal/domain/triage"
)

const (
	maxDocsPerSource = 2
	maxContextDocs   = 5

	// NoContextText 没有检索结果时的上下文
	NoContextText = "No relevant information found."
)

// AssembleContext 去重、按来源分散、回填到上限，生成带编号的上下文和引用
// 同样的输入总是得到同样的输出
func AssembleContext(docs []rag.RetrievedDocument) (string, []domainTriage.Citation) {
	if len(docs) == 0 {
		return NoContextText, []domainTriage.Citation{}
	}

	selected := selectDocuments(docs)

	lines := make([]string, 0, len(selected))
	citations := make([]domainTriage.Citation, 0, len(selected))
	for i, doc := range selected {
		id := i + 1
		source := valueOr(doc.Source, "unknown")
		lines = append(lines, fmt.Sprintf("[%d] (%s#%d) %s", id, source, doc.ChunkID, doc.Text))
		citations = append(citations, domainTriage.Citation{
			ID:     id,
			Title:  valueOr(doc.Title, "Unknown"),
			URL:    valueOr(doc.URL, "#"),
			Source: source,
		})
	}
	return strings.Join(lines, "\n\n"), citations
}

func selectDocuments(docs []rag.RetrievedDocument) []rag.RetrievedDocument {
	seen := make(map[string]bool, len(docs))
	unique := make([]rag.RetrievedDocument, 0, len(docs))
	for _, d := range docs {
		if seen[d.DocID] {
			continue
		}
		seen[d.DocID] = true
		unique = append(unique, d)
	}

	// 第一遍：每个来源最多 2 篇
	perSource := make(map[string]int)
	admitted := make([]bool, len(unique))
	selected := make([]rag.RetrievedDocument, 0, maxContextDocs)
	for i, d := range unique {
		if len(selected) == maxContextDocs {
			break
		}
		source := valueOr(d.Source, "unknown")
		if perSource[source] < maxDocsPerSource {
			perSource[source]++
			admitted[i] = true
			selected = append(selected, d)
		}
	}

	// 回填：按原顺序补足到上限
	for i, d := range unique {
		if len(selected) == maxContextDocs {
			break
		}
		if !admitted[i] {
			admitted[i] = true
			selected = append(selected, d)
		}
	}
	return selected
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
