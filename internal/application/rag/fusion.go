package rag

import (
	"sort"

	domainRAG "github.com/ontariodoctor/backend/internal/domain/rag"
)

// DefaultRRFConstant RRF 平滑常数
const DefaultRRFConstant = 60

// FuseRRF 倒数排名融合
// 每个分支中排名 r（从 1 开始）的文档得 1/(k+r)，按 doc_id 累加；
// payload 取首次出现的版本，同分保持首次出现顺序，结果截断到 topK
func FuseRRF(k, topK int, arms ...[]domainRAG.RetrievedDocument) []domainRAG.RetrievedDocument {
	if k <= 0 {
		k = DefaultRRFConstant
	}

	scores := make(map[string]float64)
	order := make([]domainRAG.RetrievedDocument, 0)
	for _, arm := range arms {
		for rank, doc := range arm {
			if _, seen := scores[doc.DocID]; !seen {
				order = append(order, doc)
			}
			scores[doc.DocID] += 1.0 / float64(k+rank+1)
		}
	}

	for i := range order {
		order[i].Score = scores[order[i].DocID]
	}
	sort.SliceStable(order, func(a, b int) bool {
		return order[a].Score > order[b].Score
	})

	if topK >= 0 && len(order) > topK {
		order = order[:topK]
	}
	return order
}
