package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTriage(t *testing.T) {
	before := testutil.ToFloat64(TriageTotal.WithLabelValues("ER"))
	RecordTriage("ER")
	assert.Equal(t, before+1, testutil.ToFloat64(TriageTotal.WithLabelValues("ER")))
}

func TestRecordDegraded(t *testing.T) {
	before := testutil.ToFloat64(DegradedTotal.WithLabelValues("retrieval", "timeout"))
	RecordDegraded("retrieval", "timeout")
	RecordDegraded("retrieval", "timeout")
	assert.Equal(t, before+2, testutil.ToFloat64(DegradedTotal.WithLabelValues("retrieval", "timeout")))
}

func TestSetLexicalSnapshotSize(t *testing.T) {
	SetLexicalSnapshotSize(42)
	assert.Equal(t, 42.0, testutil.ToFloat64(LexicalSnapshotSize))
}

func TestObserveStage(t *testing.T) {
	ObserveStage("features_extracted", time.Now())
	assert.GreaterOrEqual(t, testutil.CollectAndCount(StageDuration), 1)
}
