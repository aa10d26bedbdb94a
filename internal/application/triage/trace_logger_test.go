package triage

import (
	"context"
	"errors"
	"testing"

	domainTriage "github.com/ontariodoctor/backend/internal/domain/triage"
	"github.com/ontariodoctor/backend/internal/domain/triage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestBuildTraceRecord(t *testing.T) {
	state := domainTriage.NewPipelineState([]domainTriage.Message{{Role: domainTriage.RoleUser, Content: "q"}})
	state.Features = ExtractFeatures("5 year old with fever and cough")
	state.RedFlagCheck = domainTriage.NewRedFlagCheck([]domainTriage.RedFlagRule{{Message: "flag"}})
	state.Triage = domainTriage.LevelER
	state.Answer = "abc"
	state.Advance(domainTriage.StageFeaturesExtracted)

	rec := BuildTraceRecord(state)
	assert.Equal(t, state.TraceID, rec.TraceID)
	assert.Equal(t, domainTriage.LevelER, rec.Triage)
	assert.Equal(t, []string{"flag"}, rec.RedFlags)
	assert.Equal(t, 3, rec.AnswerLength)
	assert.Equal(t, 5, *rec.Age)
	assert.Equal(t, []string{"fever", "cough"}, rec.Symptoms)
	assert.Equal(t, []string{"start", "features_extracted"}, rec.Stages)

	rec.RedFlags[0] = "changed"
	assert.Equal(t, "flag", state.RedFlagCheck.RedFlags[0], "记录不与状态共享切片")
}

func TestTraceLogger_Log(t *testing.T) {
	state := domainTriage.NewPipelineState(nil)

	t.Run("持久化", func(t *testing.T) {
		repo := mocks.NewMockTraceRepository(t)
		repo.On("SaveTrace", mock.Anything, mock.MatchedBy(func(r *domainTriage.TraceRecord) bool {
			return r.TraceID == state.TraceID
		})).Return(nil).Once()

		NewTraceLogger(repo).Log(context.Background(), state)
	})

	t.Run("持久化失败被吞掉", func(t *testing.T) {
		repo := mocks.NewMockTraceRepository(t)
		repo.On("SaveTrace", mock.Anything, mock.Anything).Return(errors.New("disk full"))

		assert.NotPanics(t, func() {
			NewTraceLogger(repo).Log(context.Background(), state)
		})
	})

	t.Run("panic 被恢复", func(t *testing.T) {
		repo := mocks.NewMockTraceRepository(t)
		repo.On("SaveTrace", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
			panic("boom")
		}).Return(nil)

		assert.NotPanics(t, func() {
			NewTraceLogger(repo).Log(context.Background(), state)
		})
	})

	t.Run("无仓库时只写日志", func(t *testing.T) {
		assert.NotPanics(t, func() {
			NewTraceLogger(nil).Log(context.Background(), state)
		})
	})
}
