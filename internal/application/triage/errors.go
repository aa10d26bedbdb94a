package triage

import (
	"context"
	"errors"
)

var errEmptyAnswer = errors.New("empty answer from generation backend")

// generationFailureReason 指标用的失败原因
func generationFailureReason(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, errEmptyAnswer):
		return "empty_answer"
	default:
		return "error"
	}
}
