package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/job-board/internal/events"
	"github.com/spec-kit/job-board/internal/lifecycle"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// TransitionRecorder counts applied lifecycle events.
type TransitionRecorder interface {
	RecordTransition(event string)
}

type nopRecorder struct{}

func (nopRecorder) RecordTransition(string) {}

func recorderOrNop(r TransitionRecorder) TransitionRecorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = dispatcher.Publish(ctx, event)
}

func notFoundOr(err error, resource, key, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, map[string]any{key: id})
	}
	return apperrors.MapError(err)
}

func transitionError(from lifecycle.State, event lifecycle.Event) error {
	return apperrors.NewConflict("action not allowed in current state",
		map[string]any{"state": from, "event": event})
}
