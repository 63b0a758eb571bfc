package jobstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/job-board/internal/api/dto"
	"github.com/spec-kit/job-board/internal/domain"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL, opts...)
	require.NoError(t, err)
	return client
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	_, err := NewClient("jobs.local")
	assert.Error(t, err)
}

func TestListSendsQueryAndDecodesEnvelope(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs", r.URL.Path)
		assert.Equal(t, "desc", r.URL.Query().Get("sort"))
		assert.Equal(t, "6", r.URL.Query().Get("limit"))
		assert.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(dto.Envelope[[]dto.JobResponse]{Data: []dto.JobResponse{
			{ID: "j1", Title: "Logo design", Category: domain.CategoryGraphicsDesign, CreatedAt: created},
		}})
	})

	jobs, err := client.List(context.Background(), ListOptions{Sort: domain.SortDesc, Limit: 6})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Logo design", jobs[0].Title)
	assert.True(t, created.Equal(jobs[0].CreatedAt))
}

func TestBearerTokenIsSent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req dto.AcceptJobRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(dto.Envelope[dto.AcceptanceResponse]{Data: dto.AcceptanceResponse{ID: "a1", JobID: req.JobID}})
	}, WithTokenSource(StaticToken("abc")))

	record, err := client.Accept(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, "j1", record.JobID)
}

func TestErrorEnvelopeMapsToDomainError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(dto.ErrorEnvelope{Error: dto.ErrorBody{
			Code:    apperrors.CodeDuplicateAcceptance,
			Message: "you have already accepted this job",
		}})
	})

	_, err := client.Accept(context.Background(), "j1")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDuplicateAcceptance))
	assert.Equal(t, http.StatusConflict, apperrors.ToDomainError(err).HTTPStatus)
}

func TestNonEnvelopeErrorFallsBackToStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	_, err := client.Get(context.Background(), "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client, err := NewClient(srv.URL)
	require.NoError(t, err)
	srv.Close()

	err = client.Delete(context.Background(), "j1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTransport))
	assert.False(t, IsCanceled(err))
}

func TestCancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListAccepted(ctx, "b@example.com")
	require.Error(t, err)
	assert.True(t, IsCanceled(err))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTransport))
}

func TestMalformedBodyIsTransportError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})
	_, err := client.Get(context.Background(), "j1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTransport))
}

func TestRemoveAcceptedSendsReason(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/accepted/a1", r.URL.Path)
		assert.Equal(t, "cancel", r.URL.Query().Get("reason"))
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, client.RemoveAccepted(context.Background(), "a1", domain.CloseCancel))
}
