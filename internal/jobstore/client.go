// Package jobstore is the typed HTTP client for the job board service. Every call
// performs exactly one request, never retries, and reports failures as DomainErrors.
package jobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/api/dto"
	"github.com/spec-kit/job-board/internal/domain"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

const defaultTimeout = 15 * time.Second

// TokenSource supplies the bearer token of the current session. An empty token sends
// the request anonymously.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource.
type StaticToken string

// Token returns the fixed token.
func (s StaticToken) Token() string { return string(s) }

// Client talks to the job board service.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     TokenSource
	logger     *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource sets the session token provider.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient builds a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     StaticToken(""),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListOptions narrows List.
type ListOptions struct {
	Sort        domain.SortOrder
	Limit       int
	PosterEmail string
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Sort != "" {
		q.Set("sort", string(o.Sort))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.PosterEmail != "" {
		q.Set("email", o.PosterEmail)
	}
	return q
}

// List returns postings in the requested order.
func (c *Client) List(ctx context.Context, opts ListOptions) ([]domain.Job, error) {
	var items []dto.JobResponse
	if err := c.do(ctx, http.MethodGet, "/jobs", opts.query(), nil, &items); err != nil {
		return nil, err
	}
	jobs := make([]domain.Job, 0, len(items))
	for _, item := range items {
		jobs = append(jobs, item.Domain())
	}
	return jobs, nil
}

// Get returns one posting.
func (c *Client) Get(ctx context.Context, id string) (*domain.Job, error) {
	var item dto.JobResponse
	if err := c.do(ctx, http.MethodGet, "/jobs/"+url.PathEscape(id), nil, nil, &item); err != nil {
		return nil, err
	}
	job := item.Domain()
	return &job, nil
}

// Create posts a new job as the session principal.
func (c *Client) Create(ctx context.Context, draft domain.JobDraft) (*domain.Job, error) {
	var item dto.JobResponse
	if err := c.do(ctx, http.MethodPost, "/jobs", nil, dto.NewCreateJobRequest(draft), &item); err != nil {
		return nil, err
	}
	job := item.Domain()
	return &job, nil
}

// Update edits an owned job.
func (c *Client) Update(ctx context.Context, id string, patch domain.JobPatch) (*domain.Job, error) {
	var item dto.JobResponse
	if err := c.do(ctx, http.MethodPut, "/jobs/"+url.PathEscape(id), nil, dto.NewUpdateJobRequest(patch), &item); err != nil {
		return nil, err
	}
	job := item.Domain()
	return &job, nil
}

// Delete removes an owned job.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/jobs/"+url.PathEscape(id), nil, nil, nil)
}

// Accept records the session principal's acceptance of a job.
func (c *Client) Accept(ctx context.Context, jobID string) (*domain.Acceptance, error) {
	var item dto.AcceptanceResponse
	if err := c.do(ctx, http.MethodPost, "/accepted", nil, dto.AcceptJobRequest{JobID: jobID}, &item); err != nil {
		return nil, err
	}
	record := item.Domain()
	return &record, nil
}

// ListAccepted returns the acceptances held by email.
func (c *Client) ListAccepted(ctx context.Context, email string) ([]domain.Acceptance, error) {
	q := url.Values{}
	if email != "" {
		q.Set("email", email)
	}
	var items []dto.AcceptanceResponse
	if err := c.do(ctx, http.MethodGet, "/accepted", q, nil, &items); err != nil {
		return nil, err
	}
	records := make([]domain.Acceptance, 0, len(items))
	for _, item := range items {
		records = append(records, item.Domain())
	}
	return records, nil
}

// RemoveAccepted closes an acceptance as done or cancelled.
func (c *Client) RemoveAccepted(ctx context.Context, id string, reason domain.CloseReason) error {
	q := url.Values{}
	if reason != "" {
		q.Set("reason", string(reason))
	}
	return c.do(ctx, http.MethodDelete, "/accepted/"+url.PathEscape(id), q, nil, nil)
}

// RegisterProfile stores the public user record.
func (c *Client) RegisterProfile(ctx context.Context, profile domain.Profile) (*domain.Profile, error) {
	req := dto.ProfileRequest{Name: profile.Name, Email: profile.Email, PhotoURL: profile.PhotoURL}
	if !profile.CreatedAt.IsZero() {
		req.CreatedAt = &profile.CreatedAt
	}
	var item dto.ProfileResponse
	if err := c.do(ctx, http.MethodPost, "/users", nil, req, &item); err != nil {
		return nil, err
	}
	return &domain.Profile{Name: item.Name, Email: item.Email, PhotoURL: item.PhotoURL, CreatedAt: item.CreatedAt}, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := *c.baseURL
	endpoint.Path = c.baseURL.Path + path
	endpoint.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return apperrors.NewTransportError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewTransportError(err)
	}
	c.logger.Debug("request done", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, payload)
	}
	if out == nil || len(payload) == 0 {
		return nil
	}

	envelope := dto.Envelope[json.RawMessage]{}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return apperrors.NewTransportError(fmt.Errorf("decode response: %w", err))
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return apperrors.NewTransportError(fmt.Errorf("decode response data: %w", err))
	}
	return nil
}

func decodeError(status int, payload []byte) error {
	var envelope dto.ErrorEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil || envelope.Error.Code == "" {
		return apperrors.FromStatus(status, "", strings.TrimSpace(string(payload)), nil)
	}
	return apperrors.FromStatus(status, envelope.Error.Code, envelope.Error.Message, envelope.Error.Details)
}

// IsCanceled reports whether err came from a cancelled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
