// Package acceptcache is the device-local ledger of accepted jobs. It mirrors the job
// service and is rewritten wholesale on every mutation.
package acceptcache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/api/dto"
	"github.com/spec-kit/job-board/internal/domain"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

type document struct {
	AcceptedJobs []dto.AcceptanceResponse `json:"acceptedJobs"`
}

// Cache maps job id to the acceptance record held on this device.
type Cache struct {
	mu      sync.Mutex
	storage Storage
	logger  *zap.Logger
}

// New builds a cache over storage.
func New(storage Storage, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{storage: storage, logger: logger}
}

// Add stores record, rejecting a job id that is already present.
func (c *Cache) Add(ctx context.Context, record domain.Acceptance) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return err
	}
	for _, existing := range records {
		if existing.JobID == record.JobID {
			return apperrors.NewDuplicateAcceptance(record.JobID)
		}
	}
	return c.save(ctx, append(records, record))
}

// Remove drops the record for jobID. Missing ids are ignored.
func (c *Cache) Remove(ctx context.Context, jobID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, existing := range records {
		if existing.JobID != jobID {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return c.save(ctx, kept)
}

// List returns the cached records in insertion order.
func (c *Cache) List(ctx context.Context) ([]domain.Acceptance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// Replace overwrites the cache with records fetched from the service.
func (c *Cache) Replace(ctx context.Context, records []domain.Acceptance) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(ctx, records)
}

func (c *Cache) load(ctx context.Context) ([]domain.Acceptance, error) {
	raw, err := c.storage.Read(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("read accepted jobs: %w", err))
	}
	records := []domain.Acceptance{}
	if len(raw) == 0 {
		return records, nil
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		c.logger.Warn("discarding unreadable accepted jobs cache", zap.Error(err))
		return records, nil
	}
	for _, item := range doc.AcceptedJobs {
		records = append(records, item.Domain())
	}
	return records, nil
}

func (c *Cache) save(ctx context.Context, records []domain.Acceptance) error {
	raw, err := json.Marshal(document{AcceptedJobs: dto.NewAcceptanceList(records)})
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := c.storage.Write(ctx, raw); err != nil {
		return apperrors.NewInternalError(fmt.Errorf("write accepted jobs: %w", err))
	}
	return nil
}
