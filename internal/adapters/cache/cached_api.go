package cache

import (
	"context"
	"log/slog"

	"github.com/AchilleasB/membership-console/internal/core/domain"
	"github.com/AchilleasB/membership-console/internal/core/ports"
)

// CachedAPI serves FetchRecords from the record cache and drops the cached
// listing after every successful mutation. Cache failures are logged and
// fall through to the API.
type CachedAPI struct {
	ports.MembershipAPI
	cache  ports.RecordCache
	logger *slog.Logger
}

var _ ports.MembershipAPI = (*CachedAPI)(nil)

func NewCachedAPI(api ports.MembershipAPI, cache ports.RecordCache, logger *slog.Logger) *CachedAPI {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedAPI{MembershipAPI: api, cache: cache, logger: logger.With("component", "cached-api")}
}

func (c *CachedAPI) FetchRecords(ctx context.Context) ([]domain.Member, error) {
	records, ok, err := c.cache.GetRecords(ctx)
	if err != nil {
		c.logger.Warn("reading cached records failed", "error", err)
	}
	if ok {
		return records, nil
	}

	records, err = c.MembershipAPI.FetchRecords(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetRecords(ctx, records); err != nil {
		c.logger.Warn("caching records failed", "error", err)
	}
	return records, nil
}

func (c *CachedAPI) AddVisit(ctx context.Context, visit domain.Visit) (string, error) {
	return invalidating(ctx, c, func() (string, error) { return c.MembershipAPI.AddVisit(ctx, visit) })
}

func (c *CachedAPI) AddRecord(ctx context.Context, record domain.NewRecord) (ports.AddRecordResult, error) {
	return invalidating(ctx, c, func() (ports.AddRecordResult, error) { return c.MembershipAPI.AddRecord(ctx, record) })
}

func (c *CachedAPI) AddSecondaryMember(ctx context.Context, member domain.NewSecondaryMember) (string, error) {
	return invalidating(ctx, c, func() (string, error) { return c.MembershipAPI.AddSecondaryMember(ctx, member) })
}

func (c *CachedAPI) UpdateRecord(ctx context.Context, familyID string, update domain.RecordUpdate) (string, error) {
	return invalidating(ctx, c, func() (string, error) { return c.MembershipAPI.UpdateRecord(ctx, familyID, update) })
}

func (c *CachedAPI) DeleteRecord(ctx context.Context, familyID string, member *domain.MemberKey) (string, error) {
	return invalidating(ctx, c, func() (string, error) { return c.MembershipAPI.DeleteRecord(ctx, familyID, member) })
}

func (c *CachedAPI) UpdateExpiredMemberships(ctx context.Context) (string, error) {
	return invalidating(ctx, c, func() (string, error) { return c.MembershipAPI.UpdateExpiredMemberships(ctx) })
}

func (c *CachedAPI) SendRenewalEmails(ctx context.Context) (string, error) {
	return invalidating(ctx, c, func() (string, error) { return c.MembershipAPI.SendRenewalEmails(ctx) })
}

// Invalidate drops the cached listing so the next fetch goes to the API.
func (c *CachedAPI) Invalidate(ctx context.Context) error {
	return c.cache.Invalidate(ctx)
}

func invalidating[T any](ctx context.Context, c *CachedAPI, call func() (T, error)) (T, error) {
	out, err := call()
	if err != nil {
		return out, err
	}
	if err := c.cache.Invalidate(ctx); err != nil {
		c.logger.Warn("invalidating cached records failed", "error", err)
	}
	return out, nil
}
