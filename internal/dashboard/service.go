package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/servicedesk/servicedesk/internal/platform/httpx"
	"github.com/servicedesk/servicedesk/internal/shared"
)

// RepositoryPort loads the raw feed.
type RepositoryPort interface {
	Load(ctx context.Context) (Data, error)
}

// Service serves dashboard snapshots and menus.
type Service struct {
	repo   RepositoryPort
	cache  *Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires a Repository with a Cache helper. cache may be nil.
func NewService(repo RepositoryPort, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Snapshot returns the dashboard shaped for selector (ALL or a company).
func (s *Service) Snapshot(ctx context.Context, selector string) (Snapshot, error) {
	if selector == "" {
		selector = SelectorAll
	}
	if !shared.ValidCompanySelector(selector) {
		return Snapshot{}, fmt.Errorf("%w: %w %q", httpx.ErrValidation, shared.ErrUnknownCompany, selector)
	}
	data, err := s.feed(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Shape(data, selector), nil
}

// Menu returns the menu cards for company that the caller may open.
func (s *Service) Menu(company string, granted []string) ([]MenuCard, error) {
	if company == "" {
		company = SelectorAll
	}
	if !shared.ValidCompanySelector(company) {
		return nil, fmt.Errorf("%w: %w %q", httpx.ErrValidation, shared.ErrUnknownCompany, company)
	}
	return FilterMenuByPermissions(FilterMenuByCompany(DefaultMenu(), company), granted), nil
}

// Warm loads the feed into the cache ahead of the first request.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.feed(ctx)
	return err
}

// Invalidate drops every cached feed.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) feed(ctx context.Context) (Data, error) {
	key, err := s.cache.BuildKey(ctx, "feed")
	if err != nil {
		return Data{}, fmt.Errorf("dashboard cache key: %w", err)
	}
	var data Data
	err = s.cache.FetchJSON(ctx, key, &data, func(ctx context.Context) (any, error) {
		return coalesce(ctx, key, func(ctx context.Context) (any, error) {
			start := s.now()
			d, err := s.repo.Load(ctx)
			if err != nil {
				return nil, err
			}
			d.GeneratedAt = s.now().UTC()
			s.logger.InfoContext(ctx, "dashboard feed built", slog.String("key", key),
				slog.Duration("took", s.now().Sub(start)))
			return d, nil
		})
	})
	if err != nil {
		return Data{}, fmt.Errorf("dashboard feed: %w", err)
	}
	return data, nil
}
