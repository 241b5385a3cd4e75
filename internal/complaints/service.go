package complaints

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/servicedesk/servicedesk/internal/platform/httpx"
	"github.com/servicedesk/servicedesk/internal/shared"
)

const maxPerPage = 100

// RepositoryPort abstracts complaint storage.
type RepositoryPort interface {
	ListPending(ctx context.Context, company string) ([]PendingComplaint, error)
}

// Page is one page of filtered pending complaints.
type Page struct {
	Records    []PendingComplaint `json:"records"`
	Pagination shared.Pagination  `json:"pagination"`
}

// Service serves the pending complaint listing.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Pending loads open complaints for company, applies criteria and returns
// the requested page.
func (s *Service) Pending(ctx context.Context, company string, criteria Criteria, page, perPage int) (Page, error) {
	if company == "" {
		company = shared.CompanyAll
	}
	if !shared.ValidCompanySelector(company) {
		return Page{}, fmt.Errorf("%w: %w %q", httpx.ErrValidation, shared.ErrUnknownCompany, company)
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	records, err := s.repo.ListPending(ctx, company)
	if err != nil {
		return Page{}, fmt.Errorf("list pending complaints: %w", err)
	}
	matched := FilterRecords(records, criteria)
	pagination := shared.NewPagination(page, perPage, len(matched))
	start, end := pagination.Window(len(matched))
	s.logger.DebugContext(ctx, "pending complaints", slog.String("company", company),
		slog.Int("loaded", len(records)), slog.Int("matched", len(matched)))
	return Page{Records: matched[start:end], Pagination: pagination}, nil
}
