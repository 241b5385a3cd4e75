package employees

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/servicedesk/servicedesk/internal/shared"
	"github.com/servicedesk/servicedesk/internal/validation"
)

// RepositoryPort abstracts employee storage.
type RepositoryPort interface {
	Insert(ctx context.Context, e Employee) (int64, error)
	List(ctx context.Context, company string, limit, offset int) ([]Employee, int, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service registers employees.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds Service. audit is optional.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger, now: time.Now}
}

var formDateLayouts = []string{"2006-01-02", time.RFC3339, "02-01-2006"}

func parseFormDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range formDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Create validates form and registers the employee under company.
func (s *Service) Create(ctx context.Context, company string, form validation.EmployeeForm, actorID int64) (Employee, error) {
	res := validation.ValidateEmployeeCreate(form)
	dob, joined := parseFormDate(form.DOB), parseFormDate(form.JoiningDate)
	if res.Valid() && (dob.IsZero() || joined.IsZero()) {
		// the form only checks presence; storage needs real dates
		if dob.IsZero() {
			res.Errors = append(res.Errors, "Invalid date of birth")
			res.Fields["dob"] = true
		}
		if joined.IsZero() {
			res.Errors = append(res.Errors, "Invalid joining date")
			res.Fields["joining_date"] = true
		}
	}
	if !res.Valid() {
		return Employee{}, &FormError{Result: res}
	}

	e := Employee{
		Company:     company,
		Name:        strings.TrimSpace(form.Name),
		DOB:         dob,
		PhoneNumber: form.PhoneNumber,
		Address:     strings.TrimSpace(form.Address),
		Email:       strings.ToLower(strings.TrimSpace(form.Email)),
		Aadhar:      form.Aadhar,
		PAN:         form.PAN,
		JoiningDate: joined,
		Role:        strings.ToUpper(strings.TrimSpace(form.Role)),
		CreatedBy:   actorID,
		CreatedAt:   s.now().UTC(),
	}
	id, err := s.repo.Insert(ctx, e)
	if err != nil {
		return Employee{}, fmt.Errorf("insert employee: %w", err)
	}
	e.ID = id
	if s.audit != nil {
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "employee:create",
			Entity:   shared.AuditEntityEmployee,
			EntityID: strconv.FormatInt(id, 10),
			Meta:     map[string]any{"company": company, "role": e.Role},
		}); err != nil {
			s.logger.WarnContext(ctx, "employee audit", slog.Any("error", err))
		}
	}
	return e, nil
}

// List returns one page of company's employees.
func (s *Service) List(ctx context.Context, company string, page, perPage int) ([]Employee, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	rows, total, err := s.repo.List(ctx, company, p.PerPage, p.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	if rows == nil {
		rows = []Employee{}
	}
	return rows, shared.NewPagination(p.Page, p.PerPage, total), nil
}
