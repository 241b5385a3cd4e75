package stock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/servicedesk/servicedesk/internal/platform/httpx"
	"github.com/servicedesk/servicedesk/internal/shared"
	"github.com/servicedesk/servicedesk/internal/validation"
)

const recentMovements = 50

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	LinesBySpare(ctx context.Context, company, spareCode string) ([]Line, error)
	RecentMovements(ctx context.Context, company, spareCode string, limit int) ([]Movement, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// IdempotencyPort guards against double submission.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// CacheInvalidator drops cached views that read stock.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Service coordinates stock operations.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	idempotency IdempotencyPort
	cache       CacheInvalidator
	logger      *slog.Logger
	now         func() time.Time
}

// NewService builds Service. audit, idem and cache are optional.
func NewService(repo RepositoryPort, audit AuditPort, idem IdempotencyPort, cache CacheInvalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, idempotency: idem, cache: cache, logger: logger, now: time.Now}
}

// UpdateInput is a stock movement request.
type UpdateInput struct {
	Company        string
	Form           validation.StockUpdateForm
	ActorID        int64
	IdempotencyKey string
}

// Update validates the stock form and posts the movement under a row lock.
func (s *Service) Update(ctx context.Context, input UpdateInput) (Movement, error) {
	if res := validation.ValidateStockUpdate(input.Form); !res.Valid() {
		return Movement{}, &FormError{Result: res}
	}
	form := input.Form
	mt := MovementType(strings.ToUpper(strings.TrimSpace(form.MovementType)))
	if mt != MovementIn && mt != MovementOut {
		return Movement{}, fmt.Errorf("%w: %w", httpx.ErrValidation, ErrInvalidMovement)
	}
	qty, err := wholeQty(form.Qty)
	if err != nil {
		return Movement{}, err
	}

	spare := strings.ToUpper(strings.TrimSpace(form.SpareCode))
	division := strings.ToUpper(strings.TrimSpace(form.Division))
	key := ""
	if input.IdempotencyKey != "" && s.idempotency != nil {
		key = fmt.Sprintf("stock:%s:%s", input.Company, input.IdempotencyKey)
		if err := s.idempotency.CheckAndInsert(ctx, key, "stock"); err != nil {
			return Movement{}, err
		}
	}

	now := s.now().UTC()
	var movement Movement
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		line, err := tx.GetLineForUpdate(ctx, input.Company, spare, division)
		if err != nil && !errors.Is(err, ErrLineNotFound) {
			return err
		}
		if errors.Is(err, ErrLineNotFound) {
			line = Line{Company: input.Company, Division: division, SpareCode: spare}
		}
		change := qty
		if mt == MovementOut {
			change = -qty
		}
		if line.OwnQty+change < 0 {
			return ErrInsufficientStock
		}
		line.OwnQty += change
		line.UpdatedAt = now
		if desc := strings.TrimSpace(form.SpareDescription); desc != "" {
			line.SpareDescription = desc
		}
		if err := tx.UpsertLine(ctx, line); err != nil {
			return err
		}
		movement = Movement{
			ID:           uuid.NewString(),
			Company:      input.Company,
			Division:     division,
			SpareCode:    spare,
			Type:         mt,
			Qty:          qty,
			BalanceAfter: line.OwnQty,
			Remark:       strings.TrimSpace(form.Remark),
			ActorID:      input.ActorID,
			PostedAt:     now,
		}
		return tx.InsertMovement(ctx, movement)
	})
	if err != nil {
		if key != "" {
			_ = s.idempotency.Delete(ctx, key)
		}
		return Movement{}, err
	}
	s.afterWrite(ctx, input.ActorID, "stock:"+strings.ToLower(strings.ReplaceAll(string(mt), " ", "_")), movement.ID, map[string]any{
		"company":    input.Company,
		"spare_code": spare,
		"division":   division,
		"qty":        qty,
	})
	return movement, nil
}

// CreateIndent validates the indent form and stores the indent.
func (s *Service) CreateIndent(ctx context.Context, company string, form validation.IndentForm, actorID int64) (Indent, error) {
	if res := validation.ValidateIndentCreate(form); !res.Valid() {
		return Indent{}, &FormError{Result: res}
	}
	qty, err := wholeQty(form.IndentQty)
	if err != nil {
		return Indent{}, err
	}
	orderDate, err := parseOrderDate(form.OrderDate)
	if err != nil {
		return Indent{}, err
	}
	indent := Indent{
		Company:     company,
		SpareCode:   strings.ToUpper(strings.TrimSpace(form.SpareCode)),
		Qty:         qty,
		PartyName:   strings.TrimSpace(form.PartyName),
		OrderNumber: strings.TrimSpace(form.OrderNumber),
		OrderDate:   orderDate,
		Remark:      strings.TrimSpace(form.Remark),
		CreatedBy:   actorID,
		CreatedAt:   s.now().UTC(),
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		seq, err := tx.NextIndentNumber(ctx)
		if err != nil {
			return err
		}
		indent.IndentNumber = fmt.Sprintf("IND%06d", seq)
		return tx.InsertIndent(ctx, indent)
	})
	if err != nil {
		return Indent{}, err
	}
	s.afterWrite(ctx, actorID, "stock:indent", indent.IndentNumber, map[string]any{
		"company":    company,
		"spare_code": indent.SpareCode,
		"qty":        qty,
	})
	return indent, nil
}

// Card returns the spare's stock lines and latest movements.
func (s *Service) Card(ctx context.Context, company, spareCode string) (Card, error) {
	spare := strings.ToUpper(strings.TrimSpace(spareCode))
	if spare == "" {
		return Card{}, fmt.Errorf("%w: spare code required", httpx.ErrValidation)
	}
	lines, err := s.repo.LinesBySpare(ctx, company, spare)
	if err != nil {
		return Card{}, err
	}
	if len(lines) == 0 {
		return Card{}, ErrLineNotFound
	}
	movements, err := s.repo.RecentMovements(ctx, company, spare, recentMovements)
	if err != nil {
		return Card{}, err
	}
	if movements == nil {
		movements = []Movement{}
	}
	return Card{SpareCode: spare, Lines: lines, Movements: movements}, nil
}

func (s *Service) afterWrite(ctx context.Context, actorID int64, action, entityID string, meta map[string]any) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.WarnContext(ctx, "stock cache invalidate", slog.Any("error", err))
		}
	}
	if s.audit != nil {
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   action,
			Entity:   shared.AuditEntityStock,
			EntityID: entityID,
			Meta:     meta,
		}); err != nil {
			s.logger.WarnContext(ctx, "stock audit", slog.Any("error", err))
		}
	}
}

// wholeQty reads a validated positive quantity; spares move in units.
func wholeQty(raw string) (int, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %w", httpx.ErrValidation, ErrInvalidQuantity)
	}
	return int(v), nil
}

var orderDateLayouts = []string{"2006-01-02", "02-01-2006", time.RFC3339}

func parseOrderDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid order date %q", httpx.ErrValidation, raw)
}
