package grc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/servicedesk/servicedesk/internal/platform/httpx"
	"github.com/servicedesk/servicedesk/internal/shared"
	"github.com/servicedesk/servicedesk/internal/validation"
)

const defaultEnquiryLimit = 100

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	NotReceivedGRCNumbers(ctx context.Context) ([]int64, error)
	NotReceivedLines(ctx context.Context, grcNumber int64) ([]Line, error)
	OpenLinesByDivision(ctx context.Context, division string) ([]Line, error)
	LastChallanNumber(ctx context.Context) (string, error)
	Enquiry(ctx context.Context, filter EnquiryFilter) ([]EnquiryRecord, int, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CacheInvalidator drops cached views that read GRC lines.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// UploadObserver is told how many rows each upload inserted and updated.
type UploadObserver interface {
	ObserveGRCUpload(inserted, updated int)
}

// Service coordinates GRC operations.
type Service struct {
	uploads  UploadObserver
	repo     RepositoryPort
	audit    AuditPort
	cache    CacheInvalidator
	renderer PDFRenderer
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds Service. audit, cache and renderer are optional.
func NewService(repo RepositoryPort, audit AuditPort, cache CacheInvalidator, renderer PDFRenderer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		audit:    audit,
		cache:    cache,
		renderer: renderer,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// ObserveUploads registers o to receive upload counts.
func (s *Service) ObserveUploads(o UploadObserver) {
	s.uploads = o
}

// Upload replaces the open GRC set with the CSV content. Every existing line
// is closed first; uploaded lines are inserted or refreshed and reopened.
func (s *Service) Upload(ctx context.Context, r io.Reader, actorID int64) (UploadResult, error) {
	rows, err := ParseUpload(r)
	if err != nil {
		return UploadResult{}, err
	}
	result := UploadResult{BatchID: uuid.NewString()}
	if len(rows) == 0 {
		return result, nil
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.CloseAll(ctx); err != nil {
			return err
		}
		for _, row := range rows {
			inserted, err := tx.UpsertUploadRow(ctx, row)
			if err != nil {
				return fmt.Errorf("grc: upsert %s/%d: %w", row.SpareCode, row.GRCNumber, err)
			}
			if inserted {
				result.Inserted++
			} else {
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return UploadResult{}, err
	}
	if s.uploads != nil {
		s.uploads.ObserveGRCUpload(result.Inserted, result.Updated)
	}
	s.afterWrite(ctx, actorID, "grc:upload", result.BatchID, map[string]any{
		"inserted": result.Inserted,
		"updated":  result.Updated,
	})
	return result, nil
}

// NotReceivedGRCNumbers lists GRC numbers awaiting receipt.
func (s *Service) NotReceivedGRCNumbers(ctx context.Context) ([]int64, error) {
	return s.repo.NotReceivedGRCNumbers(ctx)
}

// NotReceivedLines lists the receive lines of one GRC.
func (s *Service) NotReceivedLines(ctx context.Context, grcNumber int64) ([]Line, error) {
	if grcNumber <= 0 {
		return nil, fmt.Errorf("grc: invalid grc number %d: %w", grcNumber, httpx.ErrValidation)
	}
	return s.repo.NotReceivedLines(ctx, grcNumber)
}

// Receive records the receipt of GRC lines. Issue quantities are taken from
// the stored lines; the whole batch is rejected with a *ReceiveRejection when
// reconciliation fails. Lines received short of their issue get a dispute row.
func (s *Service) Receive(ctx context.Context, lines []ReceiveLine, actorID int64) error {
	if len(lines) == 0 {
		return &ReceiveRejection{Notice: *ValidateReceive(lines)}
	}
	if err := rejectDuplicates(len(lines), func(i int) (string, int64) { return lines[i].SpareCode, lines[i].GRCNumber }); err != nil {
		return err
	}
	checked := make([]ReceiveLine, len(lines))
	copy(checked, lines)
	today := s.today()
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		stored := make([]Line, len(checked))
		for i := range checked {
			line, err := tx.GetLineForUpdate(ctx, checked[i].SpareCode, checked[i].GRCNumber)
			if err != nil {
				return fmt.Errorf("grc: load %s/%d: %w", checked[i].SpareCode, checked[i].GRCNumber, err)
			}
			stored[i] = line
			checked[i].IssueQty = line.IssueQty
		}
		if notice := ValidateReceive(checked); notice != nil {
			return &ReceiveRejection{Notice: *notice}
		}
		for i, l := range checked {
			if err := tx.UpdateReceive(ctx, l, today); err != nil {
				return err
			}
			if l.IssueQty == l.ReceiveQty {
				continue
			}
			src := stored[i]
			if err := tx.InsertDispute(ctx, Dispute{
				Company:          src.Company,
				SpareCode:        l.SpareCode,
				Division:         src.Division,
				GRCNumber:        l.GRCNumber,
				GRCDate:          src.GRCDate,
				SpareDescription: src.SpareDescription,
				IssueQty:         src.IssueQty,
				GRCPendingQty:    src.GRCPendingQty,
				ReceiveQty:       l.ReceiveQty,
				DamagedQty:       l.DamagedQty,
				ShortQty:         l.ShortQty,
				AltSpareQty:      l.AltSpareQty,
				AltSpareCode:     l.AltSpareCode,
				DisputeRemark:    l.DisputeRemark,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.afterWrite(ctx, actorID, "grc:receive", fmt.Sprintf("%d", checked[0].GRCNumber), map[string]any{"lines": len(checked)})
	return nil
}

// OpenLines lists lines of a division that are still open for return.
func (s *Service) OpenLines(ctx context.Context, division string) ([]Line, error) {
	if division == "" {
		return nil, fmt.Errorf("grc: division required: %w", httpx.ErrValidation)
	}
	return s.repo.OpenLinesByDivision(ctx, division)
}

// SaveReturn stores draft return quantities. Drafts naming unknown lines are
// skipped. Drafts exceeding the pending quantity reject the batch with a
// *QuantityError indexed against drafts.
func (s *Service) SaveReturn(ctx context.Context, drafts []ReturnDraft, actorID int64) (int, error) {
	for i := range drafts {
		if err := s.validate.Struct(drafts[i]); err != nil {
			return 0, fmt.Errorf("grc: draft %d: %w", i, err)
		}
	}
	if err := rejectDuplicates(len(drafts), func(i int) (string, int64) { return drafts[i].SpareCode, drafts[i].GRCNumber }); err != nil {
		return 0, err
	}
	saved := 0
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var (
			lines   []ReturnLine
			indices []int
			keep    []ReturnDraft
		)
		for i, d := range drafts {
			stored, err := tx.GetLineForUpdate(ctx, d.SpareCode, d.GRCNumber)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			lines = append(lines, ReturnLine{SpareCode: d.SpareCode, GRCNumber: d.GRCNumber, GoodQty: d.GoodQty, DefectiveQty: d.DefectiveQty, ActualPendingQty: stored.ActualPendingQty})
			indices = append(indices, i)
			keep = append(keep, d)
		}
		if err := checkBound(lines, indices); err != nil {
			return err
		}
		for _, d := range keep {
			if err := tx.SaveDraft(ctx, d); err != nil {
				return err
			}
		}
		saved = len(keep)
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.afterWrite(ctx, actorID, "grc:return_draft", uuid.NewString(), map[string]any{"lines": saved})
	return saved, nil
}

// FinalizeReturn dispatches return lines under a challan. Returned and pending
// quantities move by good+defective, draft quantities are cleared and a history
// row is written for every line that actually returns something.
func (s *Service) FinalizeReturn(ctx context.Context, req FinalizeRequest, actorID int64, username string) (FinalizeResult, error) {
	form := validation.ValidateGRCReturn(validation.GRCReturnForm{
		ActionType:   validation.ActionFinalize,
		SentThrough:  req.SentThrough,
		DocketNumber: req.DocketNumber,
	})
	if !form.Valid() {
		return FinalizeResult{}, &FormError{Result: form}
	}
	if err := s.validate.Struct(req); err != nil {
		return FinalizeResult{}, fmt.Errorf("grc: finalize request: %w", err)
	}
	if err := rejectDuplicates(len(req.Rows), func(i int) (string, int64) { return req.Rows[i].SpareCode, req.Rows[i].GRCNumber }); err != nil {
		return FinalizeResult{}, err
	}
	result := FinalizeResult{ChallanNumber: req.ChallanNumber}
	today := s.today()
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var (
			stored  []Line
			lines   []ReturnLine
			indices []int
		)
		for i, row := range req.Rows {
			line, err := tx.GetLineForUpdate(ctx, row.SpareCode, row.GRCNumber)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			stored = append(stored, line)
			lines = append(lines, ReturnLine{SpareCode: row.SpareCode, GRCNumber: row.GRCNumber, GoodQty: row.GoodQty, DefectiveQty: row.DefectiveQty, ActualPendingQty: line.ActualPendingQty})
			indices = append(indices, i)
		}
		if err := checkBound(lines, indices); err != nil {
			return err
		}
		for i, line := range stored {
			returning := lines[i].Returning()
			if returning > 0 {
				if err := tx.InsertHistory(ctx, HistoryEntry{
					Company:          line.Company,
					Division:         req.Division,
					SpareCode:        line.SpareCode,
					SpareDescription: line.SpareDescription,
					GRCNumber:        line.GRCNumber,
					GRCDate:          line.GRCDate,
					IssueQty:         line.IssueQty,
					GRCPendingQty:    line.GRCPendingQty,
					GoodQty:          lines[i].GoodQty,
					DefectiveQty:     lines[i].DefectiveQty,
					ReturningQty:     returning,
					ChallanNumber:    req.ChallanNumber,
					ChallanDate:      &today,
					DocketNumber:     req.DocketNumber,
					SentThrough:      req.SentThrough,
					DisputeRemark:    line.DisputeRemark,
					ChallanBy:        username,
				}); err != nil {
					return err
				}
			}
			line.ReturningQty = returning
			line.ReturnedQty += returning
			line.ActualPendingQty -= returning
			line.GoodQty = 0
			line.DefectiveQty = 0
			line.ChallanNumber = req.ChallanNumber
			line.ChallanDate = &today
			line.SentThrough = req.SentThrough
			line.DocketNumber = req.DocketNumber
			line.ChallanBy = username
			if err := tx.ApplyReturn(ctx, line); err != nil {
				return err
			}
			result.Lines++
			result.Returned += returning
		}
		return nil
	})
	if err != nil {
		return FinalizeResult{}, err
	}
	s.afterWrite(ctx, actorID, "grc:return_finalize", req.ChallanNumber, map[string]any{
		"division": req.Division,
		"lines":    result.Lines,
		"returned": result.Returned,
	})
	return result, nil
}

// NextChallanNumber proposes the challan number for the next dispatch.
func (s *Service) NextChallanNumber(ctx context.Context) (string, error) {
	last, err := s.repo.LastChallanNumber(ctx)
	if err != nil {
		return "", err
	}
	return NextChallanCode(last)
}

// Enquiry lists open lines or return history matching filter.
func (s *Service) Enquiry(ctx context.Context, filter EnquiryFilter) (EnquiryPage, error) {
	filter.ChallanNumber = NormalizeChallanNumber(filter.ChallanNumber)
	if filter.Limit <= 0 {
		filter.Limit = defaultEnquiryLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	records, total, err := s.repo.Enquiry(ctx, filter)
	if err != nil {
		return EnquiryPage{}, err
	}
	return EnquiryPage{Records: records, TotalRecords: total}, nil
}

// ChallanPDF renders a printable challan of the given report type.
func (s *Service) ChallanPDF(ctx context.Context, reportType string, doc ChallanDocument, username string) ([]byte, error) {
	if err := s.validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("grc: challan: %w", err)
	}
	doc.PreparedBy = username
	doc.Date = s.now()
	html, err := RenderChallanHTML(doc, reportType)
	if err != nil {
		return nil, err
	}
	if s.renderer == nil {
		return nil, errors.New("grc: pdf renderer not configured")
	}
	return s.renderer.RenderHTML(ctx, html)
}

func (s *Service) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Service) afterWrite(ctx context.Context, actorID int64, action, entityID string, meta map[string]any) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.WarnContext(ctx, "grc: dashboard invalidate failed", slog.Any("error", err))
		}
	}
	if s.audit != nil {
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   action,
			Entity:   shared.AuditEntityGRC,
			EntityID: entityID,
			Meta:     meta,
		}); err != nil {
			s.logger.WarnContext(ctx, "grc: audit failed", slog.Any("error", err))
		}
	}
}

// rejectDuplicates fails when two of the n rows share a spare code and GRC
// number. Every row is checked against the stored line, so a repeated key would
// be bound-checked twice against the same pending quantity.
func rejectDuplicates(n int, key func(int) (string, int64)) error {
	type spareKey struct {
		code string
		grc  int64
	}
	seen := make(map[spareKey]struct{}, n)
	for i := 0; i < n; i++ {
		code, grc := key(i)
		k := spareKey{code, grc}
		if _, ok := seen[k]; ok {
			return fmt.Errorf("%w: %s/%d: %w", ErrDuplicateLine, code, grc, httpx.ErrValidation)
		}
		seen[k] = struct{}{}
	}
	return nil
}

func checkBound(lines []ReturnLine, indices []int) error {
	res := CheckUpperBound(lines)
	if res.Valid {
		return nil
	}
	mapped := make([]int, len(res.FailingIndices))
	for i, idx := range res.FailingIndices {
		mapped[i] = indices[idx]
	}
	res.FailingIndices = mapped
	return &QuantityError{Result: res}
}
