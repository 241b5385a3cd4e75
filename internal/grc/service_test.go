package grc

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/servicedesk/servicedesk/internal/platform/httpx"
	"github.com/servicedesk/servicedesk/internal/shared"
)

type lineKey struct {
	spare string
	grc   int64
}

type memoryRepo struct {
	lines    map[lineKey]Line
	disputes map[lineKey]Dispute
	history  []HistoryEntry
	drafts   []ReturnDraft
	enquiry  EnquiryFilter
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo(lines ...Line) *memoryRepo {
	repo := &memoryRepo{lines: map[lineKey]Line{}, disputes: map[lineKey]Dispute{}}
	for _, l := range lines {
		if l.Status == "" {
			l.Status = StatusOpen
		}
		if l.Company == "" {
			l.Company = "CGCEL"
		}
		repo.lines[lineKey{l.SpareCode, l.GRCNumber}] = l
	}
	return repo
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	lines := maps.Clone(r.lines)
	disputes := maps.Clone(r.disputes)
	history := slices.Clone(r.history)
	drafts := slices.Clone(r.drafts)
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.lines, r.disputes, r.history, r.drafts = lines, disputes, history, drafts
		return err
	}
	return nil
}

func (r *memoryRepo) NotReceivedGRCNumbers(context.Context) ([]int64, error) {
	seen := map[int64]struct{}{}
	for _, l := range r.lines {
		if l.ReceiveDate == nil {
			seen[l.GRCNumber] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen)), nil
}

func (r *memoryRepo) NotReceivedLines(_ context.Context, grcNumber int64) ([]Line, error) {
	var out []Line
	for _, l := range r.lines {
		if l.GRCNumber == grcNumber && l.ReceiveDate == nil {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memoryRepo) OpenLinesByDivision(_ context.Context, division string) ([]Line, error) {
	var out []Line
	for _, l := range r.lines {
		if l.Division == division && l.Status == StatusOpen {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memoryRepo) LastChallanNumber(context.Context) (string, error) {
	last := ""
	for _, h := range r.history {
		if h.ChallanNumber > last {
			last = h.ChallanNumber
		}
	}
	return last, nil
}

func (r *memoryRepo) Enquiry(_ context.Context, filter EnquiryFilter) ([]EnquiryRecord, int, error) {
	r.enquiry = filter
	var out []EnquiryRecord
	for _, h := range r.history {
		if filter.ChallanNumber != "" && h.ChallanNumber != filter.ChallanNumber {
			continue
		}
		out = append(out, EnquiryRecord{SpareCode: h.SpareCode, GRCNumber: h.GRCNumber, ChallanNumber: h.ChallanNumber, ReturningQty: h.ReturningQty})
	}
	total := len(out)
	if filter.Offset >= len(out) {
		return []EnquiryRecord{}, total, nil
	}
	out = out[filter.Offset:]
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (tx *memoryTx) CloseAll(context.Context) error {
	for k, l := range tx.repo.lines {
		l.Status = StatusClosed
		tx.repo.lines[k] = l
	}
	return nil
}

func (tx *memoryTx) UpsertUploadRow(_ context.Context, row UploadRow) (bool, error) {
	k := lineKey{row.SpareCode, row.GRCNumber}
	l, exists := tx.repo.lines[k]
	l.Company = "CGCEL"
	l.SpareCode = row.SpareCode
	l.GRCNumber = row.GRCNumber
	l.Division = row.Division
	l.SpareDescription = row.SpareDescription
	l.GRCDate = row.GRCDate
	l.IssueQty = row.IssueQty
	l.GRCPendingQty = row.GRCPendingQty
	l.ActualPendingQty = row.GRCPendingQty - l.ReturnedQty
	l.Status = StatusOpen
	tx.repo.lines[k] = l
	return !exists, nil
}

func (tx *memoryTx) GetLineForUpdate(_ context.Context, spareCode string, grcNumber int64) (Line, error) {
	l, ok := tx.repo.lines[lineKey{spareCode, grcNumber}]
	if !ok {
		return Line{}, ErrNotFound
	}
	return l, nil
}

func (tx *memoryTx) UpdateReceive(_ context.Context, in ReceiveLine, at time.Time) error {
	k := lineKey{in.SpareCode, in.GRCNumber}
	l := tx.repo.lines[k]
	l.ReceiveQty, l.DamagedQty, l.ShortQty, l.AltSpareQty = in.ReceiveQty, in.DamagedQty, in.ShortQty, in.AltSpareQty
	l.AltSpareCode, l.DisputeRemark = in.AltSpareCode, in.DisputeRemark
	l.ReceiveDate = &at
	tx.repo.lines[k] = l
	return nil
}

func (tx *memoryTx) InsertDispute(_ context.Context, d Dispute) error {
	tx.repo.disputes[lineKey{d.SpareCode, d.GRCNumber}] = d
	return nil
}

func (tx *memoryTx) SaveDraft(_ context.Context, d ReturnDraft) error {
	k := lineKey{d.SpareCode, d.GRCNumber}
	l := tx.repo.lines[k]
	l.GoodQty, l.DefectiveQty = d.GoodQty, d.DefectiveQty
	tx.repo.lines[k] = l
	tx.repo.drafts = append(tx.repo.drafts, d)
	return nil
}

func (tx *memoryTx) ApplyReturn(_ context.Context, l Line) error {
	tx.repo.lines[lineKey{l.SpareCode, l.GRCNumber}] = l
	return nil
}

func (tx *memoryTx) InsertHistory(_ context.Context, h HistoryEntry) error {
	tx.repo.history = append(tx.repo.history, h)
	return nil
}

type auditStub struct {
	actions []string
}

func (a *auditStub) Record(_ context.Context, log shared.AuditLog) error {
	a.actions = append(a.actions, log.Action)
	return nil
}

type invalidatorStub struct {
	calls int
}

func (i *invalidatorStub) Invalidate(context.Context) error {
	i.calls++
	return nil
}

type rendererStub struct {
	html string
}

func (r *rendererStub) RenderHTML(_ context.Context, html string) ([]byte, error) {
	r.html = html
	return []byte("%PDF-1.7"), nil
}

type uploadCounter struct{ counts [2]int }

func (u *uploadCounter) ObserveGRCUpload(inserted, updated int) {
	u.counts[0] += inserted
	u.counts[1] += updated
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
}

func newTestService(repo *memoryRepo) (*Service, *auditStub, *invalidatorStub) {
	audit := &auditStub{}
	cache := &invalidatorStub{}
	svc := NewService(repo, audit, cache, &rendererStub{}, nil)
	svc.now = fixedNow
	return svc, audit, cache
}

func TestUploadInsertsUpdatesAndReopens(t *testing.T) {
	repo := newMemoryRepo(
		Line{SpareCode: "SP-1", GRCNumber: 100, Division: "FANS", IssueQty: 1, GRCPendingQty: 1, ActualPendingQty: 1},
		Line{SpareCode: "SP-OLD", GRCNumber: 90, Division: "FANS", IssueQty: 1, GRCPendingQty: 1, ActualPendingQty: 1},
	)
	svc, audit, cache := newTestService(repo)
	uploads := &uploadCounter{}
	svc.ObserveUploads(uploads)

	csv := "\ufeffSpare_Code, Division ,spare_description,grc_number,grc_date,issue_qty,grc_pending_qty\n" +
		"sp-1,fans,motor,100,2024-03-01,4,4\n" +
		"sp-2,pumps,impeller,101,01-03-2024,2,2\n"
	res, err := svc.Upload(context.Background(), strings.NewReader(csv), 7)
	require.NoError(t, err)
	require.Equal(t, 1, res.Inserted)
	require.Equal(t, 1, res.Updated)
	require.NotEmpty(t, res.BatchID)

	require.Equal(t, StatusClosed, repo.lines[lineKey{"SP-OLD", 90}].Status)
	updated := repo.lines[lineKey{"SP-1", 100}]
	require.Equal(t, StatusOpen, updated.Status)
	require.Equal(t, 4, updated.IssueQty)
	require.Equal(t, "MOTOR", updated.SpareDescription)
	inserted := repo.lines[lineKey{"SP-2", 101}]
	require.Equal(t, "PUMPS", inserted.Division)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), inserted.GRCDate)

	require.Equal(t, []string{"grc:upload"}, audit.actions)
	require.Equal(t, 1, cache.calls)
	require.Equal(t, [2]int{1, 1}, uploads.counts)
}

func TestUploadRejectsInvalidRow(t *testing.T) {
	repo := newMemoryRepo(Line{SpareCode: "SP-1", GRCNumber: 100})
	svc, _, cache := newTestService(repo)

	csv := "spare_code,division,spare_description,grc_number,grc_date,issue_qty,grc_pending_qty\n" +
		"sp-9,,motor,100,2024-03-01,4,4\n"
	_, err := svc.Upload(context.Background(), strings.NewReader(csv), 7)
	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	require.Equal(t, "sp-9", uploadErr.SpareCode)
	require.Equal(t, 2, uploadErr.Line)
	require.Equal(t, StatusOpen, repo.lines[lineKey{"SP-1", 100}].Status)
	require.Zero(t, cache.calls)
}

func TestUploadWithoutRowsLeavesLinesOpen(t *testing.T) {
	repo := newMemoryRepo(Line{SpareCode: "SP-1", GRCNumber: 100})
	svc, _, _ := newTestService(repo)

	res, err := svc.Upload(context.Background(), strings.NewReader("spare_code,division\n"), 7)
	require.NoError(t, err)
	require.Zero(t, res.Inserted+res.Updated)
	require.Equal(t, StatusOpen, repo.lines[lineKey{"SP-1", 100}].Status)

	_, err = svc.Upload(context.Background(), strings.NewReader(""), 7)
	require.ErrorIs(t, err, ErrEmptyUpload)
}

func TestReceiveUsesStoredIssueQuantity(t *testing.T) {
	repo := newMemoryRepo(Line{SpareCode: "SP-1", GRCNumber: 100, Division: "FANS", IssueQty: 5})
	svc, _, _ := newTestService(repo)

	// client claims issue 3 but the GRC issued 5
	err := svc.Receive(context.Background(), []ReceiveLine{{SpareCode: "SP-1", GRCNumber: 100, IssueQty: 3, ReceiveQty: 3}}, 7)
	var rejection *ReceiveRejection
	require.ErrorAs(t, err, &rejection)
	require.ErrorIs(t, err, ErrReceiveRejected)
	require.Equal(t, "Quantity mismatch for SP-1", rejection.Notice.Message)
	require.Nil(t, repo.lines[lineKey{"SP-1", 100}].ReceiveDate)
}

func TestReceiveRejectsEmptyBatch(t *testing.T) {
	svc, _, _ := newTestService(newMemoryRepo())
	err := svc.Receive(context.Background(), nil, 7)
	var rejection *ReceiveRejection
	require.ErrorAs(t, err, &rejection)
	require.Equal(t, "No records to update.", rejection.Notice.Message)
	require.Equal(t, NoticeWarning, rejection.Notice.Type)
}

func TestReceiveRejectsMissingAltSpareDetails(t *testing.T) {
	repo := newMemoryRepo(Line{SpareCode: "SP-1", GRCNumber: 100, IssueQty: 5})
	svc, _, _ := newTestService(repo)
	err := svc.Receive(context.Background(), []ReceiveLine{{SpareCode: "SP-1", GRCNumber: 100, ReceiveQty: 3, AltSpareQty: 2}}, 7)
	var rejection *ReceiveRejection
	require.ErrorAs(t, err, &rejection)
	require.Equal(t, "Details missing for : SP-1", rejection.Notice.Message)
}

func TestReceiveRecordsDisputes(t *testing.T) {
	repo := newMemoryRepo(
		Line{SpareCode: "SP-1", GRCNumber: 100, Division: "FANS", IssueQty: 5, SpareDescription: "MOTOR"},
		Line{SpareCode: "SP-2", GRCNumber: 100, Division: "FANS", IssueQty: 2},
	)
	svc, audit, cache := newTestService(repo)

	err := svc.Receive(context.Background(), []ReceiveLine{
		{SpareCode: "SP-1", GRCNumber: 100, ReceiveQty: 3, DamagedQty: 1, ShortQty: 1, DisputeRemark: "BOX TORN"},
		{SpareCode: "SP-2", GRCNumber: 100, ReceiveQty: 2},
	}, 7)
	require.NoError(t, err)

	received := repo.lines[lineKey{"SP-1", 100}]
	require.NotNil(t, received.ReceiveDate)
	require.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *received.ReceiveDate)
	require.Equal(t, 3, received.ReceiveQty)

	require.Len(t, repo.disputes, 1)
	dispute := repo.disputes[lineKey{"SP-1", 100}]
	require.Equal(t, 5, dispute.IssueQty)
	require.Equal(t, "MOTOR", dispute.SpareDescription)
	require.Equal(t, "BOX TORN", dispute.DisputeRemark)

	numbers, err := svc.NotReceivedGRCNumbers(context.Background())
	require.NoError(t, err)
	require.Empty(t, numbers)
	require.Equal(t, []string{"grc:receive"}, audit.actions)
	require.Equal(t, 1, cache.calls)
}

func TestReceiveUnknownLine(t *testing.T) {
	svc, _, _ := newTestService(newMemoryRepo())
	err := svc.Receive(context.Background(), []ReceiveLine{{SpareCode: "NOPE", GRCNumber: 1, ReceiveQty: 1}}, 7)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSaveReturnChecksPendingAndSkipsUnknown(t *testing.T) {
	repo := newMemoryRepo(
		Line{SpareCode: "SP-1", GRCNumber: 100, ActualPendingQty: 2},
		Line{SpareCode: "SP-2", GRCNumber: 100, ActualPendingQty: 5},
	)
	svc, _, _ := newTestService(repo)

	_, err := svc.SaveReturn(context.Background(), []ReturnDraft{
		{SpareCode: "GONE", GRCNumber: 1, GoodQty: 9},
		{SpareCode: "SP-1", GRCNumber: 100, GoodQty: 2, DefectiveQty: 1},
		{SpareCode: "SP-2", GRCNumber: 100, GoodQty: 5},
	}, 7)
	var qtyErr *QuantityError
	require.ErrorAs(t, err, &qtyErr)
	require.Equal(t, []int{1}, qtyErr.Result.FailingIndices)
	require.Empty(t, repo.drafts)

	saved, err := svc.SaveReturn(context.Background(), []ReturnDraft{
		{SpareCode: "GONE", GRCNumber: 1, GoodQty: 9},
		{SpareCode: "SP-1", GRCNumber: 100, GoodQty: 1, DefectiveQty: 1},
	}, 7)
	require.NoError(t, err)
	require.Equal(t, 1, saved)
	require.Equal(t, 1, repo.lines[lineKey{"SP-1", 100}].GoodQty)
}

func TestFinalizeReturnRequiresDispatchDetails(t *testing.T) {
	svc, _, _ := newTestService(newMemoryRepo())
	_, err := svc.FinalizeReturn(context.Background(), FinalizeRequest{
		ChallanNumber: "G00001",
		Division:      "FANS",
		Rows:          []FinalizeRow{{SpareCode: "SP-1", GRCNumber: 100, GoodQty: 1}},
	}, 7, "desk")
	var formErr *FormError
	require.ErrorAs(t, err, &formErr)
	require.Equal(t, []string{"Returned Through is required", "Consignment No. is required"}, formErr.Result.Errors)
	require.True(t, formErr.Result.Has("sent_through"))
	require.True(t, formErr.Result.Has("docket_number"))
}

func TestFinalizeReturnRejectsOverReturn(t *testing.T) {
	repo := newMemoryRepo(Line{SpareCode: "SP-1", GRCNumber: 100, ActualPendingQty: 1})
	svc, _, _ := newTestService(repo)
	_, err := svc.FinalizeReturn(context.Background(), FinalizeRequest{
		ChallanNumber: "G00001",
		Division:      "FANS",
		SentThrough:   "COURIER",
		DocketNumber:  "D123",
		Rows:          []FinalizeRow{{SpareCode: "SP-1", GRCNumber: 100, GoodQty: 1, DefectiveQty: 1}},
	}, 7, "desk")
	var qtyErr *QuantityError
	require.ErrorAs(t, err, &qtyErr)
	require.Equal(t, "Quantity mismatch.", qtyErr.Result.Message)
	require.Empty(t, repo.history)
}

func TestFinalizeReturnMovesQuantities(t *testing.T) {
	repo := newMemoryRepo(
		Line{SpareCode: "SP-1", GRCNumber: 100, Division: "FANS", IssueQty: 6, GRCPendingQty: 6, ActualPendingQty: 6, ReturnedQty: 0, GoodQty: 2, DefectiveQty: 1, DisputeRemark: "LATE"},
		Line{SpareCode: "SP-2", GRCNumber: 101, Division: "FANS", IssueQty: 3, GRCPendingQty: 3, ActualPendingQty: 3},
	)
	svc, audit, cache := newTestService(repo)

	res, err := svc.FinalizeReturn(context.Background(), FinalizeRequest{
		ActionType:    "Finalize",
		ChallanNumber: "G00007",
		Division:      "FANS",
		SentThrough:   "COURIER",
		DocketNumber:  "D123",
		Rows: []FinalizeRow{
			{SpareCode: "SP-1", GRCNumber: 100, GoodQty: 2, DefectiveQty: 1},
			{SpareCode: "SP-2", GRCNumber: 101},
		},
	}, 7, "desk")
	require.NoError(t, err)
	require.Equal(t, FinalizeResult{ChallanNumber: "G00007", Lines: 2, Returned: 3}, res)

	one := repo.lines[lineKey{"SP-1", 100}]
	require.Equal(t, 3, one.ReturningQty)
	require.Equal(t, 3, one.ReturnedQty)
	require.Equal(t, 3, one.ActualPendingQty)
	require.Zero(t, one.GoodQty)
	require.Zero(t, one.DefectiveQty)
	require.Equal(t, "G00007", one.ChallanNumber)
	require.Equal(t, "desk", one.ChallanBy)
	require.Equal(t, "D123", one.DocketNumber)

	two := repo.lines[lineKey{"SP-2", 101}]
	require.Equal(t, 3, two.ActualPendingQty)
	require.Equal(t, "G00007", two.ChallanNumber)

	require.Len(t, repo.history, 1)
	entry := repo.history[0]
	require.Equal(t, "SP-1", entry.SpareCode)
	require.Equal(t, 3, entry.ReturningQty)
	require.Equal(t, "LATE", entry.DisputeRemark)
	require.Equal(t, "desk", entry.ChallanBy)

	next, err := svc.NextChallanNumber(context.Background())
	require.NoError(t, err)
	require.Equal(t, "G00008", next)

	require.Equal(t, []string{"grc:return_finalize"}, audit.actions)
	require.Equal(t, 1, cache.calls)
}

func TestFinalizeReturnRejectsRepeatedLine(t *testing.T) {
	repo := newMemoryRepo(Line{SpareCode: "SP-1", GRCNumber: 100, Division: "FANS", IssueQty: 5, GRCPendingQty: 5, ActualPendingQty: 5})
	svc, audit, _ := newTestService(repo)
	before := repo.lines[lineKey{"SP-1", 100}]

	// each row fits the pending 5 on its own, together they return 8
	_, err := svc.FinalizeReturn(context.Background(), FinalizeRequest{
		ChallanNumber: "G00001",
		Division:      "FANS",
		SentThrough:   "COURIER",
		DocketNumber:  "D123",
		Rows: []FinalizeRow{
			{SpareCode: "SP-1", GRCNumber: 100, GoodQty: 4},
			{SpareCode: "SP-1", GRCNumber: 100, GoodQty: 4},
		},
	}, 7, "desk")
	require.ErrorIs(t, err, ErrDuplicateLine)
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, repo.history)
	require.Equal(t, before, repo.lines[lineKey{"SP-1", 100}])
	require.Empty(t, audit.actions)
}

func TestSaveReturnRejectsRepeatedLine(t *testing.T) {
	repo := newMemoryRepo(Line{SpareCode: "SP-1", GRCNumber: 100, ActualPendingQty: 5})
	svc, _, _ := newTestService(repo)

	_, err := svc.SaveReturn(context.Background(), []ReturnDraft{
		{SpareCode: "SP-1", GRCNumber: 100, GoodQty: 4},
		{SpareCode: "SP-1", GRCNumber: 100, DefectiveQty: 4},
	}, 7)
	require.ErrorIs(t, err, ErrDuplicateLine)
	require.Empty(t, repo.drafts)
	require.Zero(t, repo.lines[lineKey{"SP-1", 100}].GoodQty)

	// same spare on another GRC is a different line
	repo.lines[lineKey{"SP-1", 101}] = Line{SpareCode: "SP-1", GRCNumber: 101, ActualPendingQty: 5, Status: StatusOpen, Company: "CGCEL"}
	saved, err := svc.SaveReturn(context.Background(), []ReturnDraft{
		{SpareCode: "SP-1", GRCNumber: 100, GoodQty: 4},
		{SpareCode: "SP-1", GRCNumber: 101, GoodQty: 4},
	}, 7)
	require.NoError(t, err)
	require.Equal(t, 2, saved)
}

func TestReceiveRejectsRepeatedLine(t *testing.T) {
	repo := newMemoryRepo(Line{SpareCode: "SP-1", GRCNumber: 100, Division: "FANS", IssueQty: 5})
	svc, _, cache := newTestService(repo)

	err := svc.Receive(context.Background(), []ReceiveLine{
		{SpareCode: "SP-1", GRCNumber: 100, ReceiveQty: 4, ShortQty: 1},
		{SpareCode: "SP-1", GRCNumber: 100, ReceiveQty: 4, ShortQty: 1},
	}, 7)
	require.ErrorIs(t, err, ErrDuplicateLine)
	require.Empty(t, repo.disputes)
	require.Nil(t, repo.lines[lineKey{"SP-1", 100}].ReceiveDate)
	require.Zero(t, cache.calls)
}

func TestEnquiryNormalizesFilter(t *testing.T) {
	repo := newMemoryRepo()
	for i := 1; i <= 3; i++ {
		repo.history = append(repo.history, HistoryEntry{SpareCode: fmt.Sprintf("SP-%d", i), ChallanNumber: "G00042", ReturningQty: i})
	}
	svc, _, _ := newTestService(repo)

	page, err := svc.Enquiry(context.Background(), EnquiryFilter{ChallanNumber: "42", Offset: -5})
	require.NoError(t, err)
	require.Equal(t, "G00042", repo.enquiry.ChallanNumber)
	require.Equal(t, 100, repo.enquiry.Limit)
	require.Zero(t, repo.enquiry.Offset)
	require.Equal(t, 3, page.TotalRecords)
	require.Len(t, page.Records, 3)
}

func TestExportEnquiryPagesThroughResults(t *testing.T) {
	repo := newMemoryRepo()
	for i := 0; i < exportPageSize+3; i++ {
		repo.history = append(repo.history, HistoryEntry{SpareCode: fmt.Sprintf("SP-%04d", i), ChallanNumber: "G00001"})
	}
	svc, _, _ := newTestService(repo)

	data, err := svc.ExportEnquiry(context.Background(), EnquiryFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, data)
	require.Equal(t, exportPageSize, repo.enquiry.Offset)
}

func TestChallanPDF(t *testing.T) {
	renderer := &rendererStub{}
	svc := NewService(newMemoryRepo(), nil, nil, renderer, nil)
	svc.now = fixedNow
	doc := ChallanDocument{
		ChallanNumber: "G00003",
		Division:      "FANS",
		Rows:          []ChallanItem{{GRCNumber: 100, SpareCode: "SP-1", GoodQty: 2, DefectiveQty: 1}},
	}

	pdf, err := svc.ChallanPDF(context.Background(), ReportDefective, doc, "desk")
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-1.7"), pdf)
	require.Contains(t, renderer.html, "G00003")
	require.Contains(t, renderer.html, "15-03-2024")
	require.Contains(t, renderer.html, "Defective Qty")
	require.Contains(t, renderer.html, "Prepared by: desk")

	_, err = svc.ChallanPDF(context.Background(), "Scrap", doc, "desk")
	require.True(t, errors.Is(err, ErrInvalidReportType))
}
