package grc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servicedesk/servicedesk/internal/platform/db"
)

// TxRepository exposes the writes performed inside one transaction.
type TxRepository interface {
	CloseAll(ctx context.Context) error
	UpsertUploadRow(ctx context.Context, row UploadRow) (bool, error)
	GetLineForUpdate(ctx context.Context, spareCode string, grcNumber int64) (Line, error)
	UpdateReceive(ctx context.Context, line ReceiveLine, at time.Time) error
	InsertDispute(ctx context.Context, d Dispute) error
	SaveDraft(ctx context.Context, d ReturnDraft) error
	ApplyReturn(ctx context.Context, line Line) error
	InsertHistory(ctx context.Context, h HistoryEntry) error
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Repository persists GRC lines of one company in PostgreSQL.
type Repository struct {
	db      dbtx
	pool    *pgxpool.Pool
	company string
}

// NewRepository constructs Repository scoped to company.
func NewRepository(pool *pgxpool.Pool, company string) *Repository {
	return &Repository{db: pool, pool: pool, company: company}
}

// WithTx executes fn inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil || r.pool == nil {
		return errors.New("grc repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &Repository{db: tx, pool: r.pool, company: r.company})
	})
}

const lineColumns = `company, division, spare_code, spare_description, grc_number, grc_date, issue_qty, grc_pending_qty,
COALESCE(receive_qty,0), COALESCE(damaged_qty,0), COALESCE(short_qty,0), COALESCE(alt_spare_qty,0), COALESCE(alt_spare_code,''),
COALESCE(dispute_remark,''), receive_date, COALESCE(good_qty,0), COALESCE(defective_qty,0), COALESCE(returned_qty,0),
COALESCE(returning_qty,0), COALESCE(actual_pending_qty,0), COALESCE(invoice,''), COALESCE(challan_number,''), challan_date,
COALESCE(docket_number,''), COALESCE(sent_through,''), COALESCE(challan_by,''), status`

func scanLine(row pgx.Row) (Line, error) {
	var l Line
	err := row.Scan(&l.Company, &l.Division, &l.SpareCode, &l.SpareDescription, &l.GRCNumber, &l.GRCDate, &l.IssueQty, &l.GRCPendingQty,
		&l.ReceiveQty, &l.DamagedQty, &l.ShortQty, &l.AltSpareQty, &l.AltSpareCode,
		&l.DisputeRemark, &l.ReceiveDate, &l.GoodQty, &l.DefectiveQty, &l.ReturnedQty,
		&l.ReturningQty, &l.ActualPendingQty, &l.Invoice, &l.ChallanNumber, &l.ChallanDate,
		&l.DocketNumber, &l.SentThrough, &l.ChallanBy, &l.Status)
	return l, err
}

func (r *Repository) queryLines(ctx context.Context, sql string, args ...any) ([]Line, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lines := []Line{}
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// NotReceivedGRCNumbers lists GRC numbers with at least one line not yet received.
func (r *Repository) NotReceivedGRCNumbers(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT grc_number FROM grc_lines WHERE company=$1 AND receive_date IS NULL ORDER BY grc_number`, r.company)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []int64{}
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// NotReceivedLines lists the unreceived lines of one GRC.
func (r *Repository) NotReceivedLines(ctx context.Context, grcNumber int64) ([]Line, error) {
	return r.queryLines(ctx, `SELECT `+lineColumns+` FROM grc_lines
WHERE company=$1 AND grc_number=$2 AND receive_date IS NULL ORDER BY spare_code`, r.company, grcNumber)
}

// OpenLinesByDivision lists lines still open for return in a division.
func (r *Repository) OpenLinesByDivision(ctx context.Context, division string) ([]Line, error) {
	return r.queryLines(ctx, `SELECT `+lineColumns+` FROM grc_lines
WHERE company=$1 AND division=$2 AND status=$3 ORDER BY grc_number, spare_code`, r.company, division, StatusOpen)
}

// LastChallanNumber returns the highest challan number issued, or "".
func (r *Repository) LastChallanNumber(ctx context.Context) (string, error) {
	var last string
	err := r.db.QueryRow(ctx, `SELECT challan_number FROM grc_return_history WHERE company=$1 AND challan_number IS NOT NULL
ORDER BY challan_number DESC LIMIT 1`, r.company).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return last, err
}

// Enquiry reads open lines (status N) or the return history and counts matches.
func (r *Repository) Enquiry(ctx context.Context, filter EnquiryFilter) ([]EnquiryRecord, int, error) {
	table := "grc_return_history"
	if filter.Status == StatusOpen {
		table = "grc_lines"
	}
	where, args := enquiryWhere(r.company, filter)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM `+table+` WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT spare_code, spare_description, grc_number, grc_date, issue_qty, grc_pending_qty,
COALESCE(returning_qty,0), COALESCE(dispute_remark,''), COALESCE(challan_number,''), challan_date, COALESCE(docket_number,'')
FROM %s WHERE %s ORDER BY spare_code, grc_number LIMIT $%d OFFSET $%d`, table, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	records := []EnquiryRecord{}
	for rows.Next() {
		var (
			rec         EnquiryRecord
			grcDate     time.Time
			challanDate *time.Time
		)
		if err := rows.Scan(&rec.SpareCode, &rec.SpareDescription, &rec.GRCNumber, &grcDate, &rec.IssueQty, &rec.GRCPendingQty,
			&rec.ReturningQty, &rec.DisputeRemark, &rec.ChallanNumber, &challanDate, &rec.DocketNumber); err != nil {
			return nil, 0, err
		}
		rec.GRCDate = formatDate(&grcDate)
		rec.ChallanDate = formatDate(challanDate)
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func enquiryWhere(company string, f EnquiryFilter) (string, []any) {
	clauses := []string{"company=$1"}
	args := []any{company}
	add := func(clause string, v any) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if f.Division != "" {
		add("division=$%d", f.Division)
	}
	if f.SpareCode != "" {
		add("spare_code ILIKE $%d", f.SpareCode)
	}
	if !f.From.IsZero() {
		add("grc_date >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("grc_date <= $%d", f.To)
	}
	if f.GRCNumber != 0 {
		add("grc_number=$%d", f.GRCNumber)
	}
	if f.ChallanNumber != "" {
		add("challan_number=$%d", f.ChallanNumber)
	}
	return strings.Join(clauses, " AND "), args
}

// CloseAll marks every line of the company as closed ahead of an upload.
func (r *Repository) CloseAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `UPDATE grc_lines SET status=$2 WHERE company=$1`, r.company, StatusClosed)
	return err
}

// UpsertUploadRow inserts or refreshes an uploaded line and reopens it.
// It reports whether the row was new.
func (r *Repository) UpsertUploadRow(ctx context.Context, row UploadRow) (bool, error) {
	var inserted bool
	err := r.db.QueryRow(ctx, `INSERT INTO grc_lines (company, division, spare_code, spare_description, grc_number, grc_date, issue_qty, grc_pending_qty, actual_pending_qty, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8,$9)
ON CONFLICT (company, spare_code, grc_number) DO UPDATE SET
	division=EXCLUDED.division,
	spare_description=EXCLUDED.spare_description,
	grc_date=EXCLUDED.grc_date,
	issue_qty=EXCLUDED.issue_qty,
	grc_pending_qty=EXCLUDED.grc_pending_qty,
	actual_pending_qty=EXCLUDED.grc_pending_qty - COALESCE(grc_lines.returned_qty,0),
	status=EXCLUDED.status
RETURNING (xmax = 0)`, r.company, row.Division, row.SpareCode, row.SpareDescription, row.GRCNumber, row.GRCDate, row.IssueQty, row.GRCPendingQty, StatusOpen).Scan(&inserted)
	return inserted, err
}

// GetLineForUpdate locks a line for the rest of the transaction.
func (r *Repository) GetLineForUpdate(ctx context.Context, spareCode string, grcNumber int64) (Line, error) {
	l, err := scanLine(r.db.QueryRow(ctx, `SELECT `+lineColumns+` FROM grc_lines
WHERE company=$1 AND spare_code=$2 AND grc_number=$3 FOR UPDATE`, r.company, spareCode, grcNumber))
	if errors.Is(err, pgx.ErrNoRows) {
		return Line{}, ErrNotFound
	}
	return l, err
}

// UpdateReceive stores what the service center received.
func (r *Repository) UpdateReceive(ctx context.Context, line ReceiveLine, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE grc_lines SET receive_qty=$4, damaged_qty=$5, short_qty=$6, alt_spare_qty=$7,
	alt_spare_code=NULLIF($8,''), dispute_remark=NULLIF($9,''), receive_date=$10
WHERE company=$1 AND spare_code=$2 AND grc_number=$3`, r.company, line.SpareCode, line.GRCNumber,
		line.ReceiveQty, line.DamagedQty, line.ShortQty, line.AltSpareQty, line.AltSpareCode, line.DisputeRemark, at)
	return err
}

// InsertDispute records a receipt that differs from the issue.
func (r *Repository) InsertDispute(ctx context.Context, d Dispute) error {
	_, err := r.db.Exec(ctx, `INSERT INTO grc_disputes (company, spare_code, division, grc_number, grc_date, spare_description, issue_qty, grc_pending_qty,
	receive_qty, damaged_qty, short_qty, alt_spare_qty, alt_spare_code, dispute_remark)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NULLIF($13,''),NULLIF($14,''))
ON CONFLICT (company, spare_code, grc_number) DO UPDATE SET
	receive_qty=EXCLUDED.receive_qty, damaged_qty=EXCLUDED.damaged_qty, short_qty=EXCLUDED.short_qty,
	alt_spare_qty=EXCLUDED.alt_spare_qty, alt_spare_code=EXCLUDED.alt_spare_code, dispute_remark=EXCLUDED.dispute_remark`,
		r.company, d.SpareCode, d.Division, d.GRCNumber, d.GRCDate, d.SpareDescription, d.IssueQty, d.GRCPendingQty,
		d.ReceiveQty, d.DamagedQty, d.ShortQty, d.AltSpareQty, d.AltSpareCode, d.DisputeRemark)
	return err
}

// SaveDraft stores return quantities without dispatching them.
func (r *Repository) SaveDraft(ctx context.Context, d ReturnDraft) error {
	_, err := r.db.Exec(ctx, `UPDATE grc_lines SET good_qty=$4, defective_qty=$5,
	invoice=COALESCE(NULLIF($6,''), invoice), sent_through=COALESCE(NULLIF($7,''), sent_through), docket_number=COALESCE(NULLIF($8,''), docket_number)
WHERE company=$1 AND spare_code=$2 AND grc_number=$3`, r.company, d.SpareCode, d.GRCNumber,
		d.GoodQty, d.DefectiveQty, d.Invoice, d.SentThrough, d.DocketNumber)
	return err
}

// ApplyReturn writes the post-dispatch state of a line.
func (r *Repository) ApplyReturn(ctx context.Context, l Line) error {
	_, err := r.db.Exec(ctx, `UPDATE grc_lines SET good_qty=$4, defective_qty=$5, returning_qty=$6, returned_qty=$7, actual_pending_qty=$8,
	challan_number=$9, challan_date=$10, sent_through=NULLIF($11,''), docket_number=NULLIF($12,''), challan_by=$13
WHERE company=$1 AND spare_code=$2 AND grc_number=$3`, r.company, l.SpareCode, l.GRCNumber,
		l.GoodQty, l.DefectiveQty, l.ReturningQty, l.ReturnedQty, l.ActualPendingQty,
		l.ChallanNumber, l.ChallanDate, l.SentThrough, l.DocketNumber, l.ChallanBy)
	return err
}

// InsertHistory appends a dispatched return line.
func (r *Repository) InsertHistory(ctx context.Context, h HistoryEntry) error {
	_, err := r.db.Exec(ctx, `INSERT INTO grc_return_history (company, division, spare_code, spare_description, grc_number, grc_date, issue_qty, grc_pending_qty,
	good_qty, defective_qty, returning_qty, challan_number, challan_date, docket_number, sent_through, dispute_remark, challan_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NULLIF($14,''),NULLIF($15,''),NULLIF($16,''),$17)`,
		r.company, h.Division, h.SpareCode, h.SpareDescription, h.GRCNumber, h.GRCDate, h.IssueQty, h.GRCPendingQty,
		h.GoodQty, h.DefectiveQty, h.ReturningQty, h.ChallanNumber, h.ChallanDate, h.DocketNumber, h.SentThrough, h.DisputeRemark, h.ChallanBy)
	return err
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("02-01-2006")
}
