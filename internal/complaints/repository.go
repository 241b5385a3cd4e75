package complaints

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servicedesk/servicedesk/internal/shared"
)

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Repository reads complaints from PostgreSQL.
type Repository struct {
	db dbtx
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

const pendingQuery = `SELECT complaint_number, company, COALESCE(product_division,''), COALESCE(complaint_type,''),
COALESCE(complaint_priority,''), COALESCE(action_head,''), COALESCE(action_by,''), COALESCE(spare_pending,'N'),
final_status, complaint_date, COALESCE(customer_name,''), customer_contact1, COALESCE(current_status,''),
COALESCE(complaint_status,'')
FROM complaints
WHERE final_status = 'N' AND ($1 = '' OR company = $1)
ORDER BY complaint_date DESC, complaint_number`

// ListPending returns every open complaint of company, or of all companies
// when company is ALL or empty.
func (r *Repository) ListPending(ctx context.Context, company string) ([]PendingComplaint, error) {
	if company == shared.CompanyAll {
		company = ""
	}
	rows, err := r.db.Query(ctx, pendingQuery, company)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingComplaint
	for rows.Next() {
		var (
			c     PendingComplaint
			date  time.Time
			phone *int64
		)
		if err := rows.Scan(&c.ComplaintNumber, &c.Company, &c.Division, &c.ComplaintType,
			&c.ComplaintPriority, &c.ActionHead, &c.ActionBy, &c.SparePending,
			&c.FinalStatus, &date, &c.CustomerName, &phone, &c.Status, &c.Remark); err != nil {
			return nil, err
		}
		c.ID = complaintID(c.ComplaintNumber)
		c.Date = date.Format("2006-01-02")
		if phone != nil {
			c.PhoneNumber = strconv.FormatInt(*phone, 10)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// complaintID extracts the numeric part of a complaint number such as
// "CMP000123".
func complaintID(number string) int64 {
	start := len(number)
	for start > 0 && number[start-1] >= '0' && number[start-1] <= '9' {
		start--
	}
	id, _ := strconv.ParseInt(number[start:], 10, 64)
	return id
}
