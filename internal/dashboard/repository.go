package dashboard

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Repository computes the dashboard feed straight from the operational tables.
type Repository struct {
	db dbtx
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

const (
	openComplaint = `final_status = 'N'`

	countStockQuery = `SELECT company, COUNT(*) FROM stock_lines WHERE %s > 0 GROUP BY company`

	stockDonutQuery = `SELECT company, division, COUNT(*) FROM stock_lines
WHERE own_qty > 0 GROUP BY company, division ORDER BY company, division`

	grcDonutQuery = `SELECT company, division, COUNT(*) FROM grc_lines
WHERE status = 'N' GROUP BY company, division ORDER BY company, division`

	countComplaintQuery = `SELECT company, COUNT(*) FROM complaints WHERE ` + openComplaint + ` AND %s GROUP BY company`

	complaintStatusQuery = `SELECT company, COALESCE(product_division,''),
COUNT(*) FILTER (WHERE final_status = 'Y'), COUNT(*) FILTER (WHERE final_status = 'N')
FROM complaints GROUP BY company, product_division ORDER BY company, product_division`

	complaintTypeQuery = `SELECT company, COALESCE(complaint_type,''), COUNT(*) FROM complaints
WHERE ` + openComplaint + ` GROUP BY company, complaint_type ORDER BY company, complaint_type`
)

// Load builds the per-company feed.
func (r *Repository) Load(ctx context.Context) (Data, error) {
	var (
		data Data
		err  error
	)
	stockCounts := []struct {
		column string
		dest   *PerCompany
	}{
		{"own_qty", &data.Stock.InStock},
		{"godown_qty", &data.Stock.InGodown},
		{"advance_qty", &data.Stock.IssuedInAdvance},
		{"under_process_qty", &data.Stock.UnderProcess},
	}
	for _, c := range stockCounts {
		if *c.dest, err = r.perCompany(ctx, fmt.Sprintf(countStockQuery, c.column)); err != nil {
			return Data{}, fmt.Errorf("stock %s: %w", c.column, err)
		}
	}
	if data.Stock.DivisionWiseDonut, err = r.categories(ctx, stockDonutQuery); err != nil {
		return Data{}, fmt.Errorf("stock donut: %w", err)
	}
	if data.GRC.DivisionWiseDonut, err = r.categories(ctx, grcDonutQuery); err != nil {
		return Data{}, fmt.Errorf("grc donut: %w", err)
	}

	complaintCounts := []struct {
		cond string
		dest *PerCompany
	}{
		{"TRUE", &data.Complaint.CRMOpen},
		{"complaint_status = 'CRM ESCALATION'", &data.Complaint.CRMEscalation},
		{"complaint_status = 'MD ESCALATION'", &data.Complaint.MDEscalation},
		{"complaint_priority = 'HIGH'", &data.Complaint.HighPriority},
		{"spare_pending = 'Y'", &data.Complaint.SparePending},
	}
	for _, c := range complaintCounts {
		if *c.dest, err = r.perCompany(ctx, fmt.Sprintf(countComplaintQuery, c.cond)); err != nil {
			return Data{}, fmt.Errorf("complaints %s: %w", c.cond, err)
		}
	}
	if data.Complaint.DivisionWiseStatus, err = r.divisionStatus(ctx); err != nil {
		return Data{}, fmt.Errorf("complaint status: %w", err)
	}
	if data.Complaint.ComplaintType, err = r.categories(ctx, complaintTypeQuery); err != nil {
		return Data{}, fmt.Errorf("complaint type: %w", err)
	}
	return data, nil
}

func (r *Repository) perCompany(ctx context.Context, query string) (PerCompany, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := PerCompany{}
	for rows.Next() {
		var (
			company string
			count   int
		)
		if err := rows.Scan(&company, &count); err != nil {
			return nil, err
		}
		out[company] = count
	}
	return out, rows.Err()
}

func (r *Repository) categories(ctx context.Context, query string) (map[string][]CategoryCount, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string][]CategoryCount{}
	for rows.Next() {
		var (
			company string
			c       CategoryCount
		)
		if err := rows.Scan(&company, &c.Category, &c.Count); err != nil {
			return nil, err
		}
		out[company] = append(out[company], c)
	}
	return out, rows.Err()
}

func (r *Repository) divisionStatus(ctx context.Context) (map[string][]DivisionStatus, error) {
	rows, err := r.db.Query(ctx, complaintStatusQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string][]DivisionStatus{}
	for rows.Next() {
		var (
			company string
			d       DivisionStatus
		)
		if err := rows.Scan(&company, &d.Division, &d.Y, &d.N); err != nil {
			return nil, err
		}
		out[company] = append(out[company], d)
	}
	return out, rows.Err()
}
