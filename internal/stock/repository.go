package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servicedesk/servicedesk/internal/platform/db"
)

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	GetLineForUpdate(ctx context.Context, company, spareCode, division string) (Line, error)
	UpsertLine(ctx context.Context, line Line) error
	InsertMovement(ctx context.Context, m Movement) error
	NextIndentNumber(ctx context.Context) (int64, error)
	InsertIndent(ctx context.Context, in Indent) error
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Repository persists stock in PostgreSQL.
type Repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool, pool: pool}
}

// WithTx executes the callback inside repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil || r.pool == nil {
		return errors.New("stock repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &Repository{db: tx, pool: r.pool})
	})
}

const lineColumns = `company, division, spare_code, spare_description, own_qty, godown_qty, advance_qty, under_process_qty, updated_at`

func scanLine(row pgx.Row) (Line, error) {
	var l Line
	err := row.Scan(&l.Company, &l.Division, &l.SpareCode, &l.SpareDescription,
		&l.OwnQty, &l.GodownQty, &l.AdvanceQty, &l.UnderProcessQty, &l.UpdatedAt)
	return l, err
}

func (r *Repository) GetLineForUpdate(ctx context.Context, company, spareCode, division string) (Line, error) {
	line, err := scanLine(r.db.QueryRow(ctx, `SELECT `+lineColumns+` FROM stock_lines
WHERE company=$1 AND spare_code=$2 AND division=$3 FOR UPDATE`, company, spareCode, division))
	if errors.Is(err, pgx.ErrNoRows) {
		return Line{}, ErrLineNotFound
	}
	return line, err
}

func (r *Repository) UpsertLine(ctx context.Context, l Line) error {
	_, err := r.db.Exec(ctx, `INSERT INTO stock_lines (company, division, spare_code, spare_description, own_qty, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (company, spare_code, division) DO UPDATE SET
  own_qty = EXCLUDED.own_qty,
  spare_description = COALESCE(NULLIF(EXCLUDED.spare_description, ''), stock_lines.spare_description),
  updated_at = EXCLUDED.updated_at`,
		l.Company, l.Division, l.SpareCode, l.SpareDescription, l.OwnQty, l.UpdatedAt)
	return err
}

func (r *Repository) InsertMovement(ctx context.Context, m Movement) error {
	_, err := r.db.Exec(ctx, `INSERT INTO stock_movements
(id, company, division, spare_code, movement_type, qty, balance_after, remark, actor_id, posted_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ID, m.Company, m.Division, m.SpareCode, string(m.Type), m.Qty, m.BalanceAfter, m.Remark, m.ActorID, m.PostedAt)
	return err
}

func (r *Repository) NextIndentNumber(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT nextval('stock_indent_seq')`).Scan(&n)
	return n, err
}

func (r *Repository) InsertIndent(ctx context.Context, in Indent) error {
	_, err := r.db.Exec(ctx, `INSERT INTO stock_indents
(indent_number, company, spare_code, indent_qty, party_name, order_number, order_date, remark, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		in.IndentNumber, in.Company, in.SpareCode, in.Qty, in.PartyName, in.OrderNumber, in.OrderDate, in.Remark, in.CreatedBy, in.CreatedAt)
	return err
}

// LinesBySpare lists the spare's stock in every division.
func (r *Repository) LinesBySpare(ctx context.Context, company, spareCode string) ([]Line, error) {
	rows, err := r.db.Query(ctx, `SELECT `+lineColumns+` FROM stock_lines
WHERE company=$1 AND spare_code=$2 ORDER BY division`, company, spareCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []Line
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// RecentMovements lists the newest movements of a spare, newest first.
func (r *Repository) RecentMovements(ctx context.Context, company, spareCode string, limit int) ([]Movement, error) {
	rows, err := r.db.Query(ctx, `SELECT id, company, division, spare_code, movement_type, qty, balance_after,
COALESCE(remark,''), COALESCE(actor_id,0), posted_at
FROM stock_movements WHERE company=$1 AND spare_code=$2 ORDER BY posted_at DESC LIMIT $3`, company, spareCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Movement
	for rows.Next() {
		var (
			m  Movement
			mt string
		)
		if err := rows.Scan(&m.ID, &m.Company, &m.Division, &m.SpareCode, &mt, &m.Qty, &m.BalanceAfter,
			&m.Remark, &m.ActorID, &m.PostedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Type = MovementType(mt)
		out = append(out, m)
	}
	return out, rows.Err()
}
