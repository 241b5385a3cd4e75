package employees

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Repository persists employees in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores e and returns its id.
func (r *Repository) Insert(ctx context.Context, e Employee) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO employees
(company, name, dob, phone_number, address, email, aadhar, pan, joining_date, role, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, NULLIF($6,''), NULLIF($7,''), NULLIF($8,''), $9, $10, $11, $12)
RETURNING id`,
		e.Company, e.Name, e.DOB, e.PhoneNumber, e.Address, e.Email, e.Aadhar, e.PAN, e.JoiningDate, e.Role, e.CreatedBy, e.CreatedAt,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, ErrDuplicatePhone
		}
		return 0, err
	}
	return id, nil
}

// List returns active employees of company ordered by name.
func (r *Repository) List(ctx context.Context, company string, limit, offset int) ([]Employee, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE company=$1 AND left_on IS NULL`, company).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, company, name, dob, phone_number, address, COALESCE(email,''),
COALESCE(aadhar,''), COALESCE(pan,''), joining_date, role, COALESCE(created_by,0), created_at, left_on
FROM employees WHERE company=$1 AND left_on IS NULL ORDER BY name, id LIMIT $2 OFFSET $3`, company, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Employee, error) {
		var e Employee
		err := row.Scan(&e.ID, &e.Company, &e.Name, &e.DOB, &e.PhoneNumber, &e.Address, &e.Email,
			&e.Aadhar, &e.PAN, &e.JoiningDate, &e.Role, &e.CreatedBy, &e.CreatedAt, &e.LeftOn)
		return e, err
	})
	return out, total, err
}
