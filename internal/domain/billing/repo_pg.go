package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medrec/medrec/internal/platform/db"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const billCols = `id, patient_id, amount, status, description, payment_method,
	due_date, paid_at, created_at, updated_at`

func scanBill(row pgx.Row) (*Bill, error) {
	var b Bill
	err := row.Scan(&b.ID, &b.PatientID, &b.Amount, &b.Status, &b.Description, &b.PaymentMethod,
		&b.DueDate, &b.PaidAt, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repoPG) Create(ctx context.Context, b *Bill) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO bill (id, patient_id, amount, status, description, payment_method, due_date, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.PatientID, b.Amount, b.Status, b.Description, b.PaymentMethod, b.DueDate, b.PaidAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Bill, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+billCols+` FROM bill WHERE id = $1`, id)
	return scanBill(row)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, status string) ([]*Bill, error) {
	query := `SELECT ` + billCols + ` FROM bill WHERE patient_id = $1`
	args := []interface{}{patientID}

	order := ` ORDER BY created_at DESC`
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
		switch status {
		case StatusPending:
			order = ` ORDER BY due_date ASC NULLS LAST`
		case StatusPaid:
			order = ` ORDER BY paid_at DESC`
		}
	}

	rows, err := r.conn(ctx).Query(ctx, query+order, args...)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var bills []*Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, b *Bill) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE bill
		SET amount = $2, status = $3, description = $4, payment_method = $5,
			due_date = $6, paid_at = $7, updated_at = now()
		WHERE id = $1`,
		b.ID, b.Amount, b.Status, b.Description, b.PaymentMethod, b.DueDate, b.PaidAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) OutstandingBalance(ctx context.Context, patientID uuid.UUID) (float64, error) {
	var total float64
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM bill
		WHERE patient_id = $1 AND status IN ($2, $3)`,
		patientID, StatusPending, StatusOverdue).Scan(&total)
	return total, err
}

func (r *repoPG) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE bill SET status = $1, updated_at = now()
		WHERE status = $2 AND due_date IS NOT NULL AND due_date < $3`,
		StatusOverdue, StatusPending, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
