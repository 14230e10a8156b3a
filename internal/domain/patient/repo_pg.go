package patient

import (
	"context"
	"errors"
	"strings"
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

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const patientCols = `id, email, password_hash, first_name, last_name, date_of_birth, phone, address,
	vitals, visit_summary, diagnosis, treatment, lab_results, medications,
	is_active, is_verified, verification_token, last_access_date, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.Email, &p.PasswordHash, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Phone, &p.Address,
		&p.Vitals, &p.VisitSummary, &p.Diagnosis, &p.Treatment, &p.LabResults, &p.Medications,
		&p.IsActive, &p.IsVerified, &p.VerificationToken, &p.LastAccessDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (
			id, email, password_hash, first_name, last_name, date_of_birth, phone, address,
			vitals, visit_summary, diagnosis, treatment, lab_results, medications,
			is_active, is_verified, verification_token, last_access_date, created_at, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,
			$9,$10,$11,$12,$13,$14,
			$15,$16,$17,$18,$19,$20
		)`,
		p.ID, p.Email, p.PasswordHash, p.FirstName, p.LastName, p.DateOfBirth, p.Phone, p.Address,
		p.Vitals, p.VisitSummary, p.Diagnosis, p.Treatment, p.LabResults, p.Medications,
		p.IsActive, p.IsVerified, p.VerificationToken, p.LastAccessDate, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE LOWER(email) = LOWER($1)`, email))
}

func (r *repoPG) GetByVerificationToken(ctx context.Context, token string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE verification_token = $1 AND is_verified = false`, token))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	p.UpdatedAt = time.Now().UTC()
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			first_name = $2, last_name = $3, date_of_birth = $4, phone = $5, address = $6,
			vitals = $7, visit_summary = $8, diagnosis = $9, treatment = $10,
			lab_results = $11, medications = $12, updated_at = $13
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.Phone, p.Address,
		p.Vitals, p.VisitSummary, p.Diagnosis, p.Treatment,
		p.LabResults, p.Medications, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) SetVerified(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET is_verified = true, verification_token = NULL, updated_at = NOW()
		WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) UpdateLastAccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET last_access_date = $2 WHERE id = $1`, id, at)
	return err
}

// likeEscaper neutralizes LIKE metacharacters in user input so a query of
// "%" or "_" matches those characters literally instead of every row.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func searchPattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}

func (r *repoPG) Search(ctx context.Context, query string, activeOnly bool, limit, offset int) ([]*Patient, int, error) {
	where := `(email ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1 OR id::text = $2)`
	if activeOnly {
		where += ` AND is_active = true`
	}
	pattern := searchPattern(query)

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient WHERE `+where, pattern, query).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient WHERE `+where+`
		 ORDER BY last_name ASC LIMIT $3 OFFSET $4`,
		pattern, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return patients, total, nil
}

func (r *repoPG) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient
		 WHERE (last_access_date IS NULL AND created_at <= $1) OR last_access_date <= $1
		 ORDER BY last_access_date ASC NULLS FIRST`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

