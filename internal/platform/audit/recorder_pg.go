package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PGRecorder writes audit entries to the audit_log table. The table is
// append-only; no application code updates or deletes rows.
type PGRecorder struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPGRecorder(pool *pgxpool.Pool, logger zerolog.Logger) *PGRecorder {
	return &PGRecorder{
		pool:   pool,
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

func (r *PGRecorder) Record(ctx context.Context, e Entry) {
	details := e.Details
	if details == nil {
		details = map[string]interface{}{}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		r.logger.Error().Err(err).Str("action", string(e.Action)).Msg("marshal audit details")
		detailsJSON = []byte("{}")
	}

	var patientID *string
	if e.PatientID != "" {
		patientID = &e.PatientID
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO audit_log (action, actor_type, actor_id, patient_id, ip_address, user_agent, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(e.Action), string(e.ActorType), e.ActorID, patientID,
		e.IPAddress, e.UserAgent, detailsJSON,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("action", string(e.Action)).
			Str("actor_id", e.ActorID).
			Msg("audit write failed")
	}
}
