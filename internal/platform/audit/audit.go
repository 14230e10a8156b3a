// Package audit records the append-only trail of who touched which patient
// record. Entries are written fire-and-forget: a failed write is logged
// locally and never fails the operation that triggered it.
package audit

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/medrec/medrec/internal/platform/auth"
)

// Action identifies what the actor did.
type Action string

const (
	ActionAccess     Action = "access"
	ActionUpdate     Action = "update"
	ActionCreate     Action = "create"
	ActionDelete     Action = "delete"
	ActionInactivate Action = "inactivate"
	ActionLogin      Action = "login"
	ActionPayment    Action = "payment"
)

// Entry is a single audit trail record. PatientID is empty when the action
// does not concern a specific patient.
type Entry struct {
	Action    Action
	ActorType auth.Role
	ActorID   string
	PatientID string
	IPAddress string
	UserAgent string
	Details   map[string]interface{}
	CreatedAt time.Time
}

// Recorder persists audit entries. Implementations must not return errors to
// callers; a lost entry is logged, not propagated.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(ctx context.Context, e Entry)

func (f RecorderFunc) Record(ctx context.Context, e Entry) {
	f(ctx, e)
}

// ClientIP extracts the originating client address from proxy headers:
// the first X-Forwarded-For hop, then X-Real-IP, then "unknown".
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0]); first != "" {
			return first
		}
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	return "unknown"
}

// UserAgent returns the request's User-Agent header, or "unknown".
func UserAgent(r *http.Request) string {
	if ua := r.Header.Get("User-Agent"); ua != "" {
		return ua
	}
	return "unknown"
}
