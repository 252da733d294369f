// Package session describes who is calling and what they may do.
package session

import "context"

// Capability names a restricted operation.
type Capability string

const (
	// ManageRecords allows updating and deleting stored records.
	ManageRecords Capability = "manage-records"
	// AdminPanel allows reading operational data such as the upload ledger.
	AdminPanel Capability = "admin-panel"
)

// Session is the caller's identity as far as the registry cares.
type Session struct {
	Admin bool
}

// Anonymous is the session of a caller without credentials.
var Anonymous = Session{}

// Can reports whether the session holds capability c.
func (s Session) Can(c Capability) bool {
	switch c {
	case ManageRecords, AdminPanel:
		return s.Admin
	}
	return false
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, or Anonymous.
func FromContext(ctx context.Context) Session {
	s, ok := ctx.Value(contextKey{}).(Session)
	if !ok {
		return Anonymous
	}
	return s
}
