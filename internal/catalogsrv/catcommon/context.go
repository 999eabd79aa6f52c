// Package catcommon provides shared vocabulary and context management for
// the catalog service: part categories, the authenticated subject, and
// payload hashing helpers.
package catcommon

import "context"

type ctxKeyType string

const ctxSubjectKey ctxKeyType = "CatalogSubject"

// SubjectType identifies the kind of principal acting on the catalog.
type SubjectType string

const SubjectTypeAdmin SubjectType = "admin"

// SubjectContext describes the authenticated principal for a request.
type SubjectContext struct {
	Subject SubjectType
	TokenID string
}

// WithSubjectContext returns a context carrying the authenticated subject.
func WithSubjectContext(ctx context.Context, s *SubjectContext) context.Context {
	return context.WithValue(ctx, ctxSubjectKey, s)
}

// GetSubjectContext returns the authenticated subject, or nil when the
// request is unauthenticated.
func GetSubjectContext(ctx context.Context) *SubjectContext {
	s, ok := ctx.Value(ctxSubjectKey).(*SubjectContext)
	if !ok {
		return nil
	}
	return s
}
