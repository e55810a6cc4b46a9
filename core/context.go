package core

import "context"

// Context keys for analysis options
type contextKey string

const (
	fileIDKey contextKey = "fileID"
	forceKey  contextKey = "forceReanalysis"
)

// withFileID records the file under analysis for log correlation
func withFileID(ctx context.Context, fileID string) context.Context {
	return context.WithValue(ctx, fileIDKey, fileID)
}

// fileIDFromContext returns the file under analysis, or "" when unset
func fileIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(fileIDKey).(string)
	return id
}

// withForce marks the analysis as a forced re-analysis
func withForce(ctx context.Context, force bool) context.Context {
	return context.WithValue(ctx, forceKey, force)
}

// isForced returns whether the analysis bypasses the already-analyzed short-circuit
func isForced(ctx context.Context) bool {
	val := ctx.Value(forceKey)
	if val == nil {
		return false // default: reuse existing analysis
	}
	force, ok := val.(bool)
	return ok && force
}
