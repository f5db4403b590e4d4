package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	// Ask runs the admitted request through cache, queue, and oracle
	Ask(ctx context.Context, identity, flowID string, req OracleRequest) (string, error)
}

// StatusPort reports pipeline introspection for /status and readiness
type StatusPort interface {
	Status() StatusSnapshot
	// OracleConfigured reports whether the oracle URL is set
	OracleConfigured() bool
}
