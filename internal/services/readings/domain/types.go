// Package domain holds the readings service types and ports
package domain

import (
	"fmt"
	"time"
)

// OracleRequest is the inbound body of POST /oracle/{flowId}
// SessionID is ambient correlation data and never participates in the
// request fingerprint
type OracleRequest struct {
	SpreadKind   string `json:"spreadKind" validate:"required,min=1,max=64"`
	Question     string `json:"question" validate:"omitempty,max=2000"`
	Count        int    `json:"count" validate:"omitempty,min=1,max=78"`
	Significator string `json:"significator" validate:"omitempty,max=64"`
	SessionID    string `json:"sessionId" validate:"omitempty,max=128"`
}

// StatusSnapshot is the GET /status payload
type StatusSnapshot struct {
	UptimeSeconds int64   `json:"uptimeSeconds"`
	TotalRequests uint64  `json:"totalRequests"`
	CacheHits     uint64  `json:"cacheHits"`
	CacheMisses   uint64  `json:"cacheMisses"`
	CacheHitRate  float64 `json:"cacheHitRate"`
	QueueWaiting  int     `json:"queueWaiting"`
	QueuePending  int     `json:"queuePending"`
	CacheSize     int     `json:"cacheSize"`
	CacheCapacity int     `json:"cacheCapacity"`
}

// RateLimitedError is the admission denial carrying client feedback
type RateLimitedError struct {
	Limiter    string
	RetryAfter time.Duration
	QueueLen   int
}

// Error implements the error interface
func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited (%s): retry after %s", e.Limiter, e.RetryAfter)
}

// RetryAfterSeconds rounds the hint up to whole seconds, minimum 1
func (e *RateLimitedError) RetryAfterSeconds() int {
	s := int((e.RetryAfter + time.Second - 1) / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}
