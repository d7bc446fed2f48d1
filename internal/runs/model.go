// Package runs keeps a journal of finished pipeline runs per session.
package runs

import "time"

// Kind identifies the pipeline that ran.
type Kind string

const (
	KindAnalysis Kind = "analysis"
	KindSearch   Kind = "search"
	KindCVMatch  Kind = "cv_match"
)

// Run statuses.
const (
	StatusComplete = "complete"
	StatusError    = "error"
	StatusRejected = "rejected"
	StatusStale    = "stale"
)

// Run is one journal entry.
type Run struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	Kind        Kind      `json:"kind"`
	Status      string    `json:"status"`
	Generation  uint64    `json:"generation"`
	ErrorCode   string    `json:"errorCode,omitempty"`
	RiskLevel   string    `json:"riskLevel,omitempty"`
	ResultCount int       `json:"resultCount"`
	Fallbacks   int       `json:"fallbacks"`
	DurationMs  int64     `json:"durationMs"`
	CreatedAt   time.Time `json:"createdAt"`
}
