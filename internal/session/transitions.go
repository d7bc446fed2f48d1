// Package session holds the per-user view state machine.
//
// Status graph (any status may also reset to IDLE):
//
//	IDLE ──► SEARCHING ──► IDLE / ERROR
//	  │          │
//	  └──────────┴──► ANALYZING ──► COMPLETE / ERROR
//
// ERROR may retry into SEARCHING or ANALYZING.
package session

import "fmt"

// Mode is the active tab.
type Mode string

const (
	ModeFindJobs  Mode = "FIND_JOBS"
	ModeVerifyJob Mode = "VERIFY_JOB"
)

// ParseMode converts a raw string to a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	switch m {
	case ModeFindJobs, ModeVerifyJob:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidMode, s)
}

// View is the visible screen.
type View string

const (
	ViewInput  View = "INPUT"
	ViewResult View = "RESULT"
)

// Status is the pipeline status.
type Status string

const (
	StatusIdle      Status = "IDLE"
	StatusSearching Status = "SEARCHING"
	StatusAnalyzing Status = "ANALYZING"
	StatusComplete  Status = "COMPLETE"
	StatusError     Status = "ERROR"
)

// validTransitions lists every allowed (from → to) pair besides the
// universal reset to IDLE.
var validTransitions = map[Status][]Status{
	StatusIdle:      {StatusSearching, StatusAnalyzing},
	StatusSearching: {StatusSearching, StatusAnalyzing, StatusError},
	StatusAnalyzing: {StatusComplete, StatusError},
	StatusComplete:  {},
	StatusError:     {StatusSearching, StatusAnalyzing},
}

// IsTransitionAllowed reports whether moving from → to is permitted.
func IsTransitionAllowed(from, to Status) bool {
	if to == StatusIdle {
		_, known := validTransitions[from]
		return known
	}
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
