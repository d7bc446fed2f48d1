package session

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"parttimepal-backend/internal/analysis"
	"parttimepal-backend/internal/jobsearch"
	"parttimepal-backend/internal/llm"
)

// Snapshot is a deep copy of session state, safe to serialize.
type Snapshot struct {
	ID          string              `json:"id"`
	Mode        Mode                `json:"mode"`
	View        View                `json:"view"`
	Status      Status              `json:"status"`
	Message     string              `json:"message,omitempty"`
	Jobs        []jobsearch.Listing `json:"jobs"`
	Sources     []llm.Source        `json:"sources"`
	SelectedJob *jobsearch.Listing  `json:"selectedJob,omitempty"`
	Result      *analysis.Result    `json:"result,omitempty"`
	Location    *llm.LatLng         `json:"location,omitempty"`
	Generation  uint64              `json:"generation"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	// AnalyzedText is the normalized posting behind Result.
	AnalyzedText string `json:"-"`
}

// Session is one user's state. Every user action bumps the generation;
// background completions carry the generation they started under and are
// rejected with ErrStale once it has moved on.
type Session struct {
	mu    sync.Mutex
	state Snapshot
	// lastSeen is unix nanos, read by the registry sweep without mu.
	lastSeen atomic.Int64
	now      func() time.Time
}

func newSession(now func() time.Time) *Session {
	s := &Session{now: now}
	t := now().UTC()
	s.state = Snapshot{
		ID:        uuid.NewString(),
		Mode:      ModeFindJobs,
		View:      ViewInput,
		Status:    StatusIdle,
		Jobs:      []jobsearch.Listing{},
		Sources:   []llm.Source{},
		UpdatedAt: t,
	}
	s.lastSeen.Store(t.UnixNano())
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ID
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *Session) copyLocked() Snapshot {
	out := s.state
	out.Jobs = append([]jobsearch.Listing{}, s.state.Jobs...)
	out.Sources = append([]llm.Source{}, s.state.Sources...)
	if s.state.SelectedJob != nil {
		j := *s.state.SelectedJob
		out.SelectedJob = &j
	}
	if s.state.Location != nil {
		l := *s.state.Location
		out.Location = &l
	}
	if s.state.Result != nil {
		r := cloneResult(*s.state.Result)
		out.Result = &r
	}
	return out
}

// Location returns the stored location hint, if any.
func (s *Session) Location() *llm.LatLng {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Location == nil {
		return nil
	}
	l := *s.state.Location
	return &l
}

// Job returns the listing with id from the current search results.
func (s *Session) Job(id string) (jobsearch.Listing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.state.Jobs {
		if j.ID == id {
			return j, true
		}
	}
	return jobsearch.Listing{}, false
}

// SetLocation stores a location hint. It does not change the generation.
func (s *Session) SetLocation(lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return fmt.Errorf("%w: %f,%f", ErrInvalidLocation, lat, lng)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Location = &llm.LatLng{Latitude: lat, Longitude: lng}
	s.touchLocked()
	return nil
}

// SwitchMode selects a tab and returns to a clean input screen. Search
// results are kept; any in-flight work becomes stale.
func (s *Session) SwitchMode(m Mode) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Mode = m
	s.resetLocked()
	return s.copyLocked()
}

// Back leaves the result screen.
func (s *Session) Back() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	return s.copyLocked()
}

func (s *Session) resetLocked() {
	s.state.View = ViewInput
	s.state.Status = StatusIdle
	s.state.Message = ""
	s.state.SelectedJob = nil
	s.state.Result = nil
	s.state.AnalyzedText = ""
	s.bumpLocked()
}

// BeginSearch clears previous results and enters SEARCHING.
func (s *Session) BeginSearch() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.moveLocked(StatusSearching); err != nil {
		return 0, err
	}
	s.state.Mode = ModeFindJobs
	s.state.View = ViewInput
	s.state.Message = ""
	s.state.Jobs = []jobsearch.Listing{}
	s.state.Sources = []llm.Source{}
	s.state.SelectedJob = nil
	s.state.Result = nil
	s.state.AnalyzedText = ""
	s.bumpLocked()
	return s.state.Generation, nil
}

// CompleteSearch publishes search output. An empty job list is not an error:
// status returns to IDLE with notice as the message.
func (s *Session) CompleteSearch(gen uint64, jobs []jobsearch.Listing, sources []llm.Source, notice string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.currentLocked(gen, StatusSearching); err != nil {
		return err
	}
	s.state.Status = StatusIdle
	s.state.Jobs = append([]jobsearch.Listing{}, jobs...)
	s.state.Sources = append([]llm.Source{}, sources...)
	s.state.Message = ""
	if len(jobs) == 0 {
		s.state.Message = notice
	}
	s.touchLocked()
	return nil
}

// FailSearch records a search failure.
func (s *Session) FailSearch(gen uint64, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.currentLocked(gen, StatusSearching); err != nil {
		return err
	}
	s.state.Status = StatusError
	s.state.Message = message
	s.touchLocked()
	return nil
}

// BeginAnalysis shows job on the result screen and enters ANALYZING.
func (s *Session) BeginAnalysis(job jobsearch.Listing) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.moveLocked(StatusAnalyzing); err != nil {
		return 0, err
	}
	s.state.View = ViewResult
	s.state.Message = ""
	s.state.Result = nil
	s.state.AnalyzedText = ""
	s.state.SelectedJob = &job
	s.bumpLocked()
	return s.state.Generation, nil
}

// UpdateSelectedJob replaces the placeholder description once the input has
// been normalized.
func (s *Session) UpdateSelectedJob(gen uint64, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.currentLocked(gen, StatusAnalyzing); err != nil {
		return err
	}
	if s.state.SelectedJob != nil {
		s.state.SelectedJob.Description = description
	}
	s.touchLocked()
	return nil
}

// RejectInput returns to the input screen with message after the submitted
// input failed normalization.
func (s *Session) RejectInput(gen uint64, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.currentLocked(gen, StatusAnalyzing); err != nil {
		return err
	}
	s.state.View = ViewInput
	s.state.Status = StatusError
	s.state.Message = message
	s.state.SelectedJob = nil
	s.touchLocked()
	return nil
}

// CompleteAnalysis publishes a whole Result.
func (s *Session) CompleteAnalysis(gen uint64, text string, res analysis.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.currentLocked(gen, StatusAnalyzing); err != nil {
		return err
	}
	r := cloneResult(res)
	s.state.Status = StatusComplete
	s.state.Result = &r
	s.state.AnalyzedText = text
	s.state.Message = ""
	s.touchLocked()
	return nil
}

// FailAnalysis records a failed run. No partial result is kept.
func (s *Session) FailAnalysis(gen uint64, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.currentLocked(gen, StatusAnalyzing); err != nil {
		return err
	}
	s.state.Status = StatusError
	s.state.Result = nil
	s.state.Message = message
	s.touchLocked()
	return nil
}

// RejectSync records a validation failure detected before any work began.
func (s *Session) RejectSync(message string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.View = ViewInput
	s.state.Status = StatusError
	s.state.Message = message
	s.state.SelectedJob = nil
	s.state.Result = nil
	s.bumpLocked()
	return s.copyLocked()
}

// expire invalidates any in-flight work for an evicted session.
func (s *Session) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Generation++
}

func (s *Session) moveLocked(to Status) error {
	if !IsTransitionAllowed(s.state.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state.Status, to)
	}
	s.state.Status = to
	return nil
}

func (s *Session) currentLocked(gen uint64, want Status) error {
	if gen != s.state.Generation || s.state.Status != want {
		return fmt.Errorf("%w: generation %d, current %d", ErrStale, gen, s.state.Generation)
	}
	return nil
}

func (s *Session) bumpLocked() {
	s.state.Generation++
	s.touchLocked()
}

func (s *Session) touchLocked() {
	t := s.now().UTC()
	s.state.UpdatedAt = t
	s.lastSeen.Store(t.UnixNano())
}

func (s *Session) touch() {
	s.lastSeen.Store(s.now().UTC().UnixNano())
}

func cloneResult(r analysis.Result) analysis.Result {
	out := r
	out.ScamAnalysis.Reasons = append([]string{}, r.ScamAnalysis.Reasons...)
	if r.ScamAnalysis.Score != nil {
		score := *r.ScamAnalysis.Score
		out.ScamAnalysis.Score = &score
	}
	out.Suitability.SkillsRequired = append([]string{}, r.Suitability.SkillsRequired...)
	out.Suitability.Pros = append([]string{}, r.Suitability.Pros...)
	out.Suitability.Cons = append([]string{}, r.Suitability.Cons...)
	out.Suitability.ContactRisks = append([]string{}, r.Suitability.ContactRisks...)
	out.GroundingData.SearchChunks = append([]llm.Source{}, r.GroundingData.SearchChunks...)
	out.GroundingData.MapChunks = append([]llm.Source{}, r.GroundingData.MapChunks...)
	out.GroundingData.VerificationBlocks = append(out.GroundingData.VerificationBlocks[:0:0], r.GroundingData.VerificationBlocks...)
	out.Degraded = append([]string(nil), r.Degraded...)
	return out
}
