// Package assistant drives the user flows: job search, verification of a
// listing or submitted posting, and CV matching, on top of per-session state.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"parttimepal-backend/internal/analysis"
	"parttimepal-backend/internal/cvmatch"
	"parttimepal-backend/internal/jobsearch"
	"parttimepal-backend/internal/normalize"
	"parttimepal-backend/internal/runs"
	"parttimepal-backend/internal/session"
	"parttimepal-backend/internal/shared/metrics"
	"parttimepal-backend/internal/shared/telemetry"
)

const (
	placeholderTitle       = "Đang phân tích..."
	placeholderDetail      = "..."
	placeholderDescription = "Đang xử lý dữ liệu đầu vào..."
	placeholderSource      = "User Input"
	previewRunes           = 150
	verifyIDPrefix         = "verify-"
)

// Service wires the pipelines to sessions. Background work is tracked so
// shutdown and tests can wait for it.
type Service struct {
	Sessions   *session.Registry
	Normalizer *normalize.Normalizer
	Analysis   *analysis.Service
	Search     *jobsearch.Service
	CV         *cvmatch.Service
	Runs       runs.Repo
	// SearchTimeout bounds one background search; zero means none.
	SearchTimeout time.Duration

	wg sync.WaitGroup
}

// Wait blocks until all background work has finished.
func (s *Service) Wait() { s.wg.Wait() }

// CreateSession starts a new session.
func (s *Service) CreateSession() session.Snapshot {
	return s.Sessions.Create().Snapshot()
}

// Snapshot returns the session state.
func (s *Service) Snapshot(sessionID string) (session.Snapshot, error) {
	sess, err := s.Sessions.Get(sessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// SwitchMode selects a tab.
func (s *Service) SwitchMode(sessionID string, mode session.Mode) (session.Snapshot, error) {
	sess, err := s.Sessions.Get(sessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	return sess.SwitchMode(mode), nil
}

// Back leaves the result screen.
func (s *Service) Back(sessionID string) (session.Snapshot, error) {
	sess, err := s.Sessions.Get(sessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	return sess.Back(), nil
}

// SetLocation stores a location hint for grounding.
func (s *Service) SetLocation(sessionID string, lat, lng float64) (session.Snapshot, error) {
	sess, err := s.Sessions.Get(sessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	if err := sess.SetLocation(lat, lng); err != nil {
		return session.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// ListRuns returns the session's run journal, newest first.
func (s *Service) ListRuns(ctx context.Context, sessionID string, limit int) ([]runs.Run, error) {
	if _, err := s.Sessions.Get(sessionID); err != nil {
		return nil, err
	}
	if s.Runs == nil {
		return []runs.Run{}, nil
	}
	return s.Runs.ListBySession(ctx, sessionID, limit)
}

// SweepSessions evicts idle sessions.
func (s *Service) SweepSessions() int {
	n := s.Sessions.Sweep()
	if n > 0 {
		telemetry.Info("session.sweep", map[string]any{"evicted": n, "live": s.Sessions.Len()})
	}
	return n
}

// StartSearch validates criteria and runs the search in the background.
func (s *Service) StartSearch(ctx context.Context, sessionID string, criteria jobsearch.Criteria) (session.Snapshot, error) {
	if err := criteria.Validate(); err != nil {
		return session.Snapshot{}, err
	}
	sess, err := s.Sessions.Get(sessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	gen, err := sess.BeginSearch()
	if err != nil {
		return session.Snapshot{}, err
	}
	logTransition(ctx, "search.status", sess.ID(), gen, "idle->searching")

	s.wg.Add(1)
	go s.completeSearch(telemetry.Detach(ctx), sess, gen, criteria)
	return sess.Snapshot(), nil
}

func (s *Service) completeSearch(ctx context.Context, sess *session.Session, gen uint64, criteria jobsearch.Criteria) {
	defer s.wg.Done()
	start := time.Now()
	metrics.RunStarted(string(runs.KindSearch))
	run := runs.Run{Kind: runs.KindSearch, SessionID: sess.ID(), Generation: gen}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			_ = sess.FailSearch(gen, MsgSearchFailed)
			run.Status, run.ErrorCode = runs.StatusError, classifyFailure(err)
			s.finish(ctx, run, start, err)
		}
	}()

	if s.SearchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.SearchTimeout)
		defer cancel()
	}

	res, err := s.Search.Search(ctx, criteria, sess.Location())
	var applyErr error
	if err != nil {
		applyErr = sess.FailSearch(gen, MsgSearchFailed)
		run.Status, run.ErrorCode = runs.StatusError, classifyFailure(err)
	} else {
		applyErr = sess.CompleteSearch(gen, res.Jobs, res.Sources, MsgNoResults)
		run.Status, run.ResultCount = runs.StatusComplete, len(res.Jobs)
	}
	if errors.Is(applyErr, session.ErrStale) {
		metrics.StaleResult(string(runs.KindSearch))
		run.Status = runs.StatusStale
	}
	s.finish(ctx, run, start, err)
}

// AnalyzeListing verifies a job from the current search results.
func (s *Service) AnalyzeListing(ctx context.Context, sessionID, jobID string) (session.Snapshot, error) {
	sess, err := s.Sessions.Get(sessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	job, ok := sess.Job(jobID)
	if !ok {
		return session.Snapshot{}, ErrJobNotFound
	}
	gen, err := sess.BeginAnalysis(job)
	if err != nil {
		return session.Snapshot{}, err
	}
	logTransition(ctx, "analysis.status", sess.ID(), gen, "idle->analyzing")

	s.wg.Add(1)
	go s.completeAnalysis(telemetry.Detach(ctx), sess, gen, ListingText(job), nil)
	return sess.Snapshot(), nil
}

// Verify analyses a pasted posting, a link or a screenshot. Pasted text is
// validated before any work starts; links and images are read in the
// background.
func (s *Service) Verify(ctx context.Context, sessionID string, in normalize.RawInput) (session.Snapshot, error) {
	sess, err := s.Sessions.Get(sessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	if isEmptyInput(in) {
		return session.Snapshot{}, ErrMissingPayload
	}
	if in.Kind == normalize.KindText || in.Kind == "" {
		if err := normalize.Validate(in.Text); err != nil {
			msg, _ := normalize.Message(err)
			snap := sess.RejectSync(msg)
			s.record(ctx, runs.Run{
				Kind: runs.KindAnalysis, SessionID: snap.ID, Generation: snap.Generation,
				Status: runs.StatusRejected, ErrorCode: classifyFailure(&RejectionError{Err: err}),
			})
			return snap, &RejectionError{Message: msg, Err: err}
		}
	}

	placeholder := jobsearch.Listing{
		ID:          verifyIDPrefix + uuid.NewString(),
		Title:       placeholderTitle,
		Company:     placeholderTitle,
		Location:    placeholderDetail,
		Salary:      placeholderDetail,
		Description: placeholderDescription,
		Source:      placeholderSource,
	}
	gen, err := sess.BeginAnalysis(placeholder)
	if err != nil {
		return session.Snapshot{}, err
	}
	logTransition(ctx, "analysis.status", sess.ID(), gen, "idle->analyzing")

	s.wg.Add(1)
	raw := in
	go s.completeAnalysis(telemetry.Detach(ctx), sess, gen, "", &raw)
	return sess.Snapshot(), nil
}

// completeAnalysis normalizes raw when given, then runs the analysis and
// publishes the outcome if the generation is still current.
func (s *Service) completeAnalysis(ctx context.Context, sess *session.Session, gen uint64, text string, raw *normalize.RawInput) {
	defer s.wg.Done()
	start := time.Now()
	metrics.RunStarted(string(runs.KindAnalysis))
	run := runs.Run{Kind: runs.KindAnalysis, SessionID: sess.ID(), Generation: gen}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			_ = sess.FailAnalysis(gen, MsgAnalysisFailed)
			run.Status, run.ErrorCode = runs.StatusError, classifyFailure(err)
			s.finish(ctx, run, start, err)
		}
	}()

	if raw != nil {
		normalized, err := s.Normalizer.Normalize(ctx, *raw)
		if err != nil {
			msg, ok := normalize.Message(err)
			if !ok {
				msg = MsgInputFailed
			}
			rejection := &RejectionError{Message: msg, Err: err}
			run.Status, run.ErrorCode = runs.StatusRejected, classifyFailure(rejection)
			if errors.Is(sess.RejectInput(gen, msg), session.ErrStale) {
				metrics.StaleResult(string(runs.KindAnalysis))
				run.Status = runs.StatusStale
			}
			s.finish(ctx, run, start, rejection)
			return
		}
		text = normalized
		if errors.Is(sess.UpdateSelectedJob(gen, Preview(text)), session.ErrStale) {
			metrics.StaleResult(string(runs.KindAnalysis))
			run.Status = runs.StatusStale
			s.finish(ctx, run, start, nil)
			return
		}
	}

	res, err := s.Analysis.Run(ctx, text, sess.Location())
	var applyErr error
	if err != nil {
		applyErr = sess.FailAnalysis(gen, MsgAnalysisFailed)
		run.Status, run.ErrorCode = runs.StatusError, classifyFailure(err)
	} else {
		applyErr = sess.CompleteAnalysis(gen, text, res)
		run.Status = runs.StatusComplete
		run.RiskLevel = string(res.ScamAnalysis.RiskLevel)
		run.ResultCount = 1
		run.Fallbacks = len(res.Degraded)
	}
	if errors.Is(applyErr, session.ErrStale) {
		metrics.StaleResult(string(runs.KindAnalysis))
		run.Status = runs.StatusStale
	}
	s.finish(ctx, run, start, err)
}

// MatchCV scores a CV against jobDescription, or against the analysed
// posting of the session when jobDescription is empty.
func (s *Service) MatchCV(ctx context.Context, sessionID, jobDescription string, cv normalize.RawInput) (cvmatch.Analysis, error) {
	sess, err := s.Sessions.Get(sessionID)
	if err != nil {
		return cvmatch.Analysis{}, err
	}
	snap := sess.Snapshot()
	if strings.TrimSpace(jobDescription) == "" {
		jobDescription = selectedJobText(snap)
	}
	if strings.TrimSpace(jobDescription) == "" {
		return cvmatch.Analysis{}, ErrNoSelectedJob
	}

	var doc normalize.Document
	switch cv.Kind {
	case normalize.KindFile:
		doc, err = s.Normalizer.PrepareFile(ctx, cv.Data, cv.MIMEType, cv.FileName)
	default:
		err = normalize.Validate(cv.Text)
		doc = normalize.Document{Text: cv.Text}
	}
	if err != nil {
		msg, ok := normalize.Message(err)
		if !ok {
			msg = MsgInputFailed
		}
		return cvmatch.Analysis{}, &RejectionError{Message: msg, Err: err}
	}

	start := time.Now()
	metrics.RunStarted(string(runs.KindCVMatch))
	run := runs.Run{Kind: runs.KindCVMatch, SessionID: snap.ID, Generation: snap.Generation}
	out, err := s.CV.Match(ctx, jobDescription, doc)
	if err != nil {
		run.Status, run.ErrorCode = runs.StatusError, classifyFailure(err)
	} else {
		run.Status, run.ResultCount = runs.StatusComplete, 1
	}
	s.finish(telemetry.Detach(ctx), run, start, err)
	if err != nil {
		return cvmatch.Analysis{}, fmt.Errorf("%w: %w", ErrMatchFailed, err)
	}
	return out, nil
}

func selectedJobText(snap session.Snapshot) string {
	if snap.AnalyzedText != "" {
		return snap.AnalyzedText
	}
	if snap.SelectedJob != nil {
		return ListingText(*snap.SelectedJob)
	}
	return ""
}

// ListingText is the analysis input for a job chosen from search results.
func ListingText(j jobsearch.Listing) string {
	return fmt.Sprintf("Tiêu đề: %s. Công ty: %s. Địa điểm: %s. Lương: %s. Mô tả: %s",
		j.Title, j.Company, j.Location, j.Salary, j.Description)
}

// Preview shortens normalized text for the placeholder listing.
func Preview(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= previewRunes {
		return text
	}
	r := []rune(text)
	return string(r[:previewRunes]) + "..."
}

func isEmptyInput(in normalize.RawInput) bool {
	switch in.Kind {
	case normalize.KindURL:
		return strings.TrimSpace(in.URL) == ""
	case normalize.KindImage, normalize.KindFile:
		return len(in.Data) == 0
	}
	return strings.TrimSpace(in.Text) == ""
}

func (s *Service) finish(ctx context.Context, run runs.Run, start time.Time, cause error) {
	elapsed := time.Since(start)
	run.DurationMs = elapsed.Milliseconds()
	metrics.RunFinished(string(run.Kind), run.Status, elapsed)

	fields := map[string]any{
		"request_id":  telemetry.RequestIDFromContext(ctx),
		"session_id":  run.SessionID,
		"generation":  run.Generation,
		"kind":        string(run.Kind),
		"status":      run.Status,
		"duration_ms": run.DurationMs,
	}
	if run.ErrorCode != "" {
		fields["error_code"] = run.ErrorCode
	}
	if cause != nil {
		fields["error"] = cause
		telemetry.Warn("run.finished", fields)
	} else {
		telemetry.Info("run.finished", fields)
	}
	s.record(ctx, run)
}

// record writes the journal entry. A journal failure never affects the run.
func (s *Service) record(ctx context.Context, run runs.Run) {
	if s.Runs == nil {
		return
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if err := s.Runs.Create(ctx, run); err != nil {
		telemetry.Error("runs.journal_failed", map[string]any{
			"request_id": telemetry.RequestIDFromContext(ctx),
			"session_id": run.SessionID,
			"kind":       string(run.Kind),
			"error":      err,
		})
	}
}

func logTransition(ctx context.Context, event, sessionID string, gen uint64, transition string) {
	telemetry.Info(event, map[string]any{
		"request_id":        telemetry.RequestIDFromContext(ctx),
		"session_id":        sessionID,
		"generation":        gen,
		"status_transition": transition,
	})
}
