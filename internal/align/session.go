// Package align matches a streaming, noisy speech-to-text transcript against
// a fixed expected word sequence.
//
// The package has two layers. The pure functions — [Normalize], [Similarity],
// [FindBestMatch], and [Assess] — are total, deterministic, and free of I/O;
// they communicate "no result" through sentinel values (-1, empty slices)
// rather than errors so that callers on the hot path never need error
// handling. On top of them, [Session] is the streaming reconciliation state
// machine that consumes interim and final recognition hypotheses and
// maintains the current highlight position for live UI feedback.
//
// A Session is safe for concurrent use: the host transport may deliver
// recognition events from any goroutine, and all state mutation is serialized
// internally.
package align

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
)

// Sentinel errors surfaced by [Session] and its callers. Matching and scoring
// functions never return errors; only state-machine entry and forced stops do.
var (
	// ErrUnsupported means no speech engine is available in the reader's
	// environment. Permanent for the session.
	ErrUnsupported = errors.New("speech recognition not supported")

	// ErrPermissionDenied means the user declined microphone access.
	// Recoverable only through an explicit re-request, never a silent retry.
	ErrPermissionDenied = errors.New("microphone permission denied")

	// ErrEngineUnstable means the speech engine terminated unexpectedly more
	// times in a row than the restart budget allows.
	ErrEngineUnstable = errors.New("speech engine terminated repeatedly")
)

// DefaultRestartBudget is the number of consecutive unexpected engine
// terminations tolerated before a listening session gives up and stops.
const DefaultRestartBudget = 3

// State is the lifecycle state of a [Session].
type State int

const (
	// StateIdle is the initial state: no reading in progress.
	StateIdle State = iota

	// StateListening means a reading is in progress and recognition events
	// are being consumed.
	StateListening

	// StateStopped means the reading ended; the accumulated transcript is
	// retained for scoring. Starting again returns to listening.
	StateStopped
)

// String returns the human-readable name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of session state, taken under the session
// lock. The host transport pushes snapshots to the UI after each event.
type Snapshot struct {
	// State is the lifecycle state at snapshot time.
	State State

	// HighlightIndex is the reference word currently highlighted, or -1 when
	// no word has matched yet. When not -1 it is always a valid index into
	// the reference sequence.
	HighlightIndex int

	// LastWord is the most recently detected spoken word, un-normalized.
	LastWord string

	// InterimFragment is the current provisional hypothesis, replaced
	// wholesale by each interim event and cleared by final events and stops.
	InterimFragment string

	// Transcript is the accumulated final transcript, single-spaced.
	Transcript string

	// Confidence is the last engine-reported confidence in [0, 1], zero when
	// none has been observed.
	Confidence float64
}

// SessionOption is a functional option for [NewSession].
type SessionOption func(*Session)

// WithLiveThreshold overrides the fuzzy-match threshold used for live
// highlighting. Default: [LiveMatchThreshold].
func WithLiveThreshold(threshold float64) SessionOption {
	return func(s *Session) {
		s.liveThreshold = threshold
	}
}

// WithRestartBudget overrides the number of consecutive unexpected engine
// terminations tolerated before the session stops itself.
// Default: [DefaultRestartBudget].
func WithRestartBudget(budget int) SessionOption {
	return func(s *Session) {
		if budget > 0 {
			s.restartBudget = budget
		}
	}
}

// Session is the streaming reconciliation state machine for one reading
// session over one page. It owns all alignment state — there are no
// package-level globals — and is constructed fresh for each page reading.
//
// Events carry the generation returned by [Session.Start]; an event whose
// generation does not match the current one is discarded without mutating
// state. This closes the race between a stop request and a straggling late
// event from the engine.
//
// All methods are safe for concurrent use.
type Session struct {
	reference     []string
	liveThreshold float64
	restartBudget int

	mu              sync.Mutex
	state           State
	generation      uint64
	transcript      []string
	interim         string
	lastWord        string
	confidence      float64
	highlight       int
	consecutiveEnds int
	lastErr         error
}

// NewSession creates a [Session] for the given reference word sequence. The
// reference is copied and immutable for the life of the session.
func NewSession(reference []string, opts ...SessionOption) *Session {
	s := &Session{
		reference:     append([]string(nil), reference...),
		liveThreshold: LiveMatchThreshold,
		restartBudget: DefaultRestartBudget,
		state:         StateIdle,
		highlight:     -1,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start transitions the session to listening and returns the generation that
// subsequent events must carry. Starting clears the accumulated transcript,
// interim fragment, last-detected word, confidence, highlight, and any
// previous error. Start may be called from idle or stopped; calling it while
// already listening begins a fresh generation, implicitly discarding all
// in-flight events of the previous one.
func (s *Session) Start() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.state = StateListening
	s.transcript = s.transcript[:0]
	s.interim = ""
	s.lastWord = ""
	s.confidence = 0
	s.highlight = -1
	s.consecutiveEnds = 0
	s.lastErr = nil

	slog.Debug("reading session started",
		"generation", s.generation,
		"reference_words", len(s.reference))
	return s.generation
}

// Observe feeds one recognition event into the state machine and returns a
// snapshot of the resulting state.
//
// Events from a stale generation, or arriving when the session is not
// listening, are discarded: the returned snapshot reflects the unchanged
// state and the error is nil.
//
// A non-transient [EngineError] (not-allowed, service-not-allowed) forces the
// session to stop and returns [ErrPermissionDenied]. Transient engine errors
// are logged and change nothing.
func (s *Session) Observe(generation uint64, ev Event) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation || s.state != StateListening {
		slog.Debug("discarding stale recognition event",
			"event_generation", generation,
			"current_generation", s.generation,
			"state", s.state.String())
		return s.snapshotLocked(), nil
	}

	switch e := ev.(type) {
	case Interim:
		s.consecutiveEnds = 0
		s.interim = e.Text
		if tokens := strings.Fields(e.Text); len(tokens) > 0 {
			s.lastWord = tokens[len(tokens)-1]
		}
		if e.Confidence > 0 {
			s.confidence = e.Confidence
		}
		s.advanceHighlightLocked()

	case Final:
		s.consecutiveEnds = 0
		if tokens := strings.Fields(e.Text); len(tokens) > 0 {
			s.transcript = append(s.transcript, tokens...)
			s.lastWord = tokens[len(tokens)-1]
		}
		s.interim = ""
		if e.Confidence > 0 {
			s.confidence = e.Confidence
		}
		s.advanceHighlightLocked()

	case EngineError:
		if e.Kind.Transient() {
			slog.Debug("transient recognition error", "kind", string(e.Kind))
			return s.snapshotLocked(), nil
		}
		s.stopLocked()
		s.lastErr = ErrPermissionDenied
		slog.Warn("recognition permission revoked mid-session",
			"kind", string(e.Kind))
		return s.snapshotLocked(), ErrPermissionDenied
	}

	return s.snapshotLocked(), nil
}

// EngineEnded reports an unexpected engine termination while listening. It
// returns restart=true when the host should restart the engine and keep the
// session alive. After the restart budget is exhausted the session stops
// itself, [ErrEngineUnstable] is returned, and no further restart must be
// attempted.
//
// Stale generations are ignored and return (false, nil).
func (s *Session) EngineEnded(generation uint64) (restart bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation || s.state != StateListening {
		return false, nil
	}

	s.consecutiveEnds++
	if s.consecutiveEnds >= s.restartBudget {
		s.stopLocked()
		s.lastErr = ErrEngineUnstable
		slog.Warn("speech engine unstable, giving up",
			"consecutive_ends", s.consecutiveEnds)
		return false, ErrEngineUnstable
	}

	slog.Debug("speech engine ended unexpectedly, restarting",
		"consecutive_ends", s.consecutiveEnds,
		"budget", s.restartBudget)
	return true, nil
}

// Stop ends the reading session. The interim fragment and highlight are
// cleared; the accumulated transcript is retained for scoring and returned in
// the snapshot. Stopping a stale generation or a session that is not
// listening is a no-op.
func (s *Session) Stop(generation uint64) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation || s.state != StateListening {
		return s.snapshotLocked()
	}

	s.stopLocked()
	slog.Debug("reading session stopped",
		"generation", s.generation,
		"transcript_words", len(s.transcript))
	return s.snapshotLocked()
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Transcript returns the accumulated final transcript, single-spaced.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.transcript, " ")
}

// Err returns the error that forced the session to stop, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// stopLocked performs the listening → stopped transition. Must be called with
// s.mu held.
func (s *Session) stopLocked() {
	s.state = StateStopped
	s.interim = ""
	s.highlight = -1
}

// advanceHighlightLocked recomputes the highlighted reference index from the
// best available detected word. Word-detection sources, in priority order:
// the last-detected word from the most recent event, the last word of the
// current interim fragment, the last word of the accumulated transcript.
// Engines deliver interim and final events out of sync with the reader's
// pace, so the UI needs some basis for highlighting whenever any speech has
// been observed.
//
// The highlight only moves forward or stays put: a noisy interim hypothesis
// that transiently matches an earlier reference word must not flick the
// highlight backward. Must be called with s.mu held.
func (s *Session) advanceHighlightLocked() {
	word := s.detectedWordLocked()
	if word == "" {
		return
	}
	idx := FindBestMatch(s.reference, word, s.liveThreshold)
	if idx > s.highlight {
		s.highlight = idx
	}
}

// detectedWordLocked returns the best current basis for highlighting. Must be
// called with s.mu held.
func (s *Session) detectedWordLocked() string {
	if s.lastWord != "" {
		return s.lastWord
	}
	if tokens := strings.Fields(s.interim); len(tokens) > 0 {
		return tokens[len(tokens)-1]
	}
	if len(s.transcript) > 0 {
		return s.transcript[len(s.transcript)-1]
	}
	return ""
}

// snapshotLocked builds a [Snapshot]. Must be called with s.mu held.
func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		State:           s.state,
		HighlightIndex:  s.highlight,
		LastWord:        s.lastWord,
		InterimFragment: s.interim,
		Transcript:      strings.Join(s.transcript, " "),
		Confidence:      s.confidence,
	}
}
