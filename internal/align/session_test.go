package align_test

import (
	"errors"
	"testing"

	"github.com/readling/readling/internal/align"
)

var storyRef = []string{"Zip", "and", "Zap", "are", "space", "pirates."}

func TestSession_StartResetsState(t *testing.T) {
	t.Parallel()

	s := align.NewSession(storyRef)
	gen := s.Start()
	s.Observe(gen, align.Interim{Text: "zip and", Confidence: 0.9})
	s.Observe(gen, align.Final{Text: "zip and"})
	s.Stop(gen)

	gen2 := s.Start()
	if gen2 == gen {
		t.Fatalf("Start returned the same generation twice: %d", gen)
	}

	snap := s.Snapshot()
	if snap.State != align.StateListening {
		t.Errorf("state = %v, want listening", snap.State)
	}
	if snap.Transcript != "" {
		t.Errorf("transcript = %q, want empty after restart", snap.Transcript)
	}
	if snap.InterimFragment != "" || snap.LastWord != "" {
		t.Errorf("interim = %q, last word = %q, want both empty", snap.InterimFragment, snap.LastWord)
	}
	if snap.HighlightIndex != -1 {
		t.Errorf("highlight = %d, want -1", snap.HighlightIndex)
	}
	if snap.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", snap.Confidence)
	}
}

func TestSession_StreamingHighlightOnlyMovesForward(t *testing.T) {
	t.Parallel()

	s := align.NewSession(storyRef)
	gen := s.Start()

	snap, err := s.Observe(gen, align.Interim{Text: "zip"})
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if snap.HighlightIndex != 0 {
		t.Fatalf("after %q: highlight = %d, want 0", "zip", snap.HighlightIndex)
	}

	snap, _ = s.Observe(gen, align.Interim{Text: "zip and"})
	if snap.HighlightIndex != 1 {
		t.Fatalf("after %q: highlight = %d, want 1", "zip and", snap.HighlightIndex)
	}

	snap, _ = s.Observe(gen, align.Final{Text: "zip and zap "})
	if snap.HighlightIndex != 2 {
		t.Fatalf("after final: highlight = %d, want 2", snap.HighlightIndex)
	}
	if snap.Transcript != "zip and zap" {
		t.Errorf("transcript = %q, want %q", snap.Transcript, "zip and zap")
	}
	if snap.InterimFragment != "" {
		t.Errorf("interim fragment = %q, want cleared after final", snap.InterimFragment)
	}

	// A noisy interim that matches an earlier word must not regress the
	// highlight.
	snap, _ = s.Observe(gen, align.Interim{Text: "zip"})
	if snap.HighlightIndex != 2 {
		t.Errorf("after noisy interim: highlight = %d, want 2 (no regression)", snap.HighlightIndex)
	}
}

func TestSession_HighlightIndexAlwaysValid(t *testing.T) {
	t.Parallel()

	s := align.NewSession(storyRef)
	gen := s.Start()

	events := []align.Event{
		align.Interim{Text: "zzz qqq"},
		align.Interim{Text: "zip and zap are space pirates"},
		align.Final{Text: "zip and zap are space pirates"},
	}
	for _, ev := range events {
		snap, _ := s.Observe(gen, ev)
		if snap.HighlightIndex < -1 || snap.HighlightIndex >= len(storyRef) {
			t.Fatalf("highlight %d out of range for %d reference words", snap.HighlightIndex, len(storyRef))
		}
	}
}

func TestSession_ConfidenceTracksLatest(t *testing.T) {
	t.Parallel()

	s := align.NewSession(storyRef)
	gen := s.Start()

	s.Observe(gen, align.Interim{Text: "zip", Confidence: 0.8})
	// No confidence reported: previous value sticks.
	snap, _ := s.Observe(gen, align.Interim{Text: "zip and"})
	if snap.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8 retained", snap.Confidence)
	}

	snap, _ = s.Observe(gen, align.Interim{Text: "zip and zap", Confidence: 0.6})
	if snap.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6", snap.Confidence)
	}
}

func TestSession_StopRetainsTranscriptClearsInterim(t *testing.T) {
	t.Parallel()

	s := align.NewSession(storyRef)
	gen := s.Start()
	s.Observe(gen, align.Final{Text: "zip and"})
	s.Observe(gen, align.Interim{Text: "zap"})

	snap := s.Stop(gen)
	if snap.State != align.StateStopped {
		t.Fatalf("state = %v, want stopped", snap.State)
	}
	if snap.Transcript != "zip and" {
		t.Errorf("transcript = %q, want %q", snap.Transcript, "zip and")
	}
	if snap.InterimFragment != "" {
		t.Errorf("interim fragment = %q, want cleared", snap.InterimFragment)
	}
	if snap.HighlightIndex != -1 {
		t.Errorf("highlight = %d, want -1 after stop", snap.HighlightIndex)
	}
}

func TestSession_LateEventAfterStopIsDiscarded(t *testing.T) {
	t.Parallel()

	s := align.NewSession(storyRef)
	gen := s.Start()
	s.Observe(gen, align.Final{Text: "zip and"})
	s.Stop(gen)

	// A straggling event from the stopped generation must not mutate state.
	snap, err := s.Observe(gen, align.Final{Text: "zap are space pirates"})
	if err != nil {
		t.Fatalf("Observe after stop: %v", err)
	}
	if snap.Transcript != "zip and" {
		t.Errorf("transcript = %q, want %q (late event discarded)", snap.Transcript, "zip and")
	}
	if snap.State != align.StateStopped {
		t.Errorf("state = %v, want stopped", snap.State)
	}
}

func TestSession_StaleGenerationDiscardedAfterRestart(t *testing.T) {
	t.Parallel()

	s := align.NewSession(storyRef)
	oldGen := s.Start()
	s.Stop(oldGen)
	newGen := s.Start()

	// An event carrying the old generation arrives after the new session
	// started. It must be discarded even though the session is listening.
	snap, _ := s.Observe(oldGen, align.Final{Text: "zip"})
	if snap.Transcript != "" {
		t.Errorf("transcript = %q, want empty (stale generation)", snap.Transcript)
	}

	snap, _ = s.Observe(newGen, align.Final{Text: "zap"})
	if snap.Transcript != "zap" {
		t.Errorf("transcript = %q, want %q", snap.Transcript, "zap")
	}
}

func TestSession_TransientErrorsChangeNothing(t *testing.T) {
	t.Parallel()

	s := align.NewSession(storyRef)
	gen := s.Start()
	s.Observe(gen, align.Final{Text: "zip"})

	for _, kind := range []align.ErrorKind{align.KindNoSpeech, align.KindNetwork, align.KindAborted} {
		snap, err := s.Observe(gen, align.EngineError{Kind: kind})
		if err != nil {
			t.Errorf("EngineError(%s): err = %v, want nil", kind, err)
		}
		if snap.State != align.StateListening {
			t.Errorf("EngineError(%s): state = %v, want listening", kind, snap.State)
		}
		if snap.Transcript != "zip" {
			t.Errorf("EngineError(%s): transcript = %q, want %q", kind, snap.Transcript, "zip")
		}
	}
}

func TestSession_PermissionRevokedForcesStop(t *testing.T) {
	t.Parallel()

	for _, kind := range []align.ErrorKind{align.KindNotAllowed, align.KindServiceNotAllowed} {
		s := align.NewSession(storyRef)
		gen := s.Start()
		s.Observe(gen, align.Final{Text: "zip and"})

		snap, err := s.Observe(gen, align.EngineError{Kind: kind})
		if !errors.Is(err, align.ErrPermissionDenied) {
			t.Fatalf("EngineError(%s): err = %v, want ErrPermissionDenied", kind, err)
		}
		if snap.State != align.StateStopped {
			t.Errorf("EngineError(%s): state = %v, want stopped", kind, snap.State)
		}
		// Transcript survives the forced stop for scoring.
		if snap.Transcript != "zip and" {
			t.Errorf("EngineError(%s): transcript = %q, want retained", kind, snap.Transcript)
		}
		if !errors.Is(s.Err(), align.ErrPermissionDenied) {
			t.Errorf("Err() = %v, want ErrPermissionDenied", s.Err())
		}
	}
}

func TestSession_RestartBudgetExhaustion(t *testing.T) {
	t.Parallel()

	s := align.NewSession(storyRef)
	gen := s.Start()

	// First two unexpected terminations: restart allowed.
	for i := 0; i < 2; i++ {
		restart, err := s.EngineEnded(gen)
		if err != nil {
			t.Fatalf("EngineEnded #%d: err = %v, want nil", i+1, err)
		}
		if !restart {
			t.Fatalf("EngineEnded #%d: restart = false, want true", i+1)
		}
	}

	// Third consecutive termination exhausts the budget.
	restart, err := s.EngineEnded(gen)
	if restart {
		t.Fatal("EngineEnded #3: restart = true, want false")
	}
	if !errors.Is(err, align.ErrEngineUnstable) {
		t.Fatalf("EngineEnded #3: err = %v, want ErrEngineUnstable", err)
	}
	if got := s.Snapshot().State; got != align.StateStopped {
		t.Errorf("state = %v, want stopped", got)
	}

	// A fourth report must never trigger a restart.
	restart, err = s.EngineEnded(gen)
	if restart || err != nil {
		t.Errorf("EngineEnded #4: (%v, %v), want (false, nil) no-op", restart, err)
	}
}

func TestSession_SuccessfulEventResetsRestartBudget(t *testing.T) {
	t.Parallel()

	s := align.NewSession(storyRef)
	gen := s.Start()

	s.EngineEnded(gen)
	s.EngineEnded(gen)
	// Speech arrives: the terminations were not consecutive failures anymore.
	s.Observe(gen, align.Interim{Text: "zip"})

	restart, err := s.EngineEnded(gen)
	if !restart || err != nil {
		t.Errorf("EngineEnded after recovery: (%v, %v), want (true, nil)", restart, err)
	}
}

func TestSession_HighlightFallsBackToTranscript(t *testing.T) {
	t.Parallel()

	s := align.NewSession(storyRef)
	gen := s.Start()

	// Only a final event, no interim: highlighting must still have a basis
	// (the last word of the accumulated transcript).
	snap, _ := s.Observe(gen, align.Final{Text: "zip and zap"})
	if snap.HighlightIndex != 2 {
		t.Errorf("highlight = %d, want 2 from final transcript", snap.HighlightIndex)
	}
	if snap.LastWord != "zap" {
		t.Errorf("last word = %q, want %q", snap.LastWord, "zap")
	}
}
