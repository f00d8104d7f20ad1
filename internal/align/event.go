package align

// Event is a recognition event pushed into a [Session] by the host transport.
// It is a sealed tagged variant: the only implementations are [Interim],
// [Final], and [EngineError]. Browser speech engines deliver loosely-typed
// payloads with optional fields; the variant forces each shape apart before
// it reaches the state machine.
type Event interface {
	event()
}

// Interim is a provisional recognition hypothesis that the engine may still
// revise. Interim text is cumulative within the current utterance: each event
// carries the engine's full current guess, not a delta, and replaces the
// previous interim fragment wholesale.
type Interim struct {
	// Text is the engine's current hypothesis for the utterance so far.
	Text string

	// Confidence is the engine's confidence in [0, 1]. Zero when the engine
	// does not report confidence.
	Confidence float64
}

// Final is a recognition hypothesis the engine will not revise further. Its
// text is appended to the session's accumulated transcript.
type Final struct {
	// Text is the committed recognition result.
	Text string

	// Confidence is the engine's confidence in [0, 1]. Zero when the engine
	// does not report confidence.
	Confidence float64
}

// EngineError reports an error condition from the speech engine.
type EngineError struct {
	Kind ErrorKind
}

func (Interim) event()     {}
func (Final) event()       {}
func (EngineError) event() {}

// ErrorKind identifies a speech engine error condition. The values mirror the
// error codes browser speech engines emit.
type ErrorKind string

const (
	// KindNotAllowed means the user declined microphone access.
	KindNotAllowed ErrorKind = "not-allowed"

	// KindServiceNotAllowed means the recognition service itself refused the
	// request (e.g. a platform policy block).
	KindServiceNotAllowed ErrorKind = "service-not-allowed"

	// KindNoSpeech means the engine heard nothing; it usually self-resolves.
	KindNoSpeech ErrorKind = "no-speech"

	// KindNetwork is a transient network failure inside the engine.
	KindNetwork ErrorKind = "network"

	// KindAborted means the engine aborted the current recognition attempt.
	KindAborted ErrorKind = "aborted"
)

// Transient reports whether the error condition may self-resolve on the next
// event and therefore must not change session state. Permission-class errors
// (not-allowed, service-not-allowed) are not transient: they force the
// session to stop.
func (k ErrorKind) Transient() bool {
	switch k {
	case KindNoSpeech, KindNetwork, KindAborted:
		return true
	}
	return false
}
