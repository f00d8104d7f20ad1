package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/readling/readling/internal/align"
	"github.com/readling/readling/internal/observe"
	"github.com/readling/readling/internal/store"
	"github.com/readling/readling/pkg/book"
	"github.com/readling/readling/pkg/provider/assess"
)

// clientMessage is one message from the reading client. Type selects which
// fields are meaningful:
//
//	start       — BookID, PageNumber; begins a reading session
//	interim     — Text, Confidence; provisional recognition hypothesis
//	final       — Text, Confidence; committed recognition result
//	error       — Error; a speech engine error code (e.g. "no-speech")
//	ended       — the engine terminated unexpectedly
//	stop        — end the reading and request assessment
//	unsupported — the client has no speech engine
type clientMessage struct {
	Type       string  `json:"type"`
	BookID     int64   `json:"bookId,omitempty"`
	PageNumber int     `json:"pageNumber,omitempty"`
	Text       string  `json:"text,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// serverMessage is one message to the reading client.
//
//	started    — Words: the page's reference word sequence
//	highlight  — Index: the currently highlighted reference word (-1 none)
//	restart    — the client should restart its speech engine
//	assessment — Result and Transcript for the completed reading
//	error      — Message: the session cannot continue
type serverMessage struct {
	Type       string         `json:"type"`
	Words      []string       `json:"words,omitempty"`
	Index      *int           `json:"index,omitempty"`
	Result     *assess.Result `json:"result,omitempty"`
	Transcript string         `json:"transcript,omitempty"`
	Message    string         `json:"message,omitempty"`
}

// handleReadSession serves GET /ws/read: one websocket connection per page
// reading. The connection drives an [align.Session]; late recognition events
// after a stop are discarded by the session's generation counter.
func (s *Server) handleReadSession(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		observe.Logger(r.Context()).Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "session aborted")

	ctx := r.Context()
	s.metrics.ActiveReadingSessions.Add(ctx, 1)
	defer s.metrics.ActiveReadingSessions.Add(ctx, -1)

	rs := &readSession{srv: s, conn: conn}
	rs.run(ctx)
}

// readSession is the per-connection state of one websocket reading session.
type readSession struct {
	srv  *Server
	conn *websocket.Conn

	session    *align.Session
	generation uint64
	bookID     int64
	page       *book.Page
	highlight  int
}

// run reads client messages until the connection drops or the reading
// completes.
func (rs *readSession) run(ctx context.Context) {
	log := observe.Logger(ctx)
	rs.highlight = -1

	for {
		_, data, err := rs.conn.Read(ctx)
		if err != nil {
			// Normal close or context cancellation.
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			rs.send(ctx, serverMessage{Type: "error", Message: "malformed message"})
			continue
		}

		done, err := rs.handle(ctx, msg)
		if err != nil {
			log.Warn("reading session failed", "error", err)
			rs.send(ctx, serverMessage{Type: "error", Message: err.Error()})
		}
		if done {
			rs.conn.Close(websocket.StatusNormalClosure, "reading complete")
			return
		}
	}
}

// handle processes one client message. It returns done=true when the
// connection should close.
func (rs *readSession) handle(ctx context.Context, msg clientMessage) (done bool, err error) {
	switch msg.Type {
	case "start":
		return false, rs.start(ctx, msg)

	case "unsupported":
		return true, align.ErrUnsupported

	case "interim", "final", "error":
		return rs.observe(ctx, msg)

	case "ended":
		if rs.session == nil {
			return false, nil
		}
		restart, err := rs.session.EngineEnded(rs.generation)
		if restart {
			rs.send(ctx, serverMessage{Type: "restart"})
			return false, nil
		}
		if errors.Is(err, align.ErrEngineUnstable) {
			// The session stopped itself; assess what was read so far.
			rs.send(ctx, serverMessage{Type: "error", Message: err.Error()})
			return true, rs.finish(ctx)
		}
		return false, nil

	case "stop":
		if rs.session == nil {
			return true, nil
		}
		rs.session.Stop(rs.generation)
		return true, rs.finish(ctx)

	default:
		rs.send(ctx, serverMessage{Type: "error", Message: "unknown message type"})
		return false, nil
	}
}

// start loads the requested page and begins a fresh session generation.
func (rs *readSession) start(ctx context.Context, msg clientMessage) error {
	b, err := rs.srv.books.GetBook(ctx, msg.BookID)
	if errors.Is(err, store.ErrNotFound) {
		return errors.New("book not found")
	}
	if err != nil {
		return errors.New("could not load book")
	}

	var page *book.Page
	for i := range b.Pages {
		if b.Pages[i].PageNumber == msg.PageNumber {
			page = &b.Pages[i]
			break
		}
	}
	if page == nil {
		return errors.New("page not found")
	}

	rs.bookID = b.ID
	rs.page = page
	rs.highlight = -1
	words := page.ReferenceWords()
	rs.session = align.NewSession(words,
		align.WithLiveThreshold(rs.srv.liveThreshold),
		align.WithRestartBudget(rs.srv.restartBudget))
	rs.generation = rs.session.Start()

	rs.send(ctx, serverMessage{Type: "started", Words: words})
	return nil
}

// observe feeds one recognition event into the aligner and pushes a highlight
// update when the position advanced.
func (rs *readSession) observe(ctx context.Context, msg clientMessage) (done bool, err error) {
	if rs.session == nil {
		return false, nil
	}

	var ev align.Event
	switch msg.Type {
	case "interim":
		ev = align.Interim{Text: msg.Text, Confidence: msg.Confidence}
	case "final":
		ev = align.Final{Text: msg.Text, Confidence: msg.Confidence}
	case "error":
		ev = align.EngineError{Kind: align.ErrorKind(msg.Error)}
	}
	rs.srv.metrics.RecordRecognitionEvent(ctx, msg.Type)

	snap, err := rs.session.Observe(rs.generation, ev)
	if errors.Is(err, align.ErrPermissionDenied) {
		rs.send(ctx, serverMessage{Type: "error", Message: err.Error()})
		return true, rs.finish(ctx)
	}

	if snap.HighlightIndex != rs.highlight {
		if snap.HighlightIndex > rs.highlight {
			rs.srv.metrics.HighlightAdvances.Add(ctx, 1)
		}
		rs.highlight = snap.HighlightIndex
		idx := snap.HighlightIndex
		rs.send(ctx, serverMessage{Type: "highlight", Index: &idx})
	}
	return false, nil
}

// finish assesses the accumulated transcript, persists the reading, and sends
// the assessment to the client. Called after the session has stopped.
func (rs *readSession) finish(ctx context.Context) error {
	transcript := rs.session.Transcript()
	expected := rs.page.Text()

	start := time.Now()
	result, err := rs.srv.assessor.Assess(ctx, assess.Request{
		Expected: expected,
		Actual:   transcript,
	})
	rs.srv.metrics.AssessDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		rs.srv.metrics.RecordProviderError(ctx, "assess")
		return errors.New("assessment failed")
	}

	reading := &store.Reading{
		BookID:     rs.bookID,
		PageNumber: rs.page.PageNumber,
		Transcript: transcript,
		Scores:     result.Scores,
		Results:    result.Analysis,
		Source:     assessSource(result),
	}
	if err := rs.srv.readings.SaveReading(ctx, reading); err != nil {
		observe.Logger(ctx).Error("save reading failed", "error", err)
		// The reader still gets their result even if persistence failed.
	}
	rs.srv.metrics.RecordReadingScored(ctx, reading.Source)

	rs.send(ctx, serverMessage{
		Type:       "assessment",
		Result:     result,
		Transcript: transcript,
	})
	return nil
}

// assessSource labels where an assessment came from: results with phoneme
// data came from the external provider, the local fallback has none.
func assessSource(result *assess.Result) string {
	for _, wa := range result.Analysis {
		if len(wa.PhonemeBreakdown) > 0 {
			return "llm"
		}
	}
	return "local"
}

// send writes one server message, logging delivery failures. The session's
// correctness never depends on a message arriving.
func (rs *readSession) send(ctx context.Context, msg serverMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		observe.Logger(ctx).Error("marshal server message", "error", err)
		return
	}
	if err := rs.conn.Write(ctx, websocket.MessageText, data); err != nil {
		observe.Logger(ctx).Debug("websocket write failed", "error", err)
	}
}
