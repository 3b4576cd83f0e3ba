package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fidesia-be/internal/pkg/logger"
	"fidesia-be/pkg/rag"
	"fidesia-be/pkg/rag/sources"
)

// ErrInvalidRequest rejects a malformed question before any retrieval or
// generation work happens.
var ErrInvalidRequest = errors.New("invalid question request")

// InterruptionNotice is appended to the persisted answer when a stream
// ends before the generator finished, so readers of the history know the
// answer is incomplete.
const InterruptionNotice = "\n\n[Réponse interrompue]"

// Generic client-facing messages. Internals are logged, never surfaced.
const (
	msgRetrievalFailed  = "La recherche dans le corpus est momentanément indisponible."
	msgGenerationFailed = "Une erreur est survenue pendant la génération de la réponse."
)

const persistTimeout = 10 * time.Second

// Request is the validated input of one streaming exchange.
type Request struct {
	Question       string
	ConversationID string
	SessionID      string
	History        []rag.Turn
	Profile        rag.Profile
}

// Status records how a stream ended.
type Status string

const (
	StatusComplete    Status = "complete"
	StatusInterrupted Status = "interrupted"
)

// Draft is the finished (or partial) exchange handed to the persistence
// collaborator when the pipeline itself has to save: user cancellation and
// mid-stream generator failure. On normal completion the client performs
// the save call and receives the exchange identifier out-of-band.
type Draft struct {
	ConversationID string
	SessionID      string
	Question       string
	Answer         string
	Sources        []sources.Reference
	Profile        rag.Profile
	ResponseTime   time.Duration
	Status         Status
}

// Retriever returns ranked passages for a question. It is a shared,
// read-mostly collaborator safe for concurrent calls.
type Retriever interface {
	Retrieve(ctx context.Context, question string, history []rag.Turn) ([]rag.Passage, error)
}

// Fragment is one incremental piece of generated text. A non-nil Err
// means the generator died mid-sequence; no further fragments follow.
type Fragment struct {
	Text string
	Err  error
}

// Generator lazily produces the answer as a single-pass fragment
// sequence. The channel is closed when the sequence ends; a partially
// consumed sequence cannot be resumed, retries need a fresh call.
type Generator interface {
	Generate(ctx context.Context, question string, passages []rag.Passage, profile rag.Profile) (<-chan Fragment, error)
}

// Persister saves a best-effort exchange for streams the client will not
// save itself (cancelled or interrupted).
type Persister interface {
	Save(ctx context.Context, draft Draft) (int64, error)
}

// Controller orchestrates one streaming request end-to-end: retrieve,
// resolve sources, stream fragments, detect cancellation, persist
// partial answers. One Controller serves many concurrent sessions; all
// per-request state lives in the Session.
type Controller struct {
	retriever Retriever
	generator Generator
	persister Persister
	log       logger.ILogger
}

func NewController(retriever Retriever, generator Generator, persister Persister, log logger.ILogger) *Controller {
	return &Controller{
		retriever: retriever,
		generator: generator,
		persister: persister,
		log:       log,
	}
}

// Run validates the request and starts the pipeline. The returned channel
// carries the live event sequence and is closed when the stream ends.
// Event ordering: zero or more chunks, exactly one sources event before
// the terminal event, then done XOR error. A cancelled stream closes the
// channel with no terminal event.
//
// Cancellation is signalled through ctx: the caller cancels it when the
// client goes away, and the pipeline stops consuming the generator
// promptly instead of burning tokens for nobody.
func (c *Controller) Run(ctx context.Context, req Request) (<-chan Event, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("%w: empty question", ErrInvalidRequest)
	}
	if !req.Profile.Valid() {
		return nil, fmt.Errorf("%w: unknown personalization value", ErrInvalidRequest)
	}

	events := make(chan Event)
	go c.run(ctx, req, events)
	return events, nil
}

func (c *Controller) run(ctx context.Context, req Request, events chan<- Event) {
	defer close(events)

	sess := newSession()

	passages, err := c.retriever.Retrieve(ctx, req.Question, req.History)
	if err != nil {
		c.log.Error("Stream", "Retrieval failed", map[string]interface{}{
			"session_id": req.SessionID,
			"error":      err.Error(),
		})
		c.emit(ctx, events, Event{Type: EventError, Content: msgRetrievalFailed})
		return
	}

	// Resolve and emit sources before the first chunk so clients can
	// render citations while the answer is still streaming. This order
	// is part of the contract: sources always precedes done/error.
	sess.sources = sources.Resolve(passages)
	if !c.emit(ctx, events, Event{Type: EventSources, Sources: sess.sources}) {
		return // client gone before any content: nothing to persist
	}

	fragments, err := c.generator.Generate(ctx, req.Question, passages, req.Profile)
	if err != nil {
		c.log.Error("Stream", "Generator refused to start", map[string]interface{}{
			"session_id": req.SessionID,
			"error":      err.Error(),
		})
		c.emit(ctx, events, Event{Type: EventError, Content: msgGenerationFailed})
		return
	}

	for {
		select {
		case <-ctx.Done():
			// Client-initiated cancellation (or transport drop). No
			// terminal event is deliverable; keep what was produced.
			c.persistPartial(req, sess)
			return
		case frag, ok := <-fragments:
			if !ok {
				// Normal completion. The exchange identifier reaches the
				// client out-of-band, through the subsequent save call.
				c.emit(ctx, events, Event{Type: EventDone})
				return
			}
			if frag.Err != nil {
				c.log.Error("Stream", "Generation interrupted", map[string]interface{}{
					"session_id": req.SessionID,
					"fragments":  sess.Fragments(),
					"error":      frag.Err.Error(),
				})
				c.emit(ctx, events, Event{Type: EventError, Content: msgGenerationFailed})
				c.persistPartial(req, sess)
				return
			}
			sess.append(frag.Text)
			if !c.emit(ctx, events, Event{Type: EventChunk, Content: frag.Text}) {
				c.persistPartial(req, sess)
				return
			}
		}
	}
}

// emit delivers one event unless the request context is already dead.
func (c *Controller) emit(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// persistPartial saves the accumulated text of an aborted stream, marked
// with the interruption notice. A stream that never produced a fragment
// leaves no exchange behind. Persistence failures are logged and
// swallowed: the user already saw whatever was rendered.
func (c *Controller) persistPartial(req Request, sess *Session) {
	if c.persister == nil || sess.Fragments() == 0 {
		return
	}

	draft := Draft{
		ConversationID: req.ConversationID,
		SessionID:      req.SessionID,
		Question:       req.Question,
		Answer:         sess.Text() + InterruptionNotice,
		Sources:        sess.sources,
		Profile:        req.Profile,
		ResponseTime:   sess.Elapsed(),
		Status:         StatusInterrupted,
	}

	// The request context is cancelled by now; the save gets its own.
	saveCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	id, err := c.persister.Save(saveCtx, draft)
	if err != nil {
		c.log.Error("Stream", "Failed to persist partial answer", map[string]interface{}{
			"session_id": req.SessionID,
			"fragments":  sess.Fragments(),
			"error":      err.Error(),
		})
		return
	}
	c.log.Info("Stream", "Partial answer persisted", map[string]interface{}{
		"session_id":  req.SessionID,
		"exchange_id": id,
		"fragments":   sess.Fragments(),
	})
}
