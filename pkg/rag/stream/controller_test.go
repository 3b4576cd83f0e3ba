package stream

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fidesia-be/internal/pkg/logger"
	"fidesia-be/pkg/rag"
)

type fakeRetriever struct {
	passages []rag.Passage
	err      error
	calls    int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, question string, history []rag.Turn) ([]rag.Passage, error) {
	f.calls++
	return f.passages, f.err
}

// scriptedGenerator plays back a fixed fragment script, then either
// closes the sequence or blocks until the context dies.
type scriptedGenerator struct {
	fragments []Fragment
	startErr  error
	hang      bool
	calls     int
}

func (g *scriptedGenerator) Generate(ctx context.Context, question string, passages []rag.Passage, profile rag.Profile) (<-chan Fragment, error) {
	g.calls++
	if g.startErr != nil {
		return nil, g.startErr
	}
	ch := make(chan Fragment)
	go func() {
		defer close(ch)
		for _, frag := range g.fragments {
			select {
			case ch <- frag:
			case <-ctx.Done():
				return
			}
		}
		if g.hang {
			<-ctx.Done()
		}
	}()
	return ch, nil
}

type recordingPersister struct {
	mu     sync.Mutex
	drafts []Draft
	nextID int64
}

func (p *recordingPersister) Save(ctx context.Context, draft Draft) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drafts = append(p.drafts, draft)
	p.nextID++
	return p.nextID, nil
}

func (p *recordingPersister) saved() []Draft {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Draft(nil), p.drafts...)
}

func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var seen []Event
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return seen
			}
			seen = append(seen, ev)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for events, got %d so far", len(seen))
		}
	}
}

func validRequest() Request {
	return Request{
		Question:       "Qu'est-ce que la grâce ?",
		ConversationID: "conv-1",
		SessionID:      "sess-1",
		Profile:        rag.Profile{AgeGroup: rag.AgeAdulte, KnowledgeLevel: rag.LevelInitie, ResponseLength: rag.LengthSynthetique},
	}
}

func TestRunNormalCompletion(t *testing.T) {
	retriever := &fakeRetriever{passages: []rag.Passage{
		{FileName: "catechisme.pdf", RelativePath: "magistere/catechisme.pdf", Score: 0.9},
		{FileName: "catechisme.pdf", RelativePath: "magistere/catechisme.pdf", Score: 0.7},
		{FileName: "somme.pdf", RelativePath: "aquin/somme.pdf", Score: 0.8},
	}}
	generator := &scriptedGenerator{fragments: []Fragment{
		{Text: "La grâce "}, {Text: "est un don "}, {Text: "gratuit de Dieu."},
	}}
	persister := &recordingPersister{}
	ctrl := NewController(retriever, generator, persister, logger.NewNopLogger())

	events, err := ctrl.Run(context.Background(), validRequest())
	require.NoError(t, err)

	seen := collect(t, events)
	require.NotEmpty(t, seen)

	// sources first, then chunks, then done
	assert.Equal(t, EventSources, seen[0].Type)
	require.Len(t, seen[0].Sources, 2)
	assert.Equal(t, "catechisme.pdf", seen[0].Sources[0].FileName)
	assert.InDelta(t, 0.9, seen[0].Sources[0].Score, 1e-9)

	last := seen[len(seen)-1]
	assert.Equal(t, EventDone, last.Type)

	var answer strings.Builder
	for _, ev := range seen[1 : len(seen)-1] {
		require.Equal(t, EventChunk, ev.Type)
		answer.WriteString(ev.Content)
	}
	assert.Equal(t, "La grâce est un don gratuit de Dieu.", answer.String())

	// normal completion: the client performs the save call itself
	assert.Empty(t, persister.saved())
}

func TestRunCancellationPersistsPartialAnswer(t *testing.T) {
	retriever := &fakeRetriever{passages: []rag.Passage{{FileName: "vulgate.pdf", Score: 0.8}}}
	generator := &scriptedGenerator{
		fragments: []Fragment{{Text: "In "}, {Text: "principio "}, {Text: "erat Verbum"}},
		hang:      true,
	}
	persister := &recordingPersister{}
	ctrl := NewController(retriever, generator, persister, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	events, err := ctrl.Run(ctx, validRequest())
	require.NoError(t, err)

	var seen []Event
	for i := 0; i < 4; i++ { // sources + 3 chunks
		ev, ok := <-events
		require.True(t, ok)
		seen = append(seen, ev)
	}
	cancel()

	// the stream ends without a terminal event
	for ev := range events {
		assert.NotEqual(t, EventDone, ev.Type)
		assert.NotEqual(t, EventError, ev.Type)
	}

	drafts := persister.saved()
	require.Len(t, drafts, 1)
	assert.Equal(t, "In principio erat Verbum"+InterruptionNotice, drafts[0].Answer)
	assert.Equal(t, StatusInterrupted, drafts[0].Status)
	require.Len(t, drafts[0].Sources, 1)
	assert.Equal(t, "vulgate.pdf", drafts[0].Sources[0].FileName)
	assert.Equal(t, EventSources, seen[0].Type)
}

func TestRunCancellationWithoutFragmentsLeavesNoExchange(t *testing.T) {
	retriever := &fakeRetriever{passages: []rag.Passage{{FileName: "a.pdf", Score: 0.5}}}
	generator := &scriptedGenerator{hang: true}
	persister := &recordingPersister{}
	ctrl := NewController(retriever, generator, persister, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	events, err := ctrl.Run(ctx, validRequest())
	require.NoError(t, err)

	ev, ok := <-events
	require.True(t, ok)
	assert.Equal(t, EventSources, ev.Type)
	cancel()

	for range events {
	}
	assert.Empty(t, persister.saved())
}

func TestRunRetrievalFailure(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("vector index unreachable")}
	generator := &scriptedGenerator{}
	persister := &recordingPersister{}
	ctrl := NewController(retriever, generator, persister, logger.NewNopLogger())

	events, err := ctrl.Run(context.Background(), validRequest())
	require.NoError(t, err)

	seen := collect(t, events)
	require.Len(t, seen, 1)
	assert.Equal(t, EventError, seen[0].Type)
	assert.NotContains(t, seen[0].Content, "unreachable") // internals stay internal
	assert.Zero(t, generator.calls)
	assert.Empty(t, persister.saved())
}

func TestRunGenerationInterruptedMidStream(t *testing.T) {
	retriever := &fakeRetriever{passages: []rag.Passage{{FileName: "peres.pdf", Score: 0.6}}}
	generator := &scriptedGenerator{fragments: []Fragment{
		{Text: "Dieu est "},
		{Err: errors.New("model connection reset")},
	}}
	persister := &recordingPersister{}
	ctrl := NewController(retriever, generator, persister, logger.NewNopLogger())

	events, err := ctrl.Run(context.Background(), validRequest())
	require.NoError(t, err)

	seen := collect(t, events)
	require.Len(t, seen, 3) // sources, chunk, error
	assert.Equal(t, EventSources, seen[0].Type)
	assert.Equal(t, EventChunk, seen[1].Type)
	assert.Equal(t, EventError, seen[2].Type)

	drafts := persister.saved()
	require.Len(t, drafts, 1)
	assert.Equal(t, "Dieu est "+InterruptionNotice, drafts[0].Answer)
	assert.Equal(t, StatusInterrupted, drafts[0].Status)
}

func TestRunEmptyRetrievalStillCompletes(t *testing.T) {
	retriever := &fakeRetriever{passages: nil}
	generator := &scriptedGenerator{fragments: []Fragment{{Text: "Réponse sans sources."}}}
	ctrl := NewController(retriever, generator, &recordingPersister{}, logger.NewNopLogger())

	events, err := ctrl.Run(context.Background(), validRequest())
	require.NoError(t, err)

	seen := collect(t, events)
	require.Len(t, seen, 3)
	assert.Equal(t, EventSources, seen[0].Type)
	assert.Empty(t, seen[0].Sources)
	assert.Equal(t, EventChunk, seen[1].Type)
	assert.Equal(t, EventDone, seen[2].Type)
}

func TestRunRejectsInvalidRequests(t *testing.T) {
	retriever := &fakeRetriever{}
	generator := &scriptedGenerator{}
	ctrl := NewController(retriever, generator, &recordingPersister{}, logger.NewNopLogger())

	tests := []struct {
		name    string
		mutate  func(*Request)
	}{
		{"empty question", func(r *Request) { r.Question = "   " }},
		{"unknown response length", func(r *Request) { r.Profile.ResponseLength = "ultra-long" }},
		{"unknown age group", func(r *Request) { r.Profile.AgeGroup = "nouveau-ne" }},
		{"unknown knowledge level", func(r *Request) { r.Profile.KnowledgeLevel = "doctorat" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			_, err := ctrl.Run(context.Background(), req)
			require.ErrorIs(t, err, ErrInvalidRequest)
		})
	}

	// rejected before any retrieval or generation work
	assert.Zero(t, retriever.calls)
	assert.Zero(t, generator.calls)
}

func TestRunGeneratorStartFailure(t *testing.T) {
	retriever := &fakeRetriever{passages: []rag.Passage{{FileName: "a.pdf", Score: 0.4}}}
	generator := &scriptedGenerator{startErr: errors.New("ollama down")}
	persister := &recordingPersister{}
	ctrl := NewController(retriever, generator, persister, logger.NewNopLogger())

	events, err := ctrl.Run(context.Background(), validRequest())
	require.NoError(t, err)

	seen := collect(t, events)
	require.Len(t, seen, 2)
	assert.Equal(t, EventSources, seen[0].Type)
	assert.Equal(t, EventError, seen[1].Type)
	assert.Empty(t, persister.saved())
}
