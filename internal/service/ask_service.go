package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fidesia-be/internal/constant"
	"fidesia-be/internal/entity"
	"fidesia-be/internal/pkg/logger"
	"fidesia-be/internal/repository/unitofwork"
	"fidesia-be/pkg/embedding"
	"fidesia-be/pkg/llm"
	"fidesia-be/pkg/rag"
	"fidesia-be/pkg/rag/prompt"
	"fidesia-be/pkg/rag/stream"
)

type IAskService interface {
	// Ask runs the full answer pipeline for one question and returns the
	// live event stream. Cancelling ctx aborts generation and persists
	// whatever was produced.
	Ask(ctx context.Context, req stream.Request, userId *uuid.UUID, ipAddress string) (<-chan stream.Event, error)
}

type askService struct {
	retriever  stream.Retriever
	generator  stream.Generator
	uowFactory unitofwork.RepositoryFactory
	publisher  IActivityPublisher
	model      string
	log        logger.ILogger
}

func NewAskService(
	uowFactory unitofwork.RepositoryFactory,
	embedder embedding.Provider,
	llmProvider llm.Provider,
	publisher IActivityPublisher,
	model string,
	condenseModel string,
	scoreThreshold float64,
	log logger.ILogger,
) IAskService {
	if condenseModel == "" {
		condenseModel = model
	}
	return &askService{
		retriever: &vectorRetriever{
			uowFactory:     uowFactory,
			embedder:       embedder,
			llmProvider:    llmProvider,
			condenseModel:  condenseModel,
			scoreThreshold: scoreThreshold,
			log:            log,
		},
		generator: &llmGenerator{
			provider: llmProvider,
			model:    model,
		},
		uowFactory: uowFactory,
		publisher:  publisher,
		model:      model,
		log:        log,
	}
}

func (s *askService) Ask(ctx context.Context, req stream.Request, userId *uuid.UUID, ipAddress string) (<-chan stream.Event, error) {
	if len(req.History) > constant.MaxChatHistory {
		req.History = req.History[len(req.History)-constant.MaxChatHistory:]
	}
	if req.ConversationID == "" {
		req.ConversationID = uuid.NewString()
	}

	// The persister is bound per request: the stream draft carries no
	// user identity, ownership comes from the authenticated caller.
	persister := &exchangePersister{
		uowFactory: s.uowFactory,
		userId:     userId,
		model:      s.model,
	}

	controller := stream.NewController(s.retriever, s.generator, persister, s.log)
	events, err := controller.Run(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Publish(entity.ActivityQuestionAsked, req.SessionID, userId, ipAddress, map[string]interface{}{
			"conversation_id": req.ConversationID,
		})
	}

	return events, nil
}

// vectorRetriever condenses follow-up questions, embeds them and runs
// the pgvector similarity search.
type vectorRetriever struct {
	uowFactory     unitofwork.RepositoryFactory
	embedder       embedding.Provider
	llmProvider    llm.Provider
	condenseModel  string
	scoreThreshold float64
	log            logger.ILogger
}

func (r *vectorRetriever) Retrieve(ctx context.Context, question string, history []rag.Turn) ([]rag.Passage, error) {
	standalone := r.condense(ctx, question, history)

	res, err := r.embedder.Generate(standalone, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	uow := r.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.PassageRepository().SearchSimilarWithScore(
		ctx, res.Embedding.Values, constant.SimilarityTopK, r.scoreThreshold)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	if len(scored) > constant.ContextTopK {
		scored = scored[:constant.ContextTopK]
	}

	passages := make([]rag.Passage, len(scored))
	for i, sp := range scored {
		passages[i] = rag.Passage{
			Content:      sp.Passage.Content,
			FileName:     sp.Passage.FileName,
			RelativePath: sp.Passage.RelativePath,
			Title:        sp.Passage.Title,
			Score:        sp.Similarity,
		}
	}
	return passages, nil
}

// condense rewrites a follow-up into a standalone question. On any
// failure the original question is used; retrieval quality degrades
// but the answer still flows.
func (r *vectorRetriever) condense(ctx context.Context, question string, history []rag.Turn) string {
	if len(history) == 0 {
		return question
	}

	condensed, err := r.llmProvider.Chat(ctx, []llm.Message{
		{Role: constant.ChatMessageRoleUser, Content: prompt.Condense(history, question)},
	}, llm.WithModel(r.condenseModel), llm.WithTemperature(0))
	if err != nil {
		r.log.Warn("Ask", "Question condensation failed, using raw question", map[string]interface{}{
			"error": err.Error(),
		})
		return question
	}

	condensed = strings.TrimSpace(condensed)
	if condensed == "" {
		return question
	}
	return condensed
}

// llmGenerator streams the grounded answer from the chat model.
type llmGenerator struct {
	provider llm.Provider
	model    string
}

func (g *llmGenerator) Generate(ctx context.Context, question string, passages []rag.Passage, profile rag.Profile) (<-chan stream.Fragment, error) {
	builder := prompt.NewBuilder(question, passages, profile)

	chunks, err := g.provider.ChatStream(ctx, []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: builder.System()},
		{Role: constant.ChatMessageRoleUser, Content: builder.Build()},
	}, llm.WithModel(g.model))
	if err != nil {
		return nil, err
	}

	fragments := make(chan stream.Fragment)
	go func() {
		defer close(fragments)
		for chunk := range chunks {
			frag := stream.Fragment{Text: chunk.Text, Err: chunk.Err}
			select {
			case fragments <- frag:
			case <-ctx.Done():
				return
			}
			if chunk.Err != nil {
				return
			}
		}
	}()
	return fragments, nil
}

// exchangePersister stores cancelled and interrupted drafts on behalf
// of the pipeline.
type exchangePersister struct {
	uowFactory unitofwork.RepositoryFactory
	userId     *uuid.UUID
	model      string
}

func (p *exchangePersister) Save(ctx context.Context, draft stream.Draft) (int64, error) {
	exchange := &entity.Exchange{
		SessionId:      draft.SessionID,
		ConversationId: draft.ConversationID,
		UserId:         p.userId,
		Question:       draft.Question,
		Response:       draft.Answer,
		Sources:        draft.Sources,
		AgeGroup:       draft.Profile.AgeGroup,
		KnowledgeLevel: draft.Profile.KnowledgeLevel,
		ResponseLength: draft.Profile.ResponseLength,
		Model:          p.model,
		ResponseTimeMs: int(draft.ResponseTime / time.Millisecond),
		Status:         entity.ExchangeStatus(draft.Status),
		Timestamp:      time.Now(),
	}

	uow := p.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ExchangeRepository().Create(ctx, exchange); err != nil {
		return 0, err
	}
	return exchange.Id, nil
}
