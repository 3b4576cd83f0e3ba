package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"fidesia-be/internal/config"
	"fidesia-be/internal/dto"
	"fidesia-be/internal/entity"
	"fidesia-be/internal/pkg/logger"
	"fidesia-be/pkg/corpus"
)

var ErrDocumentNotFound = errors.New("document introuvable")

const inventoryCacheKey = "corpus:inventory"

type ICorpusService interface {
	GetInventory(ctx context.Context) (*dto.CorpusInventoryDTO, error)
	// ResolveDocument maps a document id to the absolute PDF path to
	// serve, guarding against path traversal.
	ResolveDocument(ctx context.Context, documentId, sessionId string, userId *uuid.UUID) (string, error)
}

type corpusService struct {
	cfg       config.CorpusConfig
	cache     *gocache.Cache
	publisher IActivityPublisher
	log       logger.ILogger
}

func NewCorpusService(cfg config.CorpusConfig, publisher IActivityPublisher, log logger.ILogger) ICorpusService {
	ttl := time.Duration(cfg.CacheTTL) * time.Second
	return &corpusService{
		cfg:       cfg,
		cache:     gocache.New(ttl, 2*ttl),
		publisher: publisher,
		log:       log,
	}
}

// inventory returns the cached catalogue, reloading it from disk after
// the TTL so edits to the inventory file show up without a restart.
func (s *corpusService) inventory() (*corpus.Inventory, error) {
	if cached, found := s.cache.Get(inventoryCacheKey); found {
		return cached.(*corpus.Inventory), nil
	}

	inv, err := corpus.LoadInventory(s.cfg.InventoryPath)
	if err != nil {
		return nil, err
	}

	s.cache.SetDefault(inventoryCacheKey, inv)
	s.log.Info("Corpus", "inventory loaded", map[string]interface{}{
		"documents": len(inv.Documents),
	})
	return inv, nil
}

func (s *corpusService) GetInventory(ctx context.Context) (*dto.CorpusInventoryDTO, error) {
	inv, err := s.inventory()
	if err != nil {
		return nil, err
	}

	return &dto.CorpusInventoryDTO{
		Documents:  inv.Documents,
		Categories: inv.Categories(),
		Total:      len(inv.Documents),
	}, nil
}

func (s *corpusService) ResolveDocument(ctx context.Context, documentId, sessionId string, userId *uuid.UUID) (string, error) {
	inv, err := s.inventory()
	if err != nil {
		return "", err
	}

	doc, ok := inv.ById(documentId)
	if !ok {
		return "", ErrDocumentNotFound
	}

	path, err := corpus.ResolvePDF(s.cfg.DocumentsDir, doc.RelativePath)
	if err != nil {
		// An inventory entry pointing outside the corpus directory is a
		// data problem worth surfacing in the logs.
		s.log.Error("Corpus", "inventory entry rejected", map[string]interface{}{
			"document_id": documentId,
			"path":        doc.RelativePath,
			"error":       err.Error(),
		})
		return "", ErrDocumentNotFound
	}

	if s.publisher != nil {
		s.publisher.Publish(entity.ActivityDocumentOpened, sessionId, userId, "", map[string]interface{}{
			"document_id": documentId,
			"title":       doc.Title,
		})
	}
	return path, nil
}
