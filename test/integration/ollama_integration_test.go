package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fidesia-be/pkg/embedding"
	"fidesia-be/pkg/llm"
	"fidesia-be/pkg/llm/ollama"
)

// These tests need a local Ollama instance with the configured models
// pulled. Enable with OLLAMA_INTEGRATION=1.

func ollamaEnv(t *testing.T) (string, string, string) {
	t.Helper()
	if os.Getenv("OLLAMA_INTEGRATION") != "1" {
		t.Skip("Skipping Ollama integration test: OLLAMA_INTEGRATION not set")
	}
	baseURL := os.Getenv("OLLAMA_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	chatModel := os.Getenv("LLM_MODEL")
	if chatModel == "" {
		chatModel = "mistral:7b"
	}
	embedModel := os.Getenv("OLLAMA_EMBEDDING_MODEL")
	if embedModel == "" {
		embedModel = "nomic-embed-text"
	}
	return baseURL, chatModel, embedModel
}

func TestOllamaEmbedding(t *testing.T) {
	baseURL, _, embedModel := ollamaEnv(t)

	provider := embedding.NewOllamaProvider(baseURL, embedModel)
	resp, err := provider.Generate("Qu'est-ce que la Trinité ?", embedding.TaskRetrievalQuery)

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.Embedding.Values)
	t.Logf("Embedding dimension: %d", len(resp.Embedding.Values))
}

func TestOllamaChatStream(t *testing.T) {
	baseURL, chatModel, _ := ollamaEnv(t)

	provider := ollama.NewOllamaProvider(baseURL, chatModel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	chunks, err := provider.ChatStream(ctx, []llm.Message{
		{Role: "system", Content: "Réponds en une seule phrase."},
		{Role: "user", Content: "Qui était saint Augustin ?"},
	}, llm.WithTemperature(0))
	assert.NoError(t, err)

	var full string
	count := 0
	for chunk := range chunks {
		assert.NoError(t, chunk.Err)
		full += chunk.Text
		count++
	}

	assert.NotEmpty(t, full)
	assert.Greater(t, count, 1, "response should arrive in several chunks")
	t.Logf("Received %d chunks, %d characters", count, len(full))
}

func TestOllamaChatStreamCancellation(t *testing.T) {
	baseURL, chatModel, _ := ollamaEnv(t)

	provider := ollama.NewOllamaProvider(baseURL, chatModel)

	ctx, cancel := context.WithCancel(context.Background())
	chunks, err := provider.ChatStream(ctx, []llm.Message{
		{Role: "user", Content: "Raconte longuement l'histoire de l'Église."},
	})
	assert.NoError(t, err)

	// Take a couple of chunks then cancel mid-generation
	received := 0
	for range chunks {
		received++
		if received == 2 {
			cancel()
			break
		}
	}
	cancel()

	// The channel must close shortly after cancellation
	deadline := time.After(10 * time.Second)
	for {
		select {
		case _, ok := <-chunks:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("stream did not close after cancellation")
		}
	}
}
