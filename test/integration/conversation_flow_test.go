package integration

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"fidesia-be/internal/dto"
)

func TestConversationFlow(t *testing.T) {
	app, db := newTestApp(t)

	sessionA := "it-session-" + uuid.NewString()
	sessionB := "it-session-" + uuid.NewString()
	conversationId := uuid.NewString()

	defer db.Exec("DELETE FROM exchanges WHERE session_id IN (?, ?)", sessionA, sessionB)

	post := func(t *testing.T, path, session string, payload interface{}) *httptest.ResponseRecorder {
		t.Helper()
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest("POST", path, strings.NewReader(string(body)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Session-Id", session)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		rec := httptest.NewRecorder()
		rec.Code = resp.StatusCode
		rec.Body.ReadFrom(resp.Body)
		return rec
	}

	get := func(t *testing.T, path, session string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set("X-Session-Id", session)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		rec := httptest.NewRecorder()
		rec.Code = resp.StatusCode
		rec.Body.ReadFrom(resp.Body)
		return rec
	}

	var exchangeId int64

	t.Run("Save exchange", func(t *testing.T) {
		rec := post(t, "/api/conversations/exchanges", sessionA, dto.SaveExchangeRequest{
			ConversationID: conversationId,
			Question:       "Qu'est-ce que l'Eucharistie ?",
			Response:       "Le sacrement du Corps et du Sang du Christ.",
			ResponseTimeMs: 850,
		})
		assert.Equal(t, 201, rec.Code)

		var result envelope[dto.SaveExchangeResponse]
		json.Unmarshal(rec.Body.Bytes(), &result)
		assert.True(t, result.Success)
		assert.NotZero(t, result.Data.ExchangeId)
		exchangeId = result.Data.ExchangeId
	})

	t.Run("List conversations", func(t *testing.T) {
		rec := get(t, "/api/conversations/", sessionA)
		assert.Equal(t, 200, rec.Code)

		var result envelope[[]dto.ConversationDTO]
		json.Unmarshal(rec.Body.Bytes(), &result)

		found := false
		for _, c := range result.Data {
			if c.ConversationId == conversationId {
				found = true
				assert.Equal(t, "Qu'est-ce que l'Eucharistie ?", c.Title)
				assert.Equal(t, 1, c.ExchangeCount)
			}
		}
		assert.True(t, found, "saved conversation should be listed")
	})

	t.Run("History visible to owner session", func(t *testing.T) {
		rec := get(t, fmt.Sprintf("/api/conversations/%s/history", conversationId), sessionA)
		assert.Equal(t, 200, rec.Code)

		var result envelope[[]dto.ExchangeDTO]
		json.Unmarshal(rec.Body.Bytes(), &result)
		assert.Len(t, result.Data, 1)
		assert.Equal(t, "complete", result.Data[0].Status)
	})

	t.Run("History hidden from another session", func(t *testing.T) {
		rec := get(t, fmt.Sprintf("/api/conversations/%s/history", conversationId), sessionB)
		assert.Equal(t, 403, rec.Code)
	})

	t.Run("Appending to a foreign conversation is forbidden", func(t *testing.T) {
		rec := post(t, "/api/conversations/exchanges", sessionB, dto.SaveExchangeRequest{
			ConversationID: conversationId,
			Question:       "intrusion",
			Response:       "intrusion",
		})
		assert.Equal(t, 403, rec.Code)
	})

	t.Run("Rate exchange", func(t *testing.T) {
		rec := post(t, fmt.Sprintf("/api/conversations/exchanges/%d/rating", exchangeId), sessionA,
			dto.RateExchangeRequest{Rating: 5})
		assert.Equal(t, 200, rec.Code)

		// Another session cannot rate it
		rec = post(t, fmt.Sprintf("/api/conversations/exchanges/%d/rating", exchangeId), sessionB,
			dto.RateExchangeRequest{Rating: 1})
		assert.Equal(t, 403, rec.Code)
	})

	t.Run("Delete conversation", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/api/conversations/"+conversationId, nil)
		req.Header.Set("X-Session-Id", sessionB)
		resp, _ := app.Test(req, -1)
		assert.Equal(t, 403, resp.StatusCode)

		req = httptest.NewRequest("DELETE", "/api/conversations/"+conversationId, nil)
		req.Header.Set("X-Session-Id", sessionA)
		resp, _ = app.Test(req, -1)
		assert.Equal(t, 200, resp.StatusCode)

		rec := get(t, fmt.Sprintf("/api/conversations/%s/history", conversationId), sessionA)
		assert.Equal(t, 200, rec.Code)
		var result envelope[[]dto.ExchangeDTO]
		json.Unmarshal(rec.Body.Bytes(), &result)
		assert.Empty(t, result.Data)
	})
}

func TestSaintsAndCorpusEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	t.Run("Saints of today", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/saints/today", nil)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("Saints of a fixed date", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/saints/date/12/25", nil)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		result := decodeEnvelope[dto.SaintsOfDayDTO](t, resp.Body)
		assert.NotEmpty(t, result.Data.Saints)
	})

	t.Run("Corpus inventory", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/corpus/inventory", nil)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("Unknown corpus document", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/corpus/documents/nexiste-pas", nil)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})
}
