package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"fidesia-be/internal/dto"
	"fidesia-be/internal/pkg/logger"
	"fidesia-be/internal/pkg/serverutils"
	"fidesia-be/internal/service"
	"fidesia-be/pkg/rag/stream"
)

type IAskController interface {
	RegisterRoutes(r fiber.Router, auth *serverutils.JwtMiddleware)
	Ask(ctx *fiber.Ctx) error
}

type askController struct {
	service service.IAskService
	log     logger.ILogger
}

func NewAskController(service service.IAskService, log logger.ILogger) IAskController {
	return &askController{service: service, log: log}
}

func (c *askController) RegisterRoutes(r fiber.Router, auth *serverutils.JwtMiddleware) {
	// anonymous and authenticated users share the endpoint
	r.Post("/ask/stream", auth.Optional, c.Ask)
}

// Ask streams the answer as server-sent events. The response body stays
// open until the pipeline finishes or the client disconnects; a failed
// write is the disconnect signal and cancels generation.
func (c *askController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	sid := sessionId(ctx)
	streamReq := stream.Request{
		Question:       req.Question,
		ConversationID: req.ConversationID,
		SessionID:      sid,
		History:        req.Turns(),
		Profile:        req.Profile(),
	}

	// The stream outlives this handler, so it cannot hang off the
	// request context.
	streamCtx, cancel := context.WithCancel(context.Background())

	events, err := c.service.Ask(streamCtx, streamReq, currentUserId(ctx), ctx.IP())
	if err != nil {
		cancel()
		if errors.Is(err, stream.ErrInvalidRequest) {
			return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")
	ctx.Set(sessionHeader, sid)
	ctx.Set("X-Conversation-Id", streamReq.ConversationID)

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		for ev := range events {
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				c.abort(cancel, events)
				return
			}
			if err := w.Flush(); err != nil {
				c.abort(cancel, events)
				return
			}
		}
	}))
	return nil
}

// abort cancels the pipeline after a dead write and drains the channel
// so the producing goroutine can finish persisting and exit.
func (c *askController) abort(cancel context.CancelFunc, events <-chan stream.Event) {
	cancel()
	for range events {
	}
}
