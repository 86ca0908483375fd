package api

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/parley/api/worker"
	"github.com/papercomputeco/parley/pkg/chat"
	"github.com/papercomputeco/parley/pkg/sse"
	"github.com/papercomputeco/parley/pkg/transcript"
)

// handleChat validates the request and streams the assistant reply as
// "data: <json>" events.
func (s *Server) handleChat(c *fiber.Ctx) error {
	username, err := s.directory.Resolve(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, msgAuthRequired)
	}

	var req chat.Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, msgInvalidBody)
	}
	if strings.TrimSpace(req.Message) == "" {
		return errorJSON(c, fiber.StatusBadRequest, msgMessageRequired)
	}

	s.logger.Debug("chat message received",
		"username", username,
		"message", req.Message,
	)

	if !s.startReply() {
		return errorJSON(c, fiber.StatusServiceUnavailable, msgShuttingDown)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	// fasthttp drains the pipe with chunked encoding and flushes each chunk;
	// pw.Write blocks until the client side consumes it.
	pr, pw := io.Pipe()
	go s.streamReply(pw, username, req.Message, c.IP())

	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

// streamReply writes the bot's events to pw, folds them into the reply the
// client will see and records the exchange once the stream completes.
func (s *Server) streamReply(pw *io.PipeWriter, username, prompt, remote string) {
	defer s.replies.Done()

	start := time.Now()
	w := sse.NewWriter(pw)
	reply := chat.NewMessage()

	var writeErr error
	err := s.bot.Reply(s.ctx, prompt, func(ev chat.Event) error {
		payload, err := chat.Marshal(ev)
		if err != nil {
			return err
		}
		if err := w.WriteData(payload); err != nil {
			writeErr = err
			return err
		}
		s.logger.Debug("event sent",
			"username", username,
			"event_type", chat.TypeOf(ev),
		)
		reply = chat.Reduce(reply, ev)
		return nil
	})

	switch {
	case writeErr != nil:
		s.logger.Debug("client went away mid stream",
			"username", username,
			"error", writeErr,
		)
		_ = pw.CloseWithError(writeErr)
		return

	case err != nil:
		s.logger.Warn("reply stream interrupted",
			"username", username,
			"error", err,
		)
		ev := chat.ErrorEvent{Content: err.Error()}
		if payload, mErr := chat.Marshal(ev); mErr == nil {
			_ = w.WriteData(payload)
		}
		reply = chat.Reduce(reply, ev)
	}

	_ = pw.Close()

	reply = reply.Finalize()
	ex := transcript.New(username, prompt, reply)
	s.pool.Enqueue(worker.Job{Exchange: ex, RemoteAddr: remote})

	s.logger.Info("reply streamed",
		"username", username,
		"exchange_id", ex.ID,
		"content_type", reply.ContentType,
		"duration", time.Since(start),
	)
}
