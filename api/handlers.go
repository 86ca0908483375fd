package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/parley/api/auth"
	"github.com/papercomputeco/parley/pkg/storage"
	"github.com/papercomputeco/parley/pkg/transcript"
)

// Response messages shared with the web front end.
const (
	msgCredentialsRequired = "Username and password are required"
	msgInvalidCredentials  = "Invalid credentials"
	msgAuthRequired        = "Authentication required"
	msgMessageRequired     = "Message is required"
	msgInvalidBody         = "Invalid request body"
	msgShuttingDown        = "Server is shutting down"
)

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{Message: msg})
}

// handleHealth reports that the server is up.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleLogin checks mock credentials and issues a token.
func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req auth.LoginRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, msgInvalidBody)
	}

	resp, err := s.directory.Login(req)
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		return errorJSON(c, fiber.StatusBadRequest, msgCredentialsRequired)
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.logger.Info("login rejected", "username", req.Username)
		return errorJSON(c, fiber.StatusUnauthorized, msgInvalidCredentials)
	case err != nil:
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}

	s.logger.Info("login succeeded", "username", resp.User.Username)
	return c.JSON(resp)
}

// handleListTranscripts returns the caller's recorded exchanges.
func (s *Server) handleListTranscripts(c *fiber.Ctx) error {
	username, err := s.directory.Resolve(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, msgAuthRequired)
	}

	exchanges, err := s.driver.List(c.Context(), storage.Query{
		Username: username,
		Limit:    c.QueryInt("limit", 0),
	})
	if err != nil {
		s.logger.Error("listing transcripts failed", "username", username, "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "failed to list transcripts")
	}

	return c.JSON(transcript.NewList(exchanges))
}

// handleGetTranscript returns one of the caller's exchanges.
func (s *Server) handleGetTranscript(c *fiber.Ctx) error {
	username, err := s.directory.Resolve(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, msgAuthRequired)
	}

	ex, err := s.driver.Get(c.Context(), c.Params("id"))
	var notFound storage.NotFoundError
	if errors.As(err, &notFound) || (err == nil && ex.Username != username) {
		return errorJSON(c, fiber.StatusNotFound, "transcript not found")
	}
	if err != nil {
		s.logger.Error("loading transcript failed", "id", c.Params("id"), "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load transcript")
	}

	return c.JSON(ex)
}
