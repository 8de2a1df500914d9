package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/polymath-ai/polymath/internal/expert"
	"github.com/polymath-ai/polymath/internal/orchestrator"
	"github.com/polymath-ai/polymath/internal/profile"
)

type chatRequest struct {
	Message     interface{}      `json:"message"`
	UserProfile *profile.Profile `json:"userProfile"`
}

type chatMetadata struct {
	QueryComplexity  float64  `json:"queryComplexity"`
	ActiveAgentCount int      `json:"activeAgentCount"`
	RelevantDomains  []string `json:"relevantDomains"`
}

type chatResponse struct {
	Response string                `json:"response"`
	Agents   []expert.Contribution `json:"agents"`
	Sources  []string              `json:"sources"`
	Metadata chatMetadata          `json:"metadata"`
}

// parseMessage validates the inbound message field: required, string, and
// non-blank after trimming.
func parseMessage(req chatRequest) (string, error) {
	message, ok := req.Message.(string)
	if !ok || strings.TrimSpace(message) == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "message is required and must be a string")
	}
	return strings.TrimSpace(message), nil
}

func (s *Server) chat(c echo.Context) error {
	started := time.Now()

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	message, err := parseMessage(req)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if s.cfg.General.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.General.RequestTimeout)
		defer cancel()
	}

	answer, err := s.orch.Process(ctx, message, req.UserProfile)
	if err != nil {
		s.logger.Printf("chat processing failed: %v", err)
		s.telemetry.RecordRequest("/api/chat", false, time.Since(started))
		// Internal failure detail never reaches the caller.
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error processing your request")
	}

	s.telemetry.RecordRequest("/api/chat", true, time.Since(started))
	return c.JSON(http.StatusOK, buildChatResponse(answer))
}

// chatStream answers over SSE. Simple queries stream incrementally; complex
// ones run the full pipeline and arrive as a single event before the
// terminator.
func (s *Server) chatStream(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	message, err := parseMessage(req)
	if err != nil {
		return err
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	chunks, streamed, err := s.orch.StreamDirect(ctx, message)
	if err != nil {
		s.logger.Printf("stream setup failed: %v", err)
		writeSSE(resp, map[string]string{"error": "unable to stream a response"})
		writeSSEDone(resp)
		return nil
	}

	if streamed {
		for chunk := range chunks {
			if chunk.Err != nil {
				s.logger.Printf("stream interrupted: %v", chunk.Err)
				break
			}
			writeSSE(resp, map[string]string{"text": chunk.Text})
		}
		writeSSEDone(resp)
		return nil
	}

	answer, err := s.orch.Process(ctx, message, req.UserProfile)
	if err != nil {
		s.logger.Printf("chat processing failed: %v", err)
		writeSSE(resp, map[string]string{"error": "internal server error processing your request"})
		writeSSEDone(resp)
		return nil
	}
	writeSSE(resp, buildChatResponse(answer))
	writeSSEDone(resp)
	return nil
}

// buildChatResponse shapes an orchestrator Answer for the wire. Agents and
// sources are always arrays, never null.
func buildChatResponse(answer orchestrator.Answer) chatResponse {
	agents := answer.Contributions
	if agents == nil {
		agents = []expert.Contribution{}
	}
	srcs := answer.Sources
	if srcs == nil {
		srcs = []string{}
	}
	domains := answer.ActiveDomains
	if domains == nil {
		domains = []string{}
	}
	return chatResponse{
		Response: answer.Content,
		Agents:   agents,
		Sources:  srcs,
		Metadata: chatMetadata{
			QueryComplexity:  answer.Complexity,
			ActiveAgentCount: len(answer.Contributions),
			RelevantDomains:  domains,
		},
	}
}

func writeSSE(resp *echo.Response, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(resp, "data: %s\n\n", data)
	resp.Flush()
}

func writeSSEDone(resp *echo.Response) {
	fmt.Fprint(resp, "data: [DONE]\n\n")
	resp.Flush()
}
