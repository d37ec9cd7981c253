package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/socratutor/internal/session"
	"github.com/socratutor/internal/tutor"
	"github.com/socratutor/pkg/models"
)

func (s *Server) createSession(c echo.Context) error {
	var req models.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
	}

	difficulty := tutor.Difficulty(req.Difficulty)
	switch difficulty {
	case "", tutor.DifficultyBeginner, tutor.DifficultyIntermediate, tutor.DifficultyAdvanced:
	default:
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown difficulty"})
	}

	sess, err := s.sessions.Create(c.Request().Context(), req.Topic, req.SubTopic, difficulty)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusCreated, sessionView(sess))
}

func (s *Server) getSession(c echo.Context) error {
	sess, err := s.sessions.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, sessionView(sess))
}

func (s *Server) listSessions(c echo.Context) error {
	records, err := s.sessions.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
	}

	summaries := make([]models.SessionSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, models.SessionSummary{
			SessionID:  record.SessionID,
			Topic:      record.Topic,
			SubTopic:   record.SubTopic,
			Difficulty: record.Difficulty,
			CreatedAt:  record.CreatedAt,
			UpdatedAt:  record.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, summaries)
}

func (s *Server) postMessage(c echo.Context) error {
	var req models.MessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Content) == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "message content is empty"})
	}

	id := c.Param("id")
	result, err := s.sessions.HandleMessage(c.Request().Context(), id, req.Content)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, models.TurnResponse{
		Reply:      result.Reply,
		Thought:    result.Thought,
		MCQActive:  result.MCQActive,
		MCQOptions: result.MCQOptions,
	})
}

func (s *Server) closeSession(c echo.Context) error {
	if err := s.sessions.Close(c.Request().Context(), c.Param("id")); err != nil {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

// sessionView snapshots a session for the API. The MCQ correct answer never
// leaves the server.
func sessionView(sess *session.Session) models.SessionResponse {
	st := sess.State
	messages := make([]models.ChatMessage, 0, len(st.Messages))
	for _, msg := range st.Messages {
		messages = append(messages, models.ChatMessage{
			Role:     string(msg.Role),
			Content:  tutor.StripThought(msg.Content),
			CallID:   msg.CallID,
			ToolName: msg.ToolName,
		})
	}

	return models.SessionResponse{
		SessionID:         sess.ID,
		Topic:             st.Topic,
		SubTopic:          st.SubTopic,
		Difficulty:        string(st.DifficultyLevel),
		UserStruggleCount: st.UserStruggleCount,
		MCQActive:         st.MCQActive,
		MCQOptions:        st.MCQOptions,
		Messages:          messages,
		CreatedAt:         sess.CreatedAt,
	}
}
