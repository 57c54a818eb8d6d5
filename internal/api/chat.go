package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/openai/openai-go"

	"github.com/damii-health/wellnessd/internal/models"
	"github.com/damii-health/wellnessd/internal/safety"
	"github.com/damii-health/wellnessd/internal/sanitize"
	"github.com/damii-health/wellnessd/internal/store"
)

// chatSystemPrompt frames the supportive-listener persona for the chat endpoint.
// It deliberately forbids diagnosis and keeps replies short and conversational.
const chatSystemPrompt = `You are DAMII, a warm and supportive wellness companion. ` +
	`Listen with empathy, validate feelings, and offer gentle, practical encouragement. ` +
	`Keep replies short and conversational (2-4 sentences). ` +
	`You are not a therapist or doctor: never diagnose, never prescribe, and when ` +
	`someone describes persistent distress, gently encourage them to talk to a ` +
	`professional or someone they trust.`

// chatHandler answers a single chat turn. Messages are screened with the same
// crisis classifier as the plan pipeline; a critical message gets a fixed crisis
// reply and never reaches the model. Both turns are persisted either way so the
// conversation history stays complete.
func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	userID := r.PathValue("id")
	slog.Debug("Server.chatHandler: processing chat message", "userID", userID)

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing required field: message"))
		return
	}

	sanitized := sanitize.Input(req.Message)
	verdict := safety.Classify(sanitized)

	var reply string
	if verdict == models.VerdictCritical {
		slog.Warn("Server.chatHandler: crisis message detected", "userID", userID)
		reply = safety.CrisisChatReply()
	} else {
		if s.gaClient == nil {
			writeJSONResponse(w, http.StatusServiceUnavailable, models.Error("Chat is temporarily unavailable"))
			return
		}
		generated, err := s.generateChatReply(r, userID, sanitized, verdict)
		if err != nil {
			slog.Error("Server.chatHandler: failed to generate reply", "error", err, "userID", userID)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to generate reply"))
			return
		}
		reply = generated
	}

	if err := s.persistChatTurn(r, userID, sanitized, reply); err != nil {
		slog.Error("Server.chatHandler: failed to persist chat turn", "error", err, "userID", userID)
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"reply": reply}))
}

func (s *Server) generateChatReply(r *http.Request, userID, sanitized string, verdict models.SafetyVerdict) (string, error) {
	system := chatSystemPrompt
	if verdict == models.VerdictConcerning {
		system += ` The user sounds like they are struggling right now: respond with extra ` +
			`gentleness and, if appropriate, suggest reaching out to a professional.`
	}
	msgs := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(system)}

	history, err := s.st.ListChatMessages(r.Context(), userID, store.DefaultChatHistoryLimit)
	if err != nil {
		slog.Warn("Server.generateChatReply: failed to load history, continuing without it", "error", err, "userID", userID)
	}
	for _, m := range history {
		switch m.Role {
		case models.ChatRoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	msgs = append(msgs, openai.UserMessage(sanitized))

	return s.gaClient.GenerateWithMessages(r.Context(), msgs)
}

func (s *Server) persistChatTurn(r *http.Request, userID, userMsg, reply string) error {
	if _, err := s.st.AddChatMessage(r.Context(), userID, models.ChatRoleUser, userMsg); err != nil {
		return err
	}
	_, err := s.st.AddChatMessage(r.Context(), userID, models.ChatRoleAssistant, reply)
	return err
}
