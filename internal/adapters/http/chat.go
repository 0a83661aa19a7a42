package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/graphragio/gateway/internal/adapters/http/oai"
	"github.com/graphragio/gateway/internal/core/domain"
	"github.com/graphragio/gateway/internal/core/usecase"
)

func newCompletionID() string {
	return fmt.Sprintf("chatcmpl-%d", time.Now().UnixNano())
}

func (rt *Router) chatCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, oai.ErrorResponse{Error: "method not allowed"})
		return
	}

	var req oai.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, oai.ErrorResponse{Error: "invalid json"})
		return
	}

	query, history, ok := splitTranscript(req.Messages)
	if !ok {
		writeJSON(w, http.StatusBadRequest, oai.ErrorResponse{Error: "at least one user message is required"})
		return
	}

	if req.Stream {
		rt.streamChatCompletion(w, r, req.Model, query, history)
		return
	}

	start := time.Now()
	answer, err := rt.chat.Complete(r.Context(), req.Model, query, history)
	if err != nil {
		rt.recordSearchFailure(req.Model, time.Since(start), err)
		writeJSON(w, mapErrorToHTTPStatus(err), oai.ErrorResponse{Error: err.Error()})
		return
	}
	rt.recordChatMetrics(answer, time.Since(start))

	finishReason := "stop"
	writeJSON(w, http.StatusOK, oai.ChatCompletionResponse{
		ID:      newCompletionID(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []oai.ChatCompletionChoice{{
			Index: 0,
			Message: oai.AssistantMessage{
				Role:    oai.RoleAssistant,
				Content: answer.Text,
			},
			FinishReason: &finishReason,
		}},
		Usage: &oai.Usage{
			PromptTokens:     answer.PromptTokens,
			CompletionTokens: answer.OutputTokens,
			TotalTokens:      answer.PromptTokens + answer.OutputTokens,
		},
	})
}

func (rt *Router) recordChatMetrics(answer *domain.ChatAnswer, duration time.Duration) {
	if rt.metrics == nil {
		return
	}
	engine := string(answer.Model.Engine)
	rt.metrics.RecordSearch(rt.service, answer.Model.Index, engine, duration, nil)
	rt.metrics.RecordTokenUsage(rt.service, engine, answer.PromptTokens, answer.OutputTokens)

	citations := usecase.ExtractCitations(answer.Text)
	if len(citations) > 0 {
		counts := make(map[string]int, len(citations))
		for dataset, ids := range citations {
			counts[dataset] = len(ids)
		}
		rt.metrics.RecordCitations(rt.service, counts)
	}
}

// recordSearchFailure counts a failed completion under the requested model's
// labels. Unparseable model names collapse to a single fallback label pair so
// arbitrary client input cannot grow the metric's cardinality.
func (rt *Router) recordSearchFailure(model string, duration time.Duration, err error) {
	if rt.metrics == nil {
		return
	}
	index, engine := "unknown", "invalid"
	if ref, parseErr := domain.ParseModelRef(model, "unknown"); parseErr == nil {
		index, engine = ref.Index, string(ref.Engine)
	}
	rt.metrics.RecordSearch(rt.service, index, engine, duration, err)
}

// splitTranscript pulls the latest non-empty user message out as the query and
// returns everything before it as conversation history.
func splitTranscript(messages []oai.ChatMessage) (string, []domain.ConversationTurn, bool) {
	queryIdx := -1
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != oai.RoleUser {
			continue
		}
		if messages[i].Text() != "" {
			queryIdx = i
			break
		}
	}
	if queryIdx < 0 {
		return "", nil, false
	}

	history := make([]domain.ConversationTurn, 0, queryIdx)
	for _, msg := range messages[:queryIdx] {
		text := msg.Text()
		if text == "" || msg.Role == oai.RoleSystem {
			continue
		}
		history = append(history, domain.ConversationTurn{
			Role:    strings.ToLower(msg.Role),
			Content: text,
		})
	}
	return messages[queryIdx].Text(), history, true
}
