package httpadapter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/graphragio/gateway/internal/adapters/http/oai"
	"github.com/graphragio/gateway/internal/core/domain"
)

func (rt *Router) streamChatCompletion(w http.ResponseWriter, r *http.Request, model, query string, history []domain.ConversationTurn) {
	streamStart := time.Now()
	ref, tokens, err := rt.chat.StreamComplete(r.Context(), model, query, history)
	if err != nil {
		rt.recordSearchFailure(model, time.Since(streamStart), err)
		writeJSON(w, mapErrorToHTTPStatus(err), oai.ErrorResponse{Error: err.Error()})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, oai.ErrorResponse{Error: "streaming is not supported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	completionID := newCompletionID()
	created := time.Now().Unix()
	start := time.Now()

	role := oai.RoleAssistant
	writeChunk(w, flusher, oai.ChatCompletionChunk{
		ID:      completionID,
		Object:  "chat.completion.chunk",
		Created: created,
		Model:   model,
		Choices: []oai.ChatCompletionChunkChoice{{
			Index: 0,
			Delta: oai.ChatMessageDelta{Role: &role},
		}},
	})

	for token := range tokens {
		if token == "" {
			continue
		}
		content := token
		writeChunk(w, flusher, oai.ChatCompletionChunk{
			ID:      completionID,
			Object:  "chat.completion.chunk",
			Created: created,
			Model:   model,
			Choices: []oai.ChatCompletionChunkChoice{{
				Index: 0,
				Delta: oai.ChatMessageDelta{Content: &content},
			}},
		})
	}

	finishReason := "stop"
	writeChunk(w, flusher, oai.ChatCompletionChunk{
		ID:      completionID,
		Object:  "chat.completion.chunk",
		Created: created,
		Model:   model,
		Choices: []oai.ChatCompletionChunkChoice{{
			Index:        0,
			Delta:        oai.ChatMessageDelta{},
			FinishReason: &finishReason,
		}},
	})

	_, _ = io.WriteString(w, "data: [DONE]\n\n")
	flusher.Flush()

	if rt.metrics != nil {
		rt.metrics.RecordSearch(rt.service, ref.Index, string(ref.Engine), time.Since(start), nil)
	}
}

func writeChunk(w http.ResponseWriter, flusher http.Flusher, chunk oai.ChatCompletionChunk) {
	payload, err := json.Marshal(chunk)
	if err != nil {
		return
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return
	}
	flusher.Flush()
}
