package ports

import (
	"context"

	"github.com/graphragio/gateway/internal/core/domain"
)

// ChatService is the inbound contract for chat-completion orchestration.
type ChatService interface {
	Complete(ctx context.Context, model, query string, history []domain.ConversationTurn) (*domain.ChatAnswer, error)
	StreamComplete(ctx context.Context, model, query string, history []domain.ConversationTurn) (domain.ModelRef, <-chan string, error)
	ModelIDs() []string
}

// ReferenceService is the inbound contract for resolving citation targets
// into renderable reference pages.
type ReferenceService interface {
	Resolve(ctx context.Context, index, datatype string, shortID int) (*domain.ReferencePage, error)
}
