package search

import (
	"context"
	"fmt"

	"github.com/graphragio/gateway/internal/core/domain"
	"github.com/graphragio/gateway/internal/core/ports"
	"github.com/graphragio/gateway/internal/infrastructure/artifact"
)

const (
	defaultContextTokens = 8000
	defaultResponseType  = "Multiple Paragraphs"
	maxHistoryTurns      = 10
)

type Options struct {
	CommunityLevel int
	ResponseType   string
	ContextTokens  int
}

// Engine is one GraphRAG search strategy: a strategy-specific context
// assembled from the artifact tables, sent to the chat model with the
// citation-format instructions the markers downstream depend on.
type Engine struct {
	kind   domain.EngineKind
	model  ports.ChatModel
	tables *artifact.Tables
	opts   Options
}

func newEngine(kind domain.EngineKind, model ports.ChatModel, tables *artifact.Tables, opts Options) *Engine {
	if opts.ResponseType == "" {
		opts.ResponseType = defaultResponseType
	}
	if opts.ContextTokens <= 0 {
		opts.ContextTokens = defaultContextTokens
	}
	return &Engine{kind: kind, model: model, tables: tables, opts: opts}
}

// NewEngineSet builds the four strategies over one loaded index.
func NewEngineSet(model ports.ChatModel, tables *artifact.Tables, opts Options) ports.EngineSet {
	set := make(ports.EngineSet, 4)
	for _, kind := range domain.EngineKinds() {
		set[kind] = newEngine(kind, model, tables, opts)
	}
	return set
}

func (e *Engine) Search(ctx context.Context, query string, history []domain.ConversationTurn) (*domain.SearchResult, error) {
	completion, err := e.model.Complete(ctx, e.buildMessages(query, history))
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", e.kind, err)
	}
	return &domain.SearchResult{
		Response:     completion.Text,
		PromptTokens: completion.PromptTokens,
		OutputTokens: completion.CompletionTokens,
		LLMCalls:     1,
	}, nil
}

func (e *Engine) StreamSearch(ctx context.Context, query string, history []domain.ConversationTurn) (<-chan string, error) {
	tokens, err := e.model.StreamComplete(ctx, e.buildMessages(query, history))
	if err != nil {
		return nil, fmt.Errorf("%s stream search: %w", e.kind, err)
	}
	return tokens, nil
}

func (e *Engine) buildMessages(query string, history []domain.ConversationTurn) []domain.ConversationTurn {
	messages := make([]domain.ConversationTurn, 0, len(history)+2)
	messages = append(messages, domain.ConversationTurn{Role: "system", Content: e.systemPrompt()})

	start := 0
	if len(history) > maxHistoryTurns {
		start = len(history) - maxHistoryTurns
	}
	messages = append(messages, history[start:]...)

	return append(messages, domain.ConversationTurn{Role: "user", Content: query})
}

func (e *Engine) systemPrompt() string {
	b := newContextBuilder(e.opts.ContextTokens)

	switch e.kind {
	case domain.EngineLocal:
		appendEntityContext(b, e.tables)
		appendRelationshipContext(b, e.tables)
		appendReportContext(b, e.tables, e.opts.CommunityLevel, false)
		appendTextUnitContext(b, e.tables)
	case domain.EngineGlobal:
		appendReportContext(b, e.tables, e.opts.CommunityLevel, true)
	case domain.EngineDrift:
		appendReportContext(b, e.tables, e.opts.CommunityLevel, false)
		appendEntityContext(b, e.tables)
		appendRelationshipContext(b, e.tables)
		appendTextUnitContext(b, e.tables)
	case domain.EngineBasic:
		appendTextUnitContext(b, e.tables)
	}

	return fmt.Sprintf(`You are a helpful assistant answering questions about the data in the tables below.

Answer format: %s.

Support every claim with data references in the form
[Data: <dataset name> (record ids); <dataset name> (record ids)].
Use no more than 5 record ids per reference; add "+more" when further records
support the claim. Do not invent records. If the tables do not contain the
answer, say so.

Data tables:
%s`, e.opts.ResponseType, b.String())
}
