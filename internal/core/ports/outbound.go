package ports

import (
	"context"

	"github.com/graphragio/gateway/internal/core/domain"
)

// SearchEngine runs one GraphRAG search strategy over a loaded index.
type SearchEngine interface {
	Search(ctx context.Context, query string, history []domain.ConversationTurn) (*domain.SearchResult, error)
	StreamSearch(ctx context.Context, query string, history []domain.ConversationTurn) (<-chan string, error)
}

// EngineSet holds the loaded engines of one index, keyed by strategy.
type EngineSet map[domain.EngineKind]SearchEngine

// IndexResolver maps index names to cached engine sets and artifact lookups.
type IndexResolver interface {
	Engines(ctx context.Context, index string) (EngineSet, error)
	References(ctx context.Context, index string) (ReferenceStore, error)
	IndexNames() []string
	DefaultIndex() string
}

// ReferenceStore reads single artifact rows by their human-readable short id.
type ReferenceStore interface {
	EntityByShortID(ctx context.Context, shortID int) (*domain.Entity, error)
	TextUnitByShortID(ctx context.Context, shortID int) (*domain.TextUnit, error)
	ReportByShortID(ctx context.Context, shortID int) (*domain.CommunityReport, error)
	RelationshipByShortID(ctx context.Context, shortID int) (*domain.Relationship, error)
	DocumentByShortID(ctx context.Context, shortID int) (*domain.Document, error)
}

// ChatModel is the LLM backend the search engines generate answers with.
type ChatModel interface {
	Complete(ctx context.Context, messages []domain.ConversationTurn) (*domain.Completion, error)
	StreamComplete(ctx context.Context, messages []domain.ConversationTurn) (<-chan string, error)
}

// QueryLog records completed chat requests for auditing.
type QueryLog interface {
	Record(ctx context.Context, rec domain.QueryRecord) error
}
