package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/graphragio/gateway/internal/core/domain"
	"github.com/graphragio/gateway/internal/core/ports"
)

// ChatUseCase resolves a requested model name to a cached search engine,
// runs the search, and appends citation reference links to the answer.
type ChatUseCase struct {
	resolver         ports.IndexResolver
	queryLog         ports.QueryLog
	referenceBaseURL string
	showReferences   bool
}

type ChatOptions struct {
	ReferenceBaseURL string
	ShowReferences   bool
}

func NewChatUseCase(resolver ports.IndexResolver, queryLog ports.QueryLog, opts ChatOptions) *ChatUseCase {
	return &ChatUseCase{
		resolver:         resolver,
		queryLog:         queryLog,
		referenceBaseURL: opts.ReferenceBaseURL,
		showReferences:   opts.ShowReferences,
	}
}

func (uc *ChatUseCase) Complete(ctx context.Context, model, query string, history []domain.ConversationTurn) (*domain.ChatAnswer, error) {
	ref, engine, err := uc.resolveEngine(ctx, model)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat complete", fmt.Errorf("query is empty"))
	}

	start := time.Now()
	result, err := engine.Search(ctx, query, history)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", ref, err)
	}

	text := result.Response
	if tail := uc.ReferenceTail(text, ref.Index); tail != "" {
		text += "\n" + tail
	}

	uc.record(ctx, ref, query, len(text), result.PromptTokens, time.Since(start))

	return &domain.ChatAnswer{
		Model:        ref,
		Text:         text,
		PromptTokens: result.PromptTokens,
		OutputTokens: result.OutputTokens,
	}, nil
}

// StreamComplete forwards engine tokens and, once the engine is done, emits
// the citation reference block as one final token before closing the channel.
func (uc *ChatUseCase) StreamComplete(ctx context.Context, model, query string, history []domain.ConversationTurn) (domain.ModelRef, <-chan string, error) {
	ref, engine, err := uc.resolveEngine(ctx, model)
	if err != nil {
		return domain.ModelRef{}, nil, err
	}
	if strings.TrimSpace(query) == "" {
		return domain.ModelRef{}, nil, domain.WrapError(domain.ErrInvalidInput, "chat stream", fmt.Errorf("query is empty"))
	}

	tokens, err := engine.StreamSearch(ctx, query, history)
	if err != nil {
		return domain.ModelRef{}, nil, fmt.Errorf("stream search %s: %w", ref, err)
	}

	start := time.Now()
	out := make(chan string)
	go func() {
		defer close(out)
		var full strings.Builder
		for token := range tokens {
			full.WriteString(token)
			select {
			case out <- token:
			case <-ctx.Done():
				return
			}
		}
		if tail := uc.ReferenceTail(full.String(), ref.Index); tail != "" {
			select {
			case out <- "\n" + tail:
			case <-ctx.Done():
				return
			}
		}
		uc.record(ctx, ref, query, full.Len(), 0, time.Since(start))
	}()

	return ref, out, nil
}

// ReferenceTail renders the markdown footnote block for every citation
// marker found in text, or "" when references are disabled or absent.
func (uc *ChatUseCase) ReferenceTail(text, index string) string {
	if !uc.showReferences {
		return ""
	}
	return FormatReferenceLinks(ExtractCitations(text), uc.referenceBaseURL, index)
}

// ModelIDs lists every addressable model name: one "<index>:<engine>" entry
// per pair, plus bare engine aliases for the default index.
func (uc *ChatUseCase) ModelIDs() []string {
	names := uc.resolver.IndexNames()
	sort.Strings(names)

	ids := make([]string, 0, (len(names)+1)*len(domain.EngineKinds()))
	for _, engine := range domain.EngineKinds() {
		ids = append(ids, string(engine))
	}
	for _, name := range names {
		for _, engine := range domain.EngineKinds() {
			ids = append(ids, name+":"+string(engine))
		}
	}
	return ids
}

func (uc *ChatUseCase) resolveEngine(ctx context.Context, model string) (domain.ModelRef, ports.SearchEngine, error) {
	ref, err := domain.ParseModelRef(model, uc.resolver.DefaultIndex())
	if err != nil {
		return domain.ModelRef{}, nil, err
	}

	engines, err := uc.resolver.Engines(ctx, ref.Index)
	if err != nil {
		return domain.ModelRef{}, nil, err
	}
	engine, ok := engines[ref.Engine]
	if !ok {
		return domain.ModelRef{}, nil, domain.WrapError(domain.ErrIndexNotReady, "resolve engine",
			fmt.Errorf("index %q has no %s engine", ref.Index, ref.Engine))
	}
	return ref, engine, nil
}

func (uc *ChatUseCase) record(ctx context.Context, ref domain.ModelRef, query string, answerChars, promptTokens int, duration time.Duration) {
	if uc.queryLog == nil {
		return
	}
	rec := domain.QueryRecord{
		RequestID:    domain.RequestIDFromContext(ctx),
		Index:        ref.Index,
		Engine:       string(ref.Engine),
		Query:        query,
		AnswerChars:  answerChars,
		PromptTokens: promptTokens,
		Duration:     duration,
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.queryLog.Record(context.WithoutCancel(ctx), rec); err != nil {
		slog.Warn("query_log_record_failed", "index", ref.Index, "engine", ref.Engine, "error", err)
	}
}
