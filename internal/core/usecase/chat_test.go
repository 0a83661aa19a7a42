package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/graphragio/gateway/internal/core/domain"
	"github.com/graphragio/gateway/internal/core/ports"
)

type fakeEngine struct {
	response string
	tokens   []string
	err      error

	lastQuery   string
	lastHistory []domain.ConversationTurn
}

func (f *fakeEngine) Search(_ context.Context, query string, history []domain.ConversationTurn) (*domain.SearchResult, error) {
	f.lastQuery = query
	f.lastHistory = history
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SearchResult{Response: f.response, PromptTokens: 42, LLMCalls: 1}, nil
}

func (f *fakeEngine) StreamSearch(_ context.Context, query string, history []domain.ConversationTurn) (<-chan string, error) {
	f.lastQuery = query
	f.lastHistory = history
	if f.err != nil {
		return nil, f.err
	}
	out := make(chan string, len(f.tokens))
	for _, token := range f.tokens {
		out <- token
	}
	close(out)
	return out, nil
}

type fakeResolver struct {
	engines      map[string]ports.EngineSet
	defaultIndex string
	enginesErr   error
}

func (f *fakeResolver) Engines(_ context.Context, index string) (ports.EngineSet, error) {
	if f.enginesErr != nil {
		return nil, f.enginesErr
	}
	set, ok := f.engines[index]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "engines", errors.New("unknown index "+index))
	}
	return set, nil
}

func (f *fakeResolver) References(context.Context, string) (ports.ReferenceStore, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeResolver) IndexNames() []string {
	names := make([]string, 0, len(f.engines))
	for name := range f.engines {
		names = append(names, name)
	}
	return names
}

func (f *fakeResolver) DefaultIndex() string { return f.defaultIndex }

type fakeQueryLog struct {
	records []domain.QueryRecord
	err     error
}

func (f *fakeQueryLog) Record(_ context.Context, rec domain.QueryRecord) error {
	f.records = append(f.records, rec)
	return f.err
}

func newChatFixture(engine *fakeEngine) (*ChatUseCase, *fakeQueryLog) {
	resolver := &fakeResolver{
		defaultIndex: "ragtest",
		engines: map[string]ports.EngineSet{
			"ragtest": {domain.EngineLocal: engine, domain.EngineBasic: engine},
		},
	}
	queryLog := &fakeQueryLog{}
	uc := NewChatUseCase(resolver, queryLog, ChatOptions{
		ReferenceBaseURL: "http://127.0.0.1:20213",
		ShowReferences:   true,
	})
	return uc, queryLog
}

func TestChatCompleteAppendsReferences(t *testing.T) {
	engine := &fakeEngine{response: "It grew quickly [Data: Sources (3)]."}
	uc, queryLog := newChatFixture(engine)

	answer, err := uc.Complete(context.Background(), "local", "how did it grow?", nil)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if engine.lastQuery != "how did it grow?" {
		t.Fatalf("engine saw query %q", engine.lastQuery)
	}
	if !strings.Contains(answer.Text, "[^Data:Sources(3)]: [Sources: 3](http://127.0.0.1:20213/v1/references/ragtest/sources/3)") {
		t.Fatalf("expected reference tail in answer, got:\n%s", answer.Text)
	}
	if answer.Model.Index != "ragtest" || answer.Model.Engine != domain.EngineLocal {
		t.Fatalf("unexpected model ref %+v", answer.Model)
	}
	if len(queryLog.records) != 1 {
		t.Fatalf("expected 1 query log record, got %d", len(queryLog.records))
	}
	if queryLog.records[0].Engine != "local" || queryLog.records[0].PromptTokens != 42 {
		t.Fatalf("unexpected query log record %+v", queryLog.records[0])
	}
}

func TestChatCompleteNoCitationsNoTail(t *testing.T) {
	engine := &fakeEngine{response: "plain answer"}
	uc, _ := newChatFixture(engine)

	answer, err := uc.Complete(context.Background(), "ragtest:basic", "q", nil)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if answer.Text != "plain answer" {
		t.Fatalf("expected untouched answer, got %q", answer.Text)
	}
}

func TestChatCompleteUnknownEngine(t *testing.T) {
	uc, _ := newChatFixture(&fakeEngine{response: "x"})

	_, err := uc.Complete(context.Background(), "ragtest:telepathic", "q", nil)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestChatCompleteUnknownIndex(t *testing.T) {
	uc, _ := newChatFixture(&fakeEngine{response: "x"})

	_, err := uc.Complete(context.Background(), "nosuch:local", "q", nil)
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestChatCompleteMissingEngineInSet(t *testing.T) {
	uc, _ := newChatFixture(&fakeEngine{response: "x"})

	_, err := uc.Complete(context.Background(), "ragtest:drift", "q", nil)
	if !domain.IsKind(err, domain.ErrIndexNotReady) {
		t.Fatalf("expected index not ready error, got %v", err)
	}
}

func TestChatCompleteEmptyQuery(t *testing.T) {
	uc, _ := newChatFixture(&fakeEngine{response: "x"})

	_, err := uc.Complete(context.Background(), "local", "   ", nil)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestChatStreamCompleteEmitsReferenceTail(t *testing.T) {
	engine := &fakeEngine{tokens: []string{"part one ", "[Data: Reports (2)]"}}
	uc, queryLog := newChatFixture(engine)

	ref, tokens, err := uc.StreamComplete(context.Background(), "local", "q", nil)
	if err != nil {
		t.Fatalf("StreamComplete() error = %v", err)
	}
	if ref.Engine != domain.EngineLocal {
		t.Fatalf("unexpected ref %+v", ref)
	}

	var collected []string
	for token := range tokens {
		collected = append(collected, token)
	}
	if len(collected) != 3 {
		t.Fatalf("expected 2 engine tokens plus reference tail, got %v", collected)
	}
	if !strings.Contains(collected[2], "/v1/references/ragtest/reports/2") {
		t.Fatalf("expected reference tail last, got %q", collected[2])
	}
	if len(queryLog.records) != 1 {
		t.Fatalf("expected stream to be audit-logged, got %d records", len(queryLog.records))
	}
}

func TestModelIDsIncludeAliasesAndPairs(t *testing.T) {
	uc, _ := newChatFixture(&fakeEngine{})

	ids := uc.ModelIDs()
	want := map[string]bool{"local": true, "global": true, "drift": true, "basic": true, "ragtest:local": true, "ragtest:drift": true}
	have := make(map[string]bool, len(ids))
	for _, id := range ids {
		have[id] = true
	}
	for id := range want {
		if !have[id] {
			t.Fatalf("ModelIDs() missing %q, got %v", id, ids)
		}
	}
}
