package domain

import (
	"fmt"
	"strings"
)

// EngineKind names one of the four GraphRAG search strategies.
type EngineKind string

const (
	EngineLocal  EngineKind = "local"
	EngineGlobal EngineKind = "global"
	EngineDrift  EngineKind = "drift"
	EngineBasic  EngineKind = "basic"
)

func EngineKinds() []EngineKind {
	return []EngineKind{EngineLocal, EngineGlobal, EngineDrift, EngineBasic}
}

func ParseEngineKind(name string) (EngineKind, error) {
	switch EngineKind(strings.ToLower(strings.TrimSpace(name))) {
	case EngineLocal:
		return EngineLocal, nil
	case EngineGlobal:
		return EngineGlobal, nil
	case EngineDrift:
		return EngineDrift, nil
	case EngineBasic:
		return EngineBasic, nil
	default:
		return "", WrapError(ErrInvalidInput, "parse engine", fmt.Errorf("unknown search engine %q", name))
	}
}

// ModelRef is the decoded form of an OpenAI model name. The wire format is
// "<index>:<engine>"; a bare engine name addresses the default index.
type ModelRef struct {
	Index  string
	Engine EngineKind
}

func ParseModelRef(model, defaultIndex string) (ModelRef, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return ModelRef{}, WrapError(ErrInvalidInput, "parse model", fmt.Errorf("model is required"))
	}

	indexName := defaultIndex
	engineName := model
	if i := strings.IndexByte(model, ':'); i >= 0 {
		indexName = model[:i]
		engineName = model[i+1:]
	}
	if indexName == "" {
		return ModelRef{}, WrapError(ErrInvalidInput, "parse model", fmt.Errorf("model %q has no index and no default index is configured", model))
	}

	engine, err := ParseEngineKind(engineName)
	if err != nil {
		return ModelRef{}, err
	}
	return ModelRef{Index: indexName, Engine: engine}, nil
}

func (r ModelRef) String() string {
	return r.Index + ":" + string(r.Engine)
}

// ConversationTurn is one prior message of the chat transcript, passed to the
// engine as conversation context.
type ConversationTurn struct {
	Role    string
	Content string
}

// SearchResult is the answer produced by a search engine before citation
// post-processing.
type SearchResult struct {
	Response     string
	PromptTokens int
	OutputTokens int
	LLMCalls     int
}
