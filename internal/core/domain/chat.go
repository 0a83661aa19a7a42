package domain

import "time"

// Completion is one raw LLM response.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// ChatAnswer is the post-processed result of a chat completion, with citation
// reference links already appended when enabled.
type ChatAnswer struct {
	Model        ModelRef
	Text         string
	PromptTokens int
	OutputTokens int
}

// ReferencePage is the renderable form of one cited artifact row.
type ReferencePage struct {
	Kind   string
	Title  string
	Fields []ReferenceField
}

type ReferenceField struct {
	Label string
	Value string
}

// QueryRecord is one audit-log row for a completed chat request.
type QueryRecord struct {
	RequestID    string
	Index        string
	Engine       string
	Query        string
	AnswerChars  int
	PromptTokens int
	Duration     time.Duration
	CreatedAt    time.Time
}
