package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/graphragio/gateway/internal/infrastructure/artifact"
)

// Context assembly is deliberately simple: rows are ranked by the scores the
// indexing pipeline already computed (degree, weight, report rank) and
// concatenated until the token budget is spent. Retrieval ranking beyond
// that is owned by the indexing side.

type contextBuilder struct {
	budget  int
	used    int
	builder strings.Builder
}

func newContextBuilder(budgetTokens int) *contextBuilder {
	if budgetTokens <= 0 {
		budgetTokens = defaultContextTokens
	}
	return &contextBuilder{budget: budgetTokens}
}

// add appends a record unless the budget is exhausted. Token cost is
// approximated at four characters per token.
func (b *contextBuilder) add(text string) bool {
	cost := len(text)/4 + 1
	if b.used+cost > b.budget {
		return false
	}
	b.builder.WriteString(text)
	b.builder.WriteString("\n")
	b.used += cost
	return true
}

func (b *contextBuilder) section(title string) {
	b.builder.WriteString("\n-----")
	b.builder.WriteString(title)
	b.builder.WriteString("-----\n")
}

func (b *contextBuilder) String() string {
	return b.builder.String()
}

func appendEntityContext(b *contextBuilder, tables *artifact.Tables) {
	entities := append([]int(nil), indexesOf(len(tables.Entities))...)
	sort.Slice(entities, func(i, j int) bool {
		return tables.Entities[entities[i]].Degree > tables.Entities[entities[j]].Degree
	})

	b.section("Entities")
	b.add("id|entity|type|description")
	for _, i := range entities {
		e := tables.Entities[i]
		if !b.add(fmt.Sprintf("%d|%s|%s|%s", e.ShortID, e.Title, e.Type, e.Description)) {
			return
		}
	}
}

func appendRelationshipContext(b *contextBuilder, tables *artifact.Tables) {
	rels := append([]int(nil), indexesOf(len(tables.Relationships))...)
	sort.Slice(rels, func(i, j int) bool {
		return tables.Relationships[rels[i]].Weight > tables.Relationships[rels[j]].Weight
	})

	b.section("Relationships")
	b.add("id|source|target|description")
	for _, i := range rels {
		r := tables.Relationships[i]
		if !b.add(fmt.Sprintf("%d|%s|%s|%s", r.ShortID, r.Source, r.Target, r.Description)) {
			return
		}
	}
}

func appendReportContext(b *contextBuilder, tables *artifact.Tables, communityLevel int, full bool) {
	reports := make([]int, 0, len(tables.Reports))
	for i, report := range tables.Reports {
		if communityLevel >= 0 && report.Level > communityLevel {
			continue
		}
		reports = append(reports, i)
	}
	sort.Slice(reports, func(i, j int) bool {
		return tables.Reports[reports[i]].Rank > tables.Reports[reports[j]].Rank
	})

	b.section("Reports")
	b.add("id|title|content")
	for _, i := range reports {
		r := tables.Reports[i]
		content := r.Summary
		if full && r.FullText != "" {
			content = r.FullText
		}
		if !b.add(fmt.Sprintf("%d|%s|%s", r.ShortID, r.Title, content)) {
			return
		}
	}
}

func appendTextUnitContext(b *contextBuilder, tables *artifact.Tables) {
	b.section("Sources")
	b.add("id|text")
	for _, u := range tables.TextUnits {
		if !b.add(fmt.Sprintf("%d|%s", u.ShortID, u.Text)) {
			return
		}
	}
}

func indexesOf(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
