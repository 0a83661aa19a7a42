package usecase

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtractCitationsFootnoteForm(t *testing.T) {
	text := "The project began in 2019 [^Data:Sources(446)] and grew [^Data:Sources(446)]."

	got := ExtractCitations(text)
	want := map[string][]int{"sources": {446}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractCitations() = %v, want %v", got, want)
	}
}

func TestExtractCitationsCompoundForm(t *testing.T) {
	text := "Several teams contributed [Data: Sources (15, 16), Reports (1), Entities (5, 7); Relationships (23); Claims (2, 7, 34, 46, 64, +more)]."

	got := ExtractCitations(text)
	want := map[string][]int{
		"sources":       {15, 16},
		"reports":       {1},
		"entities":      {5, 7},
		"relationships": {23},
		"claims":        {2, 7, 34, 46, 64},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractCitations() = %v, want %v", got, want)
	}
}

func TestExtractCitationsIgnoresPlainBrackets(t *testing.T) {
	cases := []string{
		"see [chapter 4] for details",
		"array indexing a[0] is zero-based",
		"[Data: Sources]",
		"Data: Sources (1)",
		"no citations at all",
	}
	for _, text := range cases {
		if got := ExtractCitations(text); got != nil {
			t.Fatalf("ExtractCitations(%q) = %v, want nil", text, got)
		}
	}
}

func TestExtractCitationsMergesAcrossMarkers(t *testing.T) {
	text := "a [Data: Sources (3)] b [^Data:Sources(1)] c [Data: Sources (2, 3)]"

	got := ExtractCitations(text)
	want := map[string][]int{"sources": {1, 2, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractCitations() = %v, want %v", got, want)
	}
}

func TestFormatReferenceLinksDeterministic(t *testing.T) {
	citations := map[string][]int{
		"sources":  {16, 15},
		"entities": {5},
	}
	// ids are pre-sorted by ExtractCitations; FormatReferenceLinks relies on that
	citations["sources"] = []int{15, 16}

	got := FormatReferenceLinks(citations, "http://localhost:20213/", "ragtest")
	lines := strings.Split(got, "\n")
	want := []string{
		"[^Data:Entities(5)]: [Entities: 5](http://localhost:20213/v1/references/ragtest/entities/5)",
		"[^Data:Sources(15)]: [Sources: 15](http://localhost:20213/v1/references/ragtest/sources/15)",
		"[^Data:Sources(16)]: [Sources: 16](http://localhost:20213/v1/references/ragtest/sources/16)",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("FormatReferenceLinks() lines = %v, want %v", lines, want)
	}
}

func TestFormatReferenceLinksEmpty(t *testing.T) {
	if got := FormatReferenceLinks(nil, "http://localhost", "idx"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
