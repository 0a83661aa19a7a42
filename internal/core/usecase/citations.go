package usecase

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Citation markers come in two shapes, both of which the indexing prompts
// teach the model to emit:
//
//	[^Data:Sources(446)]
//	[Data: Sources (15, 16), Reports (1); Claims (2, 7, +more)]
//
// The outer pattern validates a whole marker so stray bracketed text is never
// mistaken for a citation; items are then re-scanned out of the validated
// match.
var (
	citationPattern     = regexp.MustCompile(`\[\^?Data:(?:\s*\w+\s*\(([\d\s,]+(?:\+\w+)?)\)(?:[,;]\s*)?)+\]`)
	citationItemPattern = regexp.MustCompile(`(\w+)\s*\(([\d\s,]+(?:\+\w+)?)\)`)
	moreTokenPattern    = regexp.MustCompile(`\+\w+`)
)

// ExtractCitations groups the short ids cited in text by lower-cased data
// type. Ids are de-duplicated and numerically sorted so downstream output is
// stable; "+more" continuation tokens and non-numeric ids are dropped.
func ExtractCitations(text string) map[string][]int {
	seen := make(map[string]map[int]struct{})

	for _, marker := range citationPattern.FindAllString(text, -1) {
		for _, item := range citationItemPattern.FindAllStringSubmatch(marker, -1) {
			dataType := strings.ToLower(item[1])
			idText := moreTokenPattern.ReplaceAllString(item[2], "")
			for _, raw := range strings.Split(idText, ",") {
				id, err := strconv.Atoi(strings.TrimSpace(raw))
				if err != nil {
					continue
				}
				if seen[dataType] == nil {
					seen[dataType] = make(map[int]struct{})
				}
				seen[dataType][id] = struct{}{}
			}
		}
	}

	if len(seen) == 0 {
		return nil
	}
	out := make(map[string][]int, len(seen))
	for dataType, ids := range seen {
		sorted := make([]int, 0, len(ids))
		for id := range ids {
			sorted = append(sorted, id)
		}
		sort.Ints(sorted)
		out[dataType] = sorted
	}
	return out
}

// FormatReferenceLinks renders one markdown footnote line per cited (type,
// id) pair, pointing at the references endpoint for the given index. The
// result is deterministic: types alphabetically, ids ascending.
func FormatReferenceLinks(citations map[string][]int, baseURL, index string) string {
	if len(citations) == 0 {
		return ""
	}

	types := make([]string, 0, len(citations))
	for dataType := range citations {
		types = append(types, dataType)
	}
	sort.Strings(types)

	base := strings.TrimRight(baseURL, "/") + "/v1/references"
	var lines []string
	for _, dataType := range types {
		label := capitalize(dataType)
		for _, id := range citations[dataType] {
			lines = append(lines, fmt.Sprintf("[^Data:%s(%d)]: [%s: %d](%s/%s/%s/%d)",
				label, id, label, id, base, index, dataType, id))
		}
	}
	return strings.Join(lines, "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
