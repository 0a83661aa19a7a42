package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/graphragio/gateway/internal/core/domain"
)

// Row schemas use the GraphRAG 2.x column names. Fields are declared optional
// so tables written with nullable columns still load; columns the gateway
// does not use are dropped during schema conversion.
type entityRow struct {
	ID              string `parquet:"id,optional"`
	HumanReadableID int64  `parquet:"human_readable_id,optional"`
	Title           string `parquet:"title,optional"`
	Type            string `parquet:"type,optional"`
	Description     string `parquet:"description,optional"`
	Degree          int64  `parquet:"degree,optional"`
	Frequency       int64  `parquet:"frequency,optional"`
}

type relationshipRow struct {
	ID              string  `parquet:"id,optional"`
	HumanReadableID int64   `parquet:"human_readable_id,optional"`
	Source          string  `parquet:"source,optional"`
	Target          string  `parquet:"target,optional"`
	Description     string  `parquet:"description,optional"`
	Weight          float64 `parquet:"weight,optional"`
	CombinedDegree  int64   `parquet:"combined_degree,optional"`
}

type textUnitRow struct {
	ID              string `parquet:"id,optional"`
	HumanReadableID int64  `parquet:"human_readable_id,optional"`
	Text            string `parquet:"text,optional"`
	NumTokens       int64  `parquet:"n_tokens,optional"`
}

type communityReportRow struct {
	ID              string  `parquet:"id,optional"`
	HumanReadableID int64   `parquet:"human_readable_id,optional"`
	Community       int64   `parquet:"community,optional"`
	Level           int64   `parquet:"level,optional"`
	Title           string  `parquet:"title,optional"`
	Summary         string  `parquet:"summary,optional"`
	FullContent     string  `parquet:"full_content,optional"`
	Rank            float64 `parquet:"rank,optional"`
}

type communityRow struct {
	ID              string `parquet:"id,optional"`
	HumanReadableID int64  `parquet:"human_readable_id,optional"`
	Community       int64  `parquet:"community,optional"`
	Level           int64  `parquet:"level,optional"`
	Title           string `parquet:"title,optional"`
}

type documentRow struct {
	ID              string `parquet:"id,optional"`
	HumanReadableID int64  `parquet:"human_readable_id,optional"`
	Title           string `parquet:"title,optional"`
	Text            string `parquet:"text,optional"`
}

// Tables holds every artifact table of one index, fully decoded.
type Tables struct {
	Entities      []domain.Entity
	Relationships []domain.Relationship
	TextUnits     []domain.TextUnit
	Reports       []domain.CommunityReport
	Communities   []domain.Community
	Documents     []domain.Document
}

// Load reads the parquet artifact tables from dataDir. Required tables that
// are missing or empty fail the load with a typed error; optional tables are
// skipped when absent.
func Load(dataDir string) (*Tables, error) {
	tables := &Tables{}

	for _, name := range domain.RequiredTables() {
		path := tablePath(dataDir, name)
		if _, err := os.Stat(path); err != nil {
			return nil, domain.WrapError(domain.ErrIndexNotReady, "load artifacts",
				fmt.Errorf("required table %s: %w", name, err))
		}
		if err := tables.readTable(name, path); err != nil {
			return nil, domain.WrapError(domain.ErrIndexNotReady, "load artifacts", err)
		}
	}
	if err := tables.checkRequiredNonEmpty(); err != nil {
		return nil, domain.WrapError(domain.ErrIndexNotReady, "load artifacts", err)
	}

	for _, name := range domain.OptionalTables() {
		path := tablePath(dataDir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := tables.readTable(name, path); err != nil {
			return nil, domain.WrapError(domain.ErrIndexNotReady, "load artifacts", err)
		}
	}

	return tables, nil
}

func tablePath(dataDir, name string) string {
	return filepath.Join(dataDir, name+".parquet")
}

func (t *Tables) readTable(name, path string) error {
	switch name {
	case domain.TableEntities:
		rows, err := parquet.ReadFile[entityRow](path)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		t.Entities = make([]domain.Entity, 0, len(rows))
		for _, row := range rows {
			t.Entities = append(t.Entities, domain.Entity{
				ID:          row.ID,
				ShortID:     int(row.HumanReadableID),
				Title:       row.Title,
				Type:        row.Type,
				Description: row.Description,
				Degree:      int(row.Degree),
				Frequency:   int(row.Frequency),
			})
		}
	case domain.TableRelationships:
		rows, err := parquet.ReadFile[relationshipRow](path)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		t.Relationships = make([]domain.Relationship, 0, len(rows))
		for _, row := range rows {
			t.Relationships = append(t.Relationships, domain.Relationship{
				ID:             row.ID,
				ShortID:        int(row.HumanReadableID),
				Source:         row.Source,
				Target:         row.Target,
				Description:    row.Description,
				Weight:         row.Weight,
				CombinedDegree: int(row.CombinedDegree),
			})
		}
	case domain.TableTextUnits:
		rows, err := parquet.ReadFile[textUnitRow](path)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		t.TextUnits = make([]domain.TextUnit, 0, len(rows))
		for _, row := range rows {
			t.TextUnits = append(t.TextUnits, domain.TextUnit{
				ID:        row.ID,
				ShortID:   int(row.HumanReadableID),
				Text:      row.Text,
				NumTokens: int(row.NumTokens),
			})
		}
	case domain.TableCommunityReports:
		rows, err := parquet.ReadFile[communityReportRow](path)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		t.Reports = make([]domain.CommunityReport, 0, len(rows))
		for _, row := range rows {
			t.Reports = append(t.Reports, domain.CommunityReport{
				ID:        row.ID,
				ShortID:   int(row.HumanReadableID),
				Community: int(row.Community),
				Level:     int(row.Level),
				Title:     row.Title,
				Summary:   row.Summary,
				FullText:  row.FullContent,
				Rank:      row.Rank,
			})
		}
	case domain.TableCommunities:
		rows, err := parquet.ReadFile[communityRow](path)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		t.Communities = make([]domain.Community, 0, len(rows))
		for _, row := range rows {
			t.Communities = append(t.Communities, domain.Community{
				ID:      row.ID,
				ShortID: int(row.HumanReadableID),
				Level:   int(row.Level),
				Title:   row.Title,
			})
		}
	case domain.TableDocuments:
		rows, err := parquet.ReadFile[documentRow](path)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		t.Documents = make([]domain.Document, 0, len(rows))
		for _, row := range rows {
			t.Documents = append(t.Documents, domain.Document{
				ID:      row.ID,
				ShortID: int(row.HumanReadableID),
				Title:   row.Title,
				Text:    row.Text,
			})
		}
	default:
		return fmt.Errorf("unknown table %q", name)
	}
	return nil
}

func (t *Tables) checkRequiredNonEmpty() error {
	rowCounts := map[string]int{
		domain.TableEntities:         len(t.Entities),
		domain.TableTextUnits:        len(t.TextUnits),
		domain.TableRelationships:    len(t.Relationships),
		domain.TableCommunityReports: len(t.Reports),
		domain.TableCommunities:      len(t.Communities),
	}

	empty := []string{}
	for _, name := range domain.RequiredTables() {
		if rowCounts[name] == 0 {
			empty = append(empty, name)
		}
	}
	if len(empty) > 0 {
		return fmt.Errorf("required tables are empty: %v", empty)
	}
	return nil
}
