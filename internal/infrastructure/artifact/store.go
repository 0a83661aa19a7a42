package artifact

import (
	"context"
	"fmt"

	"github.com/graphragio/gateway/internal/core/domain"
)

// Store indexes loaded tables by human-readable short id for the references
// endpoint.
type Store struct {
	entities      map[int]*domain.Entity
	textUnits     map[int]*domain.TextUnit
	reports       map[int]*domain.CommunityReport
	relationships map[int]*domain.Relationship
	documents     map[int]*domain.Document
}

func NewStore(tables *Tables) *Store {
	s := &Store{
		entities:      make(map[int]*domain.Entity, len(tables.Entities)),
		textUnits:     make(map[int]*domain.TextUnit, len(tables.TextUnits)),
		reports:       make(map[int]*domain.CommunityReport, len(tables.Reports)),
		relationships: make(map[int]*domain.Relationship, len(tables.Relationships)),
		documents:     make(map[int]*domain.Document, len(tables.Documents)),
	}
	for i := range tables.Entities {
		s.entities[tables.Entities[i].ShortID] = &tables.Entities[i]
	}
	for i := range tables.TextUnits {
		s.textUnits[tables.TextUnits[i].ShortID] = &tables.TextUnits[i]
	}
	for i := range tables.Reports {
		s.reports[tables.Reports[i].ShortID] = &tables.Reports[i]
	}
	for i := range tables.Relationships {
		s.relationships[tables.Relationships[i].ShortID] = &tables.Relationships[i]
	}
	for i := range tables.Documents {
		s.documents[tables.Documents[i].ShortID] = &tables.Documents[i]
	}
	return s
}

func (s *Store) EntityByShortID(_ context.Context, shortID int) (*domain.Entity, error) {
	if entity, ok := s.entities[shortID]; ok {
		return entity, nil
	}
	return nil, notFound("entity", shortID)
}

func (s *Store) TextUnitByShortID(_ context.Context, shortID int) (*domain.TextUnit, error) {
	if unit, ok := s.textUnits[shortID]; ok {
		return unit, nil
	}
	return nil, notFound("source", shortID)
}

func (s *Store) ReportByShortID(_ context.Context, shortID int) (*domain.CommunityReport, error) {
	if report, ok := s.reports[shortID]; ok {
		return report, nil
	}
	return nil, notFound("report", shortID)
}

func (s *Store) RelationshipByShortID(_ context.Context, shortID int) (*domain.Relationship, error) {
	if rel, ok := s.relationships[shortID]; ok {
		return rel, nil
	}
	return nil, notFound("relationship", shortID)
}

func (s *Store) DocumentByShortID(_ context.Context, shortID int) (*domain.Document, error) {
	if doc, ok := s.documents[shortID]; ok {
		return doc, nil
	}
	return nil, notFound("document", shortID)
}

func notFound(kind string, shortID int) error {
	return domain.WrapError(domain.ErrNotFound, "lookup "+kind, fmt.Errorf("no %s with id %d", kind, shortID))
}
