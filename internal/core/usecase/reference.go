package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/graphragio/gateway/internal/core/domain"
	"github.com/graphragio/gateway/internal/core/ports"
)

// Reference datatypes addressable through /v1/references. "sources" is the
// public name for text units, "reports" for community reports.
const (
	DatatypeEntities      = "entities"
	DatatypeSources       = "sources"
	DatatypeReports       = "reports"
	DatatypeRelationships = "relationships"
	DatatypeDocuments     = "documents"
)

// ReferenceUseCase looks up cited artifact rows and shapes them into
// renderable pages.
type ReferenceUseCase struct {
	resolver ports.IndexResolver
}

func NewReferenceUseCase(resolver ports.IndexResolver) *ReferenceUseCase {
	return &ReferenceUseCase{resolver: resolver}
}

func (uc *ReferenceUseCase) Resolve(ctx context.Context, index, datatype string, shortID int) (*domain.ReferencePage, error) {
	store, err := uc.resolver.References(ctx, index)
	if err != nil {
		return nil, err
	}

	switch datatype {
	case DatatypeEntities:
		entity, err := store.EntityByShortID(ctx, shortID)
		if err != nil {
			return nil, err
		}
		return entityPage(entity), nil
	case DatatypeSources:
		unit, err := store.TextUnitByShortID(ctx, shortID)
		if err != nil {
			return nil, err
		}
		return textUnitPage(unit), nil
	case DatatypeReports:
		report, err := store.ReportByShortID(ctx, shortID)
		if err != nil {
			return nil, err
		}
		return reportPage(report), nil
	case DatatypeRelationships:
		rel, err := store.RelationshipByShortID(ctx, shortID)
		if err != nil {
			return nil, err
		}
		return relationshipPage(rel), nil
	case DatatypeDocuments:
		doc, err := store.DocumentByShortID(ctx, shortID)
		if err != nil {
			return nil, err
		}
		return documentPage(doc), nil
	default:
		return nil, domain.WrapError(domain.ErrNotFound, "resolve reference",
			fmt.Errorf("datatype %q is not supported", datatype))
	}
}

func entityPage(e *domain.Entity) *domain.ReferencePage {
	return &domain.ReferencePage{
		Kind:  DatatypeEntities,
		Title: e.Title,
		Fields: []domain.ReferenceField{
			{Label: "ID", Value: e.ID},
			{Label: "Type", Value: e.Type},
			{Label: "Description", Value: e.Description},
			{Label: "Degree", Value: strconv.Itoa(e.Degree)},
			{Label: "Frequency", Value: strconv.Itoa(e.Frequency)},
		},
	}
}

func textUnitPage(u *domain.TextUnit) *domain.ReferencePage {
	return &domain.ReferencePage{
		Kind:  DatatypeSources,
		Title: fmt.Sprintf("Source %d", u.ShortID),
		Fields: []domain.ReferenceField{
			{Label: "ID", Value: u.ID},
			{Label: "Tokens", Value: strconv.Itoa(u.NumTokens)},
			{Label: "Text", Value: u.Text},
		},
	}
}

func reportPage(r *domain.CommunityReport) *domain.ReferencePage {
	return &domain.ReferencePage{
		Kind:  DatatypeReports,
		Title: r.Title,
		Fields: []domain.ReferenceField{
			{Label: "ID", Value: r.ID},
			{Label: "Community", Value: strconv.Itoa(r.Community)},
			{Label: "Level", Value: strconv.Itoa(r.Level)},
			{Label: "Rank", Value: strconv.FormatFloat(r.Rank, 'f', -1, 64)},
			{Label: "Summary", Value: r.Summary},
			{Label: "Report", Value: r.FullText},
		},
	}
}

func relationshipPage(r *domain.Relationship) *domain.ReferencePage {
	return &domain.ReferencePage{
		Kind:  DatatypeRelationships,
		Title: fmt.Sprintf("%s -> %s", r.Source, r.Target),
		Fields: []domain.ReferenceField{
			{Label: "ID", Value: r.ID},
			{Label: "Description", Value: r.Description},
			{Label: "Weight", Value: strconv.FormatFloat(r.Weight, 'f', -1, 64)},
			{Label: "Combined degree", Value: strconv.Itoa(r.CombinedDegree)},
		},
	}
}

func documentPage(d *domain.Document) *domain.ReferencePage {
	return &domain.ReferencePage{
		Kind:  DatatypeDocuments,
		Title: d.Title,
		Fields: []domain.ReferenceField{
			{Label: "ID", Value: d.ID},
			{Label: "Text", Value: d.Text},
		},
	}
}
