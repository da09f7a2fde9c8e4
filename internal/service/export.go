package service

import (
	"context"
	"fmt"

	"github.com/pkordes/travel-planner/internal/domain"
)

// DocumentSource hands out a snapshot of the current trip document.
// *collab.Controller satisfies it.
type DocumentSource interface {
	Document() domain.Document
}

// ExportService flattens the itinerary of the current document for export.
type ExportService struct {
	source DocumentSource
}

// NewExportService constructs an ExportService reading from source.
func NewExportService(source DocumentSource) *ExportService {
	return &ExportService{source: source}
}

// Export returns one ExportRow per activity in itinerary view order.
// An empty itinerary yields an empty, non-nil slice.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	return ExportRows(s.source.Document()), nil
}

// ExportRows flattens doc's itinerary into export rows, grouped and ordered
// exactly like ItineraryDays.
func ExportRows(doc domain.Document) []domain.ExportRow {
	rows := make([]domain.ExportRow, 0, len(doc.Itinerary))
	for _, day := range ItineraryDays(doc) {
		for _, a := range day.Activities {
			rows = append(rows, domain.ExportRow{
				Day:      day.Day,
				Date:     a.Date,
				Time:     a.Time,
				Name:     a.Name,
				Category: a.Category,
				Location: a.Location,
				Notes:    a.Notes,
			})
		}
	}
	return rows
}
