package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/travel-planner/internal/domain"
)

// Export formats accepted by GET /export?format=.
const (
	ExportFormatJSON = "json"
	ExportFormatCSV  = "csv"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{"day", "date", "time", "name", "category", "location", "notes"}

// ExportRow is the JSON shape of one export row. Empty optional fields are
// omitted.
type ExportRow struct {
	Day      int    `json:"day"`
	Date     string `json:"date,omitempty"`
	Time     string `json:"time,omitempty"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Location string `json:"location,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// GetExportParams holds the query parameters of GET /export.
type GetExportParams struct {
	Format *string `form:"format,omitempty" json:"format,omitempty"`
}

// GetExport handles GET /export.
// It returns the itinerary as a flat table, one row per activity.
// Use ?format=csv to receive CSV; default is JSON.
func (s *PlannerServer) GetExport(w http.ResponseWriter, r *http.Request) {
	var params GetExportParams
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &params.Format); err != nil {
		badRequest(w, fmt.Sprintf("invalid format for parameter format: %s", err))
		return
	}
	format := ExportFormatJSON
	if params.Format != nil {
		format = *params.Format
	}
	if format != ExportFormatJSON && format != ExportFormatCSV {
		badRequest(w, fmt.Sprintf("unsupported export format %q", format))
		return
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		writeDomainError(w, r, s.log, err)
		return
	}

	if format == ExportFormatCSV {
		writeCSV(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, buildJSONRows(rows))
}

// buildJSONRows converts domain rows to the JSON response shape.
func buildJSONRows(rows []domain.ExportRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, ExportRow(r))
	}
	return out
}

// writeCSV encodes rows as an attachment.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(domainRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="itinerary.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		strconv.Itoa(r.Day),
		r.Date,
		r.Time,
		r.Name,
		r.Category,
		r.Location,
		r.Notes,
	}
}
