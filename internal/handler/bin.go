package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/travel-planner/internal/domain"
)

// BinResponse is the envelope returned by every bin endpoint.
type BinResponse struct {
	Record   domain.Document `json:"record"`
	Metadata BinMetadata     `json:"metadata"`
}

// BinMetadata describes a stored bin.
type BinMetadata struct {
	ID        openapi_types.UUID `json:"id"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// GetLatestBinParams holds the query parameters of GET /bins/{id}/latest.
type GetLatestBinParams struct {
	// CacheBust is ignored; clients vary it so no intermediary can answer
	// from cache.
	CacheBust *int64 `form:"cacheBust,omitempty" json:"cacheBust,omitempty"`
}

// CreateBin handles POST /bins.
func (s *BinServer) CreateBin(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeRecord(r.Body)
	if err != nil {
		s.rejectBody(w, r, err)
		return
	}

	bin, err := s.bins.Create(r.Context(), doc)
	if err != nil {
		writeDomainError(w, r, s.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, binToResponse(bin))
}

// GetLatestBin handles GET /bins/{id}/latest.
func (s *BinServer) GetLatestBin(w http.ResponseWriter, r *http.Request) {
	id, ok := bindBinID(w, r)
	if !ok {
		return
	}

	var params GetLatestBinParams
	if err := runtime.BindQueryParameter("form", true, false, "cacheBust", r.URL.Query(), &params.CacheBust); err != nil {
		badRequest(w, fmt.Sprintf("invalid format for parameter cacheBust: %s", err))
		return
	}

	bin, err := s.bins.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, s.log, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, binToResponse(bin))
}

// UpdateBin handles PUT /bins/{id}. The record is replaced wholesale.
func (s *BinServer) UpdateBin(w http.ResponseWriter, r *http.Request) {
	id, ok := bindBinID(w, r)
	if !ok {
		return
	}

	doc, err := decodeRecord(r.Body)
	if err != nil {
		s.rejectBody(w, r, err)
		return
	}

	bin, err := s.bins.Update(r.Context(), id, doc)
	if err != nil {
		writeDomainError(w, r, s.log, err)
		return
	}

	writeJSON(w, http.StatusOK, binToResponse(bin))
}

// bindBinID binds the {id} path parameter the way generated oapi-codegen
// wrappers do. On failure it writes a 400 and reports false.
func bindBinID(w http.ResponseWriter, r *http.Request) (openapi_types.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		badRequest(w, fmt.Sprintf("invalid format for parameter id: %s", err))
		return openapi_types.UUID{}, false
	}
	return id, true
}

var errNotAnObject = errors.New("record must be a JSON object")

// decodeRecord reads a trip document from body. The payload must be a single
// JSON object; absent collections decode as empty.
func decodeRecord(body io.Reader) (domain.Document, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return domain.Document{}, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return domain.Document{}, errNotAnObject
	}

	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("invalid record: %w", err)
	}
	doc.Normalize()
	return doc, nil
}

func (s *BinServer) rejectBody(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		writeDomainError(w, r, s.log, err)
		return
	}
	badRequest(w, err.Error())
}

func binToResponse(b domain.Bin) BinResponse {
	return BinResponse{
		Record: b.Record,
		Metadata: BinMetadata{
			ID:        b.ID,
			CreatedAt: b.CreatedAt,
			UpdatedAt: b.UpdatedAt,
		},
	}
}
