package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkordes/travel-planner/internal/domain"
	"github.com/pkordes/travel-planner/internal/service"
)

// StateResponse is the planner's current document and persistence mode.
type StateResponse struct {
	Document domain.Document `json:"document"`
	Mode     string          `json:"mode"`
	ShareID  string          `json:"shareId,omitempty"`
}

// CollaborationRequest is the optional body of POST /collaboration. With a
// share id the planner joins that trip; without one it shares its own.
type CollaborationRequest struct {
	ShareID string `json:"shareId"`
}

// ReconcileResponse reports whether a reconciliation replaced the document.
type ReconcileResponse struct {
	Changed bool `json:"changed"`
	StateResponse
}

// GetDocument handles GET /document.
func (s *PlannerServer) GetDocument(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state(s.sync.Document()))
}

// PostMutation handles POST /mutations.
func (s *PlannerServer) PostMutation(w http.ResponseWriter, r *http.Request) {
	var req MutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.rejectBody(w, r, err)
		return
	}

	m, err := req.toMutation(time.Now())
	if err != nil {
		validationFailed(w, err)
		return
	}

	doc, err := s.sync.Mutate(r.Context(), m)
	if err != nil {
		writeDomainError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, s.state(doc))
}

// PostCollaboration handles POST /collaboration: share the current trip, or
// join the one named by the body's shareId.
func (s *PlannerServer) PostCollaboration(w http.ResponseWriter, r *http.Request) {
	var req CollaborationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.rejectBody(w, r, err)
		return
	}

	if id := strings.TrimSpace(req.ShareID); id != "" {
		if err := s.sync.Join(r.Context(), id); err != nil {
			writeDomainError(w, r, s.log, err)
			return
		}
		writeJSON(w, http.StatusOK, s.state(s.sync.Document()))
		return
	}

	if _, err := s.sync.StartCollaboration(r.Context()); err != nil {
		writeDomainError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.state(s.sync.Document()))
}

// DeleteCollaboration handles DELETE /collaboration.
func (s *PlannerServer) DeleteCollaboration(w http.ResponseWriter, r *http.Request) {
	s.sync.StopCollaboration(r.Context())
	writeJSON(w, http.StatusOK, s.state(s.sync.Document()))
}

// PostReconcile handles POST /collaboration/reconcile.
func (s *PlannerServer) PostReconcile(w http.ResponseWriter, r *http.Request) {
	changed := s.sync.Reconcile(r.Context())
	writeJSON(w, http.StatusOK, ReconcileResponse{Changed: changed, StateResponse: s.state(s.sync.Document())})
}

// GetNotices handles GET /notices. Each notice is returned once.
func (s *PlannerServer) GetNotices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]Notice{"notices": s.notices.Drain()})
}

// GetItinerary handles GET /itinerary.
func (s *PlannerServer) GetItinerary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]service.DayGroup{"days": service.ItineraryDays(s.sync.Document())})
}

// GetDiary handles GET /diary.
func (s *PlannerServer) GetDiary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]domain.DiaryEntry{"entries": service.DiaryTimeline(s.sync.Document())})
}

// GetBudget handles GET /budget.
func (s *PlannerServer) GetBudget(w http.ResponseWriter, r *http.Request) {
	total := s.budgetTotal
	if total == 0 {
		total = service.DefaultBudgetTotal
	}
	writeJSON(w, http.StatusOK, service.SummarizeBudget(s.sync.Document(), total))
}

func (s *PlannerServer) state(doc domain.Document) StateResponse {
	return StateResponse{
		Document: doc,
		Mode:     s.sync.Mode().String(),
		ShareID:  s.sync.ShareID(),
	}
}

func (s *PlannerServer) rejectBody(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		writeDomainError(w, r, s.log, err)
		return
	}
	badRequest(w, "invalid JSON body: "+err.Error())
}
