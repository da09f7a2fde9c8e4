// Package handler implements the HTTP handlers for both binaries: the bin
// store REST API (BinServer) and the planner's caller-facing API
// (PlannerServer). Each server registers its routes on a chi.Router supplied
// by main, which owns the middleware stack.
package handler

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/travel-planner/internal/collab"
	"github.com/pkordes/travel-planner/internal/domain"
)

// BinServicer defines the business operations the bin handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type BinServicer interface {
	Create(ctx context.Context, doc domain.Document) (domain.Bin, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Bin, error)
	Update(ctx context.Context, id uuid.UUID, doc domain.Document) (domain.Bin, error)
}

// Syncer is the synchronization controller as seen by the planner handlers.
// *collab.Controller satisfies it.
type Syncer interface {
	Document() domain.Document
	Mode() collab.Mode
	ShareID() string
	Mutate(ctx context.Context, m domain.Mutation) (domain.Document, error)
	StartCollaboration(ctx context.Context) (string, error)
	Join(ctx context.Context, shareID string) error
	StopCollaboration(ctx context.Context)
	Reconcile(ctx context.Context) bool
	OnRemoteChange(fn func(collab.Change)) (unsubscribe func())
}

// Exporter produces the flat itinerary export.
// *service.ExportService satisfies it.
type Exporter interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// BinServer serves the bin store API.
type BinServer struct {
	bins BinServicer
	log  *slog.Logger
}

// NewBinServer constructs the BinServer with all its dependencies.
func NewBinServer(bins BinServicer, log *slog.Logger) *BinServer {
	if log == nil {
		log = slog.Default()
	}
	return &BinServer{bins: bins, log: log}
}

// Register mounts the bin store routes on r.
func (s *BinServer) Register(r chi.Router) {
	r.Get("/healthz", getHealth)
	r.Post("/bins", s.CreateBin)
	r.Get("/bins/{id}/latest", s.GetLatestBin)
	r.Put("/bins/{id}", s.UpdateBin)
}

// PlannerServer serves the planner API on top of a Syncer.
type PlannerServer struct {
	sync        Syncer
	export      Exporter
	notices     *NoticeQueue
	budgetTotal int64
	log         *slog.Logger
	unsubscribe func()
}

// PlannerOptions configures a PlannerServer. Zero values pick defaults.
type PlannerOptions struct {
	// BudgetTotal is the trip budget used by GET /budget.
	BudgetTotal int64
	// MaxNotices bounds the undrained notice queue. Defaults to 50.
	MaxNotices int
	Logger     *slog.Logger
}

// NewPlannerServer constructs the PlannerServer and subscribes its notice
// queue to the syncer's remote-change events. Call Close to unsubscribe.
func NewPlannerServer(sync Syncer, export Exporter, opts PlannerOptions) *PlannerServer {
	s := &PlannerServer{
		sync:        sync,
		export:      export,
		notices:     NewNoticeQueue(opts.MaxNotices),
		budgetTotal: opts.BudgetTotal,
		log:         opts.Logger,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.unsubscribe = sync.OnRemoteChange(s.notices.Push)
	return s
}

// Register mounts the planner routes on r.
func (s *PlannerServer) Register(r chi.Router) {
	r.Get("/healthz", getHealth)
	r.Get("/document", s.GetDocument)
	r.Post("/mutations", s.PostMutation)
	r.Route("/collaboration", func(r chi.Router) {
		r.Post("/", s.PostCollaboration)
		r.Delete("/", s.DeleteCollaboration)
		r.Post("/reconcile", s.PostReconcile)
	})
	r.Get("/notices", s.GetNotices)
	r.Get("/itinerary", s.GetItinerary)
	r.Get("/diary", s.GetDiary)
	r.Get("/budget", s.GetBudget)
	r.Get("/export", s.GetExport)
}

// Close detaches the server from the syncer's change events.
func (s *PlannerServer) Close() {
	s.unsubscribe()
}
