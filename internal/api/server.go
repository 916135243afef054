package api

import (
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/lbradley/daybook/internal/drift"
	"github.com/lbradley/daybook/internal/generator"
	"github.com/lbradley/daybook/internal/reconcile"
	"github.com/lbradley/daybook/internal/scheduler"
	"github.com/lbradley/daybook/internal/storage"
	"github.com/lbradley/daybook/internal/validation"
)

// Server wires the engine's components behind the HTTP surface.
type Server struct {
	store     storage.Provider
	sched     *scheduler.Scheduler
	gen       generator.Generator
	fallback  generator.Generator
	detector  *drift.Detector
	coord     *reconcile.Coordinator
	validator *validation.Validator
}

func NewServer(store storage.Provider, gen generator.Generator) *Server {
	detector := drift.NewDetector(store)
	return &Server{
		store:     store,
		sched:     scheduler.New(),
		gen:       gen,
		fallback:  generator.NewStatic(),
		detector:  detector,
		coord:     reconcile.New(store, gen, detector),
		validator: validation.New(),
	}
}

// Router builds the route table. All paths live under /api.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.health).Methods("GET")

	api.HandleFunc("/schedule/today", s.getToday).Methods("GET")
	api.HandleFunc("/schedule/generate", s.generateSchedule).Methods("POST")
	api.HandleFunc("/schedule/{date}", s.getSchedule).Methods("GET")
	api.HandleFunc("/schedule/{date}/analysis", s.getAnalysis).Methods("GET")

	api.HandleFunc("/schedule/{date}/blocks", s.insertBlock).Methods("POST")
	api.HandleFunc("/schedule/{date}/blocks/reorder", s.reorderBlocks).Methods("POST")
	api.HandleFunc("/schedule/{date}/blocks/{start}", s.updateBlock).Methods("PATCH")
	api.HandleFunc("/schedule/{date}/blocks/{start}", s.deleteBlock).Methods("DELETE")

	api.HandleFunc("/feedback/block", s.submitFeedback).Methods("POST")

	api.HandleFunc("/schedule-drift/check", s.checkDrift).Methods("POST")
	api.HandleFunc("/schedule-drift/{date}", s.listDriftEvents).Methods("GET")
	api.HandleFunc("/schedule-drift/{id}/resolve", s.resolveDrift).Methods("POST")
	api.HandleFunc("/schedule-drift/{id}/ai-reschedule", s.aiReschedule).Methods("POST")

	return r
}

// Handler wraps the router with access logging, panic recovery, and CORS
// for the planner frontend.
func (s *Server) Handler(accessLog io.Writer) http.Handler {
	h := http.Handler(s.Router())
	h = handlers.CORS(
		handlers.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(h)
	h = handlers.RecoveryHandler()(h)
	if accessLog != nil {
		h = handlers.LoggingHandler(accessLog, h)
	}
	return h
}
