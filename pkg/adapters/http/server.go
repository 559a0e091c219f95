package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/typomata"
	"github.com/aretw0/typomata/pkg/adapters/dot"
	"github.com/aretw0/typomata/pkg/adapters/mermaid"
	"github.com/aretw0/typomata/pkg/codec"
	"github.com/aretw0/typomata/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// StepRequest is the body of POST /run and POST /call/{handler}.
type StepRequest struct {
	State  codec.Envelope `json:"state"`
	Action codec.Envelope `json:"action"`
}

// StepResponse is the next state and the handler that produced it.
type StepResponse struct {
	State   codec.Envelope `json:"state"`
	Handler string         `json:"handler"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Kind     string   `json:"kind,omitempty"`
	Expected []string `json:"expected,omitempty"`
}

// Server exposes a single machine over HTTP.
type Server struct {
	Machine  *typomata.Machine
	Registry *codec.Registry
}

// NewHandler creates a new HTTP handler for the machine.
func NewHandler(m *typomata.Machine) (http.Handler, error) {
	reg, err := codec.NewRegistry(m.Types()...)
	if err != nil {
		return nil, fmt.Errorf("failed to build type registry: %w", err)
	}
	server := &Server{Machine: m, Registry: reg}

	r := chi.NewRouter()
	r.Use(RequestID)
	server.Mount(r)
	return enableCORS(r), nil
}

// Mount registers the machine routes on r.
func (s *Server) Mount(r chi.Router) {
	r.Get("/openapi.yaml", serveSpec)
	r.Get("/swagger", serveSwagger)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/transitions", s.GetTransitions)
	r.Get("/graph", s.GetGraph)
	r.Post("/run", s.Run)
	r.Post("/call/{handler}", s.Call)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"app":      "typomata-http",
		"version":  strings.TrimSpace(typomata.Version),
		"machine":  s.Machine.Name(),
		"handlers": s.Machine.Handlers(),
		"types":    s.Registry.Names(),
	})
}

// GetTransitions handles the GET /transitions request.
func (s *Server) GetTransitions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Machine.TransitionMap())
}

// GetGraph handles the GET /graph request.
// The format query parameter selects json (default), mermaid or dot.
// Mermaid output honours the current and visited parameters.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d := s.Machine.Graph()

	switch format := q.Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, d)
	case "mermaid":
		var overlay *mermaid.Overlay
		if current, visited := q.Get("current"), q.Get("visited"); current != "" || visited != "" {
			overlay = &mermaid.Overlay{Current: current}
			if visited != "" {
				overlay.Visited = strings.Split(visited, ",")
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := (mermaid.Renderer{Overlay: overlay}).Render(w, d); err != nil {
			slog.Error("GetGraph render failed", "error", err)
		}
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		if err := (dot.Renderer{}).Render(w, d); err != nil {
			slog.Error("GetGraph render failed", "error", err)
		}
	default:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("unknown format %q", format)})
	}
}

// Run handles the POST /run request.
func (s *Server) Run(w http.ResponseWriter, r *http.Request) {
	state, action, ok := s.decodeStep(w, r)
	if !ok {
		return
	}

	next, handler, err := s.Machine.Resolve(r.Context(), state, action)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeStep(w, next, handler)
}

// Call handles the POST /call/{handler} request.
func (s *Server) Call(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "handler")
	state, action, ok := s.decodeStep(w, r)
	if !ok {
		return
	}

	next, err := s.Machine.Call(r.Context(), name, state, action)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeStep(w, next, name)
}

func (s *Server) decodeStep(w http.ResponseWriter, r *http.Request) (domain.State, domain.Action, bool) {
	var body StepRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		slog.Warn("Invalid request body", "path", r.URL.Path, "error", err)
		return nil, nil, false
	}

	state, err := s.Registry.Decode(body.State)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "state: " + err.Error(), Kind: "decode"})
		return nil, nil, false
	}
	action, err := s.Registry.Decode(body.Action)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "action: " + err.Error(), Kind: "decode"})
		return nil, nil, false
	}
	return state, action, true
}

func (s *Server) writeStep(w http.ResponseWriter, next domain.State, handler string) {
	env, err := s.Registry.Encode(next)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		slog.Error("Step response encode failed", "handler", handler, "error", err)
		return
	}
	writeJSON(w, http.StatusOK, StepResponse{State: env, Handler: handler})
}

// StatusFor maps an error kind to an HTTP status code.
func StatusFor(err error) int {
	switch domain.Kind(err) {
	case domain.KindNoTransition:
		return http.StatusUnprocessableEntity
	case domain.KindTypeMismatch, domain.KindNilValue:
		return http.StatusBadRequest
	case domain.KindUnknownHandler:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorResponse{Error: err.Error(), Kind: domain.Kind(err)}

	var nt *domain.NoTransitionError
	var tm *domain.TypeMismatchError
	switch {
	case errors.As(err, &nt):
		resp.Expected = nt.Expected
	case errors.As(err, &tm):
		resp.Expected = tm.Expected
	}

	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Step failed", "kind", resp.Kind, "request_id", RequestIDFrom(r.Context()), "error", err)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}
