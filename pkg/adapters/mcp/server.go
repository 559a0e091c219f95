package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/typomata"
	"github.com/aretw0/typomata/pkg/adapters/dot"
	"github.com/aretw0/typomata/pkg/adapters/mermaid"
	"github.com/aretw0/typomata/pkg/codec"
	"github.com/aretw0/typomata/pkg/index"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// GraphArgs are the arguments of the get_graph tool.
type GraphArgs struct {
	Format  string `json:"format,omitempty"`
	Current string `json:"current,omitempty"`
}

// GraphResponse carries a rendered graph.
type GraphResponse struct {
	Format  string `json:"format" jsonschema_description:"The rendering format (json, mermaid or dot)"`
	Content string `json:"content" jsonschema_description:"The rendered graph"`
}

// TransitionsResponse lists the declared transitions of the machine.
type TransitionsResponse struct {
	Machine     string        `json:"machine" jsonschema_description:"The machine name"`
	Transitions []index.Entry `json:"transitions" jsonschema_description:"One entry per (state, action) pair"`
}

// RunArgs are the arguments of the run tool. State and Action are JSON
// encoded envelopes: {"type": "Idle", "data": {...}}.
type RunArgs struct {
	State   string `json:"state"`
	Action  string `json:"action"`
	Handler string `json:"handler,omitempty"`
}

// RunResponse is the result of a single transition.
type RunResponse struct {
	State   codec.Envelope `json:"state" jsonschema_description:"The next state"`
	Handler string         `json:"handler" jsonschema_description:"The handler that produced the next state"`
}

// Server wraps a Machine and exposes it as an MCP Server.
type Server struct {
	machine   *typomata.Machine
	registry  *codec.Registry
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(m *typomata.Machine) (*Server, error) {
	reg, err := codec.NewRegistry(m.Types()...)
	if err != nil {
		return nil, fmt.Errorf("failed to build type registry: %w", err)
	}
	s := &Server{
		machine:   m,
		registry:  reg,
		mcpServer: server.NewMCPServer("typomata-mcp", strings.TrimSpace(typomata.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr, "machine", s.machine.Name())
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: transition_map
	s.mcpServer.AddTool(mcp.NewTool("transition_map",
		mcp.WithDescription("List every (state, action) pair the machine accepts, with its handler and possible results."),
		mcp.WithOutputSchema[TransitionsResponse](),
	), mcp.NewStructuredToolHandler(s.handleTransitions))

	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the state graph of the machine."),
		mcp.WithString("format", mcp.Enum("json", "mermaid", "dot"), mcp.Description("Rendering format (default json)")),
		mcp.WithString("current", mcp.Description("State to highlight in mermaid output (optional)")),
		mcp.WithOutputSchema[GraphResponse](),
	), mcp.NewStructuredToolHandler(s.handleGraph))

	// TOOL: run
	s.mcpServer.AddTool(mcp.NewTool("run",
		mcp.WithDescription("Apply an action to a state and return the next state. If handler is given, that handler is invoked directly."),
		mcp.WithString("state", mcp.Required(), mcp.Description(`JSON envelope of the current state, e.g. {"type": "Idle", "data": {"stock": 1}}`)),
		mcp.WithString("action", mcp.Required(), mcp.Description(`JSON envelope of the action, e.g. {"type": "InsertCoin"}`)),
		mcp.WithString("handler", mcp.Description("Handler name to invoke directly (optional)")),
		mcp.WithOutputSchema[RunResponse](),
	), mcp.NewStructuredToolHandler(s.handleRun))
}

func (s *Server) handleTransitions(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (TransitionsResponse, error) {
	return TransitionsResponse{
		Machine:     s.machine.Name(),
		Transitions: s.machine.TransitionMap(),
	}, nil
}

func (s *Server) handleGraph(ctx context.Context, request mcp.CallToolRequest, args GraphArgs) (GraphResponse, error) {
	d := s.machine.Graph()

	switch args.Format {
	case "", "json":
		data, err := json.Marshal(d)
		if err != nil {
			return GraphResponse{}, fmt.Errorf("graph encode failed: %w", err)
		}
		return GraphResponse{Format: "json", Content: string(data)}, nil
	case "mermaid":
		var overlay *mermaid.Overlay
		if args.Current != "" {
			overlay = &mermaid.Overlay{Current: args.Current}
		}
		return GraphResponse{Format: "mermaid", Content: mermaid.Generate(d, overlay)}, nil
	case "dot":
		return GraphResponse{Format: "dot", Content: dot.Renderer{}.Generate(d)}, nil
	default:
		return GraphResponse{}, fmt.Errorf("unknown format %q", args.Format)
	}
}

func (s *Server) handleRun(ctx context.Context, request mcp.CallToolRequest, args RunArgs) (RunResponse, error) {
	if args.State == "" || args.Action == "" {
		return RunResponse{}, errors.New("state and action are required")
	}

	state, err := s.registry.DecodeJSON([]byte(args.State))
	if err != nil {
		return RunResponse{}, fmt.Errorf("state: %w", err)
	}
	action, err := s.registry.DecodeJSON([]byte(args.Action))
	if err != nil {
		return RunResponse{}, fmt.Errorf("action: %w", err)
	}

	handler := args.Handler
	var next any
	if handler != "" {
		next, err = s.machine.Call(ctx, handler, state, action)
	} else {
		next, handler, err = s.machine.Resolve(ctx, state, action)
	}
	if err != nil {
		slog.Warn("MCP Run: transition failed", "machine", s.machine.Name(), "error", err)
		return RunResponse{}, fmt.Errorf("run failed: %w", err)
	}

	env, err := s.registry.Encode(next)
	if err != nil {
		return RunResponse{}, fmt.Errorf("run failed: %w", err)
	}
	return RunResponse{State: env, Handler: handler}, nil
}

func (s *Server) registerResources() {
	uri := "typomata://" + s.machine.Name() + "/graph"

	// EXPOSE: typomata://<machine>/graph
	s.mcpServer.AddResource(mcp.NewResource(uri, "State Graph",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.machine.Graph())
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
