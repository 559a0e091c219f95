package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/typomata"
	"github.com/aretw0/typomata/internal/machines/coffee"
	"github.com/aretw0/typomata/pkg/domain"
	"github.com/aretw0/typomata/pkg/graph"
	"github.com/aretw0/typomata/pkg/index"
	"github.com/aretw0/typomata/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	m, err := coffee.New()
	require.NoError(t, err)
	h, err := NewHandler(m)
	require.NoError(t, err)
	return h
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(t, newTestHandler(t), "GET", "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestInfo(t *testing.T) {
	w := do(t, newTestHandler(t), "GET", "/info", "")

	var info map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "coffee", info["machine"])
	assert.Equal(t, strings.TrimSpace(typomata.Version), info["version"])
}

func TestTransitions(t *testing.T) {
	w := do(t, newTestHandler(t), "GET", "/transitions", "")
	require.Equal(t, http.StatusOK, w.Code)

	var entries []index.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 4)
	assert.Equal(t, []string{"Idle", "OutOfCoffee"}, entries[1].Results)
}

func TestGraph(t *testing.T) {
	h := newTestHandler(t)

	t.Run("JSON", func(t *testing.T) {
		w := do(t, h, "GET", "/graph", "")
		require.Equal(t, http.StatusOK, w.Code)

		var d graph.Description
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
		assert.Len(t, d.Nodes, 3)
		assert.Len(t, d.Edges, 5)
	})

	t.Run("Mermaid", func(t *testing.T) {
		w := do(t, h, "GET", "/graph?format=mermaid&current=Brewing&visited=Idle", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "graph TD")
		assert.Contains(t, w.Body.String(), "class Brewing current;")
		assert.Contains(t, w.Body.String(), "class Idle visited;")
	})

	t.Run("Dot", func(t *testing.T) {
		w := do(t, h, "GET", "/graph?format=dot", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "digraph \"coffee\"")
	})

	t.Run("Unknown", func(t *testing.T) {
		w := do(t, h, "GET", "/graph?format=png", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRun(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "POST", "/run", `{"state": {"type": "Idle", "data": {"stock": 1}}, "action": {"type": "InsertCoin"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp StepResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "start_brewing", resp.Handler)
	assert.Equal(t, "Brewing", resp.State.Type)
	assert.Equal(t, float64(1), resp.State.Data["stock"])
}

func TestRun_Errors(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name     string
		path     string
		body     string
		status   int
		kind     string
		expected []string
	}{
		{
			name:     "no transition",
			path:     "/run",
			body:     `{"state": {"type": "OutOfCoffee"}, "action": {"type": "InsertCoin"}}`,
			status:   http.StatusUnprocessableEntity,
			kind:     domain.KindNoTransition,
			expected: []string{"Idle"},
		},
		{
			name:     "type mismatch",
			path:     "/call/start_brewing",
			body:     `{"state": {"type": "OutOfCoffee"}, "action": {"type": "InsertCoin"}}`,
			status:   http.StatusBadRequest,
			kind:     domain.KindTypeMismatch,
			expected: []string{"Idle"},
		},
		{
			name:   "unknown handler",
			path:   "/call/descale",
			body:   `{"state": {"type": "Idle"}, "action": {"type": "Refill"}}`,
			status: http.StatusNotFound,
			kind:   domain.KindUnknownHandler,
		},
		{
			name:   "unknown type",
			path:   "/run",
			body:   `{"state": {"type": "Espresso"}, "action": {"type": "InsertCoin"}}`,
			status: http.StatusBadRequest,
			kind:   "decode",
		},
		{
			name:   "invalid body",
			path:   "/run",
			body:   `{`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.kind, resp.Kind)
			assert.Equal(t, tt.expected, resp.Expected)
		})
	}
}

type Open struct{}
type Closed struct{}
type Slam struct{}

func TestRun_ContractViolation(t *testing.T) {
	m := typomata.New("door").
		Transition("slam", types.Of[Open](), types.Of[Slam](), types.Of[Closed](),
			func(context.Context, domain.State, domain.Action) (domain.State, error) {
				return Open{}, nil
			}).
		MustBuild()
	h, err := NewHandler(m)
	require.NoError(t, err)

	w := do(t, h, "POST", "/run", `{"state": {"type": "Open"}, "action": {"type": "Slam"}}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.KindReturnContract, resp.Kind)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusFor(&domain.ReturnContractViolationError{}))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(assert.AnError))
	assert.Equal(t, http.StatusBadRequest, StatusFor(domain.ErrNilValue))
}
