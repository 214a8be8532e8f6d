package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cola/pkg/cache"
	"github.com/matzehuels/cola/pkg/graph"
	"github.com/matzehuels/cola/pkg/observability"
	"github.com/matzehuels/cola/pkg/pipeline"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
	srv := httptest.NewServer(newServer(runner, logger))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServeHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get(headerRequestID) == "" {
		t.Error("response should carry a request ID")
	}
	if got := resp.Header.Get("Server"); !strings.HasPrefix(got, "cola/") {
		t.Errorf("Server header = %q", got)
	}
}

func TestServeRequestIDPassthrough(t *testing.T) {
	srv := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(headerRequestID, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get(headerRequestID); got != "abc-123" {
		t.Errorf("request ID = %q, want abc-123", got)
	}
}

func TestServeLayout(t *testing.T) {
	srv := newTestServer(t)
	body := `{"graph": ` + testGraph + `, "options": {"link_distance": 40, "route": {"enabled": true}}}`
	resp := post(t, srv.URL+"/v1/layout", body)
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body %s", resp.StatusCode, data)
	}

	var out layoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Result.Nodes) != 3 || out.Stats.Nodes != 3 {
		t.Errorf("result has %d nodes (stats %d), want 3", len(out.Result.Nodes), out.Stats.Nodes)
	}
	if out.GraphHash == "" {
		t.Error("graph hash should be set")
	}
	if len(out.Result.Routes) != 2 {
		t.Errorf("len(Routes) = %d, want 2", len(out.Result.Routes))
	}
}

func TestServeErrors(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		name, path, body string
		status           int
		code             string
	}{
		{"malformed body", "/v1/layout", `{"graph":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", "/v1/layout", `{"graf": {}}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad options", "/v1/layout", `{"graph": ` + testGraph + `, "options": {"flow": "q:1"}}`, http.StatusBadRequest, "INVALID_CONFIG"},
		{
			"infeasible",
			"/v1/layout",
			`{"graph": {"nodes": [{}, {}], "links": [], "constraints": [
				{"axis": "x", "left": 0, "right": 1, "gap": 10, "equality": true},
				{"axis": "x", "left": 1, "right": 0, "gap": 10, "equality": true}]}}`,
			http.StatusUnprocessableEntity,
			"INFEASIBLE_CONSTRAINTS",
		},
		{"bad format", "/v1/render", `{"layout": {"nodes": []}, "format": "gif"}`, http.StatusBadRequest, "INVALID_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var e errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
				t.Fatal(err)
			}
			if e.Error.Code != tt.code {
				t.Errorf("code = %q, want %q (message %q)", e.Error.Code, tt.code, e.Error.Message)
			}
		})
	}
}

func TestServeRouteAndRender(t *testing.T) {
	srv := newTestServer(t)
	res := graph.Result{
		Nodes: []graph.PlacedNode{
			{ID: "a", X: 0, Y: 0, Width: 10, Height: 10},
			{ID: "b", X: 50, Y: 0, Width: 20, Height: 20},
			{ID: "c", X: 100, Y: 0, Width: 10, Height: 10},
		},
		Links: []graph.Link{{Source: graph.Endpoint{Index: 0}, Target: graph.Endpoint{Index: 2}}},
	}
	layoutJSON, err := graph.MarshalResult(res)
	if err != nil {
		t.Fatal(err)
	}

	resp := post(t, srv.URL+"/v1/route", `{"layout": `+string(layoutJSON)+`, "route": {"margin": 5}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("route status = %d", resp.StatusCode)
	}
	var routed routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&routed); err != nil {
		t.Fatal(err)
	}
	if len(routed.Result.Routes) != 1 || len(routed.Result.Routes[0]) != 4 {
		t.Errorf("Routes = %v, want one route of 4 points", routed.Result.Routes)
	}

	resp = post(t, srv.URL+"/v1/render?format=dot", `{"layout": `+string(layoutJSON)+`}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("render status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("Content-Type = %q", ct)
	}
	dot, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(dot, []byte(`label="b"`)) {
		t.Errorf("DOT output missing label:\n%s", dot)
	}
}

type recordingServerHooks struct {
	observability.NoopServerHooks
	mu        sync.Mutex
	requests  []string
	responses []int
}

func (h *recordingServerHooks) OnRequest(_ context.Context, method, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, method+" "+path)
}

func (h *recordingServerHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses = append(h.responses, status)
}

func TestServeHooks(t *testing.T) {
	hooks := &recordingServerHooks{}
	observability.SetServerHooks(hooks)
	defer observability.Reset()

	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	post(t, srv.URL+"/v1/layout", `not json`)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.requests) != 2 || hooks.requests[0] != "GET /healthz" || hooks.requests[1] != "POST /v1/layout" {
		t.Errorf("requests = %v", hooks.requests)
	}
	if len(hooks.responses) != 2 || hooks.responses[0] != 200 || hooks.responses[1] != 400 {
		t.Errorf("responses = %v", hooks.responses)
	}
}

func TestDisplayAddr(t *testing.T) {
	if got := displayAddr(":8080"); got != "localhost:8080" {
		t.Errorf("displayAddr(:8080) = %q", got)
	}
	if got := displayAddr("0.0.0.0:9000"); got != "0.0.0.0:9000" {
		t.Errorf("displayAddr = %q", got)
	}
}
