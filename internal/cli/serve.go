package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cola/pkg/buildinfo"
	"github.com/matzehuels/cola/pkg/cache"
	colaerrors "github.com/matzehuels/cola/pkg/errors"
	"github.com/matzehuels/cola/pkg/graph"
	"github.com/matzehuels/cola/pkg/observability"
	"github.com/matzehuels/cola/pkg/pipeline"
	"github.com/matzehuels/cola/pkg/render/nodelink"
)

const (
	// maxRequestBody caps request bodies.
	maxRequestBody = 16 << 20

	// requestTimeout bounds a single layout or render request.
	requestTimeout = 2 * time.Minute

	headerRequestID = "X-Request-ID"
)

// contentTypes maps render formats to response content types.
var contentTypes = map[string]string{
	nodelink.FormatSVG:  "image/svg+xml",
	nodelink.FormatPNG:  "image/png",
	nodelink.FormatPDF:  "application/pdf",
	nodelink.FormatDOT:  "text/vnd.graphviz",
	nodelink.FormatJSON: "application/json",
}

// =============================================================================
// serve command
// =============================================================================

// serveCommand creates the serve command, which exposes layout, route and
// render over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		redisAddr string
		redisPass string
		redisDB   int
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Serve layouts over HTTP.

Endpoints:
  POST /v1/layout   {"graph": {...}, "options": {...}}  -> layout result
  POST /v1/route    {"layout": {...}, "route": {...}}   -> routed layout
  POST /v1/render   {"layout": {...}, "format": "svg"}  -> image
  GET  /healthz

Results are cached on disk, or in Redis when --redis is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var cc cache.Cache
			var err error
			if redisAddr != "" && !noCache {
				cc, err = cache.NewRedisCache(ctx, redisAddr, redisPass, redisDB)
				if err != nil {
					return fmt.Errorf("connect redis: %w", err)
				}
				cc = cache.Instrument(cc, "redis")
				printKeyValue("cache", "redis "+redisAddr)
			} else {
				cc, err = newCache(noCache)
				if err != nil {
					return err
				}
				if noCache {
					printKeyValue("cache", "disabled")
				}
			}
			keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), cacheKeyPrefix)
			runner := pipeline.NewRunner(cc, keyer, c.Logger)
			defer runner.Close()

			return c.runServer(ctx, addr, newServer(runner, c.Logger))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for a shared cache, e.g. localhost:6379")
	cmd.Flags().StringVar(&redisPass, "redis-password", "", "Redis password")
	cmd.Flags().IntVar(&redisDB, "redis-db", 0, "Redis database")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServer serves h until ctx is cancelled, then shuts down gracefully.
func (c *CLI) runServer(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	printInfo("Listening on %s", StyleLink.Render("http://"+displayAddr(addr)))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

// =============================================================================
// Router
// =============================================================================

type server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// newServer builds the HTTP handler for the layout API.
func newServer(runner *pipeline.Runner, logger *log.Logger) http.Handler {
	s := &server{runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/route", s.handleRoute)
		r.Post("/render", s.handleRender)
	})
	return r
}

// instrument tags every request with an ID and reports it to the server
// hooks.
func (s *server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		w.Header().Set("Server", buildinfo.ServerHeader())

		hooks := observability.Server()
		ctx := r.Context()
		hooks.OnRequest(ctx, r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		begin := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(begin)
		hooks.OnResponse(ctx, r.Method, r.URL.Path, status, dur)
		s.logger.Debug("request", "id", id, "method", r.Method, "path", r.URL.Path, "status", status, "duration", dur)
	})
}

// =============================================================================
// Handlers
// =============================================================================

type layoutRequest struct {
	Graph   graph.Graph   `json:"graph"`
	Options graph.Options `json:"options"`
}

type layoutResponse struct {
	Result    graph.Result  `json:"result"`
	GraphHash string        `json:"graph_hash"`
	CacheHit  bool          `json:"cache_hit"`
	Stats     responseStats `json:"stats"`
}

type routeRequest struct {
	Layout graph.Result       `json:"layout"`
	Route  graph.RouteOptions `json:"route"`
}

type routeResponse struct {
	Result graph.Result  `json:"result"`
	Stats  responseStats `json:"stats"`
}

type renderRequest struct {
	Layout     graph.Result `json:"layout"`
	Format     string       `json:"format"`
	Labels     *bool        `json:"labels,omitempty"`
	HideGroups bool         `json:"hide_groups,omitempty"`
}

type responseStats struct {
	Nodes       int     `json:"nodes"`
	Links       int     `json:"links"`
	Groups      int     `json:"groups"`
	RoutedLinks int     `json:"routed_links"`
	LayoutMS    float64 `json:"layout_ms"`
	RouteMS     float64 `json:"route_ms"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func statsFrom(st pipeline.Stats) responseStats {
	return responseStats{
		Nodes:       st.NodeCount,
		Links:       st.LinkCount,
		Groups:      st.GroupCount,
		RoutedLinks: st.RoutedLinks,
		LayoutMS:    float64(st.LayoutTime.Microseconds()) / 1000,
		RouteMS:     float64(st.RouteTime.Microseconds()) / 1000,
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	out, err := s.runner.Layout(r.Context(), req.Graph, req.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{
		Result:    out.Result,
		GraphHash: out.GraphHash,
		CacheHit:  out.CacheHit,
		Stats:     statsFrom(out.Stats),
	})
}

func (s *server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	req.Route.Enabled = true
	res, stats, err := pipeline.Route(r.Context(), req.Layout, req.Route, s.logger)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routeResponse{Result: res, Stats: statsFrom(stats)})
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	format := req.Format
	if q := r.URL.Query().Get("format"); q != "" {
		format = q
	}
	if format == "" {
		format = nodelink.FormatSVG
	}
	opts := nodelink.Options{Labels: true, HideGroups: req.HideGroups}
	if req.Labels != nil {
		opts.Labels = *req.Labels
	}

	data, err := s.runner.Render(r.Context(), req.Layout, format, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// =============================================================================
// Helpers
// =============================================================================

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return colaerrors.Wrap(colaerrors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	status := colaerrors.HTTPStatus(err)
	code := string(colaerrors.GetCode(err))
	if code == "" {
		code = string(colaerrors.ErrCodeInternal)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}
	msg := colaerrors.UserMessage(err)
	var e *colaerrors.Error
	if errors.As(err, &e) && e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
