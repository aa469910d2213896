package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackplot/pkg/buildinfo"
	"github.com/matzehuels/stackplot/pkg/cache"
	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/observability"
	"github.com/matzehuels/stackplot/pkg/pipeline"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
		allowExpr  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Render posted chart manifests over HTTP",
		Long: `Serve renders chart manifests posted over HTTP.

  POST /charts?format=svg|png|json   body: manifest, returns {"id", "url"}
  GET  /charts/{id}.{format}         returns the rendered artifact
  GET  /healthz                      returns build information

Defaults are read from stackplot.toml ([server] table) in the working
directory or the file named by --config. Rendered charts are kept in Redis
when STACKPLOT_REDIS_URL is set, otherwise in the local cache directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServerConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("allow-expr") {
				cfg.Server.AllowExpr = allowExpr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "server config file (default: ./stackplot.toml)")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&allowExpr, "allow-expr", false, "evaluate expr attributes in posted manifests")
	_ = cmd.RegisterFlagCompletionFunc("config", completeManifest)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg serverConfig) error {
	logger := loggerFromContext(ctx)
	observability.SetHTTPHooks(observability.NewLogHooks(logger))

	store, err := serverCache(ctx)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(store, logger)
	defer runner.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newServer(runner, cfg, logger).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	printSuccess("Listening on %s", StyleLink.Render(cfg.Server.Addr))
	printKeyValue("expressions", fmt.Sprint(cfg.Server.AllowExpr))
	printKeyValue("max body", fmt.Sprintf("%d bytes", cfg.Server.MaxBody))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	printInfo("Server stopped")
	return nil
}

// serverCache prefers Redis and falls back to the file cache.
func serverCache(ctx context.Context) (cache.Cache, error) {
	rc, ok, err := cache.NewRedisCacheFromEnv(ctx)
	if ok {
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return rc, nil
	}
	printWarning("STACKPLOT_REDIS_URL not set, using the local cache")
	return newCache(false)
}

// server answers chart requests.
type server struct {
	runner *pipeline.Runner
	cfg    serverConfig
	logger *log.Logger
}

func newServer(runner *pipeline.Runner, cfg serverConfig, logger *log.Logger) *server {
	return &server{runner: runner, cfg: cfg, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpHooks)

	r.Get("/healthz", s.handleHealth)
	r.Post("/charts", s.handleCreate)
	r.Get("/charts/{id}.{format}", s.handleGet)
	return r
}

// httpHooks reports every request to the registered HTTP hooks.
func httpHooks(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		start := time.Now()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
	})
}

type createResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

type errorResponse struct {
	Code  errors.Code `json:"code,omitempty"`
	Error string      `json:"error"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *server) handleCreate(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBody))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
		return
	}

	ctx := r.Context()
	if t := s.cfg.Server.Timeout.Duration; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	result, err := s.runner.Execute(ctx, pipeline.Options{
		Manifest:  body,
		BaseDir:   s.cfg.Server.BaseDir,
		Formats:   []string{format},
		Scale:     s.cfg.Server.Scale,
		AllowExpr: s.cfg.Server.AllowExpr,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	id := uuid.NewString()
	data := result.Artifacts[format]
	if err := s.runner.Cache.Set(ctx, cache.ChartKey(id, format), data, cache.TTLChart); err != nil {
		s.logger.Error("store chart", "id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not store chart"})
		return
	}
	observability.Cache().OnCacheSet(ctx, "chart", len(data))

	writeJSON(w, http.StatusCreated, createResponse{
		ID:  id,
		URL: fmt.Sprintf("/charts/%s.%s", id, format),
	})
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := chi.URLParam(r, "format")
	if _, err := uuid.Parse(id); err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown chart"})
		return
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}

	data, ok, err := s.runner.Cache.Get(r.Context(), cache.ChartKey(id, format))
	if err != nil {
		s.logger.Error("load chart", "id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not load chart"})
		return
	}
	if !ok {
		observability.Cache().OnCacheMiss(r.Context(), "chart")
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown chart"})
		return
	}
	observability.Cache().OnCacheHit(r.Context(), "chart")

	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatJSON:
		return "application/json"
	}
	return "image/svg+xml"
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidManifest, errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidOrientation, errors.ErrCodeUnsupportedValue, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeFileNotFound, errors.ErrCodeLoadFailed, errors.ErrCodeNotFound:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Code: errors.GetCode(err), Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
