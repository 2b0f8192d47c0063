package http

import (
	"context"
	"html/template"
	"net/http"
	"sync"
	"time"

	"expensetracker/internal/cache"
	"expensetracker/internal/chart"
	"expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/store"
	appweb "expensetracker/web"
)

// Options configures a Server. Zero values select defaults.
type Options struct {
	Logger   *log.Logger
	Currency string

	// Ready is consulted by /readyz, typically the backend ping.
	Ready func(ctx context.Context) error

	RateLimit      ratelimit.Config
	ChartCacheSize int
	ChartCacheTTL  time.Duration
}

type Server struct {
	http.Server

	store     *store.Store
	templates *template.Template
	logger    *log.Logger
	currency  string
	ready     func(ctx context.Context) error

	charts       *chart.Renderer
	cacheManager *cache.Manager
	limiter      *ratelimit.Limiter
	detector     *security.Detector
	tracer       *trace.Middleware
	started      time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, st *store.Store, opts Options) *Server {
	logger := log.OrDefault(opts.Logger).WithComponent(log.ComponentHTTP)
	if opts.ChartCacheSize <= 0 {
		opts.ChartCacheSize = 32
	}
	if opts.ChartCacheTTL <= 0 {
		opts.ChartCacheTTL = 30 * time.Minute
	}

	s := &Server{
		store:        st,
		logger:       logger,
		currency:     opts.Currency,
		ready:        opts.Ready,
		charts:       chart.NewRenderer(opts.ChartCacheSize, opts.ChartCacheTTL),
		cacheManager: cache.NewManager(logger),
		limiter:      ratelimit.NewLimiter(opts.RateLimit),
		detector:     security.NewDetector(),
		tracer:       trace.NewMiddleware(),
		started:      time.Now(),
	}
	s.cacheManager.Register(s.charts.Cache())
	s.cacheManager.StartCleanup(10 * time.Minute)

	t, err := appweb.ParseTemplates(template.FuncMap{})
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err, log.FieldComponent, log.ComponentTemplate)
	}
	s.templates = t

	mux := http.NewServeMux()
	if static, err := appweb.Static(); err == nil {
		files := http.StripPrefix("/static/", http.FileServer(http.FS(static)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(files))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /expenses", s.handleSubmit)
	mux.HandleFunc("POST /expenses/{id}/edit", s.handleBeginEdit)
	mux.HandleFunc("POST /expenses/{id}/delete", s.handleDelete)
	mux.HandleFunc("POST /edit/cancel", s.handleCancelEdit)
	mux.HandleFunc("POST /filter", s.handleFilter)
	mux.HandleFunc("GET /chart.svg", s.handleChart(chart.FormatSVG))
	mux.HandleFunc("GET /chart.png", s.handleChart(chart.FormatPNG))
	mux.HandleFunc("GET /api/expenses", s.handleAPIExpenses)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDelete)
	mux.HandleFunc("GET /api/summary", s.handleAPISummary)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited, http.MethodPost, http.MethodDelete)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)
	h = log.Middleware(logger, trace.FromRequest)(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").
		Header("Retry-After", "60").
		Write(w)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
