package router

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type HandlerFunc func(http.ResponseWriter, *http.Request)

type route struct {
	method  string
	path    string
	handler HandlerFunc
}

// Options configures the server started by Start.
type Options struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateLimit       float64 // requests per second; 0 disables limiting
	RateBurst       int
}

type Router struct {
	mux     *http.ServeMux
	routes  map[string]HandlerFunc // key = METHOD:PATH
	paths   map[string]bool        // track registered paths
	ordered []route                // wildcard routes in registration order
	limiter *rate.Limiter
	logger  *zap.Logger
}

type wildcardKey struct{}

func New(logger *zap.Logger) *Router {
	r := &Router{
		mux:    http.NewServeMux(),
		routes: make(map[string]HandlerFunc),
		paths:  make(map[string]bool),
		logger: logger,
	}

	// Catch-all handler dispatching to registered routes
	r.mux.HandleFunc("/", r.dispatch)

	return r
}

// Limit enables a global token-bucket limit on incoming requests.
func (r *Router) Limit(rps float64, burst int) {
	if rps <= 0 {
		r.limiter = nil
		return
	}
	if burst <= 0 {
		burst = 1
	}
	r.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	switch {
	case r.limiter != nil && !r.limiter.Allow():
		http.Error(lrw, "Too Many Requests", http.StatusTooManyRequests)
	default:
		r.serve(lrw, req)
	}

	r.logger.Info("request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", lrw.statusCode),
		zap.Duration("duration", time.Since(start)),
	)
}

func (r *Router) serve(w http.ResponseWriter, req *http.Request) {
	key := req.Method + ":" + req.URL.Path
	if h, ok := r.routes[key]; ok {
		h(w, req)
		return
	}

	// Try wildcard routes in the order they were registered
	pathMatched := r.paths[req.URL.Path]
	for _, rt := range r.ordered {
		values, ok := matchWildcardRoute(req.URL.Path, rt.path)
		if !ok {
			continue
		}
		if rt.method != req.Method {
			pathMatched = true
			continue
		}
		ctx := context.WithValue(req.Context(), wildcardKey{}, values)
		rt.handler(w, req.WithContext(ctx))
		return
	}

	if pathMatched {
		// Path exists but method not allowed
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	http.Error(w, "Not Found", http.StatusNotFound)
}

// Wildcards returns the request path segments matched by "*" in the route pattern. A
// trailing "*" contributes the rest of the path as one value.
func Wildcards(req *http.Request) []string {
	values, _ := req.Context().Value(wildcardKey{}).([]string)
	return values
}

// matchWildcardRoute checks if a request path matches a wildcard route pattern and
// returns the matched segments
func matchWildcardRoute(requestPath, routePattern string) ([]string, bool) {
	if !strings.Contains(routePattern, "*") {
		return nil, false
	}

	// Split both paths into segments
	requestSegments := strings.Split(strings.Trim(requestPath, "/"), "/")
	routeSegments := strings.Split(strings.Trim(routePattern, "/"), "/")
	last := len(routeSegments) - 1

	var values []string

	// Trailing wildcard matches any number of remaining segments
	if routeSegments[last] == "*" {
		if len(requestSegments) < last {
			return nil, false
		}
		for i := 0; i < last; i++ {
			if routeSegments[i] == "*" {
				values = append(values, requestSegments[i])
				continue
			}
			if requestSegments[i] != routeSegments[i] {
				return nil, false
			}
		}
		return append(values, strings.Join(requestSegments[last:], "/")), true
	}

	if len(requestSegments) != len(routeSegments) {
		return nil, false
	}
	for i, routeSegment := range routeSegments {
		if routeSegment == "*" {
			if requestSegments[i] == "" {
				return nil, false
			}
			values = append(values, requestSegments[i])
			continue
		}
		if requestSegments[i] != routeSegment {
			return nil, false
		}
	}
	return values, true
}

// --- Register paths ---
func (r *Router) register(method, path string, handler HandlerFunc) {
	key := method + ":" + path
	r.routes[key] = handler
	r.paths[path] = true
	if strings.Contains(path, "*") {
		r.ordered = append(r.ordered, route{method: method, path: path, handler: handler})
	}
}

func (r *Router) GET(path string, handler HandlerFunc)   { r.register(http.MethodGet, path, handler) }
func (r *Router) POST(path string, handler HandlerFunc)  { r.register(http.MethodPost, path, handler) }
func (r *Router) PUT(path string, handler HandlerFunc)   { r.register(http.MethodPut, path, handler) }
func (r *Router) PATCH(path string, handler HandlerFunc) { r.register(http.MethodPatch, path, handler) }
func (r *Router) DELETE(path string, handler HandlerFunc) {
	r.register(http.MethodDelete, path, handler)
}

// Getter methods for testing
func (r *Router) Routes() map[string]HandlerFunc {
	return r.routes
}

func (r *Router) Paths() map[string]bool {
	return r.paths
}

// Handler returns the router as an http.Handler.
func (r *Router) Handler() http.Handler {
	return r.mux
}

// --- Start server ---

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (r *Router) Start(ctx context.Context, addr string, opts Options) error {
	if opts.RateLimit > 0 {
		r.Limit(opts.RateLimit, opts.RateBurst)
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      r.mux,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("server started", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	r.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// --- Logging response writer to capture status codes ---
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}
