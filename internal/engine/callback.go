package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// Terminal and non-terminal engine statuses as reported over the
// callback channel.
const (
	StatusComplete = "complete"
	StatusError    = "error"
	StatusTimeout  = "timeout"
)

// Result is the engine's self-reported outcome for one run.
type Result struct {
	Status              string `json:"status"`
	RunID               string `json:"run_id,omitempty"`
	MatchedCount        int    `json:"matched_count"`
	UnmatchedLeftCount  int    `json:"unmatched_left_count"`
	UnmatchedRightCount int    `json:"unmatched_right_count"`
	Error               string `json:"error,omitempty"`
}

// CallbackServer receives worker callbacks. The worker POSTs progress
// updates and exactly one terminal /complete or /error; the path prefix
// before the terminal segment is arbitrary, so routing matches on the
// suffix.
type CallbackServer struct {
	logger     *slog.Logger
	router     chi.Router
	httpServer *http.Server
	listener   net.Listener
	results    chan Result
}

// NewCallbackServer creates an unstarted callback server.
func NewCallbackServer(logger *slog.Logger) *CallbackServer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &CallbackServer{
		logger:  logger,
		results: make(chan Result, 1),
	}
	r := chi.NewRouter()
	r.Post("/*", s.handlePost)
	r.Post("/", s.handlePost)
	s.router = r
	return s
}

// Router exposes the handler for in-process tests.
func (s *CallbackServer) Router() http.Handler {
	return s.router
}

// Start binds the listener and serves in the background. Port 0 binds an
// ephemeral port; URL reports the actual address.
func (s *CallbackServer) Start(host string, port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("binding callback listener: %w", err)
	}
	s.listener = ln
	s.httpServer = &http.Server{Handler: s.router}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("callback server stopped", slog.String("error", err.Error()))
		}
	}()
	return nil
}

// URL returns the base callback URL of a started server.
func (s *CallbackServer) URL() string {
	return "http://" + s.listener.Addr().String()
}

// Port returns the bound port of a started server.
func (s *CallbackServer) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Shutdown stops the HTTP server.
func (s *CallbackServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Wait blocks until a terminal callback arrives, the timeout elapses, or
// ctx is cancelled. A timeout <= 0 means wait indefinitely. Timeouts and
// cancellation yield a Result with StatusTimeout rather than hanging.
func (s *CallbackServer) Wait(ctx context.Context, timeout time.Duration) Result {
	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}
	select {
	case res := <-s.results:
		return res
	case <-timer:
		return Result{Status: StatusTimeout, Error: fmt.Sprintf("no callback within %s", timeout)}
	case <-ctx.Done():
		return Result{Status: StatusTimeout, Error: ctx.Err().Error()}
	}
}

func (s *CallbackServer) handlePost(w http.ResponseWriter, r *http.Request) {
	var res Result
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		// An empty or malformed body still carries meaning through the
		// path; keep going with zero counts.
		res = Result{}
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case strings.HasSuffix(path, "/complete"):
		res.Status = StatusComplete
		s.deliver(res)
	case strings.HasSuffix(path, "/error"):
		res.Status = StatusError
		s.deliver(res)
	case strings.HasSuffix(path, "/progress"):
		s.logger.Info("engine progress",
			slog.String("run_id", res.RunID),
			slog.Int("matched", res.MatchedCount),
		)
	default:
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// deliver hands off the first terminal result; later terminals are
// dropped so a double-reporting worker cannot block the handler.
func (s *CallbackServer) deliver(res Result) {
	select {
	case s.results <- res:
	default:
		s.logger.Warn("duplicate terminal callback dropped", slog.String("status", res.Status))
	}
}
