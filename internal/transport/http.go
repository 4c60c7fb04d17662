package transport

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/tomz197/bolas/internal/arena"
	"github.com/tomz197/bolas/internal/config"
	"github.com/tomz197/bolas/internal/logging"
	"github.com/tomz197/bolas/internal/version"
)

//go:embed static
var embeddedStatic embed.FS

// Options configures NewHandler.
type Options struct {
	Arena arena.Config
	// StaticFilePath serves assets from disk instead of the embedded copy when set.
	StaticFilePath string
	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler
	Logger  *log.Logger
}

// NewHandler builds the HTTP routes: static assets, /ws, /metrics and /version.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	assets, err := staticFS(opts.StaticFilePath)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("GET /ws", NewWebsocketHandler(opts.Arena, opts.Logger))
	mux.Handle("GET /version", version.Handler())
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}
	mux.Handle("GET /", http.FileServerFS(assets))
	return mux, nil
}

func staticFS(path string) (fs.FS, error) {
	if path == "" {
		return fs.Sub(embeddedStatic, "static")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("static file path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("static file path %s is not a directory", path)
	}
	return os.DirFS(path), nil
}

// Listen opens every TCP address and unix socket path. On failure the listeners
// opened so far are closed.
func Listen(tcpAddrs, unixAddrs []string) ([]net.Listener, error) {
	if len(tcpAddrs) == 0 && len(unixAddrs) == 0 {
		return nil, config.ErrNoListeners
	}

	var listeners []net.Listener
	fail := func(err error) ([]net.Listener, error) {
		for _, l := range listeners {
			_ = l.Close()
		}
		return nil, err
	}

	for _, addr := range tcpAddrs {
		l, err := net.Listen("tcp", addr)
		if err != nil {
			return fail(fmt.Errorf("listen tcp %s: %w", addr, err))
		}
		listeners = append(listeners, l)
	}
	for _, path := range unixAddrs {
		removeStaleSocket(path)
		l, err := net.Listen("unix", path)
		if err != nil {
			return fail(fmt.Errorf("listen unix %s: %w", path, err))
		}
		listeners = append(listeners, l)
	}
	return listeners, nil
}

// removeStaleSocket deletes a socket file left behind by a previous run. Other files are left alone.
func removeStaleSocket(path string) {
	if info, err := os.Lstat(path); err == nil && info.Mode()&fs.ModeSocket != 0 {
		_ = os.Remove(path)
	}
}

// Serve serves h on every listener until ctx is cancelled or one of them fails,
// then shuts the server down gracefully. Websocket sessions end with ctx.
func Serve(ctx context.Context, h http.Handler, listeners []net.Listener, logger *log.Logger) error {
	if logger == nil {
		logger = logging.Nop()
	}

	g, gctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return gctx },
	}

	for _, l := range listeners {
		g.Go(func() error {
			logger.Info("listening", "network", l.Addr().Network(), "addr", l.Addr().String())
			if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", l.Addr(), err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
