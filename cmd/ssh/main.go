package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	wishlogging "github.com/charmbracelet/wish/logging"
	"github.com/muesli/termenv"

	"github.com/tomz197/bolas/internal/arena"
	"github.com/tomz197/bolas/internal/config"
	"github.com/tomz197/bolas/internal/draw"
	"github.com/tomz197/bolas/internal/logging"
	"github.com/tomz197/bolas/internal/observer"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatal("failed to load .env", "err", err)
	}
	settings, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", "err", err)
	}
	logger, err := logging.New(os.Stderr, settings.LogLevel, "bolas-ssh")
	if err != nil {
		log.Fatal("invalid configuration", "err", err)
	}

	// Cancelled on shutdown so every observer closes its arena.
	serverCtx, cancelObservers := context.WithCancel(context.Background())
	defer cancelObservers()

	arenaCfg := arena.Config{
		RefreshRate:           settings.RefreshRate(),
		VelocityScalingFactor: settings.VelocityScalingFactor(),
		Algorithm:             settings.Algorithm,
		Logger:                logger,
	}

	opts := []ssh.Option{
		wish.WithAddress(settings.SSHAddr()),
		wish.WithMiddleware(
			observerMiddleware(serverCtx, arenaCfg, logger),
			activeterm.Middleware(),
			wishlogging.MiddlewareWithLogger(logger),
		),
		// Set TCP_NODELAY to reduce latency for key presses
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if settings.SSHHostKey != "" {
		opts = append(opts, wish.WithHostKeyPath(settings.SSHHostKey))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	logger.Info("starting ssh server", "addr", settings.SSHAddr(), "host_key", settings.SSHHostKey)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down ssh server")
	cancelObservers()

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}

// observerMiddleware runs one observer, with its own arena, per SSH session.
func observerMiddleware(serverCtx context.Context, cfg arena.Config, logger *log.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}

			sessLogger := logger.With("user", sess.User(), "remote", sess.RemoteAddr().String())
			sessLogger.Info("observer connected", "term", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)

			sizes := newSizeTracker(pty.Window.Width, pty.Window.Height)
			go func() {
				for win := range winCh {
					sizes.update(win.Width, win.Height)
				}
			}()

			renderer := lipgloss.NewRenderer(sess)
			renderer.SetColorProfile(termenv.ANSI256)

			ctx, cancel := context.WithCancel(sess.Context())
			defer cancel()
			stop := context.AfterFunc(serverCtx, cancel)
			defer stop()

			o := observer.New(sess, sess, observer.Options{
				Arena:        cfg,
				TermSizeFunc: sizes.getSize,
				Renderer:     renderer,
				IdleWarn:     config.InactivityWarnUser * time.Second,
				IdleTimeout:  config.InactivityDisconnectUser * time.Second,
				Logger:       sessLogger,
			})
			switch err := o.Run(ctx); {
			case errors.Is(err, observer.ErrIdle):
				fmt.Fprintln(sess, "Disconnected after inactivity.")
				sessLogger.Info("observer idle, disconnecting")
			case err != nil:
				sessLogger.Error("observer error", "err", err)
			}

			sessLogger.Info("observer disconnected")
			next(sess)
		}
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
