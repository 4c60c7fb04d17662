package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/tomz197/bolas/internal/arena"
	"github.com/tomz197/bolas/internal/config"
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

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	o := observer.New(os.Stdin, os.Stdout, observer.Options{
		Arena: arena.Config{
			RefreshRate:           settings.RefreshRate(),
			VelocityScalingFactor: settings.VelocityScalingFactor(),
			Algorithm:             settings.Algorithm,
		},
	})
	err = o.Run(ctx)
	stop()
	_ = term.Restore(fd, oldState)

	if err != nil {
		fmt.Fprintf(os.Stderr, "observer error: %v\n", err)
		os.Exit(1)
	}
}
