package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pathakanu/mindwell/internal/version"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:           "mindwell",
	Short:         "Mood assessment, reminder and wellness chat backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version.Get().String(),
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(importReferenceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// waitForShutdown blocks until SIGINT/SIGTERM or a server failure, then stops
// the server before the background jobs and closers.
func waitForShutdown(server shutdowner, serverErr <-chan error, stopJobs func(), closers ...func() error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case sig := <-stop:
		logger().Info("shutting down", "signal", sig.String())
	case runErr = <-serverErr:
		logger().Error("server stopped unexpectedly", "error", runErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := server.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	stopJobs()
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	if runErr != nil {
		errs = append(errs, runErr)
	}
	return errors.Join(errs...)
}
