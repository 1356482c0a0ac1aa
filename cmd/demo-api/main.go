// Command demo-api serves an in-memory user API to benchmark against.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wesleyorama2/flowbench/internal/demoapi"
)

func main() {
	var addr string
	var verbose bool

	cmd := &cobra.Command{
		Use:          "demo-api",
		Short:        "Serve an in-memory user API for benchmarking",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewProduction()
			if verbose {
				logger, err = zap.NewDevelopment()
			}
			if err != nil {
				return err
			}
			defer logger.Sync()

			srv := demoapi.New(logger).NewHTTPServer(addr)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()

			logger.Info("demo API listening",
				zap.String("addr", addr),
				zap.Int("pid", os.Getpid()),
				zap.Int("cpus", runtime.NumCPU()),
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Development logging")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
