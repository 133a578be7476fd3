package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"clinical-agent/internal/clinicaltrials"
	"clinical-agent/internal/privacy"
	"clinical-agent/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the agent and run history over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := clinicaltrials.OptionsFromConfig(app.cfg)
	opts.ReturnIntermediateSteps = true
	exec, err := app.newAgent(ctx, opts)
	if err != nil {
		return err
	}

	if !app.cfg.Agent.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	addr, _ := cmd.Flags().GetString("addr")
	srv := &http.Server{
		Addr:    addr,
		Handler: server.New(exec, app.store, privacy.NewRedactor(app.cfg.Privacy), app.log).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		app.log.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	app.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
