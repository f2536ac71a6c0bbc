package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/sravan-dsai/newslens/internal/classify"
	"github.com/sravan-dsai/newslens/internal/dashboard"
	"github.com/sravan-dsai/newslens/internal/labelmap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web dashboard",
	RunE:  serve,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default from config)")
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	labels, err := labelmap.Load(cfg.LabelMapPath)
	if err != nil {
		return err
	}

	classifier, err := classify.New(classify.Provider(cfg.Provider), labels, classify.Options{
		Model: cfg.Model,
	})
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	srv := &http.Server{
		Addr: addr,
		Handler: dashboard.NewHandler(dashboard.Config{
			Classifier:   classifier,
			Labels:       labels,
			Provider:     cfg.Provider,
			Model:        cfg.Model,
			MaxBatchSize: cfg.MaxBatchSize,
		}),
	}

	// Graceful shutdown on interrupt (Ctrl+C)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)

	go func() {
		<-quit
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	fmt.Fprintf(os.Stderr, "Dashboard: http://localhost:%d\n", cfg.Port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
