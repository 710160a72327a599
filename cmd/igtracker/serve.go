package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"igtracker/internal/scheduler"
	"igtracker/internal/server"
)

var (
	servePort     string
	serveSchedule string
	serveDebug    bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web entry points, optionally with scheduled batches",
	Long: `Start the HTTP server with the URL submission form, the CSV upload
endpoint, and the replay endpoint.

With --schedule, a cron schedule also runs the spreadsheet batch in the
background, so one process covers both the manual and the scheduled entry
points.`,
	Example: `  # Serve on the default port
  igtracker serve

  # Serve and run the batch every morning at six
  igtracker serve --schedule "0 6 * * *"`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "port to listen on")
	serveCmd.Flags().StringVar(&serveSchedule, "schedule", "", "cron schedule for background batches")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "enable debug request logging")
}

func runServe() {
	flags := make(map[string]interface{})
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if servePort != "" {
		flags["port"] = servePort
	}
	if serveSchedule != "" {
		flags["schedule"] = serveSchedule
	}

	cfg, err := loadAppConfig(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	a, err := newApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "startup error:", err)
		os.Exit(1)
	}

	handler := server.NewHandler(a.client, a.engine, a.log)
	router := server.NewRouter(handler, serveDebug || cfg.Server.Debug)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	if cfg.Server.Schedule != "" {
		batches := scheduler.New(a.runBatch, a.log)
		if err := batches.Start(cfg.Server.Schedule); err != nil {
			a.log.WithError(err).Fatal("Invalid batch schedule")
		}
		defer batches.Stop()
	}

	serverErr := make(chan error, 1)
	go func() {
		a.log.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		a.log.WithError(err).Fatal("HTTP server failed")
	case sig := <-quit:
		a.log.WithField("signal", sig.String()).Info("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		a.log.WithError(err).Error("Forced shutdown")
	}
}
