package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"course_miniapp/config"
	"course_miniapp/logging"
	"course_miniapp/middleware"
	"course_miniapp/mockapi"
	"course_miniapp/routes"
)

var (
	cfg *config.Config
	log *logrus.Logger

	rootCmd = &cobra.Command{
		Use:           "miniapp",
		Short:         "Course mini-app companion: view server, mock backend and CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				// Non-fatal: production passes real env vars
				logrus.Debug(".env file not found")
			}
			var err error
			if cfg, err = config.Load(); err != nil {
				return err
			}
			log = logging.New(cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the view server",
		RunE:  runServe,
	}

	serveMockCmd = &cobra.Command{
		Use:   "serve-mock",
		Short: "Run the local mock backend",
		RunE:  runServeMock,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.New().WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, serveMockCmd)
	registerIntentCommands(rootCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())

	// Setup CORS for the webview origin
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 || cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
		middleware.InitDataHeader,
		middleware.RequestIDHeader,
	}
	corsConfig.AllowMethods = []string{
		"GET",
		"POST",
		"DELETE",
	}
	r.Use(cors.New(corsConfig))

	// Setup routes
	routes.SetupRoutes(r, routes.Dependencies{
		Store:    a.store,
		Webhooks: a.backend,
		DB:       a.db,
		Logger:   log,
		Metrics:  middleware.NewHTTPMetrics(a.registry),
		Gatherer: a.registry,
	})

	initCtx, cancelInit := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	a.store.Init(initCtx)
	cancelInit()
	if st := a.store.Snapshot(); st.Error != "" {
		log.WithField("error", st.Error).Warn("initial load failed, serving anyway")
	}

	log.WithFields(logrus.Fields{
		"port":      cfg.ServerPort,
		"backend":   a.backend.BaseURL(),
		"use_mocks": cfg.UseMocks,
	}).Info("starting view server")
	return listenAndServe(&http.Server{Addr: ":" + cfg.ServerPort, Handler: r})
}

func runServeMock(cmd *cobra.Command, args []string) error {
	srv, err := mockapi.New(mockapi.Config{
		JWTSecret: []byte(cfg.MockJWTSecret),
		BotToken:  cfg.TelegramBotToken,
		Logger:    log,
	})
	if err != nil {
		return err
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log.WithFields(logrus.Fields{
		"port":             cfg.MockAPIPort,
		"base_path":        mockapi.BasePath,
		"validates_tg_sig": cfg.TelegramBotToken != "",
	}).Info("starting mock backend")
	return listenAndServe(&http.Server{Addr: ":" + cfg.MockAPIPort, Handler: srv.Handler()})
}

// listenAndServe runs srv until SIGINT or SIGTERM, then shuts it down
// gracefully.
func listenAndServe(srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
