package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-site/cmd/api/clients/notionclient"
	"portfolio-site/cmd/api/router"
	"portfolio-site/cmd/api/services"
	"portfolio-site/cmd/internal/logger"
	"portfolio-site/config"
)

const shutdownTimeout = 10 * time.Second

// @title           Portfolio Site Content API
// @version         1.0
// @description     Read-only proxy that normalizes a Notion blog database
// @BasePath        /api
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	if missing := cfg.Notion.MissingKeys(); len(missing) > 0 {
		// 서버는 뜨되 /api/content 는 설정 오류를 반환한다.
		logger.WarnWithFields("notion configuration incomplete", logger.Fields{"missing": missing})
	}

	client := notionclient.New(cfg.Notion)
	svc := services.NewContentService(client, cfg.Notion)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router.New(svc, cfg.Server),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.InfoWithFields("starting api server", logger.Fields{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithFields("api server failed", logger.Fields{"error": err.Error()})
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("received shutdown signal, shutting down api server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithFields("graceful shutdown failed", logger.Fields{"error": err.Error()})
	}
	logger.Log.Info("api server stopped")
}
