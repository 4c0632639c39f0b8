// cmd/server/main.go

// 本服務提供 profile 的 RESTful CRUD API 與 /health、/metrics。
// 此檔案負責載入設定、初始化模組（profile, server, observability），
// 並啟動 HTTP 伺服器；收到 SIGINT/SIGTERM 時優雅關閉。

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"profilehub/internal/config"
	"profilehub/internal/logging"
	"profilehub/internal/observability"
	"profilehub/internal/profile"
	"profilehub/internal/server"
)

const shutdownTimeout = 5 * time.Second

func main() {
	var configPath string
	root := &cobra.Command{
		Use:           "profilehub-server",
		Short:         "Serve the profile REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
			slog.SetDefault(logger)
			gin.SetMode(gin.ReleaseMode)
			return serve(cmd.Context(), newHTTPServer(cfg, logger), logger)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "Path to config.toml (default ~/.config/profilehub/config.toml)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newHTTPServer 組合 Store、metrics 與路由；每個行程各自一份 Store。
func newHTTPServer(cfg config.Config, logger *slog.Logger) *http.Server {
	store := profile.NewStore()
	metrics := observability.New(prometheus.NewRegistry())
	s := server.NewServer(store, server.Options{
		BasePath: cfg.Server.BasePath,
		Logger:   logger,
		Metrics:  metrics,
	})
	return &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// serve 啟動伺服器並等待訊號或 ctx 結束，之後在期限內關閉。
func serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("profile API listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
