package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"profilehub/internal/appstate"
	"profilehub/internal/config"
	"profilehub/internal/gateway"
	"profilehub/internal/logging"
	"profilehub/internal/observability"
	"profilehub/internal/probe"
	"profilehub/internal/profile"
	"profilehub/internal/render"
	"profilehub/internal/storage"
)

// session 為單次執行所需的元件。
type session struct {
	cfg    config.Config
	logger *slog.Logger
	gw     *gateway.Gateway
	state  *appstate.Container
	view   *render.Renderer
	kv     storage.KV
}

func openSession(flags *rootFlags, stdout, stderr io.Writer) (*session, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, codeError(exitFailure, "load config: %s", err)
	}
	if flags.apiURL != "" {
		cfg.Client.APIURL = flags.apiURL
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, stderr)

	// client 端不對外暴露 metrics，collector 僅供元件共用同一介面
	metrics := observability.NewUnregistered()

	p, err := probe.New(cfg.Client.APIURL, probe.Options{
		Timeout:  cfg.Client.ProbeTimeout,
		CacheTTL: cfg.Client.ProbeCacheTTL,
		Metrics:  metrics,
	})
	if err != nil {
		return nil, codeError(exitFailure, "probe: %s", err)
	}
	remote, err := gateway.NewRemote(cfg.Client.APIURL, cfg.Client.RequestTimeout)
	if err != nil {
		return nil, codeError(exitFailure, "remote: %s", err)
	}
	kv, err := storage.Open(cfg.Fallback.Driver, cfg.Fallback.Path, logger)
	if err != nil {
		return nil, codeError(exitFailure, "open fallback store: %s", err)
	}

	gw := gateway.New(p, remote, gateway.NewLocal(kv), gateway.Options{Logger: logger, Metrics: metrics})

	var view *render.Renderer
	switch flags.color {
	case "always":
		view = render.NewWithColor(stdout, true)
	case "never":
		view = render.NewWithColor(stdout, false)
	default:
		view = render.New(stdout)
	}

	return &session{
		cfg:    cfg,
		logger: logger,
		gw:     gw,
		state:  appstate.New(gw),
		view:   view,
		kv:     kv,
	}, nil
}

func (s *session) Close() error {
	return s.kv.Close()
}

// withSession 包裝 RunE：開啟 session、先 FetchAll，結束時關閉本地儲存。
func withSession(flags *rootFlags, fetch bool, fn func(ctx context.Context, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(flags, cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() {
			if cerr := s.Close(); cerr != nil {
				s.logger.Warn("close fallback store", "error", cerr)
			}
		}()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if fetch {
			if err := s.state.FetchAll(ctx); err != nil {
				return s.failure(err)
			}
		}
		return fn(ctx, s, args)
	}
}

// failure 依 intent 的錯誤分類輸出畫面並回傳對應結束碼。
// 檢核錯誤逐欄輸出並以結束碼 2 結束，其餘輸出錯誤橫幅。
func (s *session) failure(err error) error {
	var ve *profile.ValidationError
	if errors.As(err, &ve) {
		s.view.FieldErrors(ve)
		return codeError(exitValidation, "")
	}
	s.view.Error(s.state.State())
	return codeError(exitFailure, "")
}

// validateAtEdge 在送出前檢核表單；失敗時輸出逐欄錯誤並回傳結束碼 2。
func (s *session) validateAtEdge(p profile.Profile) error {
	err := profile.Validate(p)
	if err == nil {
		return nil
	}
	var ve *profile.ValidationError
	if errors.As(err, &ve) {
		s.view.FieldErrors(ve)
		return codeError(exitValidation, "")
	}
	return codeError(exitFailure, "%s", err)
}

// backendName 回報目前將使用的後端名稱。
func (s *session) backendName(ctx context.Context) string {
	if s.gw.Available(ctx) {
		return gateway.BackendRemote
	}
	return gateway.BackendLocal
}

func notFoundErr(id string) error {
	return codeError(exitFailure, "%s", fmt.Errorf("%w: %s", profile.ErrNotFound, id))
}
