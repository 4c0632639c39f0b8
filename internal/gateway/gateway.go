// internal/gateway/gateway.go
//
// Gateway：依 probe 結果選擇後端，遠端失敗時改用本地備援。

package gateway

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"profilehub/internal/observability"
	"profilehub/internal/probe"
	"profilehub/internal/profile"
)

// Options 為 Gateway 的可選設定。
type Options struct {
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Gateway 依 probe 結果於每次呼叫時選擇 Remote 或 Local。
// 呼叫端只會收到正規化的 Profile，或以下其中一種錯誤：
// profile.ErrNotFound、*profile.ValidationError、*UnknownError。
type Gateway struct {
	checker probe.Checker
	remote  StorageBackend
	local   StorageBackend
	logger  *slog.Logger
	metrics *observability.Metrics

	mu   sync.Mutex
	last string
}

// New 組合 Gateway。remote 可為 nil（僅使用本地備援）；local 不可為 nil。
func New(checker probe.Checker, remote, local StorageBackend, opts Options) *Gateway {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Gateway{
		checker: checker,
		remote:  remote,
		local:   local,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// List 回傳目前選定後端的所有 profile。
func (g *Gateway) List(ctx context.Context) ([]profile.Profile, error) {
	return run(ctx, g, "list", func(b StorageBackend) ([]profile.Profile, error) {
		return b.List(ctx)
	})
}

// Save 於 ID 為空時建立、否則更新。
func (g *Gateway) Save(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	return run(ctx, g, "save", func(b StorageBackend) (profile.Profile, error) {
		return b.Save(ctx, p)
	})
}

// Delete 刪除指定 profile。
func (g *Gateway) Delete(ctx context.Context, id string) error {
	_, err := run(ctx, g, "delete", func(b StorageBackend) (struct{}, error) {
		return struct{}{}, b.Delete(ctx, id)
	})
	return err
}

// LastBackend 回報最近一次成功或失敗的呼叫最後由哪個後端處理。
func (g *Gateway) LastBackend() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// Available 直接回報 probe 結果（供 CLI 的 health 指令使用）。
func (g *Gateway) Available(ctx context.Context) bool {
	return g.remote != nil && g.checker != nil && g.checker.Available(ctx)
}

// run 執行一次操作：
//  1. probe 可用 → 遠端執行；成功即回傳。
//  2. 遠端任何錯誤（傳輸失敗或非成功回應）→ 記錄警告後改用本地，一次、不重試。
//  3. 本地結果即為最終結果；非領域錯誤一律包裝為 *UnknownError。
func run[T any](ctx context.Context, g *Gateway, op string, fn func(StorageBackend) (T, error)) (T, error) {
	if g.Available(ctx) {
		v, err := fn(g.remote)
		if err == nil {
			g.served(op, BackendRemote, "ok")
			return v, nil
		}
		g.logger.Warn("remote store failed, falling back to local store", "op", op, "error", err)
		g.metrics.ObserveGateway(op, BackendRemote, "fallback")
	} else {
		g.logger.Debug("remote store unavailable, using local store", "op", op)
	}

	v, err := fn(g.local)
	if err != nil {
		g.served(op, BackendLocal, "error")
		var zero T
		return zero, classify(op, err)
	}
	g.served(op, BackendLocal, "ok")
	return v, nil
}

func (g *Gateway) served(op, backend, outcome string) {
	g.mu.Lock()
	g.last = backend
	g.mu.Unlock()
	g.metrics.ObserveGateway(op, backend, outcome)
}

// classify 保留領域錯誤，其餘（含傳輸錯誤）包裝為 *UnknownError。
func classify(op string, err error) error {
	if errors.Is(err, profile.ErrNotFound) || errors.Is(err, profile.ErrValidation) {
		return err
	}
	var ue *UnknownError
	if errors.As(err, &ue) {
		return err
	}
	return &UnknownError{Op: op, Err: err}
}
