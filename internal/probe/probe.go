// Package probe 實作可用性探測 (Availability Probe)：
// 以 GET {apiURL}/health 判斷遠端 profile 服務是否可用，供 gateway 每次操作前選擇後端。
package probe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"profilehub/internal/observability"
)

// DefaultTimeout 為單次探測的上限時間。
const DefaultTimeout = 3 * time.Second

// Checker 為 gateway 依賴的最小介面。
type Checker interface {
	Available(ctx context.Context) bool
}

// 編譯期確認 Probe 實作 Checker。
var _ Checker = (*Probe)(nil)

// Options 為 Probe 的設定。
type Options struct {
	// Timeout 為單次探測上限，預設 DefaultTimeout。
	Timeout time.Duration
	// CacheTTL > 0 時，在此期間內重用上一次結果；0 表示每次都重新探測。
	CacheTTL time.Duration
	// Client 預設為 http.DefaultClient。
	Client *http.Client
	// Metrics 可為 nil。
	Metrics *observability.Metrics
}

// Probe 對單一 API 位址做存活檢查。
type Probe struct {
	healthURL string
	timeout   time.Duration
	ttl       time.Duration
	client    *http.Client
	metrics   *observability.Metrics
	now       func() time.Time

	flight singleflight.Group

	mu        sync.Mutex
	lastAt    time.Time
	lastValue bool
}

// New 建立 Probe。apiURL 為 API 根路徑（例如 http://localhost:5000/api）。
func New(apiURL string, opts Options) (*Probe, error) {
	base := strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if base == "" {
		return nil, fmt.Errorf("probe: api url is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	return &Probe{
		healthURL: base + "/health",
		timeout:   opts.Timeout,
		ttl:       opts.CacheTTL,
		client:    opts.Client,
		metrics:   opts.Metrics,
		now:       time.Now,
	}, nil
}

// Available 回報遠端服務是否可用。
// 只有在逾時前收到 2xx 回應才回傳 true；網路錯誤、逾時或非 2xx 一律為 false。
func (p *Probe) Available(ctx context.Context) bool {
	if v, ok := p.cached(); ok {
		if v {
			p.metrics.ObserveProbe("cached_up")
		} else {
			p.metrics.ObserveProbe("cached_down")
		}
		return v
	}

	// 同時間多個呼叫端共用同一次探測；共用的檢查不隨任一呼叫端取消，
	// 仍受 p.timeout 限制。各呼叫端只依自己的 ctx 決定是否放棄等待。
	ch := p.flight.DoChan(p.healthURL, func() (any, error) {
		up := p.check(context.WithoutCancel(ctx))
		p.mu.Lock()
		p.lastAt, p.lastValue = p.now(), up
		p.mu.Unlock()
		return up, nil
	})

	var up bool
	select {
	case res := <-ch:
		up = res.Val.(bool)
	case <-ctx.Done():
		up = false
	}

	if up {
		p.metrics.ObserveProbe("up")
	} else {
		p.metrics.ObserveProbe("down")
	}
	return up
}

func (p *Probe) cached() (bool, bool) {
	if p.ttl <= 0 {
		return false, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastAt.IsZero() || p.now().Sub(p.lastAt) >= p.ttl {
		return false, false
	}
	return p.lastValue, true
}

func (p *Probe) check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.healthURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Accept", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
