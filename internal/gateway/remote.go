// internal/gateway/remote.go
//
// Remote：以 HTTP 呼叫 profile 服務的後端實作。
// 狀態碼轉換：404 → profile.ErrNotFound、400 → *profile.ValidationError，
// 其他非 2xx、網路或解碼失敗 → *TransportError。

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"profilehub/internal/profile"
)

// 編譯期確認 Remote 實作 StorageBackend。
var _ StorageBackend = (*Remote)(nil)

const (
	defaultUserAgent      = "profilehub/0.1"
	DefaultRequestTimeout = 3 * time.Second
)

// Remote 為 profile 服務的 HTTP client。
type Remote struct {
	baseURL   string
	http      *http.Client
	userAgent string
}

// NewRemote 以 apiURL（例如 http://localhost:5000/api）建立 Remote。
// timeout 為單次請求上限，0 表示使用 DefaultRequestTimeout。
func NewRemote(apiURL string, timeout time.Duration) (*Remote, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Remote{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}, nil
}

func (r *Remote) Name() string { return BackendRemote }

// List 取得所有 profile。
func (r *Remote) List(ctx context.Context) ([]profile.Profile, error) {
	var out []profile.Profile
	if err := r.do(ctx, "list", http.MethodGet, "/profiles", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []profile.Profile{}
	}
	return out, nil
}

// savePayload 為 POST 與 PUT 共用的請求內容；ID 放在路徑中。
type savePayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Age       *int   `json:"age,omitempty"`
}

// Save 於 ID 為空時以 POST 建立，否則以 PUT 更新。
func (r *Remote) Save(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	body := savePayload{FirstName: p.FirstName, LastName: p.LastName, Email: p.Email, Age: p.Age}
	method, path, op := http.MethodPost, "/profiles", "create"
	if !p.IsDraft() {
		method, path, op = http.MethodPut, "/profiles/"+url.PathEscape(p.ID), "update"
	}
	var out profile.Profile
	if err := r.do(ctx, op, method, path, body, &out); err != nil {
		return profile.Profile{}, err
	}
	return out, nil
}

// Delete 刪除指定 profile；回應不含資料。
func (r *Remote) Delete(ctx context.Context, id string) error {
	return r.do(ctx, "delete", http.MethodDelete, "/profiles/"+url.PathEscape(id), nil, nil)
}

// envelope 對應服務端的回應信封。
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Fields  []string        `json:"fields"`
}

func (r *Remote) do(ctx context.Context, op, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", r.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return profile.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		msg := env.Message
		if msg == "" {
			msg = "request rejected"
		}
		return &profile.ValidationError{Message: msg, Invalid: env.Fields}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &TransportError{Op: op, Status: resp.StatusCode, Err: errors.New(nonEmpty(env.Message, http.StatusText(resp.StatusCode)))}
	}
	if decodeErr != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	if !env.Success {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: errors.New(nonEmpty(env.Message, "unsuccessful response"))}
	}
	if dest == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

func parseBaseURL(apiURL string) (string, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		return "", errors.New("api url is required")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse api url %q: %w", apiURL, err)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/"), nil
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
