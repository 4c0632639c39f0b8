// internal/gateway/local.go
//
// Local：以 storage.KV 保存的本地備援集合。

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"profilehub/internal/profile"
	"profilehub/internal/storage"
)

// FallbackKey 為本地備援在 KV 中使用的唯一鍵；值為 Profile 的 JSON 陣列。
const FallbackKey = "profiles"

// 編譯期確認 Local 實作 StorageBackend。
var _ StorageBackend = (*Local)(nil)

// Local 為本地備援集合。
// 每次變更都讀出整個陣列、修改後整份寫回（read-modify-write）。
// 行為比照 profile.Store：相同的檢核、未知 ID 回傳 profile.ErrNotFound。
type Local struct {
	mu    sync.Mutex
	kv    storage.KV
	newID func() string
}

// NewLocal 建立以 kv 為底層的本地備援。
func NewLocal(kv storage.KV) *Local {
	return &Local{kv: kv, newID: profile.NewID}
}

func (l *Local) Name() string { return BackendLocal }

func (l *Local) List(_ context.Context) ([]profile.Profile, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

// Save 建立或更新。更新時以提交的完整欄位取代既有欄位。
func (l *Local) Save(_ context.Context, p profile.Profile) (profile.Profile, error) {
	p = profile.Normalize(p)
	if err := profile.Validate(p); err != nil {
		return profile.Profile{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	all, err := l.load()
	if err != nil {
		return profile.Profile{}, err
	}

	if p.IsDraft() {
		p.ID = l.newID()
		all = append(all, p)
	} else {
		i := indexOf(all, p.ID)
		if i < 0 {
			return profile.Profile{}, profile.ErrNotFound
		}
		all[i] = p
	}
	if err := l.save(all); err != nil {
		return profile.Profile{}, err
	}
	return p.Clone(), nil
}

func (l *Local) Delete(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	all, err := l.load()
	if err != nil {
		return err
	}
	i := indexOf(all, id)
	if i < 0 {
		return profile.ErrNotFound
	}
	all = append(all[:i], all[i+1:]...)
	return l.save(all)
}

func (l *Local) load() ([]profile.Profile, error) {
	raw, ok, err := l.kv.Get(FallbackKey)
	if err != nil {
		return nil, fmt.Errorf("fallback load: %w", err)
	}
	out := []profile.Profile{}
	if !ok || raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("fallback decode: %w", err)
	}
	if out == nil {
		out = []profile.Profile{}
	}
	return out, nil
}

func (l *Local) save(all []profile.Profile) error {
	buf, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("fallback encode: %w", err)
	}
	if err := l.kv.Set(FallbackKey, string(buf)); err != nil {
		return fmt.Errorf("fallback store: %w", err)
	}
	return nil
}

func indexOf(all []profile.Profile, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}
