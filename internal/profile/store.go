// internal/profile/store.go

// Package profile 定義核心商業邏輯：profile 的建立、查詢、部分更新與刪除。
// Store 以單一互斥鎖 (sync.Mutex) 保障所有狀態變更序列化；
// 資料僅存在行程記憶體中，重啟即清空。
package profile

import (
	"strings"
	"sync"
	"time"
)

// Store 為 profile 的記憶體儲存庫 (repository)。
// - mu：序列化所有讀寫。
// - order：依建立順序排列的 ID，List 以此順序輸出。
// - items：ID → *Profile 索引表，內部指標只在臨界區內修改。
// - newID：ID 產生器，預設為 NewID。
type Store struct {
	mu    sync.Mutex
	order []string
	items map[string]*Profile
	newID func() string
	now   func() time.Time
}

// HealthStatus 為存活檢查的回應內容。
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// NewStore 建立空白的 Store（僅就緒的 in-memory 狀態，無外部依賴）。
func NewStore() *Store {
	return &Store{
		items: make(map[string]*Profile),
		newID: NewID,
		now:   time.Now,
	}
}

// Normalize 去除文字欄位前後空白，ID 保持原樣。
func Normalize(p Profile) Profile {
	out := p.Clone()
	out.FirstName = strings.TrimSpace(out.FirstName)
	out.LastName = strings.TrimSpace(out.LastName)
	out.Email = strings.TrimSpace(out.Email)
	return out
}

// List 依建立順序回傳所有 profile 的拷貝；無資料時回傳空切片（非 nil）。
func (s *Store) List() []Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Profile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].Clone())
	}
	return out
}

// Get 依 ID 取得 profile；若不存在回傳 ErrNotFound。
func (s *Store) Get(id string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p.Clone(), nil
}

// Create 檢核欄位後指派新 ID 並附加到集合尾端。
// 傳入的 ID 會被忽略；ID 一律由 Store 產生。
func (s *Store) Create(p Profile) (Profile, error) {
	p = Normalize(p)
	if err := Validate(p); err != nil {
		return Profile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	for s.items[id] != nil {
		id = s.newID()
	}
	p.ID = id
	stored := p.Clone()
	s.items[id] = &stored
	s.order = append(s.order, id)
	return p, nil
}

// Update 以 Patch 合併既有資料；未提供的欄位保留原值。
// 合併後的結果仍需通過檢核，任一步驟失敗皆不改變狀態。
func (s *Store) Update(id string, patch Patch) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	if patch.IsEmpty() {
		return cur.Clone(), nil
	}
	merged := Normalize(patch.Apply(*cur))
	if err := Validate(merged); err != nil {
		return Profile{}, err
	}
	*cur = merged
	return merged.Clone(), nil
}

// Delete 移除指定 profile；若不存在回傳 ErrNotFound。
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len 回傳目前筆數。
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Health 回傳存活訊號與時間戳，無副作用。
func (s *Store) Health() HealthStatus {
	return HealthStatus{Status: "ok", Timestamp: s.now().UTC()}
}
