package appstate

import (
	"context"
	"errors"
	"sync"

	"profilehub/internal/profile"
)

// Gateway 為 Container 依賴的資料存取介面（由 *gateway.Gateway 實作）。
type Gateway interface {
	List(ctx context.Context) ([]profile.Profile, error)
	Save(ctx context.Context, p profile.Profile) (profile.Profile, error)
	Delete(ctx context.Context, id string) error
}

// Container 保存 State 並序列化每一次寫入。
// intent 之間不排隊：同時送出的 intent 以最後寫入者為準。
type Container struct {
	gw Gateway

	mu    sync.Mutex
	state State
	subs  []func(State)
}

// New 建立空白狀態的 Container。
func New(gw Gateway) *Container {
	return &Container{gw: gw, state: State{Profiles: []profile.Profile{}}}
}

// State 回傳目前狀態的拷貝。
func (c *Container) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Current 回傳目前選擇的 profile。
func (c *Container) Current() (profile.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.CurrentProfileID == "" {
		return profile.Profile{}, false
	}
	p, ok := c.state.Find(c.state.CurrentProfileID)
	return p.Clone(), ok
}

// Subscribe 註冊狀態變更通知；fn 於每次變更後以狀態拷貝呼叫。
func (c *Container) Subscribe(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// FetchAll 以 gateway 結果整批取代 Profiles。
// 若尚未選擇、或原選擇已不在結果中，改選第一筆（結果為空時清空）。
func (c *Container) FetchAll(ctx context.Context) error {
	c.begin()
	list, err := c.gw.List(ctx)
	if err != nil {
		c.fail(err)
		return err
	}
	c.update(func(s *State) {
		s.Profiles = list
		if s.Profiles == nil {
			s.Profiles = []profile.Profile{}
		}
		// 目前選擇不在新清單中（例如後端切換）時改選第一筆或清空
		if _, ok := s.Find(s.CurrentProfileID); !ok {
			s.CurrentProfileID = ""
			if len(s.Profiles) > 0 {
				s.CurrentProfileID = s.Profiles[0].ID
			}
		}
	})
	return nil
}

// Save 儲存 p，依 ID upsert 至 Profiles，並將其設為目前選擇。
func (c *Container) Save(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	c.begin()
	saved, err := c.gw.Save(ctx, p)
	if err != nil {
		c.fail(err)
		return profile.Profile{}, err
	}
	c.update(func(s *State) {
		replaced := false
		for i := range s.Profiles {
			if s.Profiles[i].ID == saved.ID {
				s.Profiles[i] = saved.Clone()
				replaced = true
				break
			}
		}
		if !replaced {
			s.Profiles = append(s.Profiles, saved.Clone())
		}
		s.CurrentProfileID = saved.ID
	})
	return saved, nil
}

// Delete 刪除 id；若刪除的是目前選擇，改選第一筆剩餘者或清空。
func (c *Container) Delete(ctx context.Context, id string) error {
	c.begin()
	if err := c.gw.Delete(ctx, id); err != nil {
		c.fail(err)
		return err
	}
	c.update(func(s *State) {
		kept := s.Profiles[:0]
		for _, p := range s.Profiles {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		s.Profiles = kept
		if s.CurrentProfileID == id {
			s.CurrentProfileID = ""
			if len(kept) > 0 {
				s.CurrentProfileID = kept[0].ID
			}
		}
	})
	return nil
}

// ErrUnknownProfile 代表 SelectCurrent 指定的 ID 不在 Profiles 中。
var ErrUnknownProfile = errors.New("profile is not loaded")

// SelectCurrent 將 id 設為目前選擇；id 不在 Profiles 中時不變更並回傳 ErrUnknownProfile。
func (c *Container) SelectCurrent(id string) error {
	c.mu.Lock()
	if _, ok := c.state.Find(id); !ok {
		c.mu.Unlock()
		return ErrUnknownProfile
	}
	c.state.CurrentProfileID = id
	c.mu.Unlock()
	c.notify()
	return nil
}

// ClearCurrent 取消目前選擇。
func (c *Container) ClearCurrent() {
	c.mu.Lock()
	c.state.CurrentProfileID = ""
	c.mu.Unlock()
	c.notify()
}

// ClearError 清除錯誤訊息。
func (c *Container) ClearError() {
	c.mu.Lock()
	c.state.Error, c.state.ErrorKind, c.state.InvalidFields = "", KindNone, nil
	c.mu.Unlock()
	c.notify()
}

// begin：任何非同步 intent 開始時 Loading=true 並清除錯誤。
func (c *Container) begin() {
	c.mu.Lock()
	c.state.Loading = true
	c.state.Error, c.state.ErrorKind, c.state.InvalidFields = "", KindNone, nil
	c.mu.Unlock()
	c.notify()
}

// update 於成功時套用 fn 並結束 loading。
func (c *Container) update(fn func(*State)) {
	c.mu.Lock()
	fn(&c.state)
	c.state.Loading = false
	c.mu.Unlock()
	c.notify()
}

// fail 記錄錯誤；Profiles 與 CurrentProfileID 保持不變。
func (c *Container) fail(err error) {
	c.mu.Lock()
	c.state.Loading = false
	c.state.Error = err.Error()
	c.state.ErrorKind = Classify(err)
	var ve *profile.ValidationError
	if errors.As(err, &ve) {
		c.state.InvalidFields = ve.Fields()
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Container) notify() {
	c.mu.Lock()
	snap := c.state.clone()
	subs := append([]func(State){}, c.subs...)
	c.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}
