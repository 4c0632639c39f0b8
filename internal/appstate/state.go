// Package appstate 保存 client 端可見的應用狀態，
// 並為所有變更的唯一寫入者：呈現層只讀取 State 並呼叫 intent。
package appstate

import (
	"errors"

	"profilehub/internal/profile"
)

// Kind 為失敗的分類，決定呈現層如何顯示。
type Kind int

const (
	KindNone Kind = iota
	// KindValidation 顯示於表單欄位旁，而非全域錯誤橫幅。
	KindValidation
	// KindNotFound 顯示一般錯誤訊息並切換到「找不到」畫面。
	KindNotFound
	// KindUnknown 原文顯示錯誤訊息。
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Classify 將 gateway 回傳的錯誤分類。
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, profile.ErrValidation):
		return KindValidation
	case errors.Is(err, profile.ErrNotFound):
		return KindNotFound
	default:
		return KindUnknown
	}
}

// State 為某一時間點的應用狀態快照。
type State struct {
	Profiles         []profile.Profile
	CurrentProfileID string // 空字串表示未選擇
	Loading          bool
	Error            string
	ErrorKind        Kind
	// InvalidFields 僅在 ErrorKind 為 KindValidation 時有值，供表單逐欄標示。
	InvalidFields []string
}

// clone 深拷貝 State，避免呼叫端改寫內部切片。
func (s State) clone() State {
	cp := s
	if s.Profiles != nil {
		cp.Profiles = make([]profile.Profile, len(s.Profiles))
		for i, p := range s.Profiles {
			cp.Profiles[i] = p.Clone()
		}
	}
	if s.InvalidFields != nil {
		cp.InvalidFields = append([]string(nil), s.InvalidFields...)
	}
	return cp
}

// Find 依 ID 尋找 profile。
func (s State) Find(id string) (profile.Profile, bool) {
	for _, p := range s.Profiles {
		if p.ID == id {
			return p, true
		}
	}
	return profile.Profile{}, false
}
