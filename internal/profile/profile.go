// Package profile 定義核心領域模型與業務規則。
// 本檔定義 Profile、部分更新用的 Patch 與 ID 產生方式，不含任何 HTTP 或儲存細節。

package profile

import (
	"github.com/google/uuid"
)

// Profile 為一筆個人資料。Age 為選填，nil 表示未提供。
type Profile struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,looseemail"`
	Age       *int   `json:"age,omitempty" validate:"omitnil,min=0,max=99"`
}

// Clone 回傳深拷貝；Age 為指標，必須另外複製，避免呼叫端改寫內部狀態。
func (p Profile) Clone() Profile {
	cp := p
	if p.Age != nil {
		age := *p.Age
		cp.Age = &age
	}
	return cp
}

// IsDraft 表示尚未被任何後端保存（沒有 ID）。
func (p Profile) IsDraft() bool {
	return p.ID == ""
}

// Patch 為部分更新內容。
// nil 欄位代表「未提供」，保留原值；Age 指向 0 仍視為有提供。
type Patch struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Age       *int    `json:"age,omitempty"`
}

// IsEmpty 回報 Patch 是否未提供任何欄位。
func (pt Patch) IsEmpty() bool {
	return pt.FirstName == nil && pt.LastName == nil && pt.Email == nil && pt.Age == nil
}

// Apply 將 Patch 合併到 p 的拷貝上並回傳，ID 不受影響。
func (pt Patch) Apply(p Profile) Profile {
	out := p.Clone()
	if pt.FirstName != nil {
		out.FirstName = *pt.FirstName
	}
	if pt.LastName != nil {
		out.LastName = *pt.LastName
	}
	if pt.Email != nil {
		out.Email = *pt.Email
	}
	if pt.Age != nil {
		age := *pt.Age
		out.Age = &age
	}
	return out
}

// NewID 產生新的唯一 ID（UUIDv7，以時間為基礎）。
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Int 為小工具：回傳 v 的指標，方便設定選填的 Age。
func Int(v int) *int {
	return &v
}
