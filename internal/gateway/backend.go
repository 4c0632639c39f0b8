// internal/gateway/backend.go
//
// Package gateway 為 client 端唯一的資料存取點。
// 每次操作前先以 probe 判斷遠端服務是否可用，再交由 Remote 或 Local 後端執行；
// 遠端失敗時立即改用本地備援一次，不重試。
//
// 兩個後端各自為獨立的資料來源，彼此不同步：切換後端後看到不同資料屬預期行為。
package gateway

import (
	"context"
	"fmt"

	"profilehub/internal/profile"
)

// 後端名稱。
const (
	BackendRemote = "remote"
	BackendLocal  = "local"
)

// StorageBackend 為 gateway 可選用的後端契約。
// Save：ID 為空時建立，否則更新；回傳正規化後的 Profile。
type StorageBackend interface {
	Name() string
	List(ctx context.Context) ([]profile.Profile, error)
	Save(ctx context.Context, p profile.Profile) (profile.Profile, error)
	Delete(ctx context.Context, id string) error
}

// TransportError 代表與遠端服務通訊失敗（網路、逾時、非預期狀態碼或回應無法解析）。
// 只在 gateway 內部流動，會被本地備援吸收。
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UnknownError 包裝本地備援也失敗時的其他錯誤。
type UnknownError struct {
	Op  string
	Err error
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *UnknownError) Unwrap() error { return e.Err }
