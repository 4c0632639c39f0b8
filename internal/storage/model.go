// internal/storage/model.go
//
// 定義「資料持久化層 (storage layer)」的介面與檔案格式。
// 上層（gateway 的本地備援）只依賴 KV 介面：以字串鍵存取字串值，
// 實作可為 JSON 檔案、BadgerDB 或記憶體。
package storage

import (
	"errors"
	"time"
)

// ErrClosed 代表 KV 已關閉，無法再讀寫。
var ErrClosed = errors.New("storage: closed")

// KV 為持久化字串鍵值介面。
// Get 在鍵不存在時回傳 ok=false 且 err=nil。
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Close() error
}

// Meta 為檔案快照的中繼資料 (metadata)。
type Meta struct {
	Storage   string    `json:"storage"`        // 儲存類型，例如 "json_kv"
	Version   int       `json:"version"`        // 結構版本號
	Timestamp time.Time `json:"timestamp"`      // 最後寫入時間
	Note      string    `json:"note,omitempty"` // 備註欄
}

// Document 為 FileKV 在磁碟上的完整內容。
type Document struct {
	Meta    Meta              `json:"_meta"`
	Entries map[string]string `json:"entries"`
}
