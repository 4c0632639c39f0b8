// internal/storage/jsonstore.go
//
// FileKV：以單一 JSON 檔案保存所有鍵值。
// 每次 Set 皆整份重寫，採「原子寫入」：先寫入 .tmp 檔，再以 rename() 取代原檔。
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const fileStorageName = "json_kv"

// FileKV 為檔案式 KV。mu 序列化同一行程內的讀寫。
type FileKV struct {
	mu     sync.Mutex
	path   string
	closed bool
}

// OpenFile 開啟（或準備建立）位於 path 的 FileKV，並確保上層目錄存在。
// 檔案不存在不是錯誤；第一次 Set 時才會建立。
func OpenFile(path string) (*FileKV, error) {
	if path == "" {
		return nil, errors.New("storage: file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileKV{path: path}, nil
}

// Get 讀取 key 對應的值。
func (f *FileKV) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", false, ErrClosed
	}
	doc, err := LoadDocument(f.path)
	if err != nil {
		return "", false, err
	}
	v, ok := doc.Entries[key]
	return v, ok, nil
}

// Set 以 read-modify-write 方式寫入 key。
func (f *FileKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	doc, err := LoadDocument(f.path)
	if err != nil {
		return err
	}
	doc.Entries[key] = value
	return SaveDocument(f.path, doc)
}

// Close 標記為關閉；檔案本身無需釋放資源。
func (f *FileKV) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// LoadDocument 讀取指定路徑的 JSON 文件；檔案不存在時回傳空文件。
func LoadDocument(path string) (Document, error) {
	doc := Document{Entries: map[string]string{}}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return doc, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("decode %s: %w", path, err)
	}
	if doc.Entries == nil {
		doc.Entries = map[string]string{}
	}
	return doc, nil
}

// SaveDocument 將文件序列化為 JSON 並原子寫入：
//  1. 設定 Meta.Storage、Version 與當前時間戳。
//  2. 寫入 path+".tmp" 暫存檔。
//  3. 以 os.Rename() 取代正式檔案。
func SaveDocument(path string, doc Document) error {
	doc.Meta.Storage = fileStorageName
	doc.Meta.Version = 1
	doc.Meta.Timestamp = time.Now()
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}
