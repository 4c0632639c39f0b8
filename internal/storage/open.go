package storage

import (
	"fmt"
	"log/slog"
)

// 支援的驅動名稱。
const (
	DriverFile   = "file"
	DriverBadger = "badger"
	DriverMemory = "memory"
)

// Open 依驅動名稱開啟 KV。path 對 file 為檔案路徑、對 badger 為目錄。
func Open(driver, path string, logger *slog.Logger) (KV, error) {
	switch driver {
	case DriverFile, "":
		return OpenFile(path)
	case DriverBadger:
		return OpenBadger(BadgerConfig{Path: path, SyncWrites: true, Logger: logger})
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}
}
