// Package config 載入 profilehub 的服務端與 client 端設定：
// 預設值 → TOML 檔 → PROFILEHUB_* 環境變數，後者覆蓋前者。
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
)

// EnvPrefix 為所有環境變數覆蓋的前綴。
const EnvPrefix = "PROFILEHUB_"

const (
	defaultConfigPath     = "~/.config/profilehub/config.toml"
	defaultServerAddr     = ":5000"
	defaultBasePath       = "/api"
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
	defaultAPIURL         = "http://localhost:5000/api"
	defaultProbeTimeout   = 3 * time.Second
	defaultRequestTimeout = 3 * time.Second
	defaultFallbackDriver = "file"
	defaultFallbackPath   = "~/.local/share/profilehub/fallback.json"
)

// Config 為完整設定。
type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Log      LogConfig      `envPrefix:"LOG_"`
	Client   ClientConfig   `envPrefix:"CLIENT_"`
	Fallback FallbackConfig `envPrefix:"FALLBACK_"`
}

type ServerConfig struct {
	Addr     string `env:"ADDR"`
	BasePath string `env:"BASE_PATH"`
}

type LogConfig struct {
	Level  string `env:"LEVEL"`
	Format string `env:"FORMAT"`
}

// ClientConfig 供 profilectl 的 probe 與遠端 client 使用。
type ClientConfig struct {
	APIURL         string        `env:"API_URL"`
	ProbeTimeout   time.Duration `env:"PROBE_TIMEOUT"`
	ProbeCacheTTL  time.Duration `env:"PROBE_CACHE_TTL"` // 0 表示每次都重新探測
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// FallbackConfig 為本地備援儲存的位置。
type FallbackConfig struct {
	Driver string `env:"DRIVER"` // file | badger | memory
	Path   string `env:"PATH"`
}

// Default 回傳未讀任何檔案前的設定。
func Default() Config {
	return Config{
		Server:   ServerConfig{Addr: defaultServerAddr, BasePath: defaultBasePath},
		Log:      LogConfig{Level: defaultLogLevel, Format: defaultLogFormat},
		Client:   ClientConfig{APIURL: defaultAPIURL, ProbeTimeout: defaultProbeTimeout, RequestTimeout: defaultRequestTimeout},
		Fallback: FallbackConfig{Driver: defaultFallbackDriver, Path: defaultFallbackPath},
	}
}

// rawConfig 對應 TOML 檔；時間欄位以字串（如 "3s"）表示。
type rawConfig struct {
	Server struct {
		Addr     string `toml:"addr"`
		BasePath string `toml:"base_path"`
	} `toml:"server"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
	Client struct {
		APIURL         string `toml:"api_url"`
		ProbeTimeout   string `toml:"probe_timeout"`
		ProbeCacheTTL  string `toml:"probe_cache_ttl"`
		RequestTimeout string `toml:"request_timeout"`
	} `toml:"client"`
	Fallback struct {
		Driver string `toml:"driver"`
		Path   string `toml:"path"`
	} `toml:"fallback"`
}

// Load 讀取設定。path 為空時使用預設路徑；檔案不存在時沿用預設值。
func Load(path string) (Config, error) {
	cfg := Default()

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}
	if err := loadFile(resolved, &cfg); err != nil {
		return Config{}, err
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Fallback.Path = mustExpand(cfg.Fallback.Path)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	setString(&cfg.Server.Addr, raw.Server.Addr)
	setString(&cfg.Server.BasePath, raw.Server.BasePath)
	setString(&cfg.Log.Level, raw.Log.Level)
	setString(&cfg.Log.Format, raw.Log.Format)
	setString(&cfg.Client.APIURL, raw.Client.APIURL)
	setString(&cfg.Fallback.Driver, raw.Fallback.Driver)
	setString(&cfg.Fallback.Path, raw.Fallback.Path)

	for _, d := range []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"client.probe_timeout", raw.Client.ProbeTimeout, &cfg.Client.ProbeTimeout},
		{"client.probe_cache_ttl", raw.Client.ProbeCacheTTL, &cfg.Client.ProbeCacheTTL},
		{"client.request_timeout", raw.Client.RequestTimeout, &cfg.Client.RequestTimeout},
	} {
		v := strings.TrimSpace(d.raw)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

// setString 只在值非空白時覆蓋。
func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func (c Config) validate() error {
	if c.Client.ProbeTimeout <= 0 {
		return fmt.Errorf("client.probe_timeout must be positive, got %s", c.Client.ProbeTimeout)
	}
	if c.Client.RequestTimeout <= 0 {
		return fmt.Errorf("client.request_timeout must be positive, got %s", c.Client.RequestTimeout)
	}
	if c.Client.ProbeCacheTTL < 0 {
		return fmt.Errorf("client.probe_cache_ttl must not be negative, got %s", c.Client.ProbeCacheTTL)
	}
	if !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("server.base_path must start with /, got %q", c.Server.BasePath)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
