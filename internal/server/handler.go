// internal/server/handler.go
//
// Package server
// ─────────────────────────────────────────────
// 提供 HTTP RESTful 介面，作為 profile 模組的應用層。
// 每個 handler 僅負責：
//  1. 接收與解析 HTTP 請求
//  2. 呼叫 profile.Store 執行商業邏輯
//  3. 回傳標準化 JSON 信封
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"profilehub/internal/observability"
	"profilehub/internal/profile"
)

// Options 為 Server 的可選設定。
type Options struct {
	// BasePath 為 API 掛載路徑，預設 "/api"。
	BasePath string
	// Logger 為 nil 時使用 slog.Default()。
	Logger *slog.Logger
	// Metrics 為 nil 時不註冊 /metrics 也不記錄指標。
	Metrics *observability.Metrics
}

// Server 為 HTTP 層核心結構：
// - Store：注入的 profile 儲存庫，生命週期由呼叫端管理。
type Server struct {
	Store    *profile.Store
	basePath string
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewServer 建立新的 HTTP 伺服器。
func NewServer(store *profile.Store, opts Options) *Server {
	if opts.BasePath == "" {
		opts.BasePath = "/api"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{
		Store:    store,
		basePath: opts.BasePath,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
}

// createRequest 為 POST /profiles 的請求內容。
type createRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Age       *int   `json:"age"`
}

// listProfiles 處理 GET /profiles。
func (s *Server) listProfiles(c *gin.Context) {
	writeJSON(c, http.StatusOK, s.Store.List(), msgListed)
}

// getProfile 處理 GET /profiles/:id。
func (s *Server) getProfile(c *gin.Context) {
	p, err := s.Store.Get(c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p, msgFetched)
}

// createProfile 處理 POST /profiles，成功回傳 201。
func (s *Server) createProfile(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn("invalid request body", "handler", "createProfile", "error", err)
		c.JSON(http.StatusBadRequest, Envelope{Message: msgBadBody})
		return
	}
	p, err := s.Store.Create(profile.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Age:       req.Age,
	})
	if err != nil {
		s.logger.Info("create rejected", "error", err)
		writeErr(c, err)
		return
	}
	s.logger.Info("profile created", "id", p.ID)
	s.metrics.SetProfilesStored(s.Store.Len())
	writeJSON(c, http.StatusCreated, p, msgCreated)
}

// updateProfile 處理 PUT /profiles/:id（部分更新）。
func (s *Server) updateProfile(c *gin.Context) {
	id := c.Param("id")
	var patch profile.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.logger.Warn("invalid request body", "handler", "updateProfile", "error", err)
		c.JSON(http.StatusBadRequest, Envelope{Message: msgBadBody})
		return
	}
	p, err := s.Store.Update(id, patch)
	if err != nil {
		s.logger.Info("update rejected", "id", id, "error", err)
		writeErr(c, err)
		return
	}
	s.logger.Info("profile updated", "id", id)
	writeJSON(c, http.StatusOK, p, msgUpdated)
}

// deleteProfile 處理 DELETE /profiles/:id；僅回傳確認訊息，不含被刪除的資料。
func (s *Server) deleteProfile(c *gin.Context) {
	id := c.Param("id")
	if err := s.Store.Delete(id); err != nil {
		writeErr(c, err)
		return
	}
	s.logger.Info("profile deleted", "id", id)
	s.metrics.SetProfilesStored(s.Store.Len())
	c.JSON(http.StatusOK, Envelope{Success: true, Message: msgDeleted})
}

// health 提供健康檢查端點：GET /health。
func (s *Server) health(c *gin.Context) {
	h := s.Store.Health()
	ts := h.Timestamp
	c.JSON(http.StatusOK, Envelope{Success: true, Message: msgHealthy, Timestamp: &ts})
}

// requestLogger 以 slog 記錄每個請求的方法、路徑、狀態碼與耗時。
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start))
	}
}

// instrument 記錄 Prometheus 請求指標；未命中路由者標記為 "unmatched"。
func (s *Server) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// cors 允許任意來源呼叫，並直接以 204 回應預檢 (preflight) 請求。
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
