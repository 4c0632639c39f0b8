// internal/server/router.go
//
// 本檔負責 HTTP 路由註冊，與 handler.go 分離：
//   - handler.go 定義「如何處理請求」
//   - router.go 定義「請求如何被導向」
//   - main.go 組裝整體應用（注入 Store、Logger、Metrics）
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Router 建立並回傳整個 HTTP 處理鏈。
// 同一組端點同時掛在 {base} 與 {base}/v1 之下。
func (s *Server) Router() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.instrument(), cors())

	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group(s.basePath)
	s.register(api)

	// API 版本別名：{base}/v1/...
	s.register(api.Group("/v1"))

	return r
}

// register 將所有 API 端點綁定到 g：
//
//	GET    /health
//	GET    /profiles
//	POST   /profiles
//	GET    /profiles/:id
//	PUT    /profiles/:id
//	DELETE /profiles/:id
func (s *Server) register(g *gin.RouterGroup) {
	g.GET("/health", s.health)

	profiles := g.Group("/profiles")
	profiles.GET("", s.listProfiles)
	profiles.POST("", s.createProfile)
	profiles.GET("/:id", s.getProfile)
	profiles.PUT("/:id", s.updateProfile)
	profiles.DELETE("/:id", s.deleteProfile)
}
