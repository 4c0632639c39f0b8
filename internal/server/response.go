// internal/server/response.go
//
// 本檔負責統一 HTTP 回應格式。
// 所有回應皆為 JSON 信封 {success, data?, message}；錯誤時另附 fields 列出出錯欄位。
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"profilehub/internal/profile"
)

// Envelope 為所有 API 回應的共同外層結構。
type Envelope struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Message   string     `json:"message"`
	Fields    []string   `json:"fields,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// 回應訊息。
const (
	msgListed      = "Profiles fetched successfully"
	msgFetched     = "Profile fetched successfully"
	msgCreated     = "Profile created successfully"
	msgUpdated     = "Profile updated successfully"
	msgDeleted     = "Profile deleted successfully"
	msgNotFound    = "Profile not found"
	msgBadBody     = "Invalid request body"
	msgHealthy     = "API is running"
	msgInternalErr = "Internal server error"
)

// writeJSON 統一輸出成功回應。
func writeJSON(c *gin.Context, code int, data any, message string) {
	c.JSON(code, Envelope{Success: true, Data: data, Message: message})
}

// writeErr 依錯誤種類輸出失敗回應：
//   - *profile.ValidationError → 400，附 fields
//   - profile.ErrNotFound      → 404
//   - 其他                     → 500
func writeErr(c *gin.Context, err error) {
	var ve *profile.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, Envelope{Message: ve.Error(), Fields: ve.Fields()})
	case errors.Is(err, profile.ErrNotFound):
		c.JSON(http.StatusNotFound, Envelope{Message: msgNotFound})
	default:
		c.JSON(http.StatusInternalServerError, Envelope{Message: msgInternalErr})
	}
}
