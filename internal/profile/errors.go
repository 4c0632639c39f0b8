// internal/profile/errors.go
//
// 本檔集中定義「領域錯誤（domain errors）」。
// 由上層 HTTP handler 轉換成 HTTP 狀態碼，或由 gateway / appstate 分類後呈現給使用者。

package profile

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound 代表指定 ID 的 profile 不存在。
	// 對應 HTTP 狀態碼 404 Not Found。
	ErrNotFound = errors.New("profile not found")

	// ErrValidation 為所有 *ValidationError 的比對目標，供 errors.Is 使用。
	// 對應 HTTP 狀態碼 400 Bad Request。
	ErrValidation = errors.New("validation failed")
)

// ValidationError 記錄欄位層級的檢核失敗。
//   - Missing：必填欄位為空
//   - Invalid：欄位格式或範圍不符
//   - Message：遠端服務回傳的原始訊息（若有）
type ValidationError struct {
	Missing []string
	Invalid []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid fields: "+strings.Join(e.Invalid, ", "))
	}
	if len(parts) == 0 {
		return ErrValidation.Error()
	}
	return strings.Join(parts, "; ")
}

// Is 讓 errors.Is(err, ErrValidation) 成立。
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Fields 回傳所有出錯的欄位名稱（先必填、後格式）。
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Missing)+len(e.Invalid))
	out = append(out, e.Missing...)
	return append(out, e.Invalid...)
}
