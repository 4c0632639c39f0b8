// internal/profile/validate.go
//
// 欄位檢核規則：firstName / lastName / email 必填，email 需具備 "@" 與網域段，
// age 選填且介於 0–99。表單（edge）與 Store 共用同一組規則，Store 的結果為準。

package profile

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 錯誤欄位以 JSON 名稱回報（firstName 而非 FirstName）
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("looseemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate 檢核 p 的欄位，ID 不列入檢核。
// 通過回傳 nil；否則回傳 *ValidationError。
func Validate(p Profile) error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.TrimSpace(p.Email)

	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Message: err.Error()}
	}
	ve := &ValidationError{}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			ve.Missing = append(ve.Missing, fe.Field())
		} else {
			ve.Invalid = append(ve.Invalid, fe.Field())
		}
	}
	return ve
}
