package handler

import (
	"errors"
	"reflect"
	"sync"

	"simplelink/internal/apperrors"
	"simplelink/internal/shortcode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators 在 gin 的校验引擎上注册 shortcode 标签
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("shortcode", func(fl validator.FieldLevel) bool {
			if fl.Field().Kind() != reflect.String {
				return false
			}
			return shortcode.Validate(fl.Field().String()) == nil
		})
	})
}

// bindError 将绑定错误映射为具体的业务错误
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.ErrInvalidRequest.WithCause(err)
	}

	fe := verrs[0]
	switch fe.Field() {
	case "URL":
		return apperrors.ErrInvalidURL
	case "CustomCode":
		if code, ok := fe.Value().(string); ok && errors.Is(shortcode.Validate(code), shortcode.ErrReserved) {
			return apperrors.ErrReservedCode
		}
		return apperrors.ErrInvalidCode
	case "Email":
		return apperrors.ErrInvalidEmail
	default:
		return apperrors.ErrInvalidRequest.WithCause(err)
	}
}
