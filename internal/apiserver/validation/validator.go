// Package validation 注册与资料更新的请求校验
//
// 基于 go-playground/validator，错误信息沿用 `"field" must ...` 的格式，
// 字段名取自 json 标签。
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator 请求校验器，可并发使用
type Validator struct {
	validate *validator.Validate
}

// New 创建校验器
func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// 错误中的字段名使用 json 标签
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	return &Validator{validate: validate}
}

// Validate 校验结构体，返回全部错误（nil 表示通过）
func (v *Validator) Validate(s interface{}) ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "", Message: err.Error(), Rule: "invalid"}}
	}

	errs := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, ValidationError{
			Field:   fe.Field(),
			Message: message(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return errs
}

// ValidateSignup 规范化并校验注册载荷
func (v *Validator) ValidateSignup(s Signup) ValidationErrors {
	s.Normalize()
	return v.Validate(s)
}

// ValidateUpdate 规范化并校验资料更新载荷，只校验出现的字段
func (v *Validator) ValidateUpdate(u Update) ValidationErrors {
	u.Normalize()
	return v.Validate(u)
}

// message 将校验失败转换为可读信息
func message(fe validator.FieldError) string {
	field := fe.Field()
	kind := fe.Kind()
	if kind == reflect.Ptr {
		kind = fe.Type().Elem().Kind()
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "email":
		return fmt.Sprintf("%q must be a valid email", field)
	case "alphanum":
		return fmt.Sprintf("%q must only contain alpha-numeric characters", field)
	case "hexadecimal":
		return fmt.Sprintf("%q must only contain hexadecimal characters", field)
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", field, strings.Join(strings.Fields(fe.Param()), ", "))
	case "len":
		return fmt.Sprintf("%q length must be %s characters long", field, fe.Param())
	case "min":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("%q length must be at least %s characters long", field, fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("%q must contain at least %s items", field, fe.Param())
		default:
			return fmt.Sprintf("%q must be greater than or equal to %s", field, fe.Param())
		}
	case "max":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("%q length must be less than or equal to %s characters long", field, fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("%q must contain less than or equal to %s items", field, fe.Param())
		default:
			return fmt.Sprintf("%q must be less than or equal to %s", field, fe.Param())
		}
	}
	return fmt.Sprintf("%q is invalid", field)
}
