// Package rule 提供结构体和字段验证功能的封装，基于 go-playground/validator 实现.
//
// rule 使用独立的 validator 实例与 `rule` 标签，不影响 gin 绑定使用的 `binding` 标签.
package rule

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// TagName 结构体校验使用的标签名.
const TagName = "rule"

var (
	inst *validator.Validate
	once sync.Once
)

// contactEmailRE 联系表单使用的宽松邮箱格式：local@domain.tld，不允许空白.
var contactEmailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// initValidator 新建 validator 并注册自定义规则.
func initValidator() {
	inst = validator.New(validator.WithRequiredStructEnabled())
	inst.SetTagName(TagName)

	// 错误中的字段名依次使用 label、json 标签
	inst.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}

		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		if name == "" {
			return fld.Name
		}

		return name
	})

	_ = inst.RegisterValidation("notblank", validators.NotBlank)
	_ = inst.RegisterValidation("contactemail", func(fl validator.FieldLevel) bool {
		return IsContactEmail(fl.Field().String())
	})
}

// lazyInit 初始化全局 validator（幂等）.
func lazyInit() {
	once.Do(initValidator)
}

// Engine 返回全局 *validator.Validate，若未初始化则先初始化.
func Engine() *validator.Validate {
	lazyInit()

	return inst
}

// RegisterValidation 代理 RegisterValidation，确保已初始化.
func RegisterValidation(tag string, fn validator.Func, opts ...bool) error {
	lazyInit()

	return inst.RegisterValidation(tag, fn, opts...)
}

// ValidationErrors 是格式化后的验证错误字典，键为字段名（受 RegisterTagNameFunc 影响），值为可读错误信息.
type ValidationErrors map[string]string

// ValidateStruct 对结构体执行完整校验，返回原始 error（可用 Errors 解析）.
func ValidateStruct(s any) error {
	lazyInit()

	return inst.Struct(s)
}

// ValidateVar 按规则对单个变量校验，例如: ValidateVar("abc", "required,email").
func ValidateVar(field any, tag string) error {
	lazyInit()

	return inst.Var(field, tag)
}

// RegisterAlias 包装 RegisterAlias，便于注册别名规则.
func RegisterAlias(alias, rules string) {
	lazyInit()

	inst.RegisterAlias(alias, rules)
}

// IsContactEmail 判断字符串是否符合联系表单的邮箱格式.
func IsContactEmail(s string) bool {
	return contactEmailRE.MatchString(s)
}

// Errors 把 validator 返回的错误转换为字段到可读信息的字典；非校验错误返回 nil.
func Errors(err error) ValidationErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(ValidationErrors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}

	return out
}

// First 返回第一个校验错误的可读信息，没有时返回空字符串.
func First(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ""
	}

	return message(verrs[0])
}

func message(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be less than %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "email", "contactemail":
		return fmt.Sprintf("Invalid %s address", strings.ToLower(field))
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed on %s", field, fe.Tag())
	}
}
