package rule_test

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/feyabloom/studio/pkg/rule"
)

// TestStruct 用于测试 ValidateStruct.
type TestStruct struct {
	Name string `rule:"required"`
	Age  int    `rule:"gte=18"`
}

// TestEngine 测试 Engine 函数返回非 nil 实例.
func TestEngine(t *testing.T) {
	engine := rule.Engine()
	if engine == nil {
		t.Error("Engine() returned nil")
	}
}

// TestValidateStruct 测试 ValidateStruct 对有效和无效结构体的验证.
func TestValidateStruct(t *testing.T) {
	// 有效结构体
	validStruct := TestStruct{Name: "John", Age: 25}

	err := rule.ValidateStruct(validStruct)
	if err != nil {
		t.Errorf("Expected no error for valid struct, got %v", err)
	}

	// 无效结构体：缺少 Name
	invalidStruct1 := TestStruct{Name: "", Age: 25}

	err = rule.ValidateStruct(invalidStruct1)
	if err == nil {
		t.Error("Expected error for invalid struct (missing name), got nil")
	}

	// 无效结构体：Age 小于 18
	invalidStruct2 := TestStruct{Name: "Jane", Age: 16}

	err = rule.ValidateStruct(invalidStruct2)
	if err == nil {
		t.Error("Expected error for invalid struct (age < 18), got nil")
	}
}

// TestValidateVar 测试 ValidateVar 对变量的验证.
func TestValidateVar(t *testing.T) {
	// 有效 email
	err := rule.ValidateVar("test@example.com", "required,email")
	if err != nil {
		t.Errorf("Expected no error for valid email, got %v", err)
	}

	// 无效 email
	err = rule.ValidateVar("invalid-email", "required,email")
	if err == nil {
		t.Error("Expected error for invalid email, got nil")
	}

	// 有效数字
	err = rule.ValidateVar(25, "gte=18")
	if err != nil {
		t.Errorf("Expected no error for valid number, got %v", err)
	}

	// 无效数字
	err = rule.ValidateVar(15, "gte=18")
	if err == nil {
		t.Error("Expected error for invalid number, got nil")
	}
}

// TestRegisterValidation 测试注册自定义验证.
func TestRegisterValidation(t *testing.T) {
	// 注册自定义验证：检查字符串长度是否为偶数
	err := rule.RegisterValidation("even_length", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		return len(str)%2 == 0
	})
	if err != nil {
		t.Fatalf("Failed to register validation: %v", err)
	}

	// 测试有效字符串
	err = rule.ValidateVar("test", "even_length")
	if err != nil {
		t.Errorf("Expected no error for even length string, got %v", err)
	}

	// 测试无效字符串
	err = rule.ValidateVar("test1", "even_length")
	if err == nil {
		t.Error("Expected error for odd length string, got nil")
	}
}

// TestRegisterAlias 测试注册别名.
func TestRegisterAlias(t *testing.T) {
	rule.RegisterAlias("min_required", "required,min=3")

	// 测试有效字符串
	err := rule.ValidateVar("abc", "min_required")
	if err != nil {
		t.Errorf("Expected no error for valid string with alias, got %v", err)
	}

	// 测试无效字符串
	err = rule.ValidateVar("ab", "min_required")
	if err == nil {
		t.Error("Expected error for invalid string with alias, got nil")
	}
}

// TestNotBlank 测试 notblank 规则拒绝纯空白字符串.
func TestNotBlank(t *testing.T) {
	if err := rule.ValidateVar("  \t\n", "notblank"); err == nil {
		t.Error("Expected error for blank string, got nil")
	}

	if err := rule.ValidateVar(" a ", "notblank"); err != nil {
		t.Errorf("Expected no error for non-blank string, got %v", err)
	}
}

// TestContactEmail 测试联系表单邮箱规则.
func TestContactEmail(t *testing.T) {
	cases := map[string]bool{
		"a@b.co":             true,
		"feya@studio.design": true,
		"a@b":                false,
		"a b@c.d":            false,
		"@b.co":              false,
		"a@@b.co":            false,
	}

	for in, want := range cases {
		if got := rule.IsContactEmail(in); got != want {
			t.Errorf("IsContactEmail(%q) = %v, want %v", in, got, want)
		}

		err := rule.ValidateVar(in, "contactemail")
		if (err == nil) != want {
			t.Errorf("ValidateVar(%q, contactemail) err = %v, want valid=%v", in, err, want)
		}
	}
}

// namedStruct 字段名来自 json 标签.
type namedStruct struct {
	Title string `json:"title" rule:"required"`
	Note  string `json:"note"  rule:"max=3"`
}

// TestErrors 测试错误字典使用 json 字段名.
func TestErrors(t *testing.T) {
	err := rule.ValidateStruct(namedStruct{Note: "toolong"})
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}

	errs := rule.Errors(err)
	if errs["title"] != "title is required" {
		t.Errorf("unexpected title message: %q", errs["title"])
	}

	if errs["note"] != "note must be less than 3 characters" {
		t.Errorf("unexpected note message: %q", errs["note"])
	}

	if rule.First(err) == "" {
		t.Error("First() returned empty message")
	}

	if rule.Errors(nil) != nil {
		t.Error("Errors(nil) should be nil")
	}
}

// labeledStruct 字段名来自 label 标签.
type labeledStruct struct {
	Name  string `json:"name"  label:"Name"  rule:"notblank,max=5"`
	Email string `json:"email" label:"Email" rule:"notblank,contactemail"`
}

// TestLabelMessages 测试 label 标签生成面向用户的错误信息.
func TestLabelMessages(t *testing.T) {
	cases := []struct {
		in   labeledStruct
		want string
	}{
		{labeledStruct{Name: " ", Email: "a@b.co"}, "Name is required"},
		{labeledStruct{Name: "abcdef", Email: "a@b.co"}, "Name must be less than 5 characters"},
		{labeledStruct{Name: "abc", Email: "nope"}, "Invalid email address"},
	}

	for _, tc := range cases {
		if got := rule.First(rule.ValidateStruct(tc.in)); got != tc.want {
			t.Errorf("First() = %q, want %q", got, tc.want)
		}
	}
}
