package desensitize

import (
	"fmt"
	"regexp"
)

// Rule 脱敏规则
type Rule interface {
	// Name 规则名称，同名规则会覆盖
	Name() string
	// Process 返回脱敏后的字符串
	Process(s string) string
}

// ContentRule 按内容正则匹配替换
type ContentRule struct {
	name        string
	pattern     *regexp.Regexp
	replacement string
}

// NewContentRule 创建内容规则，replacement 支持 $1 形式的分组引用
func NewContentRule(name, pattern, replacement string) (*ContentRule, error) {
	if name == "" {
		return nil, fmt.Errorf("rule name cannot be empty")
	}
	if pattern == "" {
		return nil, fmt.Errorf("pattern cannot be empty")
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern '%s': %w", pattern, err)
	}

	return &ContentRule{name: name, pattern: re, replacement: replacement}, nil
}

// MustNewContentRule 创建失败时 panic，用于内置规则
func MustNewContentRule(name, pattern, replacement string) *ContentRule {
	rule, err := NewContentRule(name, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return rule
}

func (r *ContentRule) Name() string { return r.name }

func (r *ContentRule) Process(s string) string {
	return r.pattern.ReplaceAllString(s, r.replacement)
}

// FieldRule 按 JSON 字段名整体替换字段值
// 字段名大小写不敏感，zerolog 输出的 "Authorization" 与 "authorization" 都会命中
type FieldRule struct {
	name        string
	fieldName   string
	replacement string
	jsonPattern *regexp.Regexp
}

// NewFieldRule 创建字段规则
func NewFieldRule(name, fieldName, replacement string) (*FieldRule, error) {
	if name == "" {
		return nil, fmt.Errorf("rule name cannot be empty")
	}
	if fieldName == "" {
		return nil, fmt.Errorf("field name cannot be empty")
	}

	re, err := regexp.Compile(fmt.Sprintf(`(?i)"(%s)"\s*:\s*"(?:[^"\\]|\\.)*"`, regexp.QuoteMeta(fieldName)))
	if err != nil {
		return nil, fmt.Errorf("compile json pattern: %w", err)
	}

	return &FieldRule{
		name:        name,
		fieldName:   fieldName,
		replacement: replacement,
		jsonPattern: re,
	}, nil
}

// MustNewFieldRule 创建失败时 panic
func MustNewFieldRule(name, fieldName, replacement string) *FieldRule {
	rule, err := NewFieldRule(name, fieldName, replacement)
	if err != nil {
		panic(err)
	}
	return rule
}

func (r *FieldRule) Name() string { return r.name }

func (r *FieldRule) Process(s string) string {
	return r.jsonPattern.ReplaceAllString(s, fmt.Sprintf(`"$1":"%s"`, r.replacement))
}
