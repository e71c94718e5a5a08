package validator

import (
	stderrors "errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"
)

// Validator 校验器
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// Validate 全局校验器
var Validate = New()

// Option 校验器选项
type Option func(*options)

type options struct {
	lang    string
	tagName string
}

// WithLang 错误消息语言，支持 en、fr，默认 en
func WithLang(lang string) Option {
	return func(o *options) {
		o.lang = lang
	}
}

// WithFieldTag 错误中使用的字段名来源，默认 mapstructure，与配置键一致
func WithFieldTag(tag string) Option {
	return func(o *options) {
		o.tagName = tag
	}
}

// New 创建校验器
func New(opts ...Option) *Validator {
	o := options{lang: "en", tagName: "mapstructure"}
	for _, opt := range opts {
		opt(&o)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get(o.tagName), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, fr.New())
	trans, found := uni.GetTranslator(o.lang)
	if !found {
		trans, _ = uni.GetTranslator("en")
	}

	switch trans.Locale() {
	case "fr":
		_ = fr_translations.RegisterDefaultTranslations(v, trans)
	default:
		_ = en_translations.RegisterDefaultTranslations(v, trans)
	}

	return &Validator{validate: v, trans: trans}
}

// Struct 校验结构体，失败时返回 ValidationErrors
func (v *Validator) Struct(s any) error {
	if s == nil {
		return stderrors.New("validation target cannot be nil")
	}

	err := v.validate.Struct(s)
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Namespace: fe.Namespace(),
			Field:     fe.Field(),
			Tag:       fe.Tag(),
			Value:     fe.Value(),
			Message:   fe.Translate(v.trans),
		})
	}
	return out
}

// FieldError 单个字段的校验失败
type FieldError struct {
	Namespace string `json:"namespace"`
	Field     string `json:"field"`
	Tag       string `json:"tag"`
	Value     any    `json:"value"`
	Message   string `json:"message"`
}

// ValidationErrors 校验失败列表
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// Fields 失败字段的完整路径
func (e ValidationErrors) Fields() []string {
	out := make([]string, 0, len(e))
	for _, fe := range e {
		out = append(out, fe.Namespace)
	}
	return out
}
