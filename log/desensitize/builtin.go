package desensitize

const mask = "******"

var (
	// BearerRule Authorization 头中的 bearer 凭证 (Bearer eyJ... -> Bearer ******)
	BearerRule = MustNewContentRule(
		"bearer",
		`(?i)(bearer\s+)[A-Za-z0-9\-_=]+\.[A-Za-z0-9\-_=]+\.?[A-Za-z0-9\-_.+/=]*`,
		"${1}"+mask,
	)

	// JWTRule 裸露的 JWT，保留头部便于排查算法问题
	JWTRule = MustNewContentRule(
		"jwt",
		`\b(eyJ[A-Za-z0-9\-_]+)\.eyJ[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]*`,
		"${1}."+mask,
	)

	// PasswordRule password 字段
	PasswordRule = MustNewFieldRule("password", "password", mask)

	// TokenRule token 字段
	TokenRule = MustNewFieldRule("token", "token", mask)

	// AuthorizationRule authorization 字段
	AuthorizationRule = MustNewFieldRule("authorization", "authorization", mask)
)

// BuiltinRules 会话相关的内置规则，字段规则先于内容规则执行
func BuiltinRules() []Rule {
	return []Rule{
		PasswordRule,
		TokenRule,
		AuthorizationRule,
		BearerRule,
		JWTRule,
	}
}
