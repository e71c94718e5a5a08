package config

// Loader 配置加载器
type Loader interface {
	Load(target any) error
}

// Defaulter 在解析前填充默认值
type Defaulter interface {
	SetDefaults()
}

// Resolver 在解析后计算派生值，先于校验执行
type Resolver interface {
	Resolve() error
}
