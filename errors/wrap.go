package errors

import (
	goerrors "errors"
)

// 标准库 errors 的转发，调用方只需导入本包

// Is 错误链中是否存在 target
func Is(err, target error) bool {
	return goerrors.Is(err, target)
}

// As 在错误链中查找 target 类型
func As(err error, target any) bool {
	return goerrors.As(err, target)
}

// Join 合并多个错误，忽略 nil
func Join(errs ...error) error {
	return goerrors.Join(errs...)
}
