package errors

import "errors"

// ── 错误分类 ──
// 业务层哨兵错误通过 %w 包装以下分类，Handler 层按分类映射 HTTP 状态码。

var (
	// ErrValidation 必填字段缺失或格式错误，请求未被执行
	ErrValidation = errors.New("参数校验失败")
	// ErrNotFound 引用的记录不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrDuplicateID 用户 ID 已存在（仅创建用户）
	ErrDuplicateID = errors.New("ID 已存在")
	// ErrProtectedAccount 受保护账号（admin）不可删除
	ErrProtectedAccount = errors.New("受保护的账号")
	// ErrAuthFailure 用户名或密码错误
	ErrAuthFailure = errors.New("认证失败")
	// ErrUploadFailure 文件上传失败（未配置或传输错误）
	ErrUploadFailure = errors.New("上传失败")
)

// Kind 返回 err 所属的分类，无法识别时返回 nil
func Kind(err error) error {
	for _, kind := range []error{
		ErrValidation, ErrNotFound, ErrDuplicateID,
		ErrProtectedAccount, ErrAuthFailure, ErrUploadFailure,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
