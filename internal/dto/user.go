package dto

// ── 用户模块 DTO ──

// CreateUserRequest 新建用户
type CreateUserRequest struct {
	ID        string   `json:"id"`
	Password  string   `json:"password"`
	Name      string   `json:"name"`
	IsAdmin   bool     `json:"isAdmin"`
	IsTeacher bool     `json:"isTeacher"`
	Schools   []string `json:"schools"`
}

// UpdateUserRequest 更新用户，nil 表示不修改；password/name 为空串同样保持原值
type UpdateUserRequest struct {
	Password  *string  `json:"password"`
	Name      *string  `json:"name"`
	IsAdmin   *bool    `json:"isAdmin"`
	IsTeacher *bool    `json:"isTeacher"`
	Schools   []string `json:"schools"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	IsAdmin   bool     `json:"isAdmin"`
	IsTeacher bool     `json:"isTeacher"`
	Schools   []string `json:"schools"`
}

// ImportUserRow 批量导入的一行
type ImportUserRow struct {
	Row       int
	ID        string
	Password  string
	Name      string
	IsTeacher bool
	Schools   []string
}

// ImportUserResponse 批量导入用户响应
// ErrorDetails 每条形如 "row 3 (s001): duplicate id"
type ImportUserResponse struct {
	SuccessCount int      `json:"successCount"`
	ErrorDetails []string `json:"errorDetails"`
}
