package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
// 字段缺失由 Service 统一返回校验错误，这里不加 binding 约束
type LoginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

// SessionResponse 会话信息（不含密码）
type SessionResponse struct {
	UserID    string   `json:"userId"`
	Name      string   `json:"name"`
	Role      string   `json:"role"`
	IsAdmin   bool     `json:"isAdmin"`
	IsTeacher bool     `json:"isTeacher"`
	Schools   []string `json:"schools"`
	LoginTime string   `json:"loginTime"`
}

// LoginResponse 登录成功响应
// DefaultSchools 为客户端教室筛选的初始值
type LoginResponse struct {
	AccessToken    string          `json:"access_token"`
	ExpiresIn      int             `json:"expires_in"`
	Session        SessionResponse `json:"session"`
	DefaultSchools []string        `json:"defaultSchools"`
}
