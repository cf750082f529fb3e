package model

import "time"

// RoleKind 角色种类
type RoleKind string

const (
	RoleAdmin   RoleKind = "admin"
	RoleTeacher RoleKind = "teacher"
	RoleStudent RoleKind = "student"
)

// Role 登录时一次性解析出的角色；仅 student 携带所属教室
type Role struct {
	Kind    RoleKind
	Schools SchoolSet
}

// AdminRole 管理员
func AdminRole() Role { return Role{Kind: RoleAdmin} }

// TeacherRole 讲师（可查看全部教室）
func TeacherRole() Role { return Role{Kind: RoleTeacher} }

// StudentRole 学生，schools 为空表示不限教室
func StudentRole(schools SchoolSet) Role {
	return Role{Kind: RoleStudent, Schools: NewSchoolSet(schools...)}
}

// ParseRole 由令牌中的角色字符串还原，未知值按学生处理
func ParseRole(kind string, schools []string) Role {
	switch RoleKind(kind) {
	case RoleAdmin:
		return AdminRole()
	case RoleTeacher:
		return TeacherRole()
	default:
		return StudentRole(schools)
	}
}

// IsAdmin 是否管理员
func (r Role) IsAdmin() bool { return r.Kind == RoleAdmin }

// IsTeacher 是否讲师
func (r Role) IsTeacher() bool { return r.Kind == RoleTeacher }

// Session 已认证的会话描述，由中间件注入并显式传给各 Handler / Service
type Session struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Role      Role      `json:"-"`
	LoginTime time.Time `json:"loginTime"`

	// 令牌元数据，用于登出时加入黑名单
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// NewSession 由用户记录创建会话（不含密码）
func NewSession(u *User, loginTime time.Time) *Session {
	return &Session{
		UserID:    u.ID,
		Name:      u.Name,
		Role:      u.Role(),
		LoginTime: loginTime,
	}
}
