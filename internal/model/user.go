package model

// AdminUserID 受保护的管理员账号 ID，始终存在且不可删除
const AdminUserID = "admin"

// User 用户记录，以 JSON 存放于哈希表 users（field 为 ID）
type User struct {
	ID        string    `json:"id"`
	Password  string    `json:"password"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"isAdmin"`
	IsTeacher bool      `json:"isTeacher"`
	Schools   SchoolSet `json:"schools"`
}

// Role 解析账号角色（admin > teacher > student）
func (u *User) Role() Role {
	switch {
	case u.IsAdmin:
		return AdminRole()
	case u.IsTeacher:
		return TeacherRole()
	default:
		return StudentRole(u.Schools)
	}
}

// IsProtected 是否为受保护账号
func (u *User) IsProtected() bool {
	return u.ID == AdminUserID
}
