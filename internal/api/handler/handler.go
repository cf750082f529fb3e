package handler

import "github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	Announcement *AnnouncementHandler
	School       *SchoolHandler
	User         *UserHandler
	Log          *LogHandler
	Upload       *UploadHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		Announcement: NewAnnouncementHandler(svc.Announcement),
		School:       NewSchoolHandler(),
		User:         NewUserHandler(svc.User),
		Log:          NewLogHandler(svc.Log),
		Upload:       NewUploadHandler(svc.Upload),
	}
}
