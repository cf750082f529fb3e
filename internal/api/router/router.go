package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/config"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/api/handler"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/api/middleware"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/model"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/service"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/jwt"
)

// Options 路由可选项
type Options struct {
	// Blacklist 为 nil 时不检查令牌吊销
	Blacklist service.TokenBlacklist
	// FilesDir 非空时以 /files 提供本地上传目录
	FilesDir string
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, opts Options, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": cfg.Store.Driver})
	})

	// ── 本地上传文件 ──
	if opts.FilesDir != "" {
		r.Static("/files", opts.FilesDir)
	}

	adminOnly := middleware.RoleAuth(model.RoleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", h.Auth.Login)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, opts.Blacklist, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			authorized.GET("/schools", h.School.ListSchools)

			// 公告模块
			announcements := authorized.Group("/announcements")
			{
				announcements.GET("", h.Announcement.ListAnnouncements)
				announcements.GET("/view", h.Announcement.ViewAnnouncements)
				announcements.POST("/:id/pdf", h.Announcement.OpenPDF)
				announcements.POST("", adminOnly, h.Announcement.CreateAnnouncement)
				announcements.PUT("/:id", adminOnly, h.Announcement.UpdateAnnouncement)
				announcements.DELETE("/:id", adminOnly, h.Announcement.DeleteAnnouncement)
			}

			// 用户模块
			users := authorized.Group("/users", adminOnly)
			{
				users.GET("", h.User.ListUsers)
				users.POST("", h.User.CreateUser)
				users.PUT("/:id", h.User.UpdateUser)
				users.DELETE("/:id", h.User.DeleteUser)
				users.POST("/import", h.User.ImportUsers)
				users.GET("/export", h.User.ExportUsers)
			}

			// 访问日志模块
			logs := authorized.Group("/logs")
			{
				logs.POST("", h.Log.AppendLog)
				logs.GET("", adminOnly, h.Log.ListLogs)
				logs.DELETE("", adminOnly, h.Log.ClearLogs)
				logs.GET("/export", adminOnly, h.Log.ExportLogs)
			}

			// PDF 上传
			authorized.POST("/upload", adminOnly, h.Upload.Upload)
		}
	}

	return r
}
