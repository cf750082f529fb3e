package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/config"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/api/handler"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/api/router"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/repository"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/service"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/store"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/blob"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/database"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/jwt"
	applogger "github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/logger"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/redis"
)

func main() {
	// 0. 读取 .env（不存在时忽略）
	_ = godotenv.Load()

	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("ECC_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Driver),
		zap.String("blob", cfg.Blob.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	ctx := context.Background()

	// 3. 打开键值存储
	kv, blacklist, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("存储初始化失败", zap.Error(err))
	}

	// 4. 文件存储（可选）
	blobStore, filesDir, err := openBlob(ctx, cfg)
	if err != nil {
		logger.Fatal("文件存储初始化失败", zap.Error(err))
	}

	// 5. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. 依赖注入: Store → Repository → Service → Handler
	repo := repository.NewRepository(kv)
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, blobStore, logger)
	h := handler.NewHandler(svc)

	// 6.1 确保管理员账号存在，按需写入示例数据
	if err := svc.User.Bootstrap(ctx, cfg.Feature.SeedDemoData); err != nil {
		logger.Fatal("初始化账号失败", zap.Error(err))
	}
	if cfg.Feature.SeedDemoData {
		if err := svc.Announcement.SeedDemo(ctx); err != nil {
			logger.Warn("写入示例公告失败", zap.Error(err))
		}
	}

	// 7. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, router.Options{
		Blacklist: blacklist,
		FilesDir:  filesDir,
	}, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 等待异步访问日志写完再关闭存储
	svc.Log.Flush()

	if err := kv.Close(); err != nil {
		logger.Error("关闭存储失败", zap.Error(err))
	}

	logger.Info("服务器已关闭")
}

// openStore 按 store.driver 打开键值存储
// 仅 Redis 驱动同时提供令牌黑名单，其余驱动返回 nil
func openStore(cfg *config.Config, logger *zap.Logger) (store.Store, service.TokenBlacklist, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverRedis:
		rdb, err := redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		return rdb, rdb, nil

	case config.StoreDriverBolt:
		s, err := store.OpenBoltStore(cfg.Bolt.Path, cfg.Bolt.Timeout, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil

	case config.StoreDriverPostgres:
		db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		return store.NewSQLStore(db), nil, nil

	default:
		logger.Warn("使用内存存储，重启后数据将丢失")
		return store.NewMemoryStore(), nil, nil
	}
}

// openBlob 按 blob.driver 创建文件存储
// 未配置时返回 nil 接口，上传接口将返回 503
func openBlob(ctx context.Context, cfg *config.Config) (service.BlobStorage, string, error) {
	switch cfg.Blob.Driver {
	case config.BlobDriverB2:
		s, err := blob.NewB2Storage(ctx, cfg.Blob.B2KeyID, cfg.Blob.B2AppKey, cfg.Blob.B2Bucket, cfg.Blob.B2BaseURL)
		if err != nil {
			return nil, "", err
		}
		return s, "", nil

	case config.BlobDriverLocal:
		s, err := blob.NewLocalStorage(cfg.Blob.LocalDir, cfg.Blob.PublicURL)
		if err != nil {
			return nil, "", err
		}
		return s, s.Dir(), nil

	default:
		return nil, "", nil
	}
}
