package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/dto"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/model"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/repository"
	pkgerrors "github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/errors"
)

// ── 公告模块业务错误 ──

var (
	ErrAnnouncementNotFound = fmt.Errorf("%w: 公告不存在", pkgerrors.ErrNotFound)
	ErrAnnouncementRequired = fmt.Errorf("%w: 年、月、日、标题为必填项", pkgerrors.ErrValidation)
	ErrAnnouncementDate     = fmt.Errorf("%w: 日期不合法", pkgerrors.ErrValidation)
	// ErrPDFNotUploaded 提示性错误，不属于任何失败分类
	ErrPDFNotUploaded = errors.New("PDF 尚未上传")
)

// demoAnnouncements 空库时写入的示例公告
var demoAnnouncements = []model.Announcement{
	{Year: 2026, Month: 1, Day: 10, Title: "年始のご挨拶"},
	{Year: 2026, Month: 1, Day: 12, Title: "レッスンの変更のお知らせ"},
	{Year: 2026, Month: 2, Day: 1, Title: "講師の変更のご案内"},
}

// AnnouncementService 公告业务接口
type AnnouncementService interface {
	Create(ctx context.Context, req *dto.CreateAnnouncementRequest) (*model.Announcement, error)
	Update(ctx context.Context, id int64, req *dto.UpdateAnnouncementRequest) (*model.Announcement, error)
	Delete(ctx context.Context, id int64) error
	// ListAll 存储顺序
	ListAll(ctx context.Context) ([]model.Announcement, error)
	// List 按日期降序
	List(ctx context.Context) ([]model.Announcement, error)
	View(ctx context.Context, filter model.SchoolSet) ([]MonthGroup, error)
	// OpenPDF 返回 PDF 地址并异步记录 view_pdf
	OpenPDF(ctx context.Context, session *model.Session, id int64) (string, error)
	SeedDemo(ctx context.Context) error
}

type announcementService struct {
	repo   *repository.Repository
	logs   LogService
	logger *zap.Logger
}

// NewAnnouncementService 创建 AnnouncementService 实例
func NewAnnouncementService(repo *repository.Repository, logs LogService, logger *zap.Logger) AnnouncementService {
	return &announcementService{repo: repo, logs: logs, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *announcementService) Create(ctx context.Context, req *dto.CreateAnnouncementRequest) (*model.Announcement, error) {
	if req.Year == 0 || req.Month == 0 || req.Day == 0 || req.Title == "" {
		return nil, ErrAnnouncementRequired
	}
	if err := validateDate(req.Month, req.Day); err != nil {
		return nil, err
	}

	a := &model.Announcement{
		Year:    req.Year,
		Month:   req.Month,
		Day:     req.Day,
		Title:   req.Title,
		PDFURL:  req.PDFURL,
		Schools: model.NewSchoolSet(req.Schools...),
	}
	if err := s.repo.Announcement.Create(ctx, a); err != nil {
		s.logger.Error("创建公告失败", zap.Error(err))
		return nil, err
	}
	if unknown := model.UnknownSchools(a.Schools); len(unknown) > 0 {
		s.logger.Warn("公告包含未登记的教室", zap.Int64("id", a.ID), zap.Strings("schools", unknown))
	}
	s.logger.Info("公告已创建", zap.Int64("id", a.ID), zap.String("title", a.Title))
	return a, nil
}

// ────────────────────── Update ──────────────────────

func (s *announcementService) Update(ctx context.Context, id int64, req *dto.UpdateAnnouncementRequest) (*model.Announcement, error) {
	a, err := s.repo.Announcement.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		s.logger.Error("查询公告失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	if req.Year != nil {
		a.Year = *req.Year
	}
	if req.Month != nil {
		a.Month = *req.Month
	}
	if req.Day != nil {
		a.Day = *req.Day
	}
	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.PDFURL != nil {
		a.PDFURL = *req.PDFURL
	}
	if req.Schools != nil {
		a.Schools = model.NewSchoolSet(*req.Schools...)
	}
	if a.Year == 0 || a.Month == 0 || a.Day == 0 || a.Title == "" {
		return nil, ErrAnnouncementRequired
	}
	if err := validateDate(a.Month, a.Day); err != nil {
		return nil, err
	}

	if err := s.repo.Announcement.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		s.logger.Error("更新公告失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return a, nil
}

// ────────────────────── Delete ──────────────────────

// Delete 幂等：目标不存在同样视为成功
func (s *announcementService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Announcement.Delete(ctx, id); err != nil {
		s.logger.Error("删除公告失败", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── List / View ──────────────────────

func (s *announcementService) ListAll(ctx context.Context) ([]model.Announcement, error) {
	return s.repo.Announcement.List(ctx)
}

func (s *announcementService) List(ctx context.Context) ([]model.Announcement, error) {
	list, err := s.repo.Announcement.List(ctx)
	if err != nil {
		s.logger.Error("查询公告列表失败", zap.Error(err))
		return nil, err
	}
	SortNewestFirst(list)
	return list, nil
}

func (s *announcementService) View(ctx context.Context, filter model.SchoolSet) ([]MonthGroup, error) {
	list, err := s.repo.Announcement.List(ctx)
	if err != nil {
		s.logger.Error("查询公告列表失败", zap.Error(err))
		return nil, err
	}
	return BuildView(list, filter), nil
}

// ────────────────────── OpenPDF ──────────────────────

func (s *announcementService) OpenPDF(ctx context.Context, session *model.Session, id int64) (string, error) {
	a, err := s.repo.Announcement.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return "", ErrAnnouncementNotFound
		}
		return "", err
	}
	if !a.HasPDF() {
		return "", ErrPDFNotUploaded
	}

	s.logs.Track(model.LogEntry{
		UserID:  session.UserID,
		Action:  model.ActionViewPDF,
		Details: "PDF viewed: " + a.Title,
	})
	return a.PDFURL, nil
}

// ────────────────────── SeedDemo ──────────────────────

// SeedDemo 公告为空时写入示例数据，已有数据则不做任何事
func (s *announcementService) SeedDemo(ctx context.Context) error {
	list, err := s.repo.Announcement.List(ctx)
	if err != nil {
		return err
	}
	if len(list) > 0 {
		return nil
	}
	for _, demo := range demoAnnouncements {
		a := demo
		if err := s.repo.Announcement.Create(ctx, &a); err != nil {
			return err
		}
	}
	s.logger.Info("已写入示例公告", zap.Int("count", len(demoAnnouncements)))
	return nil
}

func validateDate(month, day int) error {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ErrAnnouncementDate
	}
	return nil
}
