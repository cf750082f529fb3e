package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/config"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/dto"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/model"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/repository"
	pkgerrors "github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/errors"
)

// ── 用户模块业务错误 ──

var (
	ErrUserRequired    = fmt.Errorf("%w: ID、密码、姓名为必填项", pkgerrors.ErrValidation)
	ErrUserDuplicateID = fmt.Errorf("%w: 该用户 ID 已存在", pkgerrors.ErrDuplicateID)
	ErrUserProtected   = fmt.Errorf("%w: 管理员账号不可删除", pkgerrors.ErrProtectedAccount)
)

// ── 导入模块业务错误 ──

const maxImportRows = 1000

var (
	ErrImportNoData      = fmt.Errorf("%w: 导入文件无数据行（第一行为表头）", pkgerrors.ErrValidation)
	ErrImportTooManyRows = fmt.Errorf("%w: 数据行数超过上限 %d 行", pkgerrors.ErrValidation, maxImportRows)
	ErrImportBadHeader   = fmt.Errorf("%w: 表头缺少必要列（id/password/name）", pkgerrors.ErrValidation)
	ErrImportBadFile     = fmt.Errorf("%w: 无法解析导入文件", pkgerrors.ErrValidation)
)

// userCSVHeader 导入导出共用的列
var userCSVHeader = []string{"id", "password", "name", "isTeacher", "schools"}

// demoUsers Bootstrap 时可选写入的示例账号
var demoUsers = []model.User{
	{ID: "user001", Password: "pass001", Name: "田中 花子"},
	{ID: "user002", Password: "pass002", Name: "鈴木 太郎"},
}

// UserService 用户管理业务接口
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]dto.UserResponse, error)

	// ParseImportCSV / ParseImportXLSX 解析导入文件
	ParseImportCSV(r io.Reader) ([]dto.ImportUserRow, error)
	ParseImportXLSX(r io.Reader) ([]dto.ImportUserRow, error)
	// Import 逐行导入，单行失败不影响其余行
	Import(ctx context.Context, rows []dto.ImportUserRow) *dto.ImportUserResponse
	ExportCSV(ctx context.Context) (*bytes.Buffer, error)

	// Bootstrap 确保 admin 账号存在，withDemo 时补充示例账号
	Bootstrap(ctx context.Context, withDemo bool) error
}

type userService struct {
	repo      *repository.Repository
	cfg       *config.Config
	passwords passwordHasher
	logger    *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{
		repo:      repo,
		cfg:       cfg,
		passwords: newPasswordHasher(cfg.Auth.PasswordScheme),
		logger:    logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		return nil, ErrUserRequired
	}

	if _, err := s.repo.User.GetByID(ctx, id); err == nil {
		return nil, ErrUserDuplicateID
	} else if !errors.Is(err, repository.ErrRecordNotFound) {
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		ID:        id,
		Password:  hash,
		Name:      strings.TrimSpace(req.Name),
		IsAdmin:   req.IsAdmin,
		IsTeacher: req.IsTeacher,
		Schools:   model.NewSchoolSet(req.Schools...),
	}
	if err := s.repo.User.Save(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 密码、姓名为空串时保持原值
	if req.Password != nil && *req.Password != "" {
		hash, err := s.passwords.Hash(*req.Password)
		if err != nil {
			s.logger.Error("密码哈希失败", zap.Error(err))
			return nil, err
		}
		user.Password = hash
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}
	if req.IsTeacher != nil {
		user.IsTeacher = *req.IsTeacher
	}
	if req.Schools != nil {
		user.Schools = model.NewSchoolSet(req.Schools...)
	}

	if err := s.repo.User.Save(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, id string) error {
	if id == model.AdminUserID {
		return ErrUserProtected
	}
	if _, err := s.repo.User.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if err := s.repo.User.Delete(ctx, id); err != nil {
		s.logger.Error("删除用户失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.User.List(ctx)
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, err
	}
	list := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		list = append(list, toUserResponse(&users[i]))
	}
	return list, nil
}

// ────────────────────── ParseImport ──────────────────────

func (s *userService) ParseImportCSV(r io.Reader) ([]dto.ImportUserRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], utf8BOM)
	}
	return parseImportRecords(records)
}

func (s *userService) ParseImportXLSX(r io.Reader) ([]dto.ImportUserRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	defer f.Close()

	records, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: 读取工作表失败: %v", ErrImportBadFile, err)
	}
	return parseImportRecords(records)
}

// parseImportRecords 第一行为表头，列序可调整
func parseImportRecords(records [][]string) ([]dto.ImportUserRow, error) {
	if len(records) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseHeaderIndex(records[0])
	if colIndex["id"] < 0 || colIndex["password"] < 0 || colIndex["name"] < 0 {
		return nil, ErrImportBadHeader
	}

	get := func(row []string, key string) string {
		if idx := colIndex[key]; idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var rows []dto.ImportUserRow
	for i := 1; i < len(records); i++ {
		row := records[i]
		item := dto.ImportUserRow{
			Row:       i + 1,
			ID:        get(row, "id"),
			Password:  get(row, "password"),
			Name:      get(row, "name"),
			IsTeacher: parseFlag(get(row, "isteacher")),
			Schools:   model.ParseSchoolList(get(row, "schools")),
		}

		// 跳过全空行
		if item.ID == "" && item.Password == "" && item.Name == "" && len(item.Schools) == 0 {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// parseHeaderIndex 解析表头，返回列名 -> 列索引映射
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"id":        -1,
		"password":  -1,
		"name":      -1,
		"isteacher": -1,
		"schools":   -1,
	}
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		switch lower {
		case "id", "userid":
			idx["id"] = i
		case "password", "パスワード":
			idx["password"] = i
		case "name", "名前", "氏名":
			idx["name"] = i
		case "isteacher", "teacher", "講師":
			idx["isteacher"] = i
		case "schools", "school", "教室":
			idx["schools"] = i
		}
	}
	return idx
}

func parseFlag(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "○":
		return true
	}
	return false
}

// ────────────────────── Import ──────────────────────

// Import 逐行调用 Create，同批次内的重复 ID 也能被识别
func (s *userService) Import(ctx context.Context, rows []dto.ImportUserRow) *dto.ImportUserResponse {
	resp := &dto.ImportUserResponse{ErrorDetails: []string{}}

	for _, row := range rows {
		_, err := s.Create(ctx, &dto.CreateUserRequest{
			ID:        row.ID,
			Password:  row.Password,
			Name:      row.Name,
			IsTeacher: row.IsTeacher,
			Schools:   row.Schools,
		})
		if err != nil {
			resp.ErrorDetails = append(resp.ErrorDetails, importErrorDetail(row, err))
			continue
		}
		resp.SuccessCount++
	}

	s.logger.Info("批量导入用户完成",
		zap.Int("success", resp.SuccessCount),
		zap.Int("failed", len(resp.ErrorDetails)),
	)
	return resp
}

func importErrorDetail(row dto.ImportUserRow, err error) string {
	var reason string
	switch {
	case errors.Is(err, pkgerrors.ErrDuplicateID):
		reason = "duplicate id"
	case errors.Is(err, pkgerrors.ErrValidation):
		reason = "missing required field (id, password, name)"
	default:
		reason = err.Error()
	}
	if row.ID == "" {
		return fmt.Sprintf("row %d: %s", row.Row, reason)
	}
	return fmt.Sprintf("row %d (%s): %s", row.Row, row.ID, reason)
}

// ────────────────────── ExportCSV ──────────────────────

// ExportCSV 与导入格式相同，password 列留空，开头写入 BOM
func (s *userService) ExportCSV(ctx context.Context) (*bytes.Buffer, error) {
	users, err := s.repo.User.List(ctx)
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, err
	}

	buf := bytes.NewBufferString(utf8BOM)
	w := csv.NewWriter(buf)
	_ = w.Write(userCSVHeader)
	for _, u := range users {
		teacher := "0"
		if u.IsTeacher {
			teacher = "1"
		}
		_ = w.Write([]string{u.ID, "", u.Name, teacher, u.Schools.String()})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf, nil
}

// ────────────────────── Bootstrap ──────────────────────

func (s *userService) Bootstrap(ctx context.Context, withDemo bool) error {
	seeds := []model.User{{
		ID:       model.AdminUserID,
		Password: s.cfg.Auth.AdminPassword,
		Name:     "管理者",
		IsAdmin:  true,
	}}
	if withDemo {
		seeds = append(seeds, demoUsers...)
	}

	for _, seed := range seeds {
		existing, err := s.repo.User.GetByID(ctx, seed.ID)
		if err == nil {
			// admin 账号必须保持管理员身份
			if seed.IsAdmin && !existing.IsAdmin {
				existing.IsAdmin = true
				if err := s.repo.User.Save(ctx, existing); err != nil {
					return err
				}
			}
			continue
		}
		if !errors.Is(err, repository.ErrRecordNotFound) {
			return err
		}

		u := seed
		hash, err := s.passwords.Hash(u.Password)
		if err != nil {
			return err
		}
		u.Password = hash
		u.Schools = model.SchoolSet{}
		if err := s.repo.User.Save(ctx, &u); err != nil {
			return err
		}
		s.logger.Info("已创建初始账号", zap.String("id", u.ID))
	}

	total, err := s.repo.User.Count(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("账号初始化完成", zap.Int("users", total), zap.Bool("demo", withDemo))
	return nil
}

func toUserResponse(u *model.User) dto.UserResponse {
	schools := []string(u.Schools)
	if schools == nil {
		schools = []string{}
	}
	return dto.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		IsAdmin:   u.IsAdmin,
		IsTeacher: u.IsTeacher,
		Schools:   schools,
	}
}
