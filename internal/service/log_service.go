package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/config"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/model"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/repository"
	pkgerrors "github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/errors"
)

// ── 访问日志业务错误 ──

var (
	ErrLogActionInvalid  = fmt.Errorf("%w: 未知的日志动作", pkgerrors.ErrValidation)
	ErrLogUserRequired   = fmt.Errorf("%w: userId 为必填项", pkgerrors.ErrValidation)
	ErrExportFormat      = fmt.Errorf("%w: 导出格式仅支持 csv 或 xlsx", pkgerrors.ErrValidation)
	ErrExportGenerateLog = errors.New("生成日志导出文件失败")
)

// 导出格式
const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
)

// utf8BOM 写在 CSV 开头，便于表格软件识别编码
const utf8BOM = "\ufeff"

// LogFilter 日志查询条件，零值字段表示不筛选
type LogFilter struct {
	UserID string
	Action model.LogAction
	Limit  int
}

// LogService 访问日志业务接口
//
//   - Append 同步写入：服务端时间戳、插入表头、裁剪到保留条数
//   - Track 异步写入，失败只记 warn，不影响调用方
//   - 插入与裁剪是两次独立操作，并发时条数可能短暂超出保留上限
type LogService interface {
	Append(ctx context.Context, entry *model.LogEntry) error
	Track(entry model.LogEntry)
	Flush()
	List(ctx context.Context, filter LogFilter) ([]model.LogEntry, error)
	Clear(ctx context.Context) error
	// Export 返回文件内容、建议文件名与 Content-Type
	Export(ctx context.Context, format string) (*bytes.Buffer, string, string, error)
}

type logService struct {
	repo   *repository.Repository
	cfg    config.AuditConfig
	logger *zap.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

// NewLogService 创建 LogService 实例
func NewLogService(cfg config.AuditConfig, repo *repository.Repository, logger *zap.Logger) LogService {
	return &logService{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// ────────────────────── Append ──────────────────────

func (s *logService) Append(ctx context.Context, entry *model.LogEntry) error {
	if entry.UserID == "" {
		return ErrLogUserRequired
	}
	if !entry.Action.Valid() {
		return ErrLogActionInvalid
	}
	// 客户端传入的时间戳一律覆盖
	entry.Timestamp = s.now().UTC().Format(time.RFC3339Nano)

	if err := s.repo.Log.Push(ctx, entry); err != nil {
		return err
	}
	if err := s.repo.Log.Trim(ctx, s.cfg.Retention); err != nil {
		s.logger.Warn("裁剪访问日志失败", zap.Error(err))
	}
	return nil
}

// ────────────────────── Track ──────────────────────

func (s *logService) Track(entry model.LogEntry) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.TrackTimeout)
		defer cancel()
		if err := s.Append(ctx, &entry); err != nil {
			s.logger.Warn("写入访问日志失败",
				zap.String("user_id", entry.UserID),
				zap.String("action", string(entry.Action)),
				zap.Error(err),
			)
		}
	}()
}

// Flush 等待所有 Track 发起的写入完成
func (s *logService) Flush() {
	s.wg.Wait()
}

// ────────────────────── List / Clear ──────────────────────

// List limit 在存储层生效（取表头 N 条），之后再按 userId / action 过滤
func (s *logService) List(ctx context.Context, filter LogFilter) ([]model.LogEntry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.Retention {
		limit = s.cfg.Retention
	}

	entries, err := s.repo.Log.Head(ctx, limit)
	if err != nil {
		s.logger.Error("读取访问日志失败", zap.Error(err))
		return nil, err
	}
	if filter.UserID == "" && filter.Action == "" {
		return entries, nil
	}

	result := make([]model.LogEntry, 0, len(entries))
	for _, e := range entries {
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

func (s *logService) Clear(ctx context.Context) error {
	if err := s.repo.Log.Clear(ctx); err != nil {
		s.logger.Error("清空访问日志失败", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Export ──────────────────────

var logExportHeader = []string{"timestamp", "userId", "action", "details"}

func (s *logService) Export(ctx context.Context, format string) (*bytes.Buffer, string, string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatXLSX {
		return nil, "", "", ErrExportFormat
	}

	entries, err := s.repo.Log.Head(ctx, s.cfg.Retention)
	if err != nil {
		s.logger.Error("读取访问日志失败", zap.Error(err))
		return nil, "", "", err
	}

	stamp := s.now().Format("20060102_150405")
	if format == ExportFormatXLSX {
		buf, err := writeLogWorkbook(entries)
		if err != nil {
			s.logger.Error("写入 Excel 失败", zap.Error(err))
			return nil, "", "", ErrExportGenerateLog
		}
		return buf, fmt.Sprintf("access_logs_%s.xlsx", stamp),
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	}

	buf := bytes.NewBufferString(utf8BOM)
	w := csv.NewWriter(buf)
	_ = w.Write(logExportHeader)
	for _, e := range entries {
		_ = w.Write([]string{e.Timestamp, e.UserID, string(e.Action), e.Details})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		s.logger.Error("写入 CSV 失败", zap.Error(err))
		return nil, "", "", ErrExportGenerateLog
	}
	return buf, fmt.Sprintf("access_logs_%s.csv", stamp), "text/csv; charset=utf-8", nil
}

func writeLogWorkbook(entries []model.LogEntry) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "アクセスログ"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 28)
	f.SetColWidth(sheetName, "B", "C", 14)
	f.SetColWidth(sheetName, "D", "D", 40)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	for i, h := range logExportHeader {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(logExportHeader)-1), 1), headerStyle)

	for i, e := range entries {
		row := i + 2
		f.SetCellValue(sheetName, cell("A", row), e.Timestamp)
		f.SetCellValue(sheetName, cell("B", row), e.UserID)
		f.SetCellValue(sheetName, cell("C", row), string(e.Action))
		f.SetCellValue(sheetName, cell("D", row), e.Details)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
