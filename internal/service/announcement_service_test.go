package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/dto"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/model"
	pkgerrors "github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/errors"
)

func intPtr(i int) *int { return &i }

func createAnn(t *testing.T, env *testEnv, req dto.CreateAnnouncementRequest) *model.Announcement {
	t.Helper()
	a, err := env.svc.Announcement.Create(context.Background(), &req)
	if err != nil {
		t.Fatalf("创建公告失败: %v", err)
	}
	return a
}

func TestAnnouncementService_Create_Validation(t *testing.T) {
	env := newTestEnv()
	cases := []dto.CreateAnnouncementRequest{
		{Month: 1, Day: 1, Title: "无年份"},
		{Year: 2026, Day: 1, Title: "无月份"},
		{Year: 2026, Month: 1, Title: "无日期"},
		{Year: 2026, Month: 1, Day: 1},
		{Year: 2026, Month: 13, Day: 1, Title: "月份越界"},
		{Year: 2026, Month: 1, Day: 32, Title: "日期越界"},
	}
	for _, c := range cases {
		req := c
		if _, err := env.svc.Announcement.Create(context.Background(), &req); !errors.Is(err, pkgerrors.ErrValidation) {
			t.Errorf("%q 期望 ErrValidation，实际=%v", c.Title, err)
		}
	}
}

func TestAnnouncementService_Create_Defaults(t *testing.T) {
	env := newTestEnv()
	a := createAnn(t, env, dto.CreateAnnouncementRequest{Year: 2026, Month: 1, Day: 10, Title: "年始のご挨拶"})
	if a.ID == 0 || a.PDFURL != "" || a.Schools == nil || len(a.Schools) != 0 {
		t.Errorf("默认值不符: %+v", a)
	}
}

func TestAnnouncementService_Update(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := createAnn(t, env, dto.CreateAnnouncementRequest{Year: 2026, Month: 1, Day: 10, Title: "原标题", Schools: []string{"aizumi-jr"}})

	updated, err := env.svc.Announcement.Update(ctx, a.ID, &dto.UpdateAnnouncementRequest{Day: intPtr(15), PDFURL: strPtr("https://x/a.pdf")})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if updated.ID != a.ID || updated.Day != 15 || updated.Title != "原标题" || !updated.Schools.Contains("aizumi-jr") {
		t.Errorf("只应修改提供的字段: %+v", updated)
	}

	empty := []string{}
	updated, _ = env.svc.Announcement.Update(ctx, a.ID, &dto.UpdateAnnouncementRequest{Schools: &empty})
	if len(updated.Schools) != 0 {
		t.Errorf("显式传入空教室应清空标签: %v", updated.Schools)
	}

	if _, err := env.svc.Announcement.Update(ctx, 999, &dto.UpdateAnnouncementRequest{}); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("期望 ErrNotFound，实际=%v", err)
	}
}

func TestAnnouncementService_DeleteIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := createAnn(t, env, dto.CreateAnnouncementRequest{Year: 2026, Month: 1, Day: 10, Title: "一"})

	before, _ := env.svc.Announcement.ListAll(ctx)
	if err := env.svc.Announcement.Delete(ctx, 424242); err != nil {
		t.Errorf("删除不存在的 ID 应成功: %v", err)
	}
	after, _ := env.svc.Announcement.ListAll(ctx)
	if len(before) != len(after) {
		t.Error("删除不存在的 ID 不应改变存储")
	}

	if err := env.svc.Announcement.Delete(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if err := env.svc.Announcement.Delete(ctx, a.ID); err != nil {
		t.Errorf("重复删除应成功: %v", err)
	}
}

func TestAnnouncementService_ListSorted(t *testing.T) {
	env := newTestEnv()
	createAnn(t, env, dto.CreateAnnouncementRequest{Year: 2026, Month: 1, Day: 10, Title: "a"})
	createAnn(t, env, dto.CreateAnnouncementRequest{Year: 2026, Month: 2, Day: 1, Title: "b"})
	createAnn(t, env, dto.CreateAnnouncementRequest{Year: 2025, Month: 12, Day: 31, Title: "c"})

	list, err := env.svc.Announcement.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if list[0].Title != "b" || list[1].Title != "a" || list[2].Title != "c" {
		t.Errorf("应按日期降序，实际=%s,%s,%s", list[0].Title, list[1].Title, list[2].Title)
	}
}

// 学生 A 所属教室与公告标签无交集时看不到该公告
func TestAnnouncementService_View_ExcludesTargeted(t *testing.T) {
	env := newTestEnv()
	createAnn(t, env, dto.CreateAnnouncementRequest{Year: 2026, Month: 1, Day: 10, Title: "全员"})
	createAnn(t, env, dto.CreateAnnouncementRequest{Year: 2026, Month: 1, Day: 11, Title: "北島のみ", Schools: []string{"kitajima-jr"}})

	viewer := &model.Session{Role: model.StudentRole(model.SchoolSet{"aizumi-jr"})}
	groups, err := env.svc.Announcement.View(context.Background(), DefaultSchoolFilter(viewer))
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 || len(groups[0].Items) != 1 || groups[0].Items[0].Title != "全员" {
		t.Errorf("实际=%+v", groups)
	}
}

func TestAnnouncementService_OpenPDF(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	session := &model.Session{UserID: "user001"}

	noPDF := createAnn(t, env, dto.CreateAnnouncementRequest{Year: 2026, Month: 1, Day: 10, Title: "未上传"})
	withPDF := createAnn(t, env, dto.CreateAnnouncementRequest{Year: 2026, Month: 1, Day: 11, Title: "案内", PDFURL: "https://x/a.pdf"})

	if _, err := env.svc.Announcement.OpenPDF(ctx, session, noPDF.ID); !errors.Is(err, ErrPDFNotUploaded) {
		t.Errorf("期望 ErrPDFNotUploaded，实际=%v", err)
	}
	if _, err := env.svc.Announcement.OpenPDF(ctx, session, 999); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("期望 ErrNotFound，实际=%v", err)
	}

	url, err := env.svc.Announcement.OpenPDF(ctx, session, withPDF.ID)
	if err != nil || url != "https://x/a.pdf" {
		t.Fatalf("url=%q err=%v", url, err)
	}

	env.svc.Log.Flush()
	logs, _ := env.svc.Log.List(ctx, LogFilter{Action: model.ActionViewPDF})
	if len(logs) != 1 || logs[0].Details != "PDF viewed: 案内" || logs[0].UserID != "user001" {
		t.Errorf("期望 1 条 view_pdf 日志，实际=%+v", logs)
	}
}

func TestAnnouncementService_SeedDemo(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if err := env.svc.Announcement.SeedDemo(ctx); err != nil {
		t.Fatal(err)
	}
	if err := env.svc.Announcement.SeedDemo(ctx); err != nil {
		t.Fatal(err)
	}
	list, _ := env.svc.Announcement.ListAll(ctx)
	if len(list) != 3 {
		t.Errorf("示例公告只应写入一次，实际=%d", len(list))
	}
}
