package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/dto"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/model"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/service"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.LoginResponse
	loginErr      error
	loggedOut     *model.Session
	authenticated *model.Session
}

func (m *mockAuthService) Authenticate(_ context.Context, _, _ string) (*model.Session, error) {
	return m.authenticated, m.loginErr
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.LoginResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, s *model.Session) {
	m.loggedOut = s
}

// ── Mock AnnouncementService ──

type mockAnnouncementService struct {
	list       []model.Announcement
	groups     []service.MonthGroup
	viewFilter model.SchoolSet
	viewCalled bool
	created    *model.Announcement
	err        error
	pdfURL     string
	pdfErr     error
}

func (m *mockAnnouncementService) Create(_ context.Context, req *dto.CreateAnnouncementRequest) (*model.Announcement, error) {
	return m.created, m.err
}
func (m *mockAnnouncementService) Update(_ context.Context, _ int64, _ *dto.UpdateAnnouncementRequest) (*model.Announcement, error) {
	return m.created, m.err
}
func (m *mockAnnouncementService) Delete(_ context.Context, _ int64) error { return m.err }
func (m *mockAnnouncementService) ListAll(_ context.Context) ([]model.Announcement, error) {
	return m.list, m.err
}
func (m *mockAnnouncementService) List(_ context.Context) ([]model.Announcement, error) {
	return m.list, m.err
}
func (m *mockAnnouncementService) View(_ context.Context, filter model.SchoolSet) ([]service.MonthGroup, error) {
	m.viewCalled = true
	m.viewFilter = filter
	return m.groups, m.err
}
func (m *mockAnnouncementService) OpenPDF(_ context.Context, _ *model.Session, _ int64) (string, error) {
	return m.pdfURL, m.pdfErr
}
func (m *mockAnnouncementService) SeedDemo(_ context.Context) error { return nil }

// ── Mock UserService ──

type mockUserService struct {
	users      []dto.UserResponse
	user       *dto.UserResponse
	err        error
	parsedRows []dto.ImportUserRow
	parsedXLSX bool
	importResp *dto.ImportUserResponse
	exportBuf  *bytes.Buffer
}

func (m *mockUserService) Create(_ context.Context, _ *dto.CreateUserRequest) (*dto.UserResponse, error) {
	return m.user, m.err
}
func (m *mockUserService) Update(_ context.Context, _ string, _ *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	return m.user, m.err
}
func (m *mockUserService) Delete(_ context.Context, _ string) error { return m.err }
func (m *mockUserService) List(_ context.Context) ([]dto.UserResponse, error) {
	return m.users, m.err
}
func (m *mockUserService) ParseImportCSV(_ io.Reader) ([]dto.ImportUserRow, error) {
	return m.parsedRows, m.err
}
func (m *mockUserService) ParseImportXLSX(_ io.Reader) ([]dto.ImportUserRow, error) {
	m.parsedXLSX = true
	return m.parsedRows, m.err
}
func (m *mockUserService) Import(_ context.Context, _ []dto.ImportUserRow) *dto.ImportUserResponse {
	return m.importResp
}
func (m *mockUserService) ExportCSV(_ context.Context) (*bytes.Buffer, error) {
	return m.exportBuf, m.err
}
func (m *mockUserService) Bootstrap(_ context.Context, _ bool) error { return nil }

// ── Mock LogService ──

type mockLogService struct {
	entries  []model.LogEntry
	appended *model.LogEntry
	filter   service.LogFilter
	err      error
}

func (m *mockLogService) Append(_ context.Context, e *model.LogEntry) error {
	if m.err != nil {
		return m.err
	}
	e.Timestamp = "2026-01-10T09:00:00Z"
	m.appended = e
	return nil
}
func (m *mockLogService) Track(_ model.LogEntry) {}
func (m *mockLogService) Flush()                 {}
func (m *mockLogService) List(_ context.Context, f service.LogFilter) ([]model.LogEntry, error) {
	m.filter = f
	return m.entries, m.err
}
func (m *mockLogService) Clear(_ context.Context) error { return m.err }
func (m *mockLogService) Export(_ context.Context, _ string) (*bytes.Buffer, string, string, error) {
	if m.err != nil {
		return nil, "", "", m.err
	}
	return bytes.NewBufferString("\ufefftimestamp,userId,action,details\n"), "access_logs.csv", "text/csv; charset=utf-8", nil
}

// ── Mock UploadService ──

type mockUploadService struct {
	result   *dto.UploadResponse
	err      error
	filename string
}

func (m *mockUploadService) Upload(_ context.Context, filename string, _ io.Reader, _ int64) (*dto.UploadResponse, error) {
	m.filename = filename
	return m.result, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setupGin() (*gin.Engine, *gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, r := gin.CreateTestContext(w)
	return r, c, w
}

// withSession 模拟 JWT 中间件注入会话
func withSession(s *model.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s != nil {
			c.Set(sessionKey, s)
		}
		c.Next()
	}
}

func adminSession() *model.Session {
	return &model.Session{UserID: "admin", Name: "管理者", Role: model.AdminRole(), LoginTime: time.Now()}
}

func studentSession(schools ...string) *model.Session {
	return &model.Session{UserID: "user001", Name: "田中 花子", Role: model.StudentRole(model.NewSchoolSet(schools...)), LoginTime: time.Now()}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// decodeData 将 Response.Data 重新解码为具体类型
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var raw struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("响应不是 JSON: %v", err)
	}
	if err := json.Unmarshal(raw.Data, out); err != nil {
		t.Fatalf("解码 data 失败: %v (%s)", err, raw.Data)
	}
}

func multipartFile(t *testing.T, field, filename, content string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(content))
	mw.Close()
	return &buf, mw.FormDataContentType()
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.LoginResponse{
			AccessToken: "test-access-token",
			ExpiresIn:   43200,
			Session:     dto.SessionResponse{UserID: "user001", Role: "student", Schools: []string{"aizumi-jr"}},
		},
	}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{UserID: "user001", Password: "pass001"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var data dto.LoginResponse
	decodeData(t, w, &data)
	if data.AccessToken != "test-access-token" || data.Session.UserID != "user001" {
		t.Errorf("unexpected data: %+v", data)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	// 用户不存在与密码错误对外不可区分
	for _, err := range []error{service.ErrInvalidCredentials, service.ErrUnknownUserID} {
		h := NewAuthHandler(&mockAuthService{loginErr: err})

		_, _, w := setupGin()
		req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{UserID: "x", Password: "y"}))
		req.Header.Set("Content-Type", "application/json")

		r := gin.New()
		r.POST("/auth/login", h.Login)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%v: expected 401, got %d", err, w.Code)
		}
		resp := parseResponse(w)
		if resp.Code != codeAuthFailure || resp.Message != "用户 ID 或密码错误" {
			t.Errorf("%v: unexpected body %+v", err, resp)
		}
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrLoginRequired})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)
	session := studentSession()

	_, _, w := setupGin()
	r := gin.New()
	r.POST("/auth/logout", withSession(session), h.Logout)
	r.ServeHTTP(w, httptest.NewRequest("POST", "/auth/logout", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.loggedOut != session {
		t.Error("Logout 应收到当前会话")
	}
}

func TestAuthHandler_Me_NoSession(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	_, _, w := setupGin()
	r := gin.New()
	r.GET("/auth/me", withSession(nil), h.Me)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/auth/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	_, _, w := setupGin()
	r := gin.New()
	r.GET("/auth/me", withSession(studentSession("aizumi-jr")), h.Me)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/auth/me", nil))

	var data dto.SessionResponse
	decodeData(t, w, &data)
	if data.UserID != "user001" || data.IsAdmin || len(data.Schools) != 1 {
		t.Errorf("unexpected session: %+v", data)
	}
}

// ═══════════════════════════════════════════════════════════
// AnnouncementHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAnnouncementHandler_View_Empty(t *testing.T) {
	mock := &mockAnnouncementService{groups: []service.MonthGroup{}}
	h := NewAnnouncementHandler(mock)

	_, _, w := setupGin()
	r := gin.New()
	r.GET("/announcements/view", withSession(studentSession("aizumi-jr")), h.ViewAnnouncements)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/announcements/view", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"groups":[]`) {
		t.Errorf("空结果应序列化为空数组: %s", w.Body.String())
	}
	var data dto.AnnouncementViewResponse
	decodeData(t, w, &data)
	if !data.Empty {
		t.Error("expected empty=true")
	}
	// 未携带 schools 参数时使用学生自己的教室
	if !mock.viewFilter.Contains("aizumi-jr") || len(mock.viewFilter) != 1 {
		t.Errorf("默认筛选不符: %v", mock.viewFilter)
	}
}

func TestAnnouncementHandler_View_QueryFilter(t *testing.T) {
	mock := &mockAnnouncementService{
		groups: []service.MonthGroup{{
			Year: 2026, Month: 1,
			Items: []model.Announcement{{ID: 1, Year: 2026, Month: 1, Day: 10, Title: "t", Schools: model.SchoolSet{"itano-jr"}}},
		}},
	}
	h := NewAnnouncementHandler(mock)

	_, _, w := setupGin()
	r := gin.New()
	r.GET("/announcements/view", withSession(studentSession("aizumi-jr")), h.ViewAnnouncements)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/announcements/view?schools=itano-jr,kitajima-jr", nil))

	if !mock.viewFilter.Contains("itano-jr") || !mock.viewFilter.Contains("kitajima-jr") || mock.viewFilter.Contains("aizumi-jr") {
		t.Errorf("查询参数应覆盖默认筛选: %v", mock.viewFilter)
	}
	var data dto.AnnouncementViewResponse
	decodeData(t, w, &data)
	if data.Empty || len(data.Groups) != 1 || data.Groups[0].Items[0].SchoolNames[0] == "" {
		t.Errorf("unexpected view: %+v", data)
	}

	// 显式空值表示不筛选
	_, _, w = setupGin()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/announcements/view?schools=", nil))
	if len(mock.viewFilter) != 0 {
		t.Errorf("schools= 应清除筛选: %v", mock.viewFilter)
	}
}

func TestAnnouncementHandler_OpenPDF_NotUploaded(t *testing.T) {
	h := NewAnnouncementHandler(&mockAnnouncementService{pdfErr: service.ErrPDFNotUploaded})

	_, _, w := setupGin()
	r := gin.New()
	r.POST("/announcements/:id/pdf", withSession(studentSession()), h.OpenPDF)
	r.ServeHTTP(w, httptest.NewRequest("POST", "/announcements/1/pdf", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var data dto.OpenPDFResponse
	decodeData(t, w, &data)
	if data.Uploaded || data.Message == "" {
		t.Errorf("unexpected data: %+v", data)
	}
}

func TestAnnouncementHandler_OpenPDF(t *testing.T) {
	h := NewAnnouncementHandler(&mockAnnouncementService{pdfURL: "https://files.example.com/a.pdf"})

	_, _, w := setupGin()
	r := gin.New()
	r.POST("/announcements/:id/pdf", withSession(studentSession()), h.OpenPDF)
	r.ServeHTTP(w, httptest.NewRequest("POST", "/announcements/7/pdf", nil))

	var data dto.OpenPDFResponse
	decodeData(t, w, &data)
	if !data.Uploaded || data.URL != "https://files.example.com/a.pdf" {
		t.Errorf("unexpected data: %+v", data)
	}
}

func TestAnnouncementHandler_OpenPDF_NotFound(t *testing.T) {
	h := NewAnnouncementHandler(&mockAnnouncementService{pdfErr: service.ErrAnnouncementNotFound})

	_, _, w := setupGin()
	r := gin.New()
	r.POST("/announcements/:id/pdf", withSession(studentSession()), h.OpenPDF)
	r.ServeHTTP(w, httptest.NewRequest("POST", "/announcements/99/pdf", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestAnnouncementHandler_InvalidID(t *testing.T) {
	h := NewAnnouncementHandler(&mockAnnouncementService{})

	_, _, w := setupGin()
	r := gin.New()
	r.DELETE("/announcements/:id", h.DeleteAnnouncement)
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/announcements/abc", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAnnouncementHandler_Create(t *testing.T) {
	mock := &mockAnnouncementService{created: &model.Announcement{ID: 4, Year: 2026, Month: 2, Day: 1, Title: "新"}}
	h := NewAnnouncementHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/announcements", jsonBody(dto.CreateAnnouncementRequest{Year: 2026, Month: 2, Day: 1, Title: "新"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/announcements", h.CreateAnnouncement)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var data dto.AnnouncementResponse
	decodeData(t, w, &data)
	if data.ID != 4 || data.HasPDF || data.Schools == nil {
		t.Errorf("unexpected data: %+v", data)
	}
}

// ═══════════════════════════════════════════════════════════
// UserHandler Tests
// ═══════════════════════════════════════════════════════════

func TestUserHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		method string
		status int
		code   int
	}{
		{"重复 ID", service.ErrUserDuplicateID, "POST", http.StatusConflict, codeDuplicateID},
		{"保护账号", service.ErrUserProtected, "DELETE", http.StatusBadRequest, codeProtectedAccount},
		{"不存在", service.ErrUserNotFound, "DELETE", http.StatusNotFound, codeNotFound},
		{"未知错误", errors.New("store down"), "DELETE", http.StatusInternalServerError, 50000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewUserHandler(&mockUserService{err: tc.err})

			r := gin.New()
			r.POST("/users", h.CreateUser)
			r.DELETE("/users/:id", h.DeleteUser)

			_, _, w := setupGin()
			var req *http.Request
			if tc.method == "POST" {
				req = httptest.NewRequest("POST", "/users", jsonBody(dto.CreateUserRequest{ID: "s001", Password: "p", Name: "n"}))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest("DELETE", "/users/admin", nil)
			}
			r.ServeHTTP(w, req)

			if w.Code != tc.status {
				t.Errorf("expected %d, got %d", tc.status, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tc.code {
				t.Errorf("expected code %d, got %d", tc.code, resp.Code)
			}
		})
	}
}

func TestUserHandler_ImportXLSX(t *testing.T) {
	mock := &mockUserService{
		parsedRows: []dto.ImportUserRow{{Row: 2, ID: "s001"}},
		importResp: &dto.ImportUserResponse{SuccessCount: 1, ErrorDetails: []string{}},
	}
	h := NewUserHandler(mock)

	body, contentType := multipartFile(t, "file", "users.xlsx", "PK")
	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/users/import", body)
	req.Header.Set("Content-Type", contentType)

	r := gin.New()
	r.POST("/users/import", h.ImportUsers)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !mock.parsedXLSX {
		t.Error(".xlsx 应走工作簿解析")
	}
	var data dto.ImportUserResponse
	decodeData(t, w, &data)
	if data.SuccessCount != 1 {
		t.Errorf("unexpected data: %+v", data)
	}
}

func TestUserHandler_Import_NoFile(t *testing.T) {
	h := NewUserHandler(&mockUserService{})

	_, _, w := setupGin()
	r := gin.New()
	r.POST("/users/import", h.ImportUsers)
	r.ServeHTTP(w, httptest.NewRequest("POST", "/users/import", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestUserHandler_ExportUsers(t *testing.T) {
	h := NewUserHandler(&mockUserService{exportBuf: bytes.NewBufferString("\ufeffid,password,name,isTeacher,schools\n")})

	_, _, w := setupGin()
	r := gin.New()
	r.GET("/users/export", h.ExportUsers)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/users/export", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "users.csv") {
		t.Errorf("unexpected Content-Disposition: %s", cd)
	}
}

// ═══════════════════════════════════════════════════════════
// LogHandler Tests
// ═══════════════════════════════════════════════════════════

func TestLogHandler_AppendLog_UsesSessionUser(t *testing.T) {
	mock := &mockLogService{}
	h := NewLogHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/logs", jsonBody(map[string]string{
		"action": "view_pdf", "details": "PDF viewed: x", "userId": "someone-else",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/logs", withSession(studentSession()), h.AppendLog)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if mock.appended == nil || mock.appended.UserID != "user001" {
		t.Errorf("userId 应取自会话: %+v", mock.appended)
	}
}

func TestLogHandler_AppendLog_MissingAction(t *testing.T) {
	h := NewLogHandler(&mockLogService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/logs", jsonBody(map[string]string{"details": "x"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/logs", withSession(studentSession()), h.AppendLog)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestLogHandler_AppendLog_RejectsServerOnlyActions(t *testing.T) {
	for _, action := range []string{"login", "login_failed", "unknown"} {
		t.Run(action, func(t *testing.T) {
			mock := &mockLogService{}
			h := NewLogHandler(mock)

			_, _, w := setupGin()
			req := httptest.NewRequest("POST", "/logs", jsonBody(map[string]string{
				"action": action, "details": "Login successful",
			}))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.POST("/logs", withSession(studentSession()), h.AppendLog)
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != codeValidation {
				t.Errorf("expected code %d, got %d", codeValidation, resp.Code)
			}
			if mock.appended != nil {
				t.Errorf("不应写入日志: %+v", mock.appended)
			}
		})
	}
}

func TestLogHandler_AppendLog_AcceptsLogout(t *testing.T) {
	mock := &mockLogService{}
	h := NewLogHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/logs", jsonBody(map[string]string{"action": "logout"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/logs", withSession(studentSession()), h.AppendLog)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if mock.appended == nil || mock.appended.Action != model.ActionLogout {
		t.Errorf("期望写入 logout: %+v", mock.appended)
	}
}

func TestLogHandler_ListLogs(t *testing.T) {
	mock := &mockLogService{entries: []model.LogEntry{
		{UserID: "u1", Action: model.ActionLogin, Details: "login success", Timestamp: "2026-01-10T09:00:00Z"},
	}}
	h := NewLogHandler(mock)

	_, _, w := setupGin()
	r := gin.New()
	r.GET("/logs", h.ListLogs)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/logs?userId=u1&action=login&limit=10", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.filter.UserID != "u1" || mock.filter.Action != model.ActionLogin || mock.filter.Limit != 10 {
		t.Errorf("unexpected filter: %+v", mock.filter)
	}
	var data []dto.LogEntryResponse
	decodeData(t, w, &data)
	if len(data) != 1 || data[0].Action != "login" {
		t.Errorf("unexpected data: %+v", data)
	}
}

func TestLogHandler_ExportLogs(t *testing.T) {
	h := NewLogHandler(&mockLogService{})

	_, _, w := setupGin()
	r := gin.New()
	r.GET("/logs/export", h.ExportLogs)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/logs/export?format=csv", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv") {
		t.Errorf("unexpected Content-Type: %s", w.Header().Get("Content-Type"))
	}
}

// ═══════════════════════════════════════════════════════════
// UploadHandler Tests
// ═══════════════════════════════════════════════════════════

func TestUploadHandler_NotConfigured(t *testing.T) {
	h := NewUploadHandler(&mockUploadService{err: service.ErrUploadNotConfigured})

	body, contentType := multipartFile(t, "file", "a.pdf", "%PDF-1.4")
	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", contentType)

	r := gin.New()
	r.POST("/upload", h.Upload)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != codeUploadDisabled {
		t.Errorf("expected code %d, got %d", codeUploadDisabled, resp.Code)
	}
}

func TestUploadHandler_Success(t *testing.T) {
	mock := &mockUploadService{result: &dto.UploadResponse{URL: "https://files.example.com/pdfs/1_a.pdf", Filename: "a.pdf"}}
	h := NewUploadHandler(mock)

	body, contentType := multipartFile(t, "file", "a.pdf", "%PDF-1.4")
	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", contentType)

	r := gin.New()
	r.POST("/upload", h.Upload)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.filename != "a.pdf" {
		t.Errorf("unexpected filename: %s", mock.filename)
	}
	var data dto.UploadResponse
	decodeData(t, w, &data)
	if data.URL == "" {
		t.Error("expected URL")
	}
}

func TestUploadHandler_BackendFailure(t *testing.T) {
	h := NewUploadHandler(&mockUploadService{err: service.ErrUploadFailed})

	body, contentType := multipartFile(t, "file", "a.pdf", "%PDF-1.4")
	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", contentType)

	r := gin.New()
	r.POST("/upload", h.Upload)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// SchoolHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSchoolHandler_ListSchools(t *testing.T) {
	h := NewSchoolHandler()

	_, _, w := setupGin()
	r := gin.New()
	r.GET("/schools", h.ListSchools)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/schools", nil))

	var data dto.SchoolCatalogResponse
	decodeData(t, w, &data)
	if len(data.Schools) != len(model.Schools()) || len(data.Locations) == 0 {
		t.Errorf("unexpected catalog: %+v", data)
	}
}

func TestAuthHandler_Me_Admin(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	_, _, w := setupGin()
	r := gin.New()
	r.GET("/auth/me", withSession(adminSession()), h.Me)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/auth/me", nil))

	var data dto.SessionResponse
	decodeData(t, w, &data)
	if !data.IsAdmin || data.IsTeacher || data.Role != "admin" {
		t.Errorf("unexpected session: %+v", data)
	}
}
