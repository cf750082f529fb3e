package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/config"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/dto"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/model"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/store"
	pkgerrors "github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/errors"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/jwt"
)

func seedUser(t *testing.T, env *testEnv, u *model.User) {
	t.Helper()
	if err := env.repo.User.Save(context.Background(), u); err != nil {
		t.Fatalf("写入测试用户失败: %v", err)
	}
}

func TestAuthenticate_Success(t *testing.T) {
	env := newTestEnv()
	seedUser(t, env, &model.User{ID: "user001", Password: "pass001", Name: "田中 花子", Schools: model.SchoolSet{"aizumi-jr"}})

	session, err := env.svc.Auth.Authenticate(context.Background(), "user001", "pass001")
	if err != nil {
		t.Fatalf("期望登录成功，实际错误: %v", err)
	}
	if session.UserID != "user001" || session.Name != "田中 花子" {
		t.Errorf("会话信息不符: %+v", session)
	}
	if session.Role.Kind != model.RoleStudent || !session.Role.Schools.Contains("aizumi-jr") {
		t.Errorf("期望学生角色并携带教室，实际=%+v", session.Role)
	}

	logs, _ := env.svc.Log.List(context.Background(), LogFilter{UserID: "user001", Action: model.ActionLogin})
	if len(logs) != 1 || logs[0].Details != "login success" {
		t.Errorf("期望 1 条 login 日志，实际=%+v", logs)
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	env := newTestEnv()
	seedUser(t, env, &model.User{ID: "user001", Password: "pass001", Name: "田中 花子"})

	_, err := env.svc.Auth.Authenticate(context.Background(), "user001", "wrong")
	if !errors.Is(err, pkgerrors.ErrAuthFailure) {
		t.Fatalf("期望 ErrAuthFailure，实际=%v", err)
	}

	logs, _ := env.svc.Log.List(context.Background(), LogFilter{UserID: "user001", Action: model.ActionLoginFailed})
	if len(logs) != 1 {
		t.Fatalf("期望恰好 1 条 login_failed，实际=%d", len(logs))
	}
	if logs[0].Details != "password mismatch" {
		t.Errorf("详情应说明密码不符，实际=%q", logs[0].Details)
	}
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.Auth.Authenticate(context.Background(), "ghost", "x")
	if !errors.Is(err, pkgerrors.ErrAuthFailure) || !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("期望同时属于 AuthFailure 与 NotFound，实际=%v", err)
	}
	logs, _ := env.svc.Log.List(context.Background(), LogFilter{Action: model.ActionLoginFailed})
	if len(logs) != 1 || logs[0].Details != "user id not found" {
		t.Errorf("实际=%+v", logs)
	}
}

func TestAuthenticate_MissingFields(t *testing.T) {
	env := newTestEnv()
	for _, c := range [][2]string{{"", "x"}, {"user001", ""}} {
		_, err := env.svc.Auth.Authenticate(context.Background(), c[0], c[1])
		if !errors.Is(err, pkgerrors.ErrValidation) {
			t.Errorf("期望 ErrValidation，实际=%v", err)
		}
	}
	logs, _ := env.svc.Log.List(context.Background(), LogFilter{})
	if len(logs) != 0 {
		t.Errorf("校验失败不应写日志，实际=%d", len(logs))
	}
}

func TestAuthenticate_RolePrecedence(t *testing.T) {
	env := newTestEnv()
	seedUser(t, env, &model.User{ID: "boss", Password: "p", Name: "B", IsAdmin: true, IsTeacher: true})
	seedUser(t, env, &model.User{ID: "teach", Password: "p", Name: "T", IsTeacher: true, Schools: model.SchoolSet{"aizumi-jr"}})

	s1, _ := env.svc.Auth.Authenticate(context.Background(), "boss", "p")
	if !s1.Role.IsAdmin() {
		t.Error("admin 优先于 teacher")
	}
	s2, _ := env.svc.Auth.Authenticate(context.Background(), "teach", "p")
	if !s2.Role.IsTeacher() || DefaultSchoolFilter(s2) != nil {
		t.Error("讲师默认不筛选教室")
	}
}

func TestAuthenticate_LogWriteFailureSwallowed(t *testing.T) {
	env := newTestEnvWith(testConfig(), &brokenListStore{Store: store.NewMemoryStore()})
	seedUser(t, env, &model.User{ID: "user001", Password: "pass001", Name: "花子"})

	if _, err := env.svc.Auth.Authenticate(context.Background(), "user001", "pass001"); err != nil {
		t.Errorf("日志写入失败不应影响登录: %v", err)
	}
}

func TestAuthenticate_BcryptScheme(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.PasswordScheme = config.PasswordSchemeBcrypt
	env := newTestEnvWith(cfg, store.NewMemoryStore())

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	seedUser(t, env, &model.User{ID: "hashed", Password: string(hash), Name: "H"})
	seedUser(t, env, &model.User{ID: "legacy", Password: "plain", Name: "L"})

	if _, err := env.svc.Auth.Authenticate(context.Background(), "hashed", "secret"); err != nil {
		t.Errorf("bcrypt 密码应通过: %v", err)
	}
	if _, err := env.svc.Auth.Authenticate(context.Background(), "legacy", "plain"); err != nil {
		t.Errorf("切换前的明文密码应通过: %v", err)
	}
	if _, err := env.svc.Auth.Authenticate(context.Background(), "hashed", string(hash)); err == nil {
		t.Error("不应接受哈希值本身作为密码")
	}
}

func TestLogin_IssuesToken(t *testing.T) {
	env := newTestEnv()
	seedUser(t, env, &model.User{ID: "s1", Password: "p", Name: "S", Schools: model.SchoolSet{"kitajima-jr"}})

	resp, err := env.svc.Auth.Login(context.Background(), &dto.LoginRequest{UserID: "s1", Password: "p"})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if resp.AccessToken == "" || resp.ExpiresIn != int((12*time.Hour).Seconds()) {
		t.Errorf("令牌信息不符: %+v", resp)
	}
	if len(resp.DefaultSchools) != 1 || resp.DefaultSchools[0] != "kitajima-jr" {
		t.Errorf("学生默认筛选应为所属教室，实际=%v", resp.DefaultSchools)
	}

	claims, err := jwt.NewManager(&env.cfg.Auth).ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("令牌无法解析: %v", err)
	}
	if claims.UserID != "s1" || claims.Role != "student" || len(claims.Schools) != 1 {
		t.Errorf("令牌声明不符: %+v", claims)
	}
}

func TestLogout_RecordsAndBlacklists(t *testing.T) {
	env := newTestEnv()
	session := &model.Session{
		UserID:    "user001",
		TokenID:   "jti-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	env.svc.Auth.Logout(context.Background(), session)

	logs, _ := env.svc.Log.List(context.Background(), LogFilter{Action: model.ActionLogout})
	if len(logs) != 1 || logs[0].UserID != "user001" {
		t.Errorf("期望 1 条 logout 日志，实际=%+v", logs)
	}
	if ok, _ := env.blacklist.IsBlacklisted(context.Background(), "jti-1"); !ok {
		t.Error("登出后令牌应加入黑名单")
	}
}

func TestLogout_NilSessionNoop(t *testing.T) {
	env := newTestEnv()
	env.svc.Auth.Logout(context.Background(), nil)
	logs, _ := env.svc.Log.List(context.Background(), LogFilter{})
	if len(logs) != 0 {
		t.Errorf("无会话时不应写日志，实际=%d", len(logs))
	}
}
