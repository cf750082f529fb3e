package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/config"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/repository"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/store"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/jwt"
)

// ── 测试环境 ──

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret-key-for-unit-tests",
			AccessTokenTTL: 12 * time.Hour,
			AdminPassword:  "adminpass",
			PasswordScheme: config.PasswordSchemePlain,
		},
		Audit: config.AuditConfig{
			Retention:    1000,
			DefaultLimit: 100,
			TrackTimeout: time.Second,
		},
		Blob: config.BlobConfig{MaxFileBytes: 1 << 20},
	}
}

type testEnv struct {
	cfg       *config.Config
	store     store.Store
	repo      *repository.Repository
	svc       *Service
	blacklist *mockBlacklist
	blob      *mockBlob
}

func newTestEnv() *testEnv {
	return newTestEnvWith(testConfig(), store.NewMemoryStore())
}

func newTestEnvWith(cfg *config.Config, s store.Store) *testEnv {
	repo := repository.NewRepository(s)
	bl := newMockBlacklist()
	blob := &mockBlob{}
	return &testEnv{
		cfg:       cfg,
		store:     s,
		repo:      repo,
		svc:       NewService(cfg, repo, jwt.NewManager(&cfg.Auth), bl, blob, zap.NewNop()),
		blacklist: bl,
		blob:      blob,
	}
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	mu   sync.Mutex
	jtis map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{jtis: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jtis[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jtis[jti]
	return ok, nil
}

// ── Mock BlobStorage ──

type mockBlob struct {
	key         string
	contentType string
	body        []byte
	err         error
}

func (m *mockBlob) Put(_ context.Context, key string, r io.Reader, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	m.key = key
	m.contentType = contentType
	m.body = buf.Bytes()
	return "https://files.example.com/" + key, nil
}

// ── Mock Store（列表写入失败） ──

var errStoreDown = errors.New("store unavailable")

// brokenListStore 文档与哈希正常，列表写入始终失败，用于验证日志写入失败被吞掉
type brokenListStore struct {
	store.Store
}

func (b *brokenListStore) ListPushHead(context.Context, string, string) error {
	return errStoreDown
}
