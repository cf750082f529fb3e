package service

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/config"
)

// passwordHasher 按配置的方式保存与比对密码
// plain 为默认方式，原样保存；bcrypt 需显式开启
type passwordHasher struct {
	scheme string
}

func newPasswordHasher(scheme string) passwordHasher {
	if scheme == "" {
		scheme = config.PasswordSchemePlain
	}
	return passwordHasher{scheme: scheme}
}

// Hash 生成要保存的密码值
func (h passwordHasher) Hash(plain string) (string, error) {
	if h.scheme != config.PasswordSchemeBcrypt {
		return plain, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Match 比对输入密码与保存值
// bcrypt 方式下仍接受切换前保存的明文密码
func (h passwordHasher) Match(stored, given string) bool {
	if h.scheme == config.PasswordSchemeBcrypt && isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
