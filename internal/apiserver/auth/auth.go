// Package auth 成员认证：密码哈希、JWT 令牌签发与校验、HTTP 中间件
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"afro-class/internal/config"
	"afro-class/internal/shared/model"
)

// contextKey context 键类型
type contextKey string

const ctxKeyPerson contextKey = "auth_person"

// CookieName 令牌 Cookie 名称
const CookieName = "jwt"

// Config 认证配置
type Config struct {
	JWTSecret            string
	TokenTTL             time.Duration
	BcryptCost           int
	LegacyCookieFallback bool // 是否兼容原始 Cookie 头解析
	CookieSecure         bool
}

// DefaultConfig 返回默认认证配置（不含密钥）
func DefaultConfig() Config {
	return Config{
		TokenTTL:   config.DefaultTokenTTL,
		BcryptCost: config.DefaultBcryptCost,
	}
}

// NewConfig 从应用配置构建认证配置
//
// 生产环境必须提供 JWT_SECRET；开发/测试环境缺失时生成进程内随机密钥，
// 重启后之前签发的令牌全部失效。
func NewConfig(ac config.AuthConfig, production bool) (Config, error) {
	cfg := Config{
		JWTSecret:            ac.JWTSecret,
		TokenTTL:             ac.TTL(),
		BcryptCost:           ac.BcryptCost,
		LegacyCookieFallback: ac.LegacyCookieFallback,
		CookieSecure:         ac.CookieSecure,
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = config.DefaultBcryptCost
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return Config{}, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cfg.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	if cfg.JWTSecret == "" {
		if production {
			return Config{}, errors.New("JWT_SECRET is required in production")
		}
		secret, err := randomSecret()
		if err != nil {
			return Config{}, err
		}
		cfg.JWTSecret = secret
		log.Printf("[auth] WARNING: JWT_SECRET not set, using an ephemeral secret")
	}
	return cfg, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ============================================================================
// 密码哈希
// ============================================================================

// HashPassword 使用配置的 bcrypt 代价哈希密码
func (c Config) HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, c.BcryptCost)
}

// HashPassword 使用默认代价哈希密码
func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, config.DefaultBcryptCost)
}

// HashPasswordWithCost 使用指定代价哈希密码，每次调用生成新的盐
func HashPasswordWithCost(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword 验证密码，任何失败都返回 false
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// VerifyPassword 验证密码，仅在哈希格式非法时返回错误
func VerifyPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("verify password: %w", err)
	}
}

// ============================================================================
// JWT Token
// ============================================================================

var (
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenInvalid          = errors.New("token invalid")
)

// Claims JWT 声明，Subject 为成员 ID
type Claims struct {
	jwt.RegisteredClaims
	Role model.Role `json:"role,omitempty"`
}

// IssueToken 签发 HS256 令牌
func IssueToken(cfg Config, personID string, role model.Role) (string, error) {
	now := time.Now()
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = config.DefaultTokenTTL
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   personID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken 解析并验证 JWT
func ParseToken(cfg Config, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ============================================================================
// Context 辅助函数
// ============================================================================

// WithPerson 将已认证成员注入 context
func WithPerson(ctx context.Context, p *model.Person) context.Context {
	return context.WithValue(ctx, ctxKeyPerson, p)
}

// PersonFrom 从 context 获取已认证成员
func PersonFrom(ctx context.Context) *model.Person {
	p, _ := ctx.Value(ctxKeyPerson).(*model.Person)
	return p
}
