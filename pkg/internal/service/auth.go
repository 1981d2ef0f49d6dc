package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm/clause"

	"github.com/feyabloom/studio/pkg/cache"
	"github.com/feyabloom/studio/pkg/configs"
	"github.com/feyabloom/studio/pkg/internal/model"
	"github.com/feyabloom/studio/pkg/internal/storage/db"
	nlog "github.com/feyabloom/studio/pkg/log"
)

// RoleNamespace 角色查询缓存的命名空间.
const RoleNamespace = "roles"

// ErrInvalidToken 令牌无法解析或已过期.
var ErrInvalidToken = errors.New("invalid token")

// AuthService 查询与授予用户角色.
type AuthService struct {
	db    *db.Client
	cache *cache.Cache
	cfg   configs.AuthConfig
}

// NewAuthService 从 context 获取依赖实例.
func NewAuthService(c context.Context) *AuthService {
	mgr := managerFrom(c)
	if mgr.DB == nil {
		nlog.Logger().Fatal().Msg("db client not initialized")
	}

	return &AuthService{
		db:    mgr.DB,
		cache: sharedCache(mgr.KV, RoleNamespace),
		cfg:   configs.GetConfig().Auth,
	}
}

// HasRole 查询 (user_id, role) 角色行是否存在，结果按 RoleCacheTTL 缓存.
func (s *AuthService) HasRole(ctx context.Context, userID, role string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	lookup := func() (bool, error) {
		var n int64

		err := s.db.WithContext(ctx).Model(&model.UserRole{}).
			Where("user_id = ? AND role = ?", userID, role).
			Count(&n).Error
		if err != nil {
			return false, fmt.Errorf("look up role: %w", err)
		}

		return n > 0, nil
	}

	if s.cache == nil || s.cfg.RoleCacheTTL <= 0 {
		return lookup()
	}

	return cache.GetOrSet(ctx, s.cache, cache.Key(userID, role), lookup, s.cfg.RoleCacheTTL)
}

// IsAdmin 当前用户是否拥有管理员角色.
func (s *AuthService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return s.HasRole(ctx, userID, s.adminRole())
}

// Grant 授予角色，已存在时不报错.
func (s *AuthService) Grant(ctx context.Context, userID, role string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return invalid("user id is required")
	}

	if role == "" {
		role = s.adminRole()
	}

	row := &model.UserRole{UserID: userID, Role: role}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
		return fmt.Errorf("grant role: %w", err)
	}

	s.forget(ctx, userID, role)

	return nil
}

// Revoke 撤销角色.
func (s *AuthService) Revoke(ctx context.Context, userID, role string) error {
	if role == "" {
		role = s.adminRole()
	}

	if err := s.db.WithContext(ctx).Where("user_id = ? AND role = ?", userID, role).Delete(&model.UserRole{}).Error; err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}

	s.forget(ctx, userID, role)

	return nil
}

// Roles 返回全部角色行.
func (s *AuthService) Roles(ctx context.Context) ([]model.UserRole, error) {
	roles := make([]model.UserRole, 0, DefaultSliceCapacity)
	if err := s.db.WithContext(ctx).Order("user_id asc, role asc").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}

	return roles, nil
}

func (s *AuthService) forget(ctx context.Context, userID, role string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, cache.Key(userID, role))
	}
}

func (s *AuthService) adminRole() string {
	if s.cfg.AdminRole != "" {
		return s.cfg.AdminRole
	}

	return model.RoleAdmin
}

// IssueToken 为用户签发 HS256 令牌.
func IssueToken(cfg configs.AuthConfig, userID string, ttl time.Duration, now time.Time) (string, error) {
	if cfg.JWTSecret == "" {
		return "", errors.New("auth.jwt_secret is empty")
	}

	if ttl <= 0 {
		ttl = cfg.TokenTTL
	}

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}

// ParseToken 校验令牌并返回用户 ID.
func ParseToken(cfg configs.AuthConfig, token string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.JWTSecret), nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims.Subject, nil
}
