package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"
	"time"

	"simplelink/internal/apperrors"
	"simplelink/internal/model"
	"simplelink/internal/repository"
	"simplelink/internal/shortcode"
	auth "simplelink/pkg/jwt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// MinPasswordLength 密码最小长度
const MinPasswordLength = 6

const setupTokenLength = 32

// AuthOptions 认证服务配置
type AuthOptions struct {
	// RequireSetupToken 为 true 时首个用户注册须提供启动时生成的令牌
	RequireSetupToken bool
	SetupTokenFile    string
}

// RegisterInput 注册参数
type RegisterInput struct {
	Email      string
	Password   string
	AdminToken string
}

// AuthResult 登录或注册成功的结果
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// AuthService 用户注册、登录与首个管理员引导
type AuthService struct {
	store    *repository.Store
	tokens   *auth.TokenManager
	validate *validator.Validate
	opts     AuthOptions
	logger   *zap.SugaredLogger

	mu         sync.Mutex
	setupToken string
}

// NewAuthService 创建认证服务
func NewAuthService(store *repository.Store, tokens *auth.TokenManager, opts AuthOptions, logger *zap.SugaredLogger) *AuthService {
	return &AuthService{
		store:    store,
		tokens:   tokens,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		opts:     opts,
		logger:   logger.Named("auth_service"),
	}
}

// CheckFirstUser 用户表为空时返回 true
func (s *AuthService) CheckFirstUser(ctx context.Context) (bool, error) {
	count, err := s.store.Users().Count(ctx)
	if err != nil {
		return false, apperrors.SystemError(err)
	}
	return count == 0, nil
}

// Register 注册用户。首个用户无需令牌并成为管理员，之后须提供管理员令牌。
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email, err := s.validateCredentials(in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	first, err := s.CheckFirstUser(ctx)
	if err != nil {
		return nil, err
	}

	user := &model.User{Email: email}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, apperrors.SystemError(fmt.Errorf("hash password: %w", err))
	}

	if first {
		if err := s.bootstrapAdmin(ctx, user, in.AdminToken); err != nil {
			return nil, err
		}
		s.clearSetupToken()
		s.logger.Infof("首个管理员 %s 已创建", email)
	} else {
		if err := s.requireAdmin(ctx, in.AdminToken); err != nil {
			return nil, err
		}
		if err := s.store.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, apperrors.ErrEmailTaken
			}
			return nil, apperrors.SystemError(err)
		}
		s.logger.Infof("新用户 %s 已注册", email)
	}

	return s.issue(user)
}

// Login 校验邮箱与密码并签发令牌
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	user, err := s.store.Users().FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperrors.SystemError(err)
	}
	if !user.CheckPassword(password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	go s.touchLastLogin(user.ID)
	return result, nil
}

// EnsureSetupToken 用户表为空时生成管理员引导令牌并写入文件
func (s *AuthService) EnsureSetupToken(ctx context.Context) (string, error) {
	first, err := s.CheckFirstUser(ctx)
	if err != nil || !first {
		return "", err
	}

	token, err := randomToken(setupTokenLength)
	if err != nil {
		return "", fmt.Errorf("generate setup token: %w", err)
	}
	if s.opts.SetupTokenFile != "" {
		if err := os.WriteFile(s.opts.SetupTokenFile, []byte(token+"\n"), 0o600); err != nil {
			return "", fmt.Errorf("write setup token: %w", err)
		}
	}

	s.mu.Lock()
	s.setupToken = token
	s.mu.Unlock()

	s.logger.Info("尚无用户，已生成管理员引导令牌")
	if s.opts.SetupTokenFile != "" {
		s.logger.Infof("令牌已保存到 %s", s.opts.SetupTokenFile)
	}
	s.logger.Infof("管理员引导令牌: %s", token)
	return token, nil
}

// bootstrapAdmin 首个用户与引导标记在同一事务写入，并发引导只有一个成功
func (s *AuthService) bootstrapAdmin(ctx context.Context, user *model.User, setupToken string) error {
	if s.opts.RequireSetupToken && !s.matchSetupToken(setupToken) {
		return apperrors.ErrAdminTokenRequired
	}

	user.IsAdmin = true
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Users().CreateFlag(ctx, model.FlagAdminBootstrap); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.ErrAdminTokenRequired
			}
			return err
		}
		return tx.Users().Create(ctx, user)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrAdminTokenRequired):
		return apperrors.ErrAdminTokenRequired
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.ErrEmailTaken
	default:
		return apperrors.SystemError(err)
	}
}

// requireAdmin 校验 adminToken 属于当前仍为管理员的用户
func (s *AuthService) requireAdmin(ctx context.Context, adminToken string) error {
	adminToken = strings.TrimSpace(adminToken)
	if adminToken == "" {
		return apperrors.ErrAdminTokenRequired
	}
	claims, err := s.tokens.ValidateToken(adminToken)
	if err != nil {
		return apperrors.ErrAdminTokenRequired
	}
	admin, err := s.store.Users().FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrAdminTokenRequired
	}
	if err != nil {
		return apperrors.SystemError(err)
	}
	if !admin.IsAdmin {
		return apperrors.ErrAdminTokenRequired
	}
	return nil
}

func (s *AuthService) validateCredentials(email, password string) (string, error) {
	email = normalizeEmail(email)
	if err := s.validate.Var(email, "required,email,max=255"); err != nil {
		return "", apperrors.ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return "", apperrors.ErrWeakPassword
	}
	return email, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, apperrors.SystemError(err)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) touchLastLogin(userID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.Users().TouchLastLogin(ctx, userID, time.Now().UTC()); err != nil {
		s.logger.Warnf("更新用户 %d 最后登录时间失败: %v", userID, err)
	}
}

func (s *AuthService) matchSetupToken(candidate string) bool {
	expected := s.currentSetupToken()
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(candidate)), []byte(expected)) == 1
}

// currentSetupToken 优先读取令牌文件，命令行工具重新生成的令牌也能生效
func (s *AuthService) currentSetupToken() string {
	if s.opts.SetupTokenFile != "" {
		if data, err := os.ReadFile(s.opts.SetupTokenFile); err == nil {
			if token := strings.TrimSpace(string(data)); token != "" {
				return token
			}
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setupToken
}

// clearSetupToken 引导完成后令牌作废
func (s *AuthService) clearSetupToken() {
	s.mu.Lock()
	s.setupToken = ""
	s.mu.Unlock()

	if s.opts.SetupTokenFile != "" {
		if err := os.Remove(s.opts.SetupTokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warnf("删除引导令牌文件失败: %v", err)
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomToken(length int) (string, error) {
	b := make([]byte, length)
	max := big.NewInt(int64(len(shortcode.Charset)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = shortcode.Charset[n.Int64()]
	}
	return string(b), nil
}
