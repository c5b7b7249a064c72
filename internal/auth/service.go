// Package auth はメールアドレスとパスワードによる認証とベアラートークンの発行を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/hitoshi/cryptodash/internal/model"
	"github.com/hitoshi/cryptodash/internal/repository"
)

// MinPasswordLength はパスワードの最小文字数。
const MinPasswordLength = 6

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	BcryptCost int // 0の場合はbcrypt.DefaultCost
}

// Result はサインアップ・ログイン成功時の戻り値。
type Result struct {
	Token string
	User  *model.User
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   *PasswordHasher
	tokens   *TokenIssuer
	validate *validator.Validate

	// 未登録メールアドレスでのログイン時に照合するダミーハッシュ
	dummyOnce sync.Once
	dummyHash string
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, tokens *TokenIssuer, config ServiceConfig) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   NewPasswordHasher(config.BcryptCost),
		tokens:   tokens,
		validate: validator.New(),
	}
}

// NormalizeEmail は前後の空白を除去し小文字化する。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup はユーザーを作成してトークンを発行する。
func (s *Service) Signup(ctx context.Context, name, email, password string) (*Result, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	if name == "" {
		return nil, model.NewValidationError("name is required")
	}
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, model.NewValidationError("email is invalid")
	}
	if len(password) < MinPasswordLength {
		return nil, model.NewValidationError(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailInUseError()
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 存在確認と作成の間に同じメールアドレスで登録された場合
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewEmailInUseError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user created", slog.String("user_id", user.ID))

	return s.issue(user)
}

// Login はメールアドレスとパスワードを照合してトークンを発行する。
// 未登録メールアドレスとパスワード不一致は同一のエラーを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	email = NormalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, model.NewValidationError("email is invalid")
	}
	if password == "" {
		return nil, model.NewValidationError("password is required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if user == nil {
		// 応答時間からユーザーの存在が推測されないよう照合コストを揃える
		_, _ = s.hasher.Verify(s.dummy(), password)
		return nil, model.NewInvalidCredentialsError()
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		slog.Warn("password hash verification failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewInvalidCredentialsError()
	}
	if !ok {
		return nil, model.NewInvalidCredentialsError()
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))

	return s.issue(user)
}

// VerifyToken はベアラートークンを検証してユーザーIDを返す。
func (s *Service) VerifyToken(token string) (string, error) {
	return s.tokens.Verify(token)
}

func (s *Service) issue(user *model.User) (*Result, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Result{Token: token, User: user}, nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("dummy-password-for-timing")
		if err != nil {
			slog.Error("failed to prepare dummy hash", slog.String("error", err.Error()))
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
