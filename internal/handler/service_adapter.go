package handler

import (
	"context"

	"github.com/hitoshi/cryptodash/internal/auth"
	"github.com/hitoshi/cryptodash/internal/dashboard"
	"github.com/hitoshi/cryptodash/internal/preference"
	"github.com/hitoshi/cryptodash/internal/user"
	"github.com/hitoshi/cryptodash/internal/vote"
)

// AuthServiceAdapter は auth.Service を AuthServiceInterface に適合させるアダプタ。
type AuthServiceAdapter struct {
	svc *auth.Service
}

// NewAuthServiceAdapter はAuthServiceAdapterを生成する。
func NewAuthServiceAdapter(svc *auth.Service) *AuthServiceAdapter {
	return &AuthServiceAdapter{svc: svc}
}

// Signup はユーザー登録結果をhandlerレスポンス型で返す。
func (a *AuthServiceAdapter) Signup(ctx context.Context, name, email, password string) (*authResponse, error) {
	res, err := a.svc.Signup(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	return toAuthResponse(res), nil
}

// Login はログイン結果をhandlerレスポンス型で返す。
func (a *AuthServiceAdapter) Login(ctx context.Context, email, password string) (*authResponse, error) {
	res, err := a.svc.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return toAuthResponse(res), nil
}

func toAuthResponse(res *auth.Result) *authResponse {
	return &authResponse{
		Token: res.Token,
		User:  toUserResponse(res.User),
	}
}

// UserServiceAdapter は user.Service を UserServiceInterface に適合させるアダプタ。
type UserServiceAdapter struct {
	svc *user.Service
}

// NewUserServiceAdapter はUserServiceAdapterを生成する。
func NewUserServiceAdapter(svc *user.Service) *UserServiceAdapter {
	return &UserServiceAdapter{svc: svc}
}

// Me はプロフィールをhandlerレスポンス型で返す。
func (a *UserServiceAdapter) Me(ctx context.Context, userID string) (*meResponse, error) {
	profile, err := a.svc.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &meResponse{
		User:                toUserResponse(profile.User),
		OnboardingCompleted: profile.OnboardingCompleted,
	}, nil
}

// Withdraw は退会処理を実行する。
func (a *UserServiceAdapter) Withdraw(ctx context.Context, userID string) error {
	return a.svc.Withdraw(ctx, userID)
}

// PreferenceServiceAdapter は preference.Service を PreferenceServiceInterface に適合させるアダプタ。
type PreferenceServiceAdapter struct {
	svc *preference.Service
}

// NewPreferenceServiceAdapter はPreferenceServiceAdapterを生成する。
func NewPreferenceServiceAdapter(svc *preference.Service) *PreferenceServiceAdapter {
	return &PreferenceServiceAdapter{svc: svc}
}

// Save は設定を保存しhandlerレスポンス型で返す。
func (a *PreferenceServiceAdapter) Save(ctx context.Context, userID string, assets []string, investorType string, contentTypes []string) (*preferenceResponse, error) {
	pref, err := a.svc.Save(ctx, userID, assets, investorType, contentTypes)
	if err != nil {
		return nil, err
	}
	return toPreferenceResponse(pref), nil
}

// Load は保存済みの設定をhandlerレスポンス型で返す。
func (a *PreferenceServiceAdapter) Load(ctx context.Context, userID string) (*preferenceResponse, error) {
	pref, err := a.svc.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toPreferenceResponse(pref), nil
}

// VoteServiceAdapter は vote.Service を VoteServiceInterface に適合させるアダプタ。
type VoteServiceAdapter struct {
	svc *vote.Service
}

// NewVoteServiceAdapter はVoteServiceAdapterを生成する。
func NewVoteServiceAdapter(svc *vote.Service) *VoteServiceAdapter {
	return &VoteServiceAdapter{svc: svc}
}

// SetVote は投票を保存しhandlerレスポンス型で返す。
func (a *VoteServiceAdapter) SetVote(ctx context.Context, userID, section, itemID string, value any) (*voteResponse, error) {
	v, err := a.svc.SetVote(ctx, userID, section, itemID, value)
	if err != nil {
		return nil, err
	}
	return toVoteResponse(v), nil
}

// ClearVote は投票を取り消す。
func (a *VoteServiceAdapter) ClearVote(ctx context.Context, userID, section, itemID string) error {
	return a.svc.ClearVote(ctx, userID, section, itemID)
}

// DashboardServiceAdapter は dashboard.Aggregator を DashboardServiceInterface に適合させるアダプタ。
type DashboardServiceAdapter struct {
	agg *dashboard.Aggregator
}

// NewDashboardServiceAdapter はDashboardServiceAdapterを生成する。
func NewDashboardServiceAdapter(agg *dashboard.Aggregator) *DashboardServiceAdapter {
	return &DashboardServiceAdapter{agg: agg}
}

// Build はダッシュボードを組み立てhandlerレスポンス型で返す。
func (a *DashboardServiceAdapter) Build(ctx context.Context, userID string) (*dashboardResponse, error) {
	sections, err := a.agg.Build(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toDashboardResponse(sections), nil
}
