package handler

import (
	"time"

	"github.com/hitoshi/cryptodash/internal/model"
)

// userResponse はユーザー情報のAPIレスポンス。パスワードハッシュは含めない。
type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// authResponse はサインアップ・ログインのレスポンス。
type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// meResponse は GET /api/me のレスポンス。
type meResponse struct {
	User                userResponse `json:"user"`
	OnboardingCompleted bool         `json:"onboardingCompleted"`
}

// preferenceResponse はユーザー設定のレスポンス。
type preferenceResponse struct {
	Assets       []string  `json:"assets"`
	InvestorType string    `json:"investorType"`
	ContentTypes []string  `json:"contentTypes"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// voteResponse は保存された投票のレスポンス。
type voteResponse struct {
	Section   string    `json:"section"`
	ItemID    string    `json:"itemId"`
	Value     int       `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type priceItemResponse struct {
	ItemID string   `json:"itemId"`
	CoinID string   `json:"coinId"`
	USD    *float64 `json:"usd"`
	MyVote *int     `json:"myVote"`
}

type newsItemResponse struct {
	ItemID      string `json:"itemId"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt"`
	Snippet     string `json:"snippet,omitempty"`
	MyVote      *int   `json:"myVote"`
}

type insightItemResponse struct {
	ItemID string `json:"itemId"`
	Date   string `json:"date"`
	Text   string `json:"text"`
	MyVote *int   `json:"myVote"`
}

type memeItemResponse struct {
	ItemID   string `json:"itemId"`
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
	MyVote   *int   `json:"myVote"`
}

// sectionsResponse はダッシュボードの各セクション。
// リストは常に配列、単一アイテムは無効時にnullとなる。
type sectionsResponse struct {
	News    []newsItemResponse   `json:"news"`
	Prices  []priceItemResponse  `json:"prices"`
	Insight *insightItemResponse `json:"insight"`
	Meme    *memeItemResponse    `json:"meme"`
}

// dashboardResponse は GET /api/dashboard のレスポンス。
type dashboardResponse struct {
	Sections sectionsResponse `json:"sections"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func toPreferenceResponse(p *model.Preference) *preferenceResponse {
	return &preferenceResponse{
		Assets:       nonNilStrings(p.Assets),
		InvestorType: p.InvestorType,
		ContentTypes: nonNilStrings(p.ContentTypes),
		UpdatedAt:    p.UpdatedAt,
	}
}

func toVoteResponse(v *model.Vote) *voteResponse {
	return &voteResponse{
		Section:   string(v.Section),
		ItemID:    v.ItemID,
		Value:     int(v.Value),
		UpdatedAt: v.UpdatedAt,
	}
}

func toMyVote(v *model.VoteValue) *int {
	if v == nil {
		return nil
	}
	i := int(*v)
	return &i
}

func toDashboardResponse(s *model.Sections) *dashboardResponse {
	resp := &dashboardResponse{
		Sections: sectionsResponse{
			News:   make([]newsItemResponse, 0, len(s.News)),
			Prices: make([]priceItemResponse, 0, len(s.Prices)),
		},
	}
	for _, n := range s.News {
		resp.Sections.News = append(resp.Sections.News, newsItemResponse{
			ItemID:      n.ItemID,
			Title:       n.Title,
			URL:         n.URL,
			Source:      n.Source,
			PublishedAt: n.PublishedAt,
			Snippet:     n.Snippet,
			MyVote:      toMyVote(n.MyVote),
		})
	}
	for _, p := range s.Prices {
		resp.Sections.Prices = append(resp.Sections.Prices, priceItemResponse{
			ItemID: p.ItemID,
			CoinID: p.CoinID,
			USD:    p.USD,
			MyVote: toMyVote(p.MyVote),
		})
	}
	if s.Insight != nil {
		resp.Sections.Insight = &insightItemResponse{
			ItemID: s.Insight.ItemID,
			Date:   s.Insight.Date,
			Text:   s.Insight.Text,
			MyVote: toMyVote(s.Insight.MyVote),
		}
	}
	if s.Meme != nil {
		resp.Sections.Meme = &memeItemResponse{
			ItemID:   s.Meme.ItemID,
			Title:    s.Meme.Title,
			ImageURL: s.Meme.ImageURL,
			MyVote:   toMyVote(s.Meme.MyVote),
		}
	}
	return resp
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
