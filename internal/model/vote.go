package model

import "time"

// Section は投票とアイテムのスコープとなるダッシュボードのセクション。
type Section string

const (
	// SectionNews はニュースセクション。
	SectionNews Section = "NEWS"
	// SectionPrices は価格セクション。
	SectionPrices Section = "PRICES"
	// SectionInsight はAIインサイトセクション。
	SectionInsight Section = "INSIGHT"
	// SectionMeme はミームセクション。
	SectionMeme Section = "MEME"
)

// AllSections は認識されるセクションの一覧。
var AllSections = []Section{SectionNews, SectionPrices, SectionInsight, SectionMeme}

// VoteValue は投票値。+1（up）または-1（down）のみ有効。
type VoteValue int

const (
	VoteUp   VoteValue = 1
	VoteDown VoteValue = -1
)

// Vote はユーザーのセクション内アイテムへの投票を表す。
// (UserID, Section, ItemID) の組で一意。
type Vote struct {
	ID        string
	UserID    string
	Section   Section
	ItemID    string
	Value     VoteValue
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VoteKey は投票を特定するセクションとアイテムIDの組。
// 同じアイテムIDでもセクションが異なれば別の投票として扱う。
type VoteKey struct {
	Section Section
	ItemID  string
}

// Key は投票のVoteKeyを返す。
func (v *Vote) Key() VoteKey {
	return VoteKey{Section: v.Section, ItemID: v.ItemID}
}
