package vote

import (
	"strings"

	"github.com/hitoshi/cryptodash/internal/model"
)

// ParseVoteValue はリクエストの投票値を解釈する。
// 1 / "1" / "up" は+1、-1 / "-1" / "down" は-1。文字列の大文字小文字は区別しない。
// JSONの数値はfloat64としてデコードされるため、整数値のfloat64のみ受け付ける。
func ParseVoteValue(raw any) (model.VoteValue, error) {
	switch v := raw.(type) {
	case float64:
		switch v {
		case 1:
			return model.VoteUp, nil
		case -1:
			return model.VoteDown, nil
		}
	case int:
		switch v {
		case 1:
			return model.VoteUp, nil
		case -1:
			return model.VoteDown, nil
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "up":
			return model.VoteUp, nil
		case "-1", "down":
			return model.VoteDown, nil
		}
	}
	return 0, model.NewInvalidVoteValueError()
}

// ParseSection はセクション名を大文字化して検証する。
func ParseSection(raw string) (model.Section, error) {
	s := model.Section(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range model.AllSections {
		if s == known {
			return s, nil
		}
	}
	return "", model.NewInvalidSectionError(raw)
}

// ParseItemID は前後の空白を除去し、空の場合はMISSING_ITEM_IDを返す。
func ParseItemID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", model.NewMissingItemIDError()
	}
	return id, nil
}
