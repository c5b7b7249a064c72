package vote

import (
	"errors"
	"testing"

	"github.com/hitoshi/cryptodash/internal/model"
)

func codeOf(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

func TestParseVoteValue(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want model.VoteValue
		ok   bool
	}{
		{"json number 1", float64(1), model.VoteUp, true},
		{"json number -1", float64(-1), model.VoteDown, true},
		{"int 1", 1, model.VoteUp, true},
		{"string 1", "1", model.VoteUp, true},
		{"string -1", "-1", model.VoteDown, true},
		{"up", "up", model.VoteUp, true},
		{"UP", "UP", model.VoteUp, true},
		{"down", "down", model.VoteDown, true},
		{"DOWN", "DOWN", model.VoteDown, true},
		{"fraction", 1.5, 0, false},
		{"zero", float64(0), 0, false},
		{"two", float64(2), 0, false},
		{"mixed case up", "Up", model.VoteUp, true},
		{"mixed case down", " Down ", model.VoteDown, true},
		{"unknown word", "yes", 0, false},
		{"empty", "", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVoteValue(tt.raw)
			if tt.ok {
				if err != nil || got != tt.want {
					t.Errorf("ParseVoteValue(%v) = %v, %v; want %v", tt.raw, got, err, tt.want)
				}
				return
			}
			if codeOf(err) != model.ErrCodeInvalidVoteValue {
				t.Errorf("ParseVoteValue(%v) err = %v, want INVALID_VOTE_VALUE", tt.raw, err)
			}
		})
	}
}

func TestParseSection(t *testing.T) {
	for _, raw := range []string{"news", "Prices", "INSIGHT", " meme "} {
		if _, err := ParseSection(raw); err != nil {
			t.Errorf("ParseSection(%q) returned error: %v", raw, err)
		}
	}
	got, _ := ParseSection("prices")
	if got != model.SectionPrices {
		t.Errorf("ParseSection(prices) = %q, want %q", got, model.SectionPrices)
	}

	for _, raw := range []string{"", "weather", "NEWSS"} {
		if _, err := ParseSection(raw); codeOf(err) != model.ErrCodeInvalidSection {
			t.Errorf("ParseSection(%q) err = %v, want INVALID_SECTION", raw, err)
		}
	}
}

func TestParseItemID(t *testing.T) {
	got, err := ParseItemID("  price:bitcoin ")
	if err != nil || got != "price:bitcoin" {
		t.Errorf("ParseItemID = %q, %v; want trimmed id", got, err)
	}
	if _, err := ParseItemID("   "); codeOf(err) != model.ErrCodeMissingItemID {
		t.Errorf("blank itemId err = %v, want MISSING_ITEM_ID", err)
	}
}
