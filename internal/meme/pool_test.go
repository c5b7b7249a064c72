package meme

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// mockValidator はImageURLValidatorのテスト用実装。
type mockValidator struct {
	validateFn func(rawURL string) error
}

func (m *mockValidator) ValidateImageURL(rawURL string) error {
	return m.validateFn(rawURL)
}

func httpsOnly() *mockValidator {
	return &mockValidator{validateFn: func(rawURL string) error {
		if !strings.HasPrefix(rawURL, "https://") {
			return errors.New("https only")
		}
		return nil
	}}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memes.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("ファイルの書き込みに失敗: %v", err)
	}
	return path
}

func TestNewPool_EmptyUsesBuiltin(t *testing.T) {
	p := NewPool(nil)
	if p.Len() != 5 {
		t.Fatalf("組み込みプールの件数 = %d, want 5", p.Len())
	}
	for _, item := range builtinPool {
		if !strings.HasPrefix(item.ItemID, "meme:meme") {
			t.Errorf("ItemID = %s, want meme:memeN", item.ItemID)
		}
		if !strings.HasPrefix(item.ImageURL, "https://") {
			t.Errorf("組み込み画像URLはhttpsであるべき: %s", item.ImageURL)
		}
	}
}

func TestPool_Random_UsesInjectedSource(t *testing.T) {
	p := NewPool(nil)
	p.intn = func(n int) int {
		if n != 5 {
			t.Errorf("intn の引数 = %d, want 5", n)
		}
		return 2
	}

	item := p.Random()
	if item.ItemID != "meme:meme3" {
		t.Errorf("ItemID = %s, want meme:meme3", item.ItemID)
	}
	if item.MyVote != nil {
		t.Error("MyVote は nil であるべき")
	}
}

func TestPool_Random_AlwaysReturnsPoolMember(t *testing.T) {
	p := NewPool(nil)
	ids := make(map[string]bool)
	for _, item := range builtinPool {
		ids[item.ItemID] = true
	}
	for i := 0; i < 100; i++ {
		if item := p.Random(); !ids[item.ItemID] {
			t.Fatalf("プール外のミームが返された: %s", item.ItemID)
		}
	}
}

func TestPool_Random_ConcurrentCalls(t *testing.T) {
	p := NewPool(nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if item := p.Random(); item.ItemID == "" {
					t.Error("空のミームが返された")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestLoadFile_FiltersInvalidEntries(t *testing.T) {
	path := writeFile(t, `[
		{"id": "cat", "title": "Cat", "imageUrl": "https://img.example.com/cat.png"},
		{"id": "dog", "imageUrl": "http://img.example.com/dog.png"},
		{"id": "", "imageUrl": "https://img.example.com/none.png"},
		{"id": "cat", "imageUrl": "https://img.example.com/cat2.png"},
		{"id": "frog", "imageUrl": "https://img.example.com/frog.png"}
	]`)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	items, err := LoadFile(path, httpsOnly(), logger)
	if err != nil {
		t.Fatalf("LoadFile がエラーを返した: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("件数 = %d, want 2", len(items))
	}
	if items[0].ItemID != "meme:cat" || items[0].Title != "Cat" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].Title != "frog" {
		t.Errorf("タイトル未指定時はIDを使うべき: %q", items[1].Title)
	}
	if !strings.Contains(buf.String(), "画像URLが不正なミームを除外しました") {
		t.Errorf("除外ログが出力されていない: %s", buf.String())
	}
}

func TestLoadFile_NoValidEntriesIsError(t *testing.T) {
	path := writeFile(t, `[{"id": "x", "imageUrl": "http://insecure.example.com/x.png"}]`)
	var buf bytes.Buffer
	if _, err := LoadFile(path, httpsOnly(), slog.New(slog.NewJSONHandler(&buf, nil))); err == nil {
		t.Fatal("有効なミームが無い場合にエラーが返されていない")
	}
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	path := writeFile(t, `{not json`)
	var buf bytes.Buffer
	if _, err := LoadFile(path, httpsOnly(), slog.New(slog.NewJSONHandler(&buf, nil))); err == nil {
		t.Fatal("不正なJSONでエラーが返されていない")
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	var buf bytes.Buffer
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"), httpsOnly(), slog.New(slog.NewJSONHandler(&buf, nil)))
	if err == nil {
		t.Fatal("存在しないファイルでエラーが返されていない")
	}
}
