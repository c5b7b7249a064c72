package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/cryptodash/internal/model"
)

// --- モック定義 ---

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	signupFn func(ctx context.Context, name, email, password string) (*authResponse, error)
	loginFn  func(ctx context.Context, email, password string) (*authResponse, error)
}

func (m *mockAuthService) Signup(ctx context.Context, name, email, password string) (*authResponse, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, name, email, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*authResponse, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, errors.New("not implemented")
}

func sampleAuthResponse() *authResponse {
	return &authResponse{
		Token: "signed-token",
		User: userResponse{
			ID:        "user-123",
			Name:      "Alice",
			Email:     "alice@example.com",
			CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

// --- POST /api/auth/signup テスト ---

func TestAuthHandler_Signup_Success(t *testing.T) {
	svc := &mockAuthService{
		signupFn: func(ctx context.Context, name, email, password string) (*authResponse, error) {
			if name != "Alice" || email != "alice@example.com" || password != "secret123" {
				t.Errorf("unexpected args: %q %q %q", name, email, password)
			}
			return sampleAuthResponse(), nil
		},
	}
	h := NewAuthHandler(svc)

	req := newJSONRequest(http.MethodPost, "/api/auth/signup",
		`{"name":"Alice","email":"alice@example.com","password":"secret123"}`)
	w := httptest.NewRecorder()

	h.Signup(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var body authResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Token != "signed-token" {
		t.Errorf("token = %q, want %q", body.Token, "signed-token")
	}
	if body.User.Email != "alice@example.com" {
		t.Errorf("user.email = %q, want %q", body.User.Email, "alice@example.com")
	}
}

func TestAuthHandler_Signup_ResponseOmitsPasswordHash(t *testing.T) {
	svc := &mockAuthService{
		signupFn: func(ctx context.Context, name, email, password string) (*authResponse, error) {
			return sampleAuthResponse(), nil
		},
	}
	h := NewAuthHandler(svc)

	req := newJSONRequest(http.MethodPost, "/api/auth/signup",
		`{"name":"Alice","email":"alice@example.com","password":"secret123"}`)
	w := httptest.NewRecorder()
	h.Signup(w, req)

	body := decodeJSONMap(t, w)
	u, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("user is not an object: %v", body["user"])
	}
	for _, key := range []string{"passwordHash", "password_hash", "password"} {
		if _, exists := u[key]; exists {
			t.Errorf("user must not contain %q", key)
		}
	}
	for _, key := range []string{"id", "name", "email", "createdAt"} {
		if _, exists := u[key]; !exists {
			t.Errorf("user must contain %q", key)
		}
	}
}

func TestAuthHandler_Signup_MissingField_ReturnsValidationError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"name欠落", `{"email":"a@example.com","password":"secret123"}`},
		{"email欠落", `{"name":"A","password":"secret123"}`},
		{"password欠落", `{"name":"A","email":"a@example.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &mockAuthService{
				signupFn: func(ctx context.Context, name, email, password string) (*authResponse, error) {
					called = true
					return sampleAuthResponse(), nil
				},
			}
			h := NewAuthHandler(svc)

			w := httptest.NewRecorder()
			h.Signup(w, newJSONRequest(http.MethodPost, "/api/auth/signup", tt.body))

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			if code := decodeErrorCode(t, w); code != model.ErrCodeValidation {
				t.Errorf("code = %q, want %q", code, model.ErrCodeValidation)
			}
			if called {
				t.Error("service must not be called for invalid input")
			}
		})
	}
}

func TestAuthHandler_Signup_InvalidJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	h.Signup(w, newJSONRequest(http.MethodPost, "/api/auth/signup", `{invalid`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if code := decodeErrorCode(t, w); code != model.ErrCodeInvalidRequest {
		t.Errorf("code = %q, want %q", code, model.ErrCodeInvalidRequest)
	}
}

func TestAuthHandler_Signup_EmailInUse(t *testing.T) {
	svc := &mockAuthService{
		signupFn: func(ctx context.Context, name, email, password string) (*authResponse, error) {
			return nil, model.NewEmailInUseError()
		},
	}
	h := NewAuthHandler(svc)

	w := httptest.NewRecorder()
	h.Signup(w, newJSONRequest(http.MethodPost, "/api/auth/signup",
		`{"name":"Alice","email":"alice@example.com","password":"secret123"}`))

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	if code := decodeErrorCode(t, w); code != model.ErrCodeEmailInUse {
		t.Errorf("code = %q, want %q", code, model.ErrCodeEmailInUse)
	}
}

func TestAuthHandler_Signup_ServiceValidationError(t *testing.T) {
	svc := &mockAuthService{
		signupFn: func(ctx context.Context, name, email, password string) (*authResponse, error) {
			return nil, model.NewValidationError("password は 6 文字以上である必要があります")
		},
	}
	h := NewAuthHandler(svc)

	w := httptest.NewRecorder()
	h.Signup(w, newJSONRequest(http.MethodPost, "/api/auth/signup",
		`{"name":"Alice","email":"alice@example.com","password":"short"}`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// --- POST /api/auth/login テスト ---

func TestAuthHandler_Login_Success(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*authResponse, error) {
			return sampleAuthResponse(), nil
		},
	}
	h := NewAuthHandler(svc)

	w := httptest.NewRecorder()
	h.Login(w, newJSONRequest(http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"secret123"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeJSONMap(t, w)
	if body["token"] != "signed-token" {
		t.Errorf("token = %v, want %q", body["token"], "signed-token")
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*authResponse, error) {
			return nil, model.NewInvalidCredentialsError()
		},
	}
	h := NewAuthHandler(svc)

	w := httptest.NewRecorder()
	h.Login(w, newJSONRequest(http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"wrong"}`))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if code := decodeErrorCode(t, w); code != model.ErrCodeInvalidCredentials {
		t.Errorf("code = %q, want %q", code, model.ErrCodeInvalidCredentials)
	}
}

func TestAuthHandler_Login_UnexpectedError_ReturnsInternal(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*authResponse, error) {
			return nil, errors.New("db connection lost")
		},
	}
	h := NewAuthHandler(svc)

	w := httptest.NewRecorder()
	h.Login(w, newJSONRequest(http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"secret123"}`))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if code := decodeErrorCode(t, w); code != model.ErrCodeInternal {
		t.Errorf("code = %q, want %q", code, model.ErrCodeInternal)
	}
}
