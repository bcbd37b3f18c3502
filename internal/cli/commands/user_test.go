package commands

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestLogin_Run_SuccessAndErrors(t *testing.T) {
	// HTTP сервер имитирует /api/user/login
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/api/user/login") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var req credentials
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "alice@example.com" || req.Password != "secret" {
			t.Fatalf("unexpected credentials: %+v", req)
		}
		// успех: 200 + Set-Cookie
		http.SetCookie(w, &http.Cookie{Name: "auth_token", Value: "tok-123"})
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer ts.Close()

	cfg := withTempConfig(t, ts.URL)
	cmd := loginCmd{}
	withStdoutCapture(t, func() {
		if err := cmd.Run(context.Background(), cfg, []string{"alice@example.com", "secret"}); err != nil {
			t.Fatalf("login should succeed: %v", err)
		}
	})
	b, err := os.ReadFile(cfg.TokenFile)
	if err != nil || string(b) != "tok-123" {
		t.Fatalf("auth token not saved: %q %v", b, err)
	}

	// 401 Unauthorized
	ts401 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer ts401.Close()
	if err := cmd.Run(context.Background(), withTempConfig(t, ts401.URL), []string{"alice@example.com", "bad"}); err == nil {
		t.Fatalf("expected error for 401")
	}

	// недостаточно аргументов → ErrUsage
	if err := cmd.Run(context.Background(), cfg, []string{"onlyEmail"}); err != ErrUsage {
		t.Fatalf("expected ErrUsage, got %v", err)
	}

	// server 500 → ошибка
	ts500 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts500.Close()
	if err := cmd.Run(context.Background(), withTempConfig(t, ts500.URL), []string{"a", "b"}); err == nil {
		t.Fatalf("expected error for 500")
	}
}

func TestRegister_Run_SuccessAndErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/api/user/register") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var req credentials
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Name != "Bob" {
			t.Fatalf("name not sent: %+v", req)
		}
		http.SetCookie(w, &http.Cookie{Name: "auth_token", Value: "tok-xyz"})
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	cfg := withTempConfig(t, ts.URL)
	cmd := registerCmd{}
	withStdoutCapture(t, func() {
		if err := cmd.Run(context.Background(), cfg, []string{"bob@example.com", "pwd", "Bob"}); err != nil {
			t.Fatalf("register should succeed: %v", err)
		}
	})
	if tok, err := tokenStore(cfg).Load(); err != nil || tok != "tok-xyz" {
		t.Fatalf("token not saved: %q %v", tok, err)
	}

	// 409 Conflict
	ts409 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer ts409.Close()
	err := cmd.Run(context.Background(), withTempConfig(t, ts409.URL), []string{"bob@example.com", "pwd"})
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("expected conflict error, got %v", err)
	}

	if err := cmd.Run(context.Background(), cfg, []string{"onlyEmail"}); err != ErrUsage {
		t.Fatalf("expected ErrUsage, got %v", err)
	}
}

func TestLogout_ClearsToken(t *testing.T) {
	cfg := loggedIn(t, "http://unused")
	withStdoutCapture(t, func() {
		if err := (logoutCmd{}).Run(context.Background(), cfg, nil); err != nil {
			t.Fatalf("logout: %v", err)
		}
	})
	if _, err := os.Stat(cfg.TokenFile); !os.IsNotExist(err) {
		t.Fatalf("token must be removed")
	}
}
