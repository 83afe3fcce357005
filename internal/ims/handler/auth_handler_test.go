package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/beyyuanzhang/tfoc/internal/config"
	"github.com/beyyuanzhang/tfoc/internal/ims/repository"
	"github.com/beyyuanzhang/tfoc/internal/ims/service"
	"github.com/beyyuanzhang/tfoc/internal/ims/testutil"
)

func setupAuthTest(t *testing.T) (*testutil.TestEnv, *service.Services) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	cfg := &config.Config{}
	cfg.JWT.Secret = testutil.JWTSecret
	cfg.JWT.AccessTokenExpire = 2 * time.Hour
	cfg.JWT.RefreshTokenExpire = 168 * time.Hour
	cfg.JWT.Issuer = "tfoc"

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, nil, cfg, zap.NewNop())
	h := NewHandlers(services)

	router.POST("/api/v1/auth/login", h.Auth.Login)
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/auth/me", h.Auth.Me)

	return &testutil.TestEnv{DB: db, Router: router, T: t}, services
}

func TestLoginFlow(t *testing.T) {
	env, services := setupAuthTest(t)
	ctx := context.Background()

	if err := services.User.EnsureAdmin(ctx, "admin@test.com", "super-secret-1"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	// 错误密码
	wBad := testutil.DoRequest(env.Router, "POST", "/api/v1/auth/login",
		map[string]interface{}{"email": "admin@test.com", "password": "wrong"}, "")
	if wBad.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for wrong password, got %d: %s", wBad.Code, wBad.Body.String())
	}

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/auth/login",
		map[string]interface{}{"email": "admin@test.com", "password": "super-secret-1"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	user := data["user"].(map[string]interface{})
	if user["role"] != "head-architect" {
		t.Errorf("role = %v, want head-architect", user["role"])
	}
	if _, ok := user["password_hash"]; ok {
		t.Error("password_hash must not be serialized")
	}
	token := data["token"].(map[string]interface{})
	accessToken, _ := token["access_token"].(string)
	if accessToken == "" {
		t.Fatal("missing access_token")
	}

	// 签发的 token 可通过认证中间件
	wMe := testutil.DoRequest(env.Router, "GET", "/api/v1/auth/me", nil, accessToken)
	if wMe.Code != http.StatusOK {
		t.Fatalf("Expected 200 for /auth/me, got %d: %s", wMe.Code, wMe.Body.String())
	}
	me := testutil.ParseResponse(wMe)["data"].(map[string]interface{})
	if me["email"] != "admin@test.com" {
		t.Errorf("email = %v, want admin@test.com", me["email"])
	}

	// 幂等：重复调用不重复建号
	if err := services.User.EnsureAdmin(ctx, "admin@test.com", "super-secret-1"); err != nil {
		t.Fatalf("EnsureAdmin second call: %v", err)
	}
}
