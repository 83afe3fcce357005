package handler

import (
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/beyyuanzhang/tfoc/internal/config"
	"github.com/beyyuanzhang/tfoc/internal/ims/entity"
	"github.com/beyyuanzhang/tfoc/internal/ims/repository"
	"github.com/beyyuanzhang/tfoc/internal/ims/service"
	"github.com/beyyuanzhang/tfoc/internal/ims/testutil"
)

func setupTagTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	cfg := &config.Config{}
	cfg.JWT.Secret = testutil.JWTSecret
	cfg.Pricing.InvalidNumeric = service.NumericModeCoerce

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, nil, cfg, zap.NewNop())
	h := NewHandlers(services)

	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/tags", h.Tag.List)
	api.POST("/tags", h.Tag.Create)
	api.DELETE("/tags/:id", h.Tag.Delete)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func TestTagCreateNormalizesColorValue(t *testing.T) {
	env := setupTagTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/tags",
		map[string]interface{}{"type": "color", "name": "藏青", "value": "#1a2b3c"}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["value"] != "#1A2B3C" {
		t.Errorf("value = %v, want #1A2B3C", data["value"])
	}

	// 非法色值拒绝
	wBad := testutil.DoRequest(env.Router, "POST", "/api/v1/tags",
		map[string]interface{}{"type": "color", "name": "坏色", "value": "navy"}, token)
	if wBad.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for bad hex, got %d: %s", wBad.Code, wBad.Body.String())
	}

	// 同类型重名拒绝
	wDup := testutil.DoRequest(env.Router, "POST", "/api/v1/tags",
		map[string]interface{}{"type": "color", "name": "藏青", "value": "#1A2B3C"}, token)
	if wDup.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for duplicate name, got %d: %s", wDup.Code, wDup.Body.String())
	}
}

func TestTagDeleteBlockedWhenReferenced(t *testing.T) {
	env := setupTagTest(t)
	token := testutil.DefaultTestToken()

	tag := testutil.SeedTestTag(t, env.DB, "mat-wool", entity.TagTypeMaterial, "羊毛", "")
	env.DB.Create(&entity.ReleaseMaterial{
		ID: "rm-001", ReleaseID: "rel-001", TagID: tag.ID, Percentage: 100,
	})

	w := testutil.DoRequest(env.Router, "DELETE", "/api/v1/tags/"+tag.ID, nil, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for referenced tag, got %d: %s", w.Code, w.Body.String())
	}

	free := testutil.SeedTestTag(t, env.DB, "mat-silk", entity.TagTypeMaterial, "真丝", "")
	wOK := testutil.DoRequest(env.Router, "DELETE", "/api/v1/tags/"+free.ID, nil, token)
	if wOK.Code != http.StatusOK {
		t.Fatalf("Expected 200 for unreferenced tag, got %d: %s", wOK.Code, wOK.Body.String())
	}
}
