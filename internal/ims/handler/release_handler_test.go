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
	"github.com/beyyuanzhang/tfoc/internal/middleware"
)

func setupCatalogTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	cfg := &config.Config{}
	cfg.JWT.Secret = testutil.JWTSecret
	cfg.Pricing.InvalidNumeric = service.NumericModeCoerce
	cfg.Pricing.CascadeConcurrency = 2
	cfg.Pricing.LowStockThreshold = 5

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, nil, cfg, zap.NewNop())
	h := NewHandlers(services)

	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/releases/:id", middleware.Authorize(middleware.CapRead), h.Release.Get)
	api.POST("/releases", middleware.Authorize(middleware.CapCatalogWrite), h.Release.Create)
	api.PUT("/releases/:id", middleware.Authorize(middleware.CapCatalogWrite), h.Release.Update)
	api.POST("/releases/:id/generate-skus", middleware.Authorize(middleware.CapCatalogWrite), h.Release.GenerateSKUs)
	api.GET("/skus", middleware.Authorize(middleware.CapRead), h.SKU.List)
	api.PUT("/skus/:id/quantity", middleware.Authorize(middleware.CapCatalogWrite), h.SKU.UpdateQuantity)
	api.GET("/serials", middleware.Authorize(middleware.CapRead), h.Serial.List)
	api.PATCH("/serials/:id", middleware.Authorize(middleware.CapSerialStatus), h.Serial.Update)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func seedCatalog(t *testing.T, env *testutil.TestEnv) (protoID string, sizeIDs, colorIDs []string, materialID string) {
	t.Helper()
	proto := testutil.SeedTestPrototype(t, env.DB, "proto-001", "HOODIE01", "经典连帽衫")
	testutil.SeedTestTag(t, env.DB, "size-m", entity.TagTypeSize, "M", "")
	testutil.SeedTestTag(t, env.DB, "size-l", entity.TagTypeSize, "L", "")
	testutil.SeedTestTag(t, env.DB, "color-black", entity.TagTypeColor, "黑色", "#000000")
	testutil.SeedTestTag(t, env.DB, "color-white", entity.TagTypeColor, "白色", "#FFFFFF")
	testutil.SeedTestTag(t, env.DB, "mat-cotton", entity.TagTypeMaterial, "棉", "")
	return proto.ID, []string{"size-m", "size-l"}, []string{"color-black", "color-white"}, "mat-cotton"
}

func createReleaseBody(protoID string, sizeIDs, colorIDs []string, materialID string) map[string]interface{} {
	return map[string]interface{}{
		"prototype_id":   protoID,
		"volume":         100,
		"size_ids":       sizeIDs,
		"color_ids":      colorIDs,
		"materials":      []map[string]interface{}{{"tag_id": materialID, "percentage": 100}},
		"cost_material":  10,
		"cost_labor":     5,
		"cost_packaging": 2,
		"positioning":    "4.5",
	}
}

func TestReleaseCreateComputesPricingAndCascades(t *testing.T) {
	env := setupCatalogTest(t)
	token := testutil.DefaultTestToken()
	protoID, sizeIDs, colorIDs, materialID := seedCatalog(t, env)
	// 未被本次发布选中的颜色不参与级联
	testutil.SeedTestTag(t, env.DB, "color-red", entity.TagTypeColor, "红色", "#FF0000")

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/releases",
		createReleaseBody(protoID, sizeIDs, colorIDs, materialID), token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["release_number"].(float64) != 1 {
		t.Errorf("release_number = %v, want 1", data["release_number"])
	}
	if data["unit_cogs"].(float64) != 17 {
		t.Errorf("unit_cogs = %v, want 17", data["unit_cogs"])
	}
	if data["suggested_price"].(float64) != 96.84 {
		t.Errorf("suggested_price = %v, want 96.84", data["suggested_price"])
	}
	if data["has_skus"] != true {
		t.Errorf("has_skus = %v, want true", data["has_skus"])
	}
	if data["sku_generation_status"] != entity.GenerationCompleted {
		t.Errorf("sku_generation_status = %v, want completed", data["sku_generation_status"])
	}
	releaseID := data["id"].(string)

	// 2色×2码 → 4个SKU，初始数量0待上架
	wList := testutil.DoRequest(env.Router, "GET", "/api/v1/skus?release_id="+releaseID, nil, token)
	listData := testutil.ParseResponse(wList)["data"].(map[string]interface{})
	items := listData["items"].([]interface{})
	if len(items) != 4 {
		t.Fatalf("Expected 4 SKUs, got %d", len(items))
	}
	codes := map[string]bool{}
	for _, it := range items {
		sku := it.(map[string]interface{})
		codes[sku["code"].(string)] = true
		if sku["quantity"].(float64) != 0 {
			t.Errorf("new SKU quantity = %v, want 0", sku["quantity"])
		}
		if sku["stock_status"] != entity.StockStatusPending {
			t.Errorf("new SKU stock_status = %v, want pending", sku["stock_status"])
		}
	}
	if !codes["TFOC-HOODIE01-000000-M-R1"] || !codes["TFOC-HOODIE01-FFFFFF-L-R1"] {
		t.Errorf("unexpected SKU codes: %v", codes)
	}

	// 重复触发级联应全部跳过
	wGen := testutil.DoRequest(env.Router, "POST", "/api/v1/releases/"+releaseID+"/generate-skus", nil, token)
	if wGen.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", wGen.Code, wGen.Body.String())
	}
	genData := testutil.ParseResponse(wGen)["data"].(map[string]interface{})
	if genData["created"].(float64) != 0 || genData["skipped"].(float64) != 4 {
		t.Errorf("regenerate: created=%v skipped=%v, want 0/4", genData["created"], genData["skipped"])
	}
}

func TestReleaseCreateSkipSKUs(t *testing.T) {
	env := setupCatalogTest(t)
	token := testutil.DefaultTestToken()
	protoID, sizeIDs, colorIDs, materialID := seedCatalog(t, env)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/releases?skip_skus=true",
		createReleaseBody(protoID, sizeIDs, colorIDs, materialID), token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["has_skus"] != false {
		t.Errorf("has_skus = %v, want false when cascade skipped", data["has_skus"])
	}
	releaseID := data["id"].(string)

	wList := testutil.DoRequest(env.Router, "GET", "/api/v1/skus?release_id="+releaseID, nil, token)
	items := testutil.ParseResponse(wList)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 0 {
		t.Fatalf("Expected 0 SKUs after skip, got %d", len(items))
	}

	// 之后由 generate-skus 手动补铺
	wGen := testutil.DoRequest(env.Router, "POST", "/api/v1/releases/"+releaseID+"/generate-skus", nil, token)
	if wGen.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", wGen.Code, wGen.Body.String())
	}
	genData := testutil.ParseResponse(wGen)["data"].(map[string]interface{})
	if genData["created"].(float64) != 4 {
		t.Errorf("generate-skus created = %v, want 4", genData["created"])
	}
}

func TestReleaseUpdateSizesLockedAfterSKUs(t *testing.T) {
	env := setupCatalogTest(t)
	token := testutil.DefaultTestToken()
	protoID, sizeIDs, colorIDs, materialID := seedCatalog(t, env)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/releases",
		createReleaseBody(protoID, sizeIDs, colorIDs, materialID), token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	releaseID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	wUpd := testutil.DoRequest(env.Router, "PUT", "/api/v1/releases/"+releaseID,
		map[string]interface{}{"size_ids": []string{"size-m"}}, token)
	if wUpd.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for size change after SKUs, got %d: %s", wUpd.Code, wUpd.Body.String())
	}

	// 与尺码无关的字段仍可修改
	wUpd2 := testutil.DoRequest(env.Router, "PUT", "/api/v1/releases/"+releaseID,
		map[string]interface{}{"volume": 200}, token)
	if wUpd2.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", wUpd2.Code, wUpd2.Body.String())
	}
	updData := testutil.ParseResponse(wUpd2)["data"].(map[string]interface{})
	if updData["volume"].(float64) != 200 {
		t.Errorf("volume = %v, want 200", updData["volume"])
	}
}

func TestReleaseCreateRejectsBadMaterials(t *testing.T) {
	env := setupCatalogTest(t)
	token := testutil.DefaultTestToken()
	protoID, sizeIDs, colorIDs, materialID := seedCatalog(t, env)

	body := createReleaseBody(protoID, sizeIDs, colorIDs, materialID)
	body["materials"] = []map[string]interface{}{{"tag_id": materialID, "percentage": 60}}

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/releases", body, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for material sum 60%%, got %d: %s", w.Code, w.Body.String())
	}
}

func TestReleaseWriteRequiresCapability(t *testing.T) {
	env := setupCatalogTest(t)
	protoID, sizeIDs, colorIDs, materialID := seedCatalog(t, env)

	residentToken := testutil.GenerateTestToken("resident-001", "Resident", "resident@test.com", entity.RoleResident)
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/releases",
		createReleaseBody(protoID, sizeIDs, colorIDs, materialID), residentToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for resident write, got %d: %s", w.Code, w.Body.String())
	}

	// 只读接口对驻留者开放
	wList := testutil.DoRequest(env.Router, "GET", "/api/v1/skus", nil, residentToken)
	if wList.Code != http.StatusOK {
		t.Fatalf("Expected 200 for resident read, got %d: %s", wList.Code, wList.Body.String())
	}
}
