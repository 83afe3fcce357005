package handler

import (
	"net/http"
	"testing"

	"github.com/beyyuanzhang/tfoc/internal/ims/entity"
	"github.com/beyyuanzhang/tfoc/internal/ims/testutil"
)

func createReleaseWithSKUs(t *testing.T, env *testutil.TestEnv, token string) (releaseID, skuID string) {
	t.Helper()
	protoID, sizeIDs, colorIDs, materialID := seedCatalog(t, env)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/releases",
		createReleaseBody(protoID, sizeIDs, colorIDs, materialID), token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	releaseID = testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	wList := testutil.DoRequest(env.Router, "GET", "/api/v1/skus?release_id="+releaseID, nil, token)
	items := testutil.ParseResponse(wList)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) == 0 {
		t.Fatal("expected generated SKUs")
	}
	skuID = items[0].(map[string]interface{})["id"].(string)
	return releaseID, skuID
}

func TestSKUQuantityGeneratesSerials(t *testing.T) {
	env := setupCatalogTest(t)
	token := testutil.DefaultTestToken()
	_, skuID := createReleaseWithSKUs(t, env, token)

	w := testutil.DoRequest(env.Router, "PUT", "/api/v1/skus/"+skuID+"/quantity",
		map[string]interface{}{"quantity": 3}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})

	sku := data["sku"].(map[string]interface{})
	if sku["quantity"].(float64) != 3 {
		t.Errorf("quantity = %v, want 3", sku["quantity"])
	}
	// 3 < 低库存阈值5
	if sku["stock_status"] != entity.StockStatusLowStock {
		t.Errorf("stock_status = %v, want low_stock", sku["stock_status"])
	}
	gen := data["generation"].(map[string]interface{})
	if gen["created"].(float64) != 3 {
		t.Errorf("generation.created = %v, want 3", gen["created"])
	}

	wSerials := testutil.DoRequest(env.Router, "GET", "/api/v1/serials?sku_id="+skuID, nil, token)
	serials := testutil.ParseResponse(wSerials)["data"].(map[string]interface{})["items"].([]interface{})
	if len(serials) != 3 {
		t.Fatalf("Expected 3 serials, got %d", len(serials))
	}
	first := serials[0].(map[string]interface{})
	if first["status"] != entity.SerialStatusCreated {
		t.Errorf("serial status = %v, want created", first["status"])
	}

	// 总量不能低于已有序列号数
	wDown := testutil.DoRequest(env.Router, "PUT", "/api/v1/skus/"+skuID+"/quantity",
		map[string]interface{}{"quantity": 1}, token)
	if wDown.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 when lowering below serial count, got %d: %s", wDown.Code, wDown.Body.String())
	}
}

func TestSKUQuantitySkipSerials(t *testing.T) {
	env := setupCatalogTest(t)
	token := testutil.DefaultTestToken()
	_, skuID := createReleaseWithSKUs(t, env, token)

	w := testutil.DoRequest(env.Router, "PUT", "/api/v1/skus/"+skuID+"/quantity",
		map[string]interface{}{"quantity": 3, "skip_serials": true}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	sku := data["sku"].(map[string]interface{})
	if sku["quantity"].(float64) != 3 {
		t.Errorf("quantity = %v, want 3", sku["quantity"])
	}
	gen := data["generation"].(map[string]interface{})
	if gen["created"].(float64) != 0 {
		t.Errorf("generation.created = %v, want 0 when serials skipped", gen["created"])
	}

	wSerials := testutil.DoRequest(env.Router, "GET", "/api/v1/serials?sku_id="+skuID, nil, token)
	serials := testutil.ParseResponse(wSerials)["data"].(map[string]interface{})["items"].([]interface{})
	if len(serials) != 0 {
		t.Fatalf("Expected 0 serials after skip, got %d", len(serials))
	}

	// 之后不带skip再声明同一总量，补发差额序列号
	wFill := testutil.DoRequest(env.Router, "PUT", "/api/v1/skus/"+skuID+"/quantity",
		map[string]interface{}{"quantity": 3}, token)
	if wFill.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", wFill.Code, wFill.Body.String())
	}
	wSerials = testutil.DoRequest(env.Router, "GET", "/api/v1/serials?sku_id="+skuID, nil, token)
	serials = testutil.ParseResponse(wSerials)["data"].(map[string]interface{})["items"].([]interface{})
	if len(serials) != 3 {
		t.Fatalf("Expected 3 serials after follow-up declare, got %d", len(serials))
	}
}

func TestSerialStatusUpdate(t *testing.T) {
	env := setupCatalogTest(t)
	token := testutil.DefaultTestToken()
	_, skuID := createReleaseWithSKUs(t, env, token)

	testutil.DoRequest(env.Router, "PUT", "/api/v1/skus/"+skuID+"/quantity",
		map[string]interface{}{"quantity": 1}, token)
	wSerials := testutil.DoRequest(env.Router, "GET", "/api/v1/serials?sku_id="+skuID, nil, token)
	serials := testutil.ParseResponse(wSerials)["data"].(map[string]interface{})["items"].([]interface{})
	serialID := serials[0].(map[string]interface{})["id"].(string)

	// 状态以外的字段拒绝修改
	wBad := testutil.DoRequest(env.Router, "PATCH", "/api/v1/serials/"+serialID,
		map[string]interface{}{"status": "sold", "code": "SHOULD-NOT-CHANGE"}, token)
	if wBad.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for non-status field, got %d: %s", wBad.Code, wBad.Body.String())
	}

	// 非法状态拒绝
	wInvalid := testutil.DoRequest(env.Router, "PATCH", "/api/v1/serials/"+serialID,
		map[string]interface{}{"status": "teleported"}, token)
	if wInvalid.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for invalid status, got %d: %s", wInvalid.Code, wInvalid.Body.String())
	}

	w := testutil.DoRequest(env.Router, "PATCH", "/api/v1/serials/"+serialID,
		map[string]interface{}{"status": entity.SerialStatusSold, "status_note": "门店售出"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["status"] != entity.SerialStatusSold {
		t.Errorf("status = %v, want sold", data["status"])
	}

	// 历史追加：创建 + 本次变更
	history := data["status_history"].([]interface{})
	if len(history) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(history))
	}
	last := history[1].(map[string]interface{})
	if last["operator"] != "admin@test.com" {
		t.Errorf("operator = %v, want admin@test.com", last["operator"])
	}
	if last["note"] != "门店售出" {
		t.Errorf("note = %v, want 门店售出", last["note"])
	}
}
