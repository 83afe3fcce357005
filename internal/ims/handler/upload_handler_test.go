package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/beyyuanzhang/tfoc/internal/ims/service"
)

func setupUploadTest() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// 未配置对象存储
	h := NewUploadHandler(service.NewUploadService(nil, ""))
	r.DELETE("/api/v1/uploads", h.Remove)
	return r
}

func TestUploadRemoveValidation(t *testing.T) {
	r := setupUploadTest()

	req, _ := http.NewRequest("DELETE", "/api/v1/uploads", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 without object param, got %d: %s", w.Code, w.Body.String())
	}

	req2, _ := http.NewRequest("DELETE", "/api/v1/uploads?object=media/2026/08/x.png", nil)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)
	if w2.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500 when storage unconfigured, got %d: %s", w2.Code, w2.Body.String())
	}
}
