package handler

import (
	"encoding/json"
	"errors"

	"github.com/beyyuanzhang/tfoc/internal/ims/repository"
	"github.com/beyyuanzhang/tfoc/internal/ims/service"
	"github.com/gin-gonic/gin"
)

// SerialHandler 序列号处理器
type SerialHandler struct {
	svc *service.SerialService
}

func NewSerialHandler(svc *service.SerialService) *SerialHandler {
	return &SerialHandler{svc: svc}
}

// List 序列号列表
// GET /api/v1/serials?sku_id=&status=
func (h *SerialHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	sns, total, err := h.svc.List(c.Request.Context(), c.Query("sku_id"), c.Query("status"), page, pageSize)
	if err != nil {
		InternalError(c, "获取序列号列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{
		"items":      sns,
		"pagination": paginationOf(page, pageSize, total),
	})
}

// Get 序列号详情（含状态履历）
// GET /api/v1/serials/:id
func (h *SerialHandler) Get(c *gin.Context) {
	sn, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "序列号不存在")
		return
	}
	Success(c, sn)
}

// GetByCode 按编码查询（门店扫码）
// GET /api/v1/serials/code/:code
func (h *SerialHandler) GetByCode(c *gin.Context) {
	sn, err := h.svc.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		NotFound(c, "序列号不存在")
		return
	}
	Success(c, sn)
}

// 序列号更新只开放这两个字段
var serialUpdatableFields = map[string]bool{
	"status":      true,
	"status_note": true,
}

// Update 更新序列号状态
// PATCH /api/v1/serials/:id
func (h *SerialHandler) Update(c *gin.Context) {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	for field := range raw {
		if !serialUpdatableFields[field] {
			BadRequest(c, "只能修改状态相关字段")
			return
		}
	}

	var req struct {
		Status     string `json:"status"`
		StatusNote string `json:"status_note"`
	}
	if data, ok := raw["status"]; ok {
		if err := json.Unmarshal(data, &req.Status); err != nil {
			BadRequest(c, "参数错误: status")
			return
		}
	}
	if data, ok := raw["status_note"]; ok {
		if err := json.Unmarshal(data, &req.StatusNote); err != nil {
			BadRequest(c, "参数错误: status_note")
			return
		}
	}
	if req.Status == "" {
		BadRequest(c, "status不能为空")
		return
	}

	sn, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.StatusNote, GetUserEmail(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "序列号不存在")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, sn)
}
