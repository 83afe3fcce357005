package handler

import (
	"errors"

	"github.com/beyyuanzhang/tfoc/internal/ims/repository"
	"github.com/beyyuanzhang/tfoc/internal/ims/service"
	"github.com/gin-gonic/gin"
)

// SKUHandler SKU处理器
type SKUHandler struct {
	svc *service.SKUService
}

func NewSKUHandler(svc *service.SKUService) *SKUHandler {
	return &SKUHandler{svc: svc}
}

// List SKU列表
// GET /api/v1/skus?release_id=&stock_status=
func (h *SKUHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	skus, total, err := h.svc.List(c.Request.Context(), c.Query("release_id"), c.Query("stock_status"), page, pageSize)
	if err != nil {
		InternalError(c, "获取SKU列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{
		"items":      skus,
		"pagination": paginationOf(page, pageSize, total),
	})
}

// Get SKU详情
// GET /api/v1/skus/:id
func (h *SKUHandler) Get(c *gin.Context) {
	sku, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "SKU不存在")
		return
	}
	Success(c, sku)
}

// GetByCode 按编码查询SKU
// GET /api/v1/skus/code/:code
func (h *SKUHandler) GetByCode(c *gin.Context) {
	sku, err := h.svc.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		NotFound(c, "SKU不存在")
		return
	}
	Success(c, sku)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
	// SkipSerials 只登记总量，不补发序列号。用于先导入台账再人工补号的场景。
	SkipSerials bool `json:"skip_serials"`
}

// UpdateQuantity 声明SKU总量，差额生成序列号
// PUT /api/v1/skus/:id/quantity
func (h *SKUHandler) UpdateQuantity(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	if req.SkipSerials {
		ctx = service.WithSuppressed(ctx, service.EffectGenerateSerials)
	}
	sku, result, err := h.svc.UpdateQuantity(ctx, c.Param("id"), req.Quantity, GetUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "SKU不存在")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, gin.H{
		"sku":        sku,
		"generation": result,
	})
}

// Reconcile 以序列号实际状态重算库存
// POST /api/v1/skus/:id/reconcile
func (h *SKUHandler) Reconcile(c *gin.Context) {
	sku, err := h.svc.Reconcile(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "SKU不存在")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, sku)
}

// StatusBreakdown SKU下序列号状态分布
// GET /api/v1/skus/:id/status-breakdown
func (h *SKUHandler) StatusBreakdown(c *gin.Context) {
	counts, err := h.svc.StatusBreakdown(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "SKU不存在")
			return
		}
		InternalError(c, "统计失败: "+err.Error())
		return
	}
	Success(c, counts)
}

// Delete 删除SKU（存在序列号时拒绝）
// DELETE /api/v1/skus/:id
func (h *SKUHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "SKU不存在")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, nil)
}
