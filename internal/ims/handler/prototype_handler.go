package handler

import (
	"errors"

	"github.com/beyyuanzhang/tfoc/internal/ims/repository"
	"github.com/beyyuanzhang/tfoc/internal/ims/service"
	"github.com/gin-gonic/gin"
)

// PrototypeHandler 原型处理器
type PrototypeHandler struct {
	svc *service.PrototypeService
}

func NewPrototypeHandler(svc *service.PrototypeService) *PrototypeHandler {
	return &PrototypeHandler{svc: svc}
}

// Create 创建原型
// POST /api/v1/prototypes
func (h *PrototypeHandler) Create(c *gin.Context) {
	var input service.CreatePrototypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	proto, err := h.svc.Create(c.Request.Context(), &input, GetUserID(c))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Created(c, proto)
}

// List 原型列表
// GET /api/v1/prototypes?status=&keyword=
func (h *PrototypeHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	protos, total, err := h.svc.List(c.Request.Context(), c.Query("status"), c.Query("keyword"), page, pageSize)
	if err != nil {
		InternalError(c, "获取原型列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{
		"items":      protos,
		"pagination": paginationOf(page, pageSize, total),
	})
}

// Get 原型详情
// GET /api/v1/prototypes/:id
func (h *PrototypeHandler) Get(c *gin.Context) {
	proto, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "原型不存在")
		return
	}
	Success(c, proto)
}

// Update 更新原型（编号不可变）
// PATCH /api/v1/prototypes/:id
func (h *PrototypeHandler) Update(c *gin.Context) {
	var input service.UpdatePrototypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	proto, err := h.svc.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "原型不存在")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, proto)
}

// Delete 删除原型（存在Release时拒绝）
// DELETE /api/v1/prototypes/:id
func (h *PrototypeHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "原型不存在")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, nil)
}
