package handler

import (
	"errors"

	"github.com/beyyuanzhang/tfoc/internal/ims/repository"
	"github.com/beyyuanzhang/tfoc/internal/ims/service"
	"github.com/gin-gonic/gin"
)

// TagHandler 标签处理器
type TagHandler struct {
	svc *service.TagService
}

func NewTagHandler(svc *service.TagService) *TagHandler {
	return &TagHandler{svc: svc}
}

// Create 创建标签
// POST /api/v1/tags
func (h *TagHandler) Create(c *gin.Context) {
	var input service.CreateTagInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	tag, err := h.svc.Create(c.Request.Context(), &input, GetUserID(c))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Created(c, tag)
}

// List 标签列表，可按类型过滤
// GET /api/v1/tags?type=color
func (h *TagHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	tags, total, err := h.svc.List(c.Request.Context(), c.Query("type"), page, pageSize)
	if err != nil {
		InternalError(c, "获取标签列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{
		"items":      tags,
		"pagination": paginationOf(page, pageSize, total),
	})
}

// Get 标签详情
// GET /api/v1/tags/:id
func (h *TagHandler) Get(c *gin.Context) {
	tag, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "标签不存在")
		return
	}
	Success(c, tag)
}

// Update 更新标签
// PATCH /api/v1/tags/:id
func (h *TagHandler) Update(c *gin.Context) {
	var input service.UpdateTagInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	tag, err := h.svc.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "标签不存在")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, tag)
}

// Delete 删除标签（被引用时拒绝）
// DELETE /api/v1/tags/:id
func (h *TagHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "标签不存在")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, nil)
}
