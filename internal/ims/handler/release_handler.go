package handler

import (
	"errors"

	"github.com/beyyuanzhang/tfoc/internal/ims/repository"
	"github.com/beyyuanzhang/tfoc/internal/ims/service"
	"github.com/gin-gonic/gin"
)

// ReleaseHandler Release处理器
type ReleaseHandler struct {
	svc       *service.ReleaseService
	exportSvc *service.ExportService
}

func NewReleaseHandler(svc *service.ReleaseService, exportSvc *service.ExportService) *ReleaseHandler {
	return &ReleaseHandler{svc: svc, exportSvc: exportSvc}
}

// Create 创建Release（写入前重算定价，写入后触发SKU级联）
// POST /api/v1/releases
func (h *ReleaseHandler) Create(c *gin.Context) {
	var input service.CreateReleaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	if c.Query("skip_skus") == "true" {
		// 先建档不铺SKU，之后由 generate-skus 手动触发级联
		ctx = service.WithSuppressed(ctx, service.EffectGenerateSKUs)
	}
	release, err := h.svc.Create(ctx, &input, GetUserID(c))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Created(c, release)
}

// List Release列表
// GET /api/v1/releases?prototype_id=&status=
func (h *ReleaseHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	releases, total, err := h.svc.List(c.Request.Context(), c.Query("prototype_id"), c.Query("status"), page, pageSize)
	if err != nil {
		InternalError(c, "获取Release列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{
		"items":      releases,
		"pagination": paginationOf(page, pageSize, total),
	})
}

// Get Release详情（含成分、配色媒体与KPI）
// GET /api/v1/releases/:id
func (h *ReleaseHandler) Get(c *gin.Context) {
	release, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "Release不存在")
		return
	}
	Success(c, release)
}

// Update 更新Release（派生字段重算，请求中的派生值被忽略）
// PATCH /api/v1/releases/:id
func (h *ReleaseHandler) Update(c *gin.Context) {
	var input service.UpdateReleaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	release, err := h.svc.Update(c.Request.Context(), c.Param("id"), &input, GetUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "Release不存在")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, release)
}

// Delete 删除Release（存在SKU时拒绝）
// DELETE /api/v1/releases/:id
func (h *ReleaseHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "Release不存在")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, nil)
}

// GenerateSKUs 显式触发SKU级联
// POST /api/v1/releases/:id/generate-skus
func (h *ReleaseHandler) GenerateSKUs(c *gin.Context) {
	result, err := h.svc.GenerateSKUs(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "Release不存在")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, result)
}

// Export 导出Release下SKU报表
// GET /api/v1/releases/:id/export
func (h *ReleaseHandler) Export(c *gin.Context) {
	f, filename, err := h.exportSvc.ExportReleaseSKUs(c.Request.Context(), c.Param("id"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}
