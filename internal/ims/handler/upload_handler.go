package handler

import (
	"time"

	"github.com/beyyuanzhang/tfoc/internal/ims/service"
	"github.com/gin-gonic/gin"
)

// UploadHandler 媒体上传处理器
type UploadHandler struct {
	svc *service.UploadService
}

func NewUploadHandler(svc *service.UploadService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// Upload 上传媒体文件
// POST /api/v1/uploads
func (h *UploadHandler) Upload(c *gin.Context) {
	if !h.svc.Enabled() {
		Error(c, 50300, "对象存储未配置")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "缺少文件: "+err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "读取文件失败: "+err.Error())
		return
	}
	defer file.Close()

	ref, err := h.svc.Upload(c.Request.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, ref)
}

// Download 获取限时下载链接
// GET /api/v1/uploads/url?object=...
func (h *UploadHandler) Download(c *gin.Context) {
	object := c.Query("object")
	if object == "" {
		BadRequest(c, "缺少object参数")
		return
	}

	url, err := h.svc.PresignedURL(c.Request.Context(), object, 15*time.Minute)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"url": url})
}

// Remove 删除对象存储中的媒体文件
// DELETE /api/v1/uploads?object=...
func (h *UploadHandler) Remove(c *gin.Context) {
	object := c.Query("object")
	if object == "" {
		BadRequest(c, "缺少object参数")
		return
	}

	if err := h.svc.Remove(c.Request.Context(), object); err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, nil)
}
