package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"simplelink/internal/apperrors"
	"simplelink/internal/middleware"
	"simplelink/internal/model"
	"simplelink/internal/repository"
	"simplelink/internal/service"

	"github.com/gin-gonic/gin"
)

// ShortLinkHandler 处理器
type ShortLinkHandler struct {
	links    *service.LinkService
	stats    *service.StatsService
	recorder *service.ClickRecorder
	store    *repository.Store
}

// NewShortLinkHandler 创建处理器实例
func NewShortLinkHandler(links *service.LinkService, stats *service.StatsService, recorder *service.ClickRecorder, store *repository.Store) *ShortLinkHandler {
	return &ShortLinkHandler{
		links:    links,
		stats:    stats,
		recorder: recorder,
		store:    store,
	}
}

// CreateShortLinkRequest 创建短链接请求
type CreateShortLinkRequest struct {
	URL        string `json:"url" binding:"required" example:"https://github.com/gin-gonic/gin"`
	CustomCode string `json:"custom_code" binding:"omitempty,shortcode" example:"gin"`
	Source     string `json:"source" binding:"max=256" example:"twitter"`
}

// UpdateShortLinkRequest 修改短链接请求，省略的字段保持不变
type UpdateShortLinkRequest struct {
	URL        *string `json:"url" example:"https://gin-gonic.com"`
	CustomCode *string `json:"custom_code" example:"gin-docs"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string    `json:"status" example:"healthy"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error" example:"Not found"`
}

// HealthCheck godoc
// @Summary 健康检查
// @Tags System
// @Produce  json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /api/health [get]
func (h *ShortLinkHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Timestamp: time.Now().UTC()})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Timestamp: time.Now().UTC()})
}

// CreateShortLink godoc
// @Summary 创建短链接
// @Description 为一个长 URL 创建短链接，可指定自定义短码
// @Tags ShortLink
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   link  body   CreateShortLinkRequest  true  "长链接与可选短码"
// @Success 201 {object} model.Link
// @Failure 400 {object} ErrorResponse "请求无效"
// @Failure 401 {object} ErrorResponse "未认证"
// @Failure 409 {object} ErrorResponse "短码已被占用"
// @Router /api/shorten [post]
func (h *ShortLinkHandler) CreateShortLink(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		_ = c.Error(apperrors.ErrUnauthorized)
		return
	}

	var req CreateShortLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	link, err := h.links.Create(c.Request.Context(), userID, service.CreateLinkInput{
		URL:        req.URL,
		CustomCode: req.CustomCode,
		Source:     req.Source,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

// GetAllLinks godoc
// @Summary 获取当前用户的短链接
// @Tags ShortLink
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {array} model.Link
// @Failure 401 {object} ErrorResponse "未认证"
// @Router /api/links [get]
func (h *ShortLinkHandler) GetAllLinks(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		_ = c.Error(apperrors.ErrUnauthorized)
		return
	}

	links, err := h.links.List(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, links)
}

// UpdateLink godoc
// @Summary 修改短链接
// @Tags ShortLink
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   id    path   int                     true  "链接 ID"
// @Param   link  body   UpdateShortLinkRequest  true  "新的目标地址或短码"
// @Success 200 {object} model.Link
// @Failure 400 {object} ErrorResponse "请求无效"
// @Failure 403 {object} ErrorResponse "无权操作"
// @Failure 404 {object} ErrorResponse "链接不存在"
// @Failure 409 {object} ErrorResponse "短码已被占用"
// @Router /api/links/{id} [patch]
func (h *ShortLinkHandler) UpdateLink(c *gin.Context) {
	userID, id, ok := ownerAndID(c)
	if !ok {
		return
	}

	var req UpdateShortLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	link, err := h.links.Update(c.Request.Context(), userID, id, service.UpdateLinkInput{
		URL:        req.URL,
		CustomCode: req.CustomCode,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// DeleteLink godoc
// @Summary 删除短链接
// @Description 删除短链接及其全部点击记录
// @Tags ShortLink
// @Security ApiKeyAuth
// @Param   id  path  int  true  "链接 ID"
// @Success 204 "删除成功"
// @Failure 403 {object} ErrorResponse "无权操作"
// @Failure 404 {object} ErrorResponse "链接不存在"
// @Router /api/links/{id} [delete]
func (h *ShortLinkHandler) DeleteLink(c *gin.Context) {
	userID, id, ok := ownerAndID(c)
	if !ok {
		return
	}
	if err := h.links.Delete(c.Request.Context(), userID, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetClickStats godoc
// @Summary 按天统计点击
// @Tags Stats
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  int  true  "链接 ID"
// @Success 200 {array} model.DailyClicks
// @Failure 403 {object} ErrorResponse "无权操作"
// @Failure 404 {object} ErrorResponse "链接不存在"
// @Router /api/links/{id}/clicks [get]
func (h *ShortLinkHandler) GetClickStats(c *gin.Context) {
	userID, id, ok := ownerAndID(c)
	if !ok {
		return
	}
	stats, err := h.stats.ClicksByDay(c.Request.Context(), userID, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetSourceStats godoc
// @Summary 按来源统计点击
// @Tags Stats
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  int  true  "链接 ID"
// @Success 200 {array} model.SourceClicks
// @Failure 403 {object} ErrorResponse "无权操作"
// @Failure 404 {object} ErrorResponse "链接不存在"
// @Router /api/links/{id}/sources [get]
func (h *ShortLinkHandler) GetSourceStats(c *gin.Context) {
	userID, id, ok := ownerAndID(c)
	if !ok {
		return
	}
	stats, err := h.stats.ClicksBySource(c.Request.Context(), userID, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RedirectToOriginal godoc
// @Summary 短链接跳转
// @Description 307 跳转到原始地址，source 参数记为点击来源
// @Tags ShortLink
// @Param   short_code  path   string  true   "短码"
// @Param   source      query  string  false  "点击来源"
// @Success 307 "跳转"
// @Failure 404 {object} ErrorResponse "链接不存在"
// @Router /{short_code} [get]
func (h *ShortLinkHandler) RedirectToOriginal(c *gin.Context) {
	link, err := h.links.Resolve(c.Request.Context(), c.Param("short_code"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	// 点击异步落库，不阻塞跳转
	h.recorder.Enqueue(model.ClickEvent{
		LinkID:    link.ID,
		Source:    service.NormalizeSource(c.Query("source")),
		CreatedAt: time.Now().UTC(),
	})

	c.Header("Cache-Control", "no-cache")
	c.Redirect(http.StatusTemporaryRedirect, link.OriginalURL)
}

// ownerAndID 读取当前用户与路径中的链接 ID，失败时已写入错误
func ownerAndID(c *gin.Context) (uint, uint, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		_ = c.Error(apperrors.ErrUnauthorized)
		return 0, 0, false
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		_ = c.Error(apperrors.ErrInvalidID)
		return 0, 0, false
	}
	return userID, uint(id), true
}
