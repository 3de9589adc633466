package handlers

import (
	"strconv"

	"github.com/easayliu/tg-autorename/internal/application/contracts"
	"github.com/easayliu/tg-autorename/internal/application/dto"
	apperrors "github.com/easayliu/tg-autorename/internal/shared/errors"
	"github.com/easayliu/tg-autorename/internal/shared/utils"
	"github.com/easayliu/tg-autorename/pkg/logger"
	respond "github.com/easayliu/tg-autorename/pkg/utils"
	"github.com/gin-gonic/gin"
)

// PreferenceHandler 用户偏好管理
type PreferenceHandler struct {
	service  contracts.PreferenceService
	renderer *utils.TemplateRenderer
}

// NewPreferenceHandler 创建用户偏好处理器
func NewPreferenceHandler(service contracts.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: service, renderer: utils.NewTemplateRenderer()}
}

// GetPreferences 获取用户偏好
// @Summary 获取用户偏好
// @Tags 用户偏好
// @Produce json
// @Param id path int true "Telegram 用户ID"
// @Success 200 {object} utils.Response{data=dto.PreferencesResponse}
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /users/{id}/preferences [get]
func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	prefs, err := h.service.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	if prefs == nil {
		c.Error(apperrors.NewServiceError(apperrors.ErrorCodeNotFound, "preferences not found"))
		return
	}
	respond.Success(c, dto.NewPreferencesResponse(prefs))
}

// PutPreferences 写入用户偏好
// @Summary 写入用户偏好
// @Description 整体覆盖指定用户的模板、字幕、缩略图与元数据设置
// @Tags 用户偏好
// @Accept json
// @Produce json
// @Param id path int true "Telegram 用户ID"
// @Param request body dto.PreferencesRequest true "用户偏好"
// @Success 200 {object} utils.Response{data=dto.PreferencesResponse}
// @Failure 400 {object} utils.Response
// @Router /users/{id}/preferences [put]
func (h *PreferenceHandler) PutPreferences(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req dto.PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInvalidRequest, "invalid request body", err))
		return
	}
	if !h.renderer.ValidateTemplate(req.FormatTemplate) {
		// 没有占位符的模板同样可用，只是每个文件都会得到相同的名字
		logger.Warn("Template has no placeholders", "user_id", userID, "template", req.FormatTemplate)
	}

	prefs := req.ToEntity(userID)
	if err := h.service.SavePreferences(c.Request.Context(), prefs); err != nil {
		c.Error(err)
		return
	}

	logger.Info("User preferences updated", "user_id", userID, "media_type", prefs.MediaType)
	respond.Success(c, dto.NewPreferencesResponse(prefs))
}

func parseUserID(c *gin.Context) (int64, bool) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		c.Error(apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "invalid user id"))
		return 0, false
	}
	return userID, true
}
