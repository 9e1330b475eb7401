package api

import (
	"strconv"

	"github.com/mauphunmp-boop/ai-affiliate/internal/http/response"
	"github.com/mauphunmp-boop/ai-affiliate/internal/models"

	"github.com/gin-gonic/gin"
)

// ListTemplates 深链模板列表
func (h *Handler) ListTemplates(c *gin.Context) {
	templates, err := h.LinkService.ListTemplates()
	if err != nil {
		respondError(c, err, "template list failed")
		return
	}
	response.Success(c, templates)
}

type templatePayload struct {
	ID            uint        `json:"id"`
	Network       string      `json:"network"`
	Platform      string      `json:"platform"`
	Template      string      `json:"template"`
	DefaultParams models.JSON `json:"default_params"`
	Enabled       *bool       `json:"enabled"`
}

// SaveTemplate 新建或更新深链模板
func (h *Handler) SaveTemplate(c *gin.Context) {
	var payload templatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	enabled := true
	if payload.Enabled != nil {
		enabled = *payload.Enabled
	}
	tmpl, err := h.LinkService.SaveTemplate(&models.AffiliateTemplate{
		ID:            payload.ID,
		Network:       payload.Network,
		Platform:      payload.Platform,
		Template:      payload.Template,
		DefaultParams: payload.DefaultParams,
		Enabled:       enabled,
	})
	if err != nil {
		respondError(c, err, "template save failed")
		return
	}
	response.Success(c, tmpl)
}

// DeleteTemplate 删除深链模板
func (h *Handler) DeleteTemplate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid template id")
		return
	}
	if err := h.LinkService.DeleteTemplate(uint(id)); err != nil {
		respondError(c, err, "template delete failed")
		return
	}
	response.Success(c, nil)
}
