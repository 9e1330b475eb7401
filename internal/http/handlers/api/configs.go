package api

import (
	"github.com/mauphunmp-boop/ai-affiliate/internal/http/response"
	"github.com/mauphunmp-boop/ai-affiliate/internal/models"

	"github.com/gin-gonic/gin"
)

// ListConfigs 接入配置列表
func (h *Handler) ListConfigs(c *gin.Context) {
	configs, err := h.LinkService.ListConfigs()
	if err != nil {
		respondError(c, err, "config list failed")
		return
	}
	response.Success(c, configs)
}

// GetConfig 接入配置详情
func (h *Handler) GetConfig(c *gin.Context) {
	cfg, err := h.LinkService.GetConfig(c.Param("name"))
	if err != nil {
		respondError(c, err, "config fetch failed")
		return
	}
	response.Success(c, cfg)
}

type configPayload struct {
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
	ApiKey  string `json:"api_key"`
	Model   string `json:"model"`
}

// UpsertConfig 按名称写入接入配置
func (h *Handler) UpsertConfig(c *gin.Context) {
	var payload configPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	cfg, err := h.LinkService.UpsertConfig(&models.ApiConfig{
		Name:    payload.Name,
		BaseURL: payload.BaseURL,
		ApiKey:  payload.ApiKey,
		Model:   payload.Model,
	})
	if err != nil {
		respondError(c, err, "config upsert failed")
		return
	}
	response.Success(c, cfg)
}

// DeleteConfig 删除接入配置
func (h *Handler) DeleteConfig(c *gin.Context) {
	if err := h.LinkService.DeleteConfig(c.Param("name")); err != nil {
		respondError(c, err, "config delete failed")
		return
	}
	response.Success(c, nil)
}
