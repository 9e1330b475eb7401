package api

import (
	"strconv"

	"github.com/mauphunmp-boop/ai-affiliate/internal/http/response"
	"github.com/mauphunmp-boop/ai-affiliate/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListCampaigns 活动列表
func (h *Handler) ListCampaigns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	filter := repository.CampaignListFilter{
		Merchant:   c.Query("merchant"),
		Status:     c.Query("status"),
		OnlyActive: c.Query("only_active") == "true",
		Page:       page,
		PageSize:   pageSize,
	}

	campaigns, total, err := h.CatalogService.ListCampaigns(filter)
	if err != nil {
		respondError(c, err, "campaign list failed")
		return
	}
	response.SuccessWithPage(c, campaigns, response.NewPagination(page, pageSize, total))
}

// GetCampaign 活动详情（带佣金政策）
func (h *Handler) GetCampaign(c *gin.Context) {
	campaign, policies, err := h.CatalogService.GetCampaign(c.Param("campaign_id"))
	if err != nil {
		respondError(c, err, "campaign fetch failed")
		return
	}
	response.Success(c, gin.H{
		"campaign":            campaign,
		"commission_policies": policies,
	})
}

// GetCampaignSummary 活动总览
func (h *Handler) GetCampaignSummary(c *gin.Context) {
	summary, err := h.CatalogService.SummarizeCampaigns()
	if err != nil {
		respondError(c, err, "campaign summary failed")
		return
	}
	response.Success(c, summary)
}

// GetRegistrationAlerts 注册状态异常告警
func (h *Handler) GetRegistrationAlerts(c *gin.Context) {
	alerts, err := h.CatalogService.RegistrationAlerts()
	if err != nil {
		respondError(c, err, "registration alerts failed")
		return
	}
	response.Success(c, alerts)
}

// ListPromotions 促销列表
func (h *Handler) ListPromotions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	filter := repository.PromotionListFilter{
		Merchant:   c.Query("merchant"),
		CampaignID: c.Query("campaign_id"),
		Page:       page,
		PageSize:   pageSize,
	}

	promotions, total, err := h.CatalogService.ListPromotions(filter)
	if err != nil {
		respondError(c, err, "promotion list failed")
		return
	}
	response.SuccessWithPage(c, promotions, response.NewPagination(page, pageSize, total))
}
