package api

import (
	"strconv"

	"github.com/mauphunmp-boop/ai-affiliate/internal/http/response"
	"github.com/mauphunmp-boop/ai-affiliate/internal/repository"
	"github.com/mauphunmp-boop/ai-affiliate/internal/service"

	"github.com/gin-gonic/gin"
)

// ListOffers 报价列表
func (h *Handler) ListOffers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	filter := repository.OfferListFilter{
		Merchant:       c.Query("merchant"),
		Source:         c.Query("source"),
		SourceType:     c.Query("source_type"),
		CampaignID:     c.Query("campaign_id"),
		OnlyEligible:   c.Query("only_eligible") == "true",
		OnlyWithAffURL: c.Query("only_with_aff_url") == "true",
		Keyword:        c.Query("keyword"),
		Page:           page,
		PageSize:       pageSize,
	}

	offers, total, err := h.CatalogService.ListOffers(filter)
	if err != nil {
		respondError(c, err, "offer list failed")
		return
	}
	response.SuccessWithPage(c, offers, response.NewPagination(page, pageSize, total))
}

// GetOffer 报价详情
func (h *Handler) GetOffer(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid offer id")
		return
	}
	offer, err := h.CatalogService.GetOffer(uint(id))
	if err != nil {
		respondError(c, err, "offer fetch failed")
		return
	}
	response.Success(c, offer)
}

// UpdateOffer 人工修正报价字段
func (h *Handler) UpdateOffer(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid offer id")
		return
	}
	var update service.OfferUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	offer, err := h.CatalogService.UpdateOffer(uint(id), update)
	if err != nil {
		respondError(c, err, "offer update failed")
		return
	}
	response.Success(c, offer)
}

// DeleteOffer 删除报价
func (h *Handler) DeleteOffer(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid offer id")
		return
	}
	if err := h.CatalogService.DeleteOffer(uint(id)); err != nil {
		respondError(c, err, "offer delete failed")
		return
	}
	response.Success(c, nil)
}

// DeleteOffersBySource 按来源批量删除报价
func (h *Handler) DeleteOffersBySource(c *gin.Context) {
	deleted, err := h.CatalogService.DeleteOffersBySource(c.Query("source"))
	if err != nil {
		respondError(c, err, "offer bulk delete failed")
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}

// GetOfferPriceHistory 报价价格历史
func (h *Handler) GetOfferPriceHistory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid offer id")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	history, err := h.CatalogService.OfferPriceHistory(uint(id), limit)
	if err != nil {
		respondError(c, err, "price history fetch failed")
		return
	}
	response.Success(c, history)
}
