package api

import (
	"github.com/mauphunmp-boop/ai-affiliate/internal/http/response"
	"github.com/mauphunmp-boop/ai-affiliate/internal/queue"

	"github.com/gin-gonic/gin"
)

// NormalizeCampaigns 存量活动注册状态归一化
func (h *Handler) NormalizeCampaigns(c *gin.Context) {
	fixed, err := h.CatalogService.NormalizeCampaigns()
	if err != nil {
		respondError(c, err, "campaign normalize failed")
		return
	}
	response.Success(c, gin.H{"fixed": fixed})
}

// LinkcheckRotate 跑一个巡检分片
func (h *Handler) LinkcheckRotate(c *gin.Context) {
	deleteDead := c.Query("delete_dead") == "true"

	if h.background(c) {
		err := h.QueueClient.EnqueueLinkcheckRotate(queue.LinkcheckRotatePayload{DeleteDead: deleteDead})
		if err != nil {
			respondError(c, err, "linkcheck enqueue failed")
			return
		}
		response.SuccessWithMsg(c, "queued", nil)
		return
	}

	result, err := h.LinkcheckService.RunSlice(c.Request.Context(), deleteDead)
	if err != nil {
		respondError(c, err, "linkcheck rotate failed")
		return
	}
	response.Success(c, result)
}

// CleanupDeadOffers 全量扫描并清理死链报价
func (h *Handler) CleanupDeadOffers(c *gin.Context) {
	result, err := h.LinkcheckService.CleanupDead(c.Request.Context())
	if err != nil {
		respondError(c, err, "cleanup failed")
		return
	}
	response.Success(c, result)
}
