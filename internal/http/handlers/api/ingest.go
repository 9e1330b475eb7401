package api

import (
	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/http/response"
	"github.com/mauphunmp-boop/ai-affiliate/internal/queue"
	"github.com/mauphunmp-boop/ai-affiliate/internal/service"

	"github.com/gin-gonic/gin"
)

// background 是否请求异步执行（需要队列可用）
func (h *Handler) background(c *gin.Context) bool {
	return c.Query("background") == "true" && h.QueueClient.Enabled()
}

// SyncCampaigns 触发活动同步
func (h *Handler) SyncCampaigns(c *gin.Context) {
	var options service.CampaignSyncOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&options); err != nil {
			response.BadRequest(c, "invalid payload")
			return
		}
	}

	if h.background(c) {
		err := h.QueueClient.EnqueueCampaignsSync(queue.CampaignsSyncPayload{
			Statuses:         options.Statuses,
			OnlyMy:           options.OnlyMy,
			EnrichUserStatus: options.EnrichUserStatus,
		})
		if err != nil {
			respondError(c, err, "campaigns sync enqueue failed")
			return
		}
		response.SuccessWithMsg(c, "queued", nil)
		return
	}

	result, err := h.IngestService.SyncCampaigns(c.Request.Context(), options)
	if err != nil {
		respondError(c, err, "campaigns sync failed")
		return
	}
	response.Success(c, result)
}

// IngestDatafeedsAll 触发商品流全量入库
func (h *Handler) IngestDatafeedsAll(c *gin.Context) {
	if h.background(c) {
		if err := h.QueueClient.EnqueueDatafeedsIngest(); err != nil {
			respondError(c, err, "datafeeds ingest enqueue failed")
			return
		}
		response.SuccessWithMsg(c, "queued", nil)
		return
	}

	result, err := h.IngestService.IngestDatafeedsAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "datafeeds ingest failed")
		return
	}
	response.Success(c, result)
}

// IngestPromotions 触发促销入库
func (h *Handler) IngestPromotions(c *gin.Context) {
	merchant := c.Query("merchant")
	createOffers := c.Query("create_offers") == "true"

	result, err := h.IngestService.IngestPromotions(c.Request.Context(), merchant, createOffers)
	if err != nil {
		respondError(c, err, "promotions ingest failed")
		return
	}
	response.Success(c, result)
}

// IngestTopProducts 触发热销商品入库
func (h *Handler) IngestTopProducts(c *gin.Context) {
	result, err := h.IngestService.IngestTopProducts(c.Request.Context(),
		c.Query("merchant"), c.Query("date_from"), c.Query("date_to"))
	if err != nil {
		respondError(c, err, "top products ingest failed")
		return
	}
	response.Success(c, result)
}

type productsIngestPayload struct {
	Path   string            `json:"path"`
	Params map[string]string `json:"params"`
}

// IngestProducts 手动指定上游路径入库
func (h *Handler) IngestProducts(c *gin.Context) {
	var payload productsIngestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	if payload.Path == "" {
		response.BadRequest(c, "path required")
		return
	}

	result, err := h.IngestService.IngestProducts(c.Request.Context(), payload.Path, payload.Params)
	if err != nil {
		respondError(c, err, "products ingest failed")
		return
	}
	response.Success(c, result)
}

type importPayload struct {
	Rows []service.ImportOfferRow `json:"rows"`
}

// ImportOffers 批量导入报价
func (h *Handler) ImportOffers(c *gin.Context) {
	var payload importPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	if len(payload.Rows) == 0 {
		response.BadRequest(c, "rows required")
		return
	}

	result, err := h.IngestService.ImportOffers(c.Request.Context(), payload.Rows, h.ConvertService)
	if err != nil {
		respondError(c, err, "offer import failed")
		return
	}
	response.Success(c, result)
}

// GetIngestPolicy 读取入库策略开关
func (h *Handler) GetIngestPolicy(c *gin.Context) {
	policy, err := h.IngestPolicyServ.Get()
	if err != nil {
		respondError(c, err, "policy fetch failed")
		return
	}
	response.Success(c, gin.H{
		"only_with_commission": policy.OnlyWithCommission,
		"check_urls":           policy.CheckURLs,
		"linkcheck_cursor":     policy.LinkcheckCursor,
		"linkcheck_mod":        policy.LinkcheckMod,
		"linkcheck_limit":      policy.LinkcheckLimit,
	})
}

type policyFlagPayload struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// SetIngestPolicyFlag 写入单个策略开关
func (h *Handler) SetIngestPolicyFlag(c *gin.Context) {
	var payload policyFlagPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	switch payload.Key {
	case constants.PolicyKeyOnlyWithCommission, constants.PolicyKeyCheckURLs,
		constants.PolicyKeyLinkcheckCursor, constants.PolicyKeyLinkcheckMod,
		constants.PolicyKeyLinkcheckLimit:
	default:
		response.BadRequest(c, "unknown policy key")
		return
	}
	if err := h.IngestPolicyServ.SetFlag(payload.Key, payload.Value); err != nil {
		respondError(c, err, "policy update failed")
		return
	}
	response.Success(c, nil)
}
