package api

import (
	"strconv"

	"github.com/mauphunmp-boop/ai-affiliate/internal/http/response"
	"github.com/mauphunmp-boop/ai-affiliate/internal/models"

	"github.com/gin-gonic/gin"
)

// ListLinks 推广链接列表
func (h *Handler) ListLinks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	links, total, err := h.LinkService.ListLinks(page, pageSize)
	if err != nil {
		respondError(c, err, "link list failed")
		return
	}
	response.SuccessWithPage(c, links, response.NewPagination(page, pageSize, total))
}

// GetLink 推广链接详情
func (h *Handler) GetLink(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid link id")
		return
	}
	link, err := h.LinkService.GetLink(uint(id))
	if err != nil {
		respondError(c, err, "link fetch failed")
		return
	}
	response.Success(c, link)
}

type linkPayload struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	AffiliateURL string `json:"affiliate_url"`
}

// CreateLink 新建推广链接
func (h *Handler) CreateLink(c *gin.Context) {
	var payload linkPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	link := &models.AffiliateLink{
		Name:         payload.Name,
		URL:          payload.URL,
		AffiliateURL: payload.AffiliateURL,
	}
	if err := h.LinkService.CreateLink(link); err != nil {
		respondError(c, err, "link create failed")
		return
	}
	response.Success(c, link)
}

// UpdateLink 更新推广链接
func (h *Handler) UpdateLink(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid link id")
		return
	}
	var payload linkPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	link, err := h.LinkService.UpdateLink(uint(id), &models.AffiliateLink{
		Name:         payload.Name,
		URL:          payload.URL,
		AffiliateURL: payload.AffiliateURL,
	})
	if err != nil {
		respondError(c, err, "link update failed")
		return
	}
	response.Success(c, link)
}

// DeleteLink 删除推广链接
func (h *Handler) DeleteLink(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid link id")
		return
	}
	if err := h.LinkService.DeleteLink(uint(id)); err != nil {
		respondError(c, err, "link delete failed")
		return
	}
	response.Success(c, nil)
}
