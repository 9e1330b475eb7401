package api

import (
	"net/http"

	"github.com/mauphunmp-boop/ai-affiliate/internal/http/response"

	"github.com/gin-gonic/gin"
)

type convertPayload struct {
	Merchant  string `json:"merchant"`
	URL       string `json:"url"`
	Shortlink bool   `json:"shortlink"` // 顺带生成可跳转的签名短链
}

// ConvertLink 原始商品链接转推广链接
func (h *Handler) ConvertLink(c *gin.Context) {
	var payload convertPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}

	converted, err := h.ConvertService.Convert(payload.Merchant, payload.URL)
	if err != nil {
		respondError(c, err, "convert failed")
		return
	}

	data := gin.H{"affiliate_url": converted}
	if payload.Shortlink {
		token, err := h.ShortlinkService.Sign(converted)
		if err != nil {
			respondError(c, err, "shortlink sign failed")
			return
		}
		data["token"] = token
		data["redirect_path"] = "/r/" + token
	}
	response.Success(c, data)
}

type shortlinkPayload struct {
	URL string `json:"url"`
}

// CreateShortlink 为任意链接生成签名跳转令牌
func (h *Handler) CreateShortlink(c *gin.Context) {
	var payload shortlinkPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	token, err := h.ShortlinkService.Sign(payload.URL)
	if err != nil {
		respondError(c, err, "shortlink sign failed")
		return
	}
	response.Success(c, gin.H{
		"token":         token,
		"redirect_path": "/r/" + token,
	})
}

// Redirect 校验签名令牌并 302 跳转
func (h *Handler) Redirect(c *gin.Context) {
	target, err := h.ShortlinkService.Resolve(c.Param("token"))
	if err != nil {
		respondError(c, err, "redirect failed")
		return
	}
	c.Redirect(http.StatusFound, target)
}
