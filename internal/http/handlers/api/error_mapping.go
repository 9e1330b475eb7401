package api

import (
	"errors"

	"github.com/mauphunmp-boop/ai-affiliate/internal/http/response"
	"github.com/mauphunmp-boop/ai-affiliate/internal/logger"
	"github.com/mauphunmp-boop/ai-affiliate/internal/service"
	"github.com/mauphunmp-boop/ai-affiliate/internal/upstream"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

var commonErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidParam, code: response.CodeBadRequest, msg: "invalid parameter"},
	{target: service.ErrConfigNotFound, code: response.CodeNotFound, msg: "config not found"},
	{target: service.ErrCampaignNotFound, code: response.CodeNotFound, msg: "campaign not found"},
	{target: service.ErrOfferNotFound, code: response.CodeNotFound, msg: "offer not found"},
	{target: service.ErrLinkNotFound, code: response.CodeNotFound, msg: "link not found"},
	{target: service.ErrTemplateNotFound, code: response.CodeNotFound, msg: "template not found"},
	{target: service.ErrTemplateUnusable, code: response.CodeBadRequest, msg: "template unusable"},
	{target: service.ErrTokenInvalid, code: response.CodeBadRequest, msg: "token invalid"},
	{target: service.ErrTokenExpired, code: response.CodeBadRequest, msg: "token expired"},
	{target: upstream.ErrNotConfigured, code: response.CodeBadRequest, msg: "upstream api not configured"},
}

// respondError 业务错误映射为统一响应，未识别的错误按内部错误兜底并记日志
func respondError(c *gin.Context, err error, fallbackMsg string) {
	for _, rule := range commonErrorRules {
		if errors.Is(err, rule.target) {
			response.Error(c, rule.code, rule.msg)
			return
		}
	}
	logger.Errorw("handler_error", "path", c.FullPath(), "error", err)
	response.Error(c, response.CodeInternal, fallbackMsg)
}
