package service

import "errors"

// 服务层哨兵错误，处理器据此映射业务码
var (
	ErrConfigNotFound   = errors.New("api config not found")
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrOfferNotFound    = errors.New("offer not found")
	ErrLinkNotFound     = errors.New("affiliate link not found")
	ErrTemplateNotFound = errors.New("affiliate template not found")
	ErrTemplateUnusable = errors.New("no usable affiliate template")
	ErrInvalidParam     = errors.New("invalid parameter")
	ErrTokenInvalid     = errors.New("redirect token invalid")
	ErrTokenExpired     = errors.New("redirect token expired")
)
