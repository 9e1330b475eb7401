package repository

// OfferMatchStrategy 报价去重策略。
// 历史上存在两套并行口径：严格口径按 (source, source_id) 匹配，
// 宽松口径只按 source_id 匹配（Excel 导入路径沿用）。
// 两套口径按入口显式选择，不做静默统一。
type OfferMatchStrategy int

const (
	// OfferMatchStrict 严格匹配 (source, source_id)
	OfferMatchStrict OfferMatchStrategy = iota
	// OfferMatchSourceID 宽松匹配，仅按 source_id（忽略 source）
	OfferMatchSourceID
)

// CampaignListFilter 活动列表筛选
type CampaignListFilter struct {
	Merchant   string
	Status     string
	OnlyActive bool // 仅返回 running 且 APPROVED
	Page       int
	PageSize   int
}

// OfferListFilter 报价列表筛选
type OfferListFilter struct {
	Merchant       string
	Source         string
	SourceType     string
	CampaignID     string
	OnlyEligible   bool
	OnlyWithAffURL bool
	Keyword        string
	Page           int
	PageSize       int
}

// PromotionListFilter 促销列表筛选
type PromotionListFilter struct {
	Merchant   string
	CampaignID string
	Page       int
	PageSize   int
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	return page, pageSize
}
