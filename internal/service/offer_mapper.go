package service

import (
	"strings"

	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/models"
	"github.com/mauphunmp-boop/ai-affiliate/internal/upstream"
)

// ExtractProductID 提取商品ID：上游复合ID形如 "322_2062448047" 时取末段
func ExtractProductID(item upstream.Record) string {
	pid := item.FirstStr("product_id", "id", "sku")
	if pid == "" {
		return ""
	}
	if idx := strings.LastIndex(pid, "_"); idx >= 0 {
		return pid[idx+1:]
	}
	return pid
}

// pickPolicy 把一条政策记录压平为标准键
func pickPolicy(rec upstream.Record) models.JSON {
	ratio := rec["sales_ratio"]
	if ratio == nil {
		ratio = rec["ratio"]
	}
	return models.JSON{
		"sales_ratio":  ratio,
		"sales_price":  rec["sales_price"],
		"reward_type":  rec["reward_type"],
		"target_month": rec["target_month"],
	}
}

func hasFlatPolicyKeys(rec upstream.Record) bool {
	for _, key := range []string{"sales_ratio", "ratio", "reward_type", "sales_price"} {
		if _, ok := rec[key]; ok {
			return true
		}
	}
	return false
}

// normalizeCommission 把佣金政策的多种返回形态压平为标准键。
// 优先按 product -> category -> default 匹配，最后退化取首条。
func normalizeCommission(raw []upstream.Record, item upstream.Record) models.JSON {
	if len(raw) == 0 {
		return nil
	}
	first := raw[0]

	if hasFlatPolicyKeys(first) {
		return pickPolicy(first)
	}

	pid := ExtractProductID(item)
	cate := item.FirstStr("cate", "category", "category_id")

	for _, key := range []string{"product", "products"} {
		if pid == "" {
			break
		}
		for _, rec := range first.List(key) {
			if rec.FirstStr("product_id") == pid {
				return pickPolicy(rec)
			}
		}
	}
	for _, key := range []string{"category", "categories"} {
		if cate == "" {
			break
		}
		for _, rec := range first.List(key) {
			if rec.FirstStr("category_id") == cate {
				return pickPolicy(rec)
			}
		}
	}
	if recs := first.List("default"); len(recs) > 0 {
		return pickPolicy(recs[0])
	}
	if rec := first.Sub("default"); rec != nil {
		return pickPolicy(rec)
	}
	if recs := first.List("data"); len(recs) > 0 {
		return pickPolicy(recs[0])
	}
	if rec := first.Sub("data"); rec != nil {
		return pickPolicy(rec)
	}

	return pickPolicy(first)
}

// pickPromotion 把一条促销记录压平为标准键
func pickPromotion(rec upstream.Record) models.JSON {
	content := rec["content"]
	if content == nil {
		content = rec["description"]
	}
	return models.JSON{
		"name":       rec["name"],
		"content":    content,
		"start_time": rec["start_time"],
		"end_time":   rec["end_time"],
		"coupon":     rec["coupon"],
		"link":       rec["link"],
	}
}

// normalizePromotion 选取与商品商家/类目最匹配的促销记录并压平
func normalizePromotion(raw []upstream.Record, item upstream.Record) models.JSON {
	if len(raw) == 0 {
		return nil
	}

	itemMerchant := strings.ToLower(item.FirstStr("merchant"))
	itemCate := item.FirstStr("cate", "category", "category_id")
	for _, rec := range raw {
		if strings.ToLower(rec.FirstStr("merchant")) != itemMerchant {
			continue
		}
		cats := rec.List("categories")
		if len(cats) == 0 || itemCate == "" {
			return pickPromotion(rec)
		}
		for _, cat := range cats {
			if cat.FirstStr("category_id", "id") == itemCate {
				return pickPromotion(rec)
			}
		}
	}
	return pickPromotion(raw[0])
}

// MapProductToOffer 把上游商品记录映射为报价载荷。
// 佣金与促销在此压平进 extra，导出侧无需再解析上游形态。
func MapProductToOffer(item upstream.Record, commission, promotion []upstream.Record) *models.Offer {
	domain := strings.ToLower(item.Str("domain"))
	campaign := strings.ToLower(item.Str("campaign"))
	merchant := strings.ToLower(item.Str("merchant"))
	if merchant == "" {
		merchant = campaign
	}
	if merchant == "" && domain != "" {
		merchant = strings.SplitN(domain, ".", 2)[0]
	}
	if merchant == "" {
		merchant = strings.ToLower(item.Str("shop"))
	}
	if merchant == "" {
		merchant = "unknown"
	}

	title := item.FirstStr("name", "title")
	if title == "" {
		title = "No title"
	}

	var price *models.Money
	if f := item.Float("price"); f != nil {
		price = models.MoneyPtr(models.NewMoneyFromFloat(*f))
	}

	currency := item.Str("currency")
	if currency == "" {
		currency = "VND"
	}

	affURL := item.FirstStr("aff_link", "affiliate_url", "deeplink")
	var affiliateURL *string
	if affURL != "" {
		affiliateURL = &affURL
	}

	extra := make(models.JSON, len(item)+8)
	for k, v := range item {
		extra[k] = v
	}
	if c := normalizeCommission(commission, item); c != nil {
		extra["commission"] = map[string]interface{}(c)
	}
	if p := normalizePromotion(promotion, item); p != nil {
		extra["promotion"] = map[string]interface{}(p)
	}
	extra["desc"] = item.FirstStr("desc", "description")
	extra["cate"] = item.FirstStr("cate", "category", "category_name")
	extra["shop_name"] = item.FirstStr("shop_name", "shop", "merchant_name")
	updateTime := item.FirstStr("update_time", "last_update")
	extra["update_time_raw"] = updateTime
	extra["update_time"] = updateTime

	return &models.Offer{
		Source:                 constants.SourceAccesstrade,
		SourceID:               item.FirstStr("id", "product_id", "sku"),
		Merchant:               merchant,
		Title:                  title,
		URL:                    item.FirstStr("url", "landing_url", "product_url", "link"),
		AffiliateURL:           affiliateURL,
		ImageURL:               item.FirstStr("image", "thumbnail"),
		Price:                  price,
		Currency:               currency,
		CampaignID:             item.FirstStr("campaign_id", "campaign_id_str"),
		ProductID:              ExtractProductID(item),
		AffiliateLinkAvailable: affURL != "",
		Extra:                  extra,
	}
}
