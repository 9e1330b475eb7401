package service

import (
	"context"
	"strings"

	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/logger"
	"github.com/mauphunmp-boop/ai-affiliate/internal/models"
	"github.com/mauphunmp-boop/ai-affiliate/internal/repository"
	"github.com/mauphunmp-boop/ai-affiliate/internal/upstream"
)

// DeeplinkConverter 深度链接转换（模板替换），导入时补推广链接用
type DeeplinkConverter interface {
	Convert(merchant, target string) (string, error)
}

// ImportOfferRow 批量导入的一行商品
type ImportOfferRow struct {
	Merchant     string   `json:"merchant"`
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	AffiliateURL string   `json:"affiliate_url"`
	ImageURL     string   `json:"image_url"`
	Price        *float64 `json:"price"`
	Currency     string   `json:"currency"`
	SourceID     string   `json:"source_id"`
	CampaignID   string   `json:"campaign_id"`
}

// ImportResult 批量导入结果
type ImportResult struct {
	Total    int `json:"total"`
	Upserted int `json:"upserted"`
	Skipped  int `json:"skipped"`
	Dead     int `json:"dead"`
}

// ImportOffers 批量导入报价。导入是唯一应用 ingest_policy 开关的路径：
// only_with_commission 丢弃无佣金政策活动的行，check_urls 逐行探活。
// 合并按 source_id 单键匹配，source_id 缺省由链接哈希派生。
func (s *IngestService) ImportOffers(ctx context.Context, rows []ImportOfferRow, converter DeeplinkConverter) (*ImportResult, error) {
	policy, err := s.policyService.Get()
	if err != nil {
		return nil, err
	}

	client, runID := s.runClient()
	active := s.activeCampaigns(ctx, client)
	approvedByMerchant := s.approvedByMerchant(active)
	commissionCache := make(map[string][]upstream.Record)

	result := &ImportResult{Total: len(rows)}
	for _, row := range rows {
		merchant := s.resolver.NormalizeMerchant(row.Merchant)
		if merchant == "" || row.URL == "" {
			result.Skipped++
			continue
		}

		cid, _ := s.resolver.ResolveEligible(row.CampaignID, merchant, active, approvedByMerchant)
		if policy.OnlyWithCommission {
			if cid == "" || len(s.commissionFor(ctx, client, cid, commissionCache)) == 0 {
				result.Skipped++
				continue
			}
		}

		aff := strings.TrimSpace(row.AffiliateURL)
		if aff == "" && converter != nil {
			if converted, err := converter.Convert(merchant, row.URL); err == nil {
				aff = converted
			}
		}

		if policy.CheckURLs && s.checker != nil {
			target := row.URL
			if aff != "" {
				target = aff
			}
			if !s.checker.CheckURL(ctx, target) {
				result.Dead++
				continue
			}
		}

		sourceID := strings.TrimSpace(row.SourceID)
		if sourceID == "" {
			sourceID = hashedSourceID("import", merchant, row.URL, aff)
		}

		offer := &models.Offer{
			Source:     constants.SourceExcel,
			SourceID:   sourceID,
			SourceType: constants.SourceTypeExcel,
			Merchant:   merchant,
			CampaignID: cid,
			Title:      row.Title,
			URL:        row.URL,
			ImageURL:   row.ImageURL,
			Currency:   row.Currency,
		}
		if row.Price != nil {
			offer.Price = models.MoneyPtr(models.NewMoneyFromFloat(*row.Price))
		}
		if aff != "" {
			offer.AffiliateURL = &aff
			offer.AffiliateLinkAvailable = true
		}
		if cid != "" {
			_, snapshot, _ := s.campaignSnapshot(cid)
			offer.ApprovalStatus = snapshot
		}

		if _, err := s.upsertOffer(offer, repository.OfferMatchSourceID); err != nil {
			logger.Errorw("import_offer_upsert_failed",
				"run_id", runID, "source_id", sourceID, "error", err)
			result.Skipped++
			continue
		}
		result.Upserted++
	}

	logger.Infow("offers_import_done",
		"run_id", runID, "total", result.Total, "upserted", result.Upserted,
		"skipped", result.Skipped, "dead", result.Dead)
	return result, nil
}
