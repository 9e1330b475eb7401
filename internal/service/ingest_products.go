package service

import (
	"context"

	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/logger"
	"github.com/mauphunmp-boop/ai-affiliate/internal/repository"
	"github.com/mauphunmp-boop/ai-affiliate/internal/upstream"
)

// ProductsIngestResult 手动商品入库结果
type ProductsIngestResult struct {
	Fetched  int `json:"fetched"`
	Upserted int `json:"upserted"`
	Skipped  int `json:"skipped"`
	Dead     int `json:"dead"`
}

// IngestProducts 手动指定上游路径拉一批商品入库。
// 解析不到已批准活动的记录跳过计数，不中断本批；
// 每条链接都过一次存活探测，探活不过的不落库。
func (s *IngestService) IngestProducts(ctx context.Context, path string, params map[string]string) (*ProductsIngestResult, error) {
	client, runID := s.runClient()
	active := s.activeCampaigns(ctx, client)
	approvedByMerchant := s.approvedByMerchant(active)

	items, err := client.Products(ctx, path, params)
	if err != nil {
		return nil, err
	}

	commissionCache := make(map[string][]upstream.Record)
	promotionCache := make(map[string][]upstream.Record)

	result := &ProductsIngestResult{Fetched: len(items)}
	for _, item := range items {
		merchantLabel := item.FirstStr("merchant", "campaign", "domain")
		if merchantLabel == "" {
			merchantLabel = params["merchant"]
		}

		offer, skip := s.buildOffer(ctx, client, item, merchantLabel, active, approvedByMerchant,
			commissionCache, promotionCache)
		if skip {
			result.Skipped++
			continue
		}
		offer.SourceType = constants.SourceTypeManual

		checkURL := offer.URL
		if offer.AffiliateURL != nil && *offer.AffiliateURL != "" {
			checkURL = *offer.AffiliateURL
		}
		if checkURL != "" && s.checker != nil && !s.checker.CheckURL(ctx, checkURL) {
			result.Dead++
			continue
		}

		if _, err := s.upsertOffer(offer, repository.OfferMatchStrict); err != nil {
			logger.Errorw("manual_offer_upsert_failed",
				"run_id", runID, "source_id", offer.SourceID, "error", err)
			result.Skipped++
			continue
		}
		result.Upserted++
	}

	logger.Infow("products_ingest_done",
		"run_id", runID, "path", path, "fetched", result.Fetched,
		"upserted", result.Upserted, "skipped", result.Skipped, "dead", result.Dead)
	return result, nil
}
