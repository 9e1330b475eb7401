package service

import (
	"context"
	"sort"
	"time"

	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/logger"
	"github.com/mauphunmp-boop/ai-affiliate/internal/repository"
	"github.com/mauphunmp-boop/ai-affiliate/internal/upstream"
)

// TopProductsIngestResult 热销商品入库结果
type TopProductsIngestResult struct {
	Merchants int `json:"merchants"`
	Fetched   int `json:"fetched"`
	Upserted  int `json:"upserted"`
	Skipped   int `json:"skipped"`
}

// IngestTopProducts 拉取热销榜并入库。
// 日期区间缺省取最近 7 天；merchant 为空时遍历全部已批准商家。
func (s *IngestService) IngestTopProducts(ctx context.Context, merchant, dateFrom, dateTo string) (*TopProductsIngestResult, error) {
	if dateFrom == "" || dateTo == "" {
		now := time.Now()
		dateTo = now.Format("2006-01-02")
		dateFrom = now.AddDate(0, 0, -7).Format("2006-01-02")
	}

	client, runID := s.runClient()
	active := s.activeCampaigns(ctx, client)
	approvedByMerchant := s.approvedByMerchant(active)

	var merchants []string
	if m := s.resolver.NormalizeMerchant(merchant); m != "" {
		merchants = []string{m}
	} else {
		for m := range approvedByMerchant {
			merchants = append(merchants, m)
		}
		sort.Strings(merchants)
	}

	limit := s.fetcherOpt.LimitPerPage
	if limit < 1 {
		limit = 50
	}
	maxPages := s.fetcherOpt.MaxPages
	if maxPages < 1 {
		maxPages = 1000
	}

	commissionCache := make(map[string][]upstream.Record)
	promotionCache := make(map[string][]upstream.Record)

	result := &TopProductsIngestResult{Merchants: len(merchants)}
	for _, m := range merchants {
		for page := 1; page <= maxPages; page++ {
			items, err := client.TopProducts(ctx, m, dateFrom, dateTo, page, limit)
			if err != nil {
				if ctx.Err() != nil {
					return nil, err
				}
				logger.Warnw("top_products_page_failed",
					"run_id", runID, "merchant", m, "page", page, "error", err)
				break
			}
			if len(items) == 0 {
				break
			}

			for _, item := range items {
				result.Fetched++
				offer, skip := s.buildOffer(ctx, client, item, m, active, approvedByMerchant,
					commissionCache, promotionCache)
				if skip {
					result.Skipped++
					continue
				}
				offer.SourceType = constants.SourceTypeTopProducts
				offer.SourceID = hashedSourceID("top", offer.Merchant,
					item.FirstStr("product_id", "id"), item.FirstStr("url", "landing_url", "link"))
				if _, err := s.upsertOffer(offer, repository.OfferMatchStrict); err != nil {
					logger.Errorw("top_product_upsert_failed",
						"run_id", runID, "merchant", m, "error", err)
					result.Skipped++
					continue
				}
				result.Upserted++
			}
		}
	}

	logger.Infow("top_products_ingest_done",
		"run_id", runID, "merchants", result.Merchants, "fetched", result.Fetched,
		"upserted", result.Upserted, "skipped", result.Skipped)
	return result, nil
}
