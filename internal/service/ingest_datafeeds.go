package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/logger"
	"github.com/mauphunmp-boop/ai-affiliate/internal/models"
	"github.com/mauphunmp-boop/ai-affiliate/internal/repository"
	"github.com/mauphunmp-boop/ai-affiliate/internal/upstream"
)

// DatafeedsIngestResult 商品流全量入库结果
type DatafeedsIngestResult struct {
	Campaigns int `json:"campaigns"`
	Fetched   int `json:"fetched"`
	Upserted  int `json:"upserted"`
	Skipped   int `json:"skipped"`
	Dead      int `json:"dead"`
}

// IngestDatafeedsAll 按已批准活动逐商家拉取商品流并入库。
// 每个活动先落一次详情、佣金政策与促销，商品逐页拉取，
// 页内条数不足即认为该商家拉完。
// ingest_policy 打开 check_urls 时逐条探活，死链不落库。
func (s *IngestService) IngestDatafeedsAll(ctx context.Context) (*DatafeedsIngestResult, error) {
	if _, err := s.syncCampaignsLite(ctx); err != nil {
		return nil, err
	}

	client, runID := s.runClient()
	active := s.activeCampaigns(ctx, client)
	approvedByMerchant := s.approvedByMerchant(active)

	cids := make([]string, 0, len(active))
	for cid := range active {
		cids = append(cids, cid)
	}
	sort.Strings(cids)

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

	// check_urls 开关来自 ingest_policy 配置行，默认关闭
	checkURLs := false
	if policy, err := s.policyService.Get(); err == nil {
		checkURLs = policy.CheckURLs
	}

	result := &DatafeedsIngestResult{Campaigns: len(cids)}
	for _, cid := range cids {
		merchant := active[cid]
		s.upsertCampaignDetail(ctx, client, cid, merchant)
		s.commissionFor(ctx, client, cid, commissionCache)
		s.promotionsFor(ctx, client, cid, merchant, promotionCache)

		for page := 1; page <= maxPages; page++ {
			items, err := client.Datafeeds(ctx, merchant, page, limit)
			if err != nil {
				if errors.Is(err, upstream.ErrNotConfigured) || ctx.Err() != nil {
					return nil, err
				}
				logger.Warnw("datafeeds_page_failed",
					"run_id", runID, "merchant", merchant, "page", page, "error", err)
				break
			}
			if len(items) == 0 {
				break
			}

			for _, item := range items {
				result.Fetched++
				offer, skip := s.buildOffer(ctx, client, item, merchant, active, approvedByMerchant,
					commissionCache, promotionCache)
				if skip {
					result.Skipped++
					continue
				}
				if checkURLs && s.checker != nil && offer.URL != "" && !s.checker.CheckURL(ctx, offer.URL) {
					result.Dead++
					continue
				}
				if _, err := s.upsertOffer(offer, repository.OfferMatchStrict); err != nil {
					logger.Errorw("offer_upsert_failed",
						"run_id", runID, "source_id", offer.SourceID, "error", err)
					result.Skipped++
					continue
				}
				result.Upserted++
			}

			if len(items) < limit {
				break
			}
		}
	}

	logger.Infow("datafeeds_ingest_done",
		"run_id", runID, "campaigns", result.Campaigns, "fetched", result.Fetched,
		"upserted", result.Upserted, "skipped", result.Skipped, "dead", result.Dead)
	return result, nil
}

// buildOffer 单条商品记录构造报价：先解析可入库活动，
// 无已批准活动可挂则跳过，命中后补佣金/促销快照与审核状态。
func (s *IngestService) buildOffer(
	ctx context.Context,
	client *upstream.Client,
	item upstream.Record,
	merchantLabel string,
	active map[string]string,
	approvedByMerchant map[string]string,
	commissionCache, promotionCache map[string][]upstream.Record,
) (*models.Offer, bool) {
	label := item.FirstStr("merchant", "campaign", "domain")
	if label == "" {
		label = merchantLabel
	}

	cid, tier := s.resolver.ResolveEligible(item.FirstStr("campaign_id"), label, active, approvedByMerchant)
	if cid == "" {
		logger.Debugw("offer_filtered", "reason", "no_approved_campaign", "merchant", label)
		return nil, true
	}

	commission := s.commissionFor(ctx, client, cid, commissionCache)
	promos := s.promotionsFor(ctx, client, cid, active[cid], promotionCache)

	offer := MapProductToOffer(item, commission, promos)
	offer.SourceType = constants.SourceTypeDatafeed
	offer.CampaignID = cid
	_, snapshot, eligible := s.campaignSnapshot(cid)
	offer.ApprovalStatus = snapshot
	// 可得佣金只看活动状态（running 且已批准），佣金政策拉取失败不改判
	offer.EligibleCommission = eligible
	offer.AffiliateLinkAvailable = offer.AffiliateURL != nil && *offer.AffiliateURL != ""
	if tier != MatchExplicit {
		logger.Debugw("offer_campaign_resolved", "merchant", label, "campaign_id", cid, "tier", string(tier))
	}
	return offer, false
}

// commissionFor 取活动佣金政策（进程内缓存一轮），同时落库
func (s *IngestService) commissionFor(ctx context.Context, client *upstream.Client, campaignID string, cache map[string][]upstream.Record) []upstream.Record {
	if cached, ok := cache[campaignID]; ok {
		return cached
	}
	policies, err := client.CommissionPolicies(ctx, campaignID)
	if err != nil {
		policies = nil
	}
	cache[campaignID] = policies
	s.upsertPolicies(campaignID, policies)
	return policies
}

// promotionsFor 取商家促销（进程内缓存一轮），同时落库
func (s *IngestService) promotionsFor(ctx context.Context, client *upstream.Client, campaignID, merchant string, cache map[string][]upstream.Record) []upstream.Record {
	key := strings.ToLower(strings.TrimSpace(merchant))
	if cached, ok := cache[key]; ok {
		return cached
	}
	promos, err := client.Promotions(ctx, merchant)
	if err != nil {
		promos = nil
	}
	cache[key] = promos
	s.upsertPromotions(campaignID, merchant, promos)
	return promos
}
