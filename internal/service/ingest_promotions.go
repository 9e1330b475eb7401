package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/logger"
	"github.com/mauphunmp-boop/ai-affiliate/internal/models"
	"github.com/mauphunmp-boop/ai-affiliate/internal/repository"
)

// PromotionsIngestResult 促销入库结果
type PromotionsIngestResult struct {
	Merchants  int `json:"merchants"`
	Promotions int `json:"promotions"`
	Offers     int `json:"offers"`
}

// IngestPromotions 拉取并落库促销信息。
// merchant 为空时遍历全部已批准商家；createOffers 打开时为每条促销
// 生成一条最小报价（仅限已批准活动），source_id 由链接哈希派生保证幂等。
func (s *IngestService) IngestPromotions(ctx context.Context, merchant string, createOffers bool) (*PromotionsIngestResult, error) {
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

	result := &PromotionsIngestResult{Merchants: len(merchants)}
	for _, m := range merchants {
		cid := approvedByMerchant[m]
		promos, err := client.Promotions(ctx, m)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			logger.Warnw("promotions_fetch_failed", "run_id", runID, "merchant", m, "error", err)
			continue
		}
		s.upsertPromotions(cid, m, promos)
		result.Promotions += len(promos)

		if !createOffers || cid == "" {
			continue
		}
		_, snapshot, eligible := s.campaignSnapshot(cid)
		if !eligible {
			continue
		}
		for _, prom := range promos {
			link := prom.FirstStr("link", "url")
			aff := prom.FirstStr("aff_link", "affiliate_url")
			if link == "" && aff == "" {
				continue
			}
			offer := &models.Offer{
				Source:         constants.SourceAccesstrade,
				SourceID:       hashedSourceID("promo", m, link, aff),
				SourceType:     constants.SourceTypePromotions,
				Merchant:       m,
				CampaignID:     cid,
				Title:          prom.FirstStr("name", "content"),
				URL:            link,
				ApprovalStatus: snapshot,
				Extra:          models.JSON(prom),
			}
			if aff != "" {
				offer.AffiliateURL = &aff
				offer.AffiliateLinkAvailable = true
			}
			if _, err := s.upsertOffer(offer, repository.OfferMatchStrict); err != nil {
				logger.Errorw("promotion_offer_upsert_failed",
					"run_id", runID, "merchant", m, "error", err)
				continue
			}
			result.Offers++
		}
	}

	logger.Infow("promotions_ingest_done",
		"run_id", runID, "merchants", result.Merchants,
		"promotions", result.Promotions, "offers", result.Offers)
	return result, nil
}

// hashedSourceID 以 "<prefix>:<merchant>:<md5(parts)>" 形式派生幂等 source_id
func hashedSourceID(prefix, merchant string, parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s:%s:%s", prefix, merchant, hex.EncodeToString(sum[:]))
}
