package service

import (
	"context"
	"sort"
	"strings"

	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/logger"
	"github.com/mauphunmp-boop/ai-affiliate/internal/models"
	"github.com/mauphunmp-boop/ai-affiliate/internal/upstream"
)

// CampaignSyncOptions 活动同步参数
type CampaignSyncOptions struct {
	Statuses         []string `json:"statuses"`           // 为空时默认只同步 running
	OnlyMy           bool     `json:"only_my"`            // 只保留已批准/待审的活动
	EnrichUserStatus bool     `json:"enrich_user_status"` // 列表页缺注册状态时回查详情
}

// CampaignSyncResult 活动同步结果
type CampaignSyncResult struct {
	Fetched  int `json:"fetched"`
	Upserted int `json:"upserted"`
	Skipped  int `json:"skipped"`
}

// SyncCampaigns 同步上游活动列表到本地库。
// 同一活动在多个状态列表中出现时以后到的为准，落库顺序按活动 ID 排序。
func (s *IngestService) SyncCampaigns(ctx context.Context, options CampaignSyncOptions) (*CampaignSyncResult, error) {
	statuses := options.Statuses
	if len(statuses) == 0 {
		statuses = []string{constants.CampaignStatusRunning}
	}
	client, runID := s.runClient()

	seen := make(map[string]upstream.Record)
	fetcher := upstream.NewFetcher(s.fetcherOpt)
	for _, status := range statuses {
		status := status
		items := fetcher.FetchAll(ctx, func(ctx context.Context, page, limit int) ([]upstream.Record, error) {
			return client.CampaignsPage(ctx, status, page, limit)
		})
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, item := range items {
			cid := item.FirstStr("campaign_id", "id")
			if cid == "" {
				continue
			}
			seen[cid] = item
		}
	}

	cids := make([]string, 0, len(seen))
	for cid := range seen {
		cids = append(cids, cid)
	}
	sort.Strings(cids)

	result := &CampaignSyncResult{Fetched: len(seen)}
	for _, cid := range cids {
		item := seen[cid]
		approval, userStatus := splitApprovalOrUser(item.Str("approval"))
		if userStatus == "" {
			userStatus = item.FirstStr("user_registration_status", "publisher_status", "user_status")
		}
		if userStatus == "" && options.EnrichUserStatus {
			userStatus = s.lookupUserStatus(ctx, client, cid)
		}

		if options.OnlyMy && !isMyCampaign(userStatus) {
			// 上游没给注册状态时保留本地已有的批准记录
			existing, err := s.campaignRepo.GetByCampaignID(cid)
			if err == nil && existing != nil && isMyCampaign(existing.UserRegistrationStatus) {
				if userStatus == "" {
					userStatus = existing.UserRegistrationStatus
				}
			} else {
				result.Skipped++
				continue
			}
		}

		_, err := s.campaignRepo.Upsert(&models.Campaign{
			CampaignID:             cid,
			Merchant:               strings.ToLower(item.FirstStr("merchant", "name")),
			Name:                   item.Str("name"),
			Description:            item.Str("description"),
			Status:                 mapStatus(item.Str("status")),
			Approval:               approval,
			StartTime:              item.Str("start_time"),
			EndTime:                item.Str("end_time"),
			UserRegistrationStatus: userStatus,
		})
		if err != nil {
			logger.Errorw("campaign_upsert_failed", "campaign_id", cid, "error", err)
			continue
		}
		result.Upserted++
	}

	logger.Infow("campaigns_sync_done",
		"run_id", runID, "statuses", statuses, "fetched", result.Fetched,
		"upserted", result.Upserted, "skipped", result.Skipped)
	return result, nil
}

// lookupUserStatus 回查活动详情补注册状态
func (s *IngestService) lookupUserStatus(ctx context.Context, client *upstream.Client, campaignID string) string {
	detail, err := client.CampaignDetail(ctx, campaignID)
	if err != nil || detail == nil {
		return ""
	}
	if v := detail.FirstStr("user_registration_status", "publisher_status", "user_status"); v != "" {
		return v
	}
	_, userStatus := splitApprovalOrUser(detail.Str("approval"))
	return userStatus
}

// isMyCampaign 注册状态是否属于“我的活动”（已批准或待审）
func isMyCampaign(userStatus string) bool {
	s := strings.ToUpper(strings.TrimSpace(userStatus))
	return s == constants.RegistrationApproved ||
		s == constants.RegistrationSuccessful ||
		s == constants.RegistrationPending
}

// syncCampaignsLite 商品流入库前的轻量活动同步，返回批准/待审活动集合
func (s *IngestService) syncCampaignsLite(ctx context.Context) (map[string]bool, error) {
	if _, err := s.SyncCampaigns(ctx, CampaignSyncOptions{
		Statuses: []string{constants.CampaignStatusRunning},
		OnlyMy:   true,
	}); err != nil {
		return nil, err
	}

	return s.campaignRepo.MyCampaignIDs()
}
