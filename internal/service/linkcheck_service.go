package service

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/logger"
	"github.com/mauphunmp-boop/ai-affiliate/internal/models"
	"github.com/mauphunmp-boop/ai-affiliate/internal/repository"
)

// 部分站点对非浏览器 UA 直接拒绝，探活统一伪装浏览器
const linkcheckUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// LinkcheckOptions 链接巡检参数
type LinkcheckOptions struct {
	Concurrency int
	Timeout     time.Duration
}

// LinkcheckResult 一次巡检的统计
type LinkcheckResult struct {
	Cursor     int `json:"cursor"`
	NextCursor int `json:"next_cursor"`
	Checked    int `json:"checked"`
	Dead       int `json:"dead"`
	Deleted    int `json:"deleted"`
}

// LinkcheckService 链接存活巡检：按游标轮转分片扫描报价链接。
type LinkcheckService struct {
	httpClient    *http.Client
	offerRepo     repository.OfferRepository
	policyService *IngestPolicyService
	concurrency   int
}

// NewLinkcheckService 创建巡检服务
func NewLinkcheckService(offerRepo repository.OfferRepository, policyService *IngestPolicyService, options LinkcheckOptions) *LinkcheckService {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	concurrency := options.Concurrency
	if concurrency < 1 {
		concurrency = 8
	}
	return &LinkcheckService{
		httpClient:    &http.Client{Timeout: timeout},
		offerRepo:     offerRepo,
		policyService: policyService,
		concurrency:   concurrency,
	}
}

// CheckURL 探测链接是否可达。
// 宽进严出：HEAD 响应 4xx 里只有 401/403 视为活（反爬拦截），
// 405 降级为 GET 再试，网络层失败一律放行（避免误杀）。
func (s *LinkcheckService) CheckURL(ctx context.Context, url string) bool {
	alive, retryWithGet := s.probe(ctx, http.MethodHead, url)
	if retryWithGet {
		alive, _ = s.probe(ctx, http.MethodGet, url)
	}
	return alive
}

func (s *LinkcheckService) probe(ctx context.Context, method, url string) (alive, retryWithGet bool) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return false, false
	}
	req.Header.Set("User-Agent", linkcheckUserAgent)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		// 网络失败不代表链接已死，放行
		return true, false
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 400:
		return true, false
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return true, false
	case resp.StatusCode == http.StatusMethodNotAllowed && method == http.MethodHead:
		return false, true
	}
	return false, false
}

// CheckOffer 探测单条报价。只打原始链接，
// 定时任务探推广链接会在联盟侧刷出虚假点击。
func (s *LinkcheckService) CheckOffer(ctx context.Context, offer *models.Offer) bool {
	if offer.URL == "" {
		return false
	}
	return s.CheckURL(ctx, offer.URL)
}

// RunSlice 扫描当前游标对应的分片（id % mod == cursor）并推进游标。
// 游标持久化在 ingest_policy 配置行里，连续 mod 次调用覆盖全量。
func (s *LinkcheckService) RunSlice(ctx context.Context, deleteDead bool) (*LinkcheckResult, error) {
	policy, err := s.policyService.Get()
	if err != nil {
		return nil, err
	}
	mod := policy.LinkcheckMod
	if mod < 1 {
		mod = 1
	}
	cursor := policy.LinkcheckCursor % mod

	offers, err := s.offerRepo.ListSlice(mod, cursor, policy.LinkcheckLimit)
	if err != nil {
		return nil, err
	}

	result := &LinkcheckResult{Cursor: cursor, NextCursor: (cursor + 1) % mod}
	result.Checked, result.Dead, result.Deleted = s.checkBatch(ctx, offers, deleteDead)

	if err := s.policyService.SetFlag(constants.PolicyKeyLinkcheckCursor, result.NextCursor); err != nil {
		logger.Errorw("linkcheck_cursor_advance_failed", "cursor", cursor, "error", err)
		return result, err
	}

	logger.Infow("linkcheck_slice_done",
		"cursor", cursor, "next_cursor", result.NextCursor, "checked", result.Checked,
		"dead", result.Dead, "deleted", result.Deleted)
	return result, nil
}

// CleanupDead 全量扫描一遍并清掉死链（不动游标）
func (s *LinkcheckService) CleanupDead(ctx context.Context) (*LinkcheckResult, error) {
	offers, err := s.offerRepo.ListSlice(1, 0, 0)
	if err != nil {
		return nil, err
	}
	result := &LinkcheckResult{}
	result.Checked, result.Dead, result.Deleted = s.checkBatch(ctx, offers, true)
	logger.Infow("linkcheck_cleanup_done",
		"checked", result.Checked, "dead", result.Dead, "deleted", result.Deleted)
	return result, nil
}

// checkBatch 并发探测一批报价，并发数受限
func (s *LinkcheckService) checkBatch(ctx context.Context, offers []models.Offer, deleteDead bool) (checked, dead, deleted int) {
	type verdict struct {
		id    uint
		alive bool
	}
	verdicts := make([]verdict, len(offers))

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	for i := range offers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			verdicts[i] = verdict{id: offers[i].ID, alive: s.CheckOffer(ctx, &offers[i])}
		}(i)
	}
	wg.Wait()

	for _, v := range verdicts {
		checked++
		if v.alive {
			continue
		}
		dead++
		if !deleteDead {
			continue
		}
		if err := s.offerRepo.Delete(v.id); err != nil {
			logger.Warnw("dead_offer_delete_failed", "offer_id", v.id, "error", err)
			continue
		}
		deleted++
	}
	return checked, dead, deleted
}
