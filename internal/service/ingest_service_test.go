package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/models"
	"github.com/mauphunmp-boop/ai-affiliate/internal/repository"
	"github.com/mauphunmp-boop/ai-affiliate/internal/upstream"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// fakeAccesstrade 模拟上游：活动/商品流/佣金/促销四个端点，
// round 计数用于在两轮入库之间改变返回内容。
type fakeAccesstrade struct {
	server *httptest.Server
	round  atomic.Int64
}

func newFakeAccesstrade(t *testing.T) *fakeAccesstrade {
	t.Helper()
	fake := &fakeAccesstrade{}
	mux := http.NewServeMux()

	writeData := func(w http.ResponseWriter, data interface{}) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
	}

	mux.HandleFunc("/v1/campaigns", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		campaign := map[string]interface{}{
			"campaign_id": "c-1",
			"merchant":    "SHOPEE",
			"name":        "Shopee VN",
			"status":      "running",
			"approval":    "successful",
		}
		if q.Get("campaign_id") != "" {
			writeData(w, campaign)
			return
		}
		if page := q.Get("page"); page != "" && page != "1" {
			writeData(w, []interface{}{})
			return
		}
		writeData(w, []interface{}{campaign})
	})

	mux.HandleFunc("/v1/datafeeds", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			writeData(w, []interface{}{})
			return
		}
		first := map[string]interface{}{
			"id":       "df-1",
			"merchant": "shopee",
			"name":     "Tai nghe bluetooth",
			"url":      "https://shopee.vn/p/1",
			"aff_link": "https://go.example.com/aff/1",
			"price":    99000,
		}
		if fake.round.Load() > 0 {
			// 第二轮：同一商品，关键字段变成占位串、价格缺失
			first = map[string]interface{}{
				"id":       "df-1",
				"merchant": "shopee",
				"name":     "NO_DATA",
				"url":      "API_MISSING",
			}
		}
		second := map[string]interface{}{
			"id":       "df-2",
			"merchant": "shopee",
			"name":     "Ốp lưng điện thoại",
			"url":      "https://shopee.vn/p/2",
			"price":    45000,
		}
		writeData(w, []interface{}{first, second})
	})

	mux.HandleFunc("/v1/commission_policies", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, []interface{}{
			map[string]interface{}{"sales_ratio": 5.5, "reward_type": "percentage"},
		})
	})

	mux.HandleFunc("/v1/offers_informations", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, []interface{}{
			map[string]interface{}{"merchant": "shopee", "name": "Flash Sale", "content": "giảm 20%"},
		})
	})

	fake.server = httptest.NewServer(mux)
	return fake
}

type alwaysAliveChecker struct{}

func (alwaysAliveChecker) CheckURL(ctx context.Context, url string) bool { return true }

type ingestTestEnv struct {
	svc          *IngestService
	campaignRepo repository.CampaignRepository
	offerRepo    repository.OfferRepository
	historyRepo  repository.PriceHistoryRepository
	db           *gorm.DB
}

func setupIngestTest(t *testing.T, baseURL string) *ingestTestEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Campaign{}, &models.Offer{}, &models.Promotion{},
		&models.CommissionPolicy{}, &models.PriceHistory{}, &models.ApiConfig{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	for _, m := range []interface{}{
		&models.Campaign{}, &models.Offer{}, &models.Promotion{},
		&models.CommissionPolicy{}, &models.PriceHistory{},
	} {
		db.Where("1 = 1").Delete(m)
	}
	db.Where("name IN ?", []string{constants.ConfigNameAccesstrade, constants.ConfigNameIngestPolicy}).
		Delete(&models.ApiConfig{})

	configRepo := repository.NewApiConfigRepository(db)
	if _, err := configRepo.Upsert(&models.ApiConfig{
		Name:    constants.ConfigNameAccesstrade,
		BaseURL: baseURL,
		ApiKey:  "test-key",
	}); err != nil {
		t.Fatalf("seed api config failed: %v", err)
	}

	campaignRepo := repository.NewCampaignRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	historyRepo := repository.NewPriceHistoryRepository(db)

	client := upstream.NewClient(NewConfigCredentialSource(configRepo), upstream.NewNopSink(), upstream.ClientOptions{})
	svc := NewIngestService(
		client,
		upstream.FetcherOptions{LimitPerPage: 10, WindowPages: 2, PageConcurrency: 2, MaxPages: 4},
		NewResolver(),
		campaignRepo,
		offerRepo,
		repository.NewPromotionRepository(db),
		repository.NewCommissionPolicyRepository(db),
		historyRepo,
		NewIngestPolicyService(configRepo),
		alwaysAliveChecker{},
		0,
	)
	return &ingestTestEnv{
		svc:          svc,
		campaignRepo: campaignRepo,
		offerRepo:    offerRepo,
		historyRepo:  historyRepo,
		db:           db,
	}
}

func TestIngestDatafeedsEndToEndIdempotent(t *testing.T) {
	fake := newFakeAccesstrade(t)
	defer fake.server.Close()
	env := setupIngestTest(t, fake.server.URL)
	ctx := context.Background()

	result, err := env.svc.IngestDatafeedsAll(ctx)
	if err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
	if result.Upserted != 2 {
		t.Fatalf("first ingest upserted want 2 got %+v", result)
	}

	// 活动同步：SUCCESSFUL 归一为 APPROVED
	campaign, err := env.campaignRepo.GetByCampaignID("c-1")
	if err != nil || campaign == nil {
		t.Fatalf("campaign row missing: %v", err)
	}
	if campaign.UserRegistrationStatus != constants.RegistrationApproved {
		t.Fatalf("user status want APPROVED got %q", campaign.UserRegistrationStatus)
	}
	if campaign.Merchant != "shopee" {
		t.Fatalf("merchant want shopee got %q", campaign.Merchant)
	}

	offer1, err := env.offerRepo.GetByNaturalKey(constants.SourceAccesstrade, "df-1")
	if err != nil || offer1 == nil {
		t.Fatalf("offer df-1 missing: %v", err)
	}
	if offer1.CampaignID != "c-1" {
		t.Fatalf("campaign binding want c-1 got %q", offer1.CampaignID)
	}
	if offer1.SourceType != constants.SourceTypeDatafeed {
		t.Fatalf("source type want %q got %q", constants.SourceTypeDatafeed, offer1.SourceType)
	}
	if offer1.ApprovalStatus != constants.ApprovalSnapshotSuccessful {
		t.Fatalf("approval snapshot want successful got %q", offer1.ApprovalStatus)
	}
	if !offer1.EligibleCommission {
		t.Fatalf("eligible commission want true (running+approved)")
	}
	if !offer1.AffiliateLinkAvailable {
		t.Fatalf("aff link available want true")
	}
	if offer1.Price == nil || offer1.Price.Decimal.String() != "99000" {
		t.Fatalf("price want 99000 got %v", offer1.Price)
	}

	offer2, err := env.offerRepo.GetByNaturalKey(constants.SourceAccesstrade, "df-2")
	if err != nil || offer2 == nil {
		t.Fatalf("offer df-2 missing: %v", err)
	}
	if offer2.AffiliateLinkAvailable {
		t.Fatalf("df-2 has no aff link, available want false")
	}

	histories, err := env.historyRepo.ListByOfferID(offer1.ID, 0)
	if err != nil {
		t.Fatalf("list histories failed: %v", err)
	}
	if len(histories) != 1 {
		t.Fatalf("price history want 1 entry got %d", len(histories))
	}

	// 第二轮：占位串字段不得覆盖，缺失价格不追加历史，行数不翻倍
	fake.round.Store(1)
	result, err = env.svc.IngestDatafeedsAll(ctx)
	if err != nil {
		t.Fatalf("second ingest failed: %v", err)
	}
	if result.Upserted != 2 {
		t.Fatalf("second ingest upserted want 2 got %+v", result)
	}

	total, err := env.offerRepo.Count()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("offer rows want 2 after reingest got %d", total)
	}

	offer1Again, err := env.offerRepo.GetByNaturalKey(constants.SourceAccesstrade, "df-1")
	if err != nil || offer1Again == nil {
		t.Fatalf("offer df-1 missing after reingest: %v", err)
	}
	if offer1Again.ID != offer1.ID {
		t.Fatalf("reingest created a new row")
	}
	if offer1Again.Title != "Tai nghe bluetooth" {
		t.Fatalf("placeholder overwrote title: %q", offer1Again.Title)
	}
	if offer1Again.URL != "https://shopee.vn/p/1" {
		t.Fatalf("placeholder overwrote url: %q", offer1Again.URL)
	}
	if offer1Again.Price == nil || offer1Again.Price.Decimal.String() != "99000" {
		t.Fatalf("missing price should keep previous value, got %v", offer1Again.Price)
	}

	histories, err = env.historyRepo.ListByOfferID(offer1.ID, 0)
	if err != nil {
		t.Fatalf("list histories failed: %v", err)
	}
	if len(histories) != 1 {
		t.Fatalf("unchanged price must not append history, got %d entries", len(histories))
	}
}

func TestIngestProductsSkipsUnresolvedRecords(t *testing.T) {
	mux := http.NewServeMux()
	writeData := func(w http.ResponseWriter, data interface{}) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
	}
	mux.HandleFunc("/v1/campaigns", func(w http.ResponseWriter, r *http.Request) {
		campaign := map[string]interface{}{
			"campaign_id": "c-1",
			"merchant":    "shopee",
			"status":      "running",
			"approval":    "successful",
		}
		if r.URL.Query().Get("campaign_id") != "" {
			writeData(w, campaign)
			return
		}
		if page := r.URL.Query().Get("page"); page != "" && page != "1" {
			writeData(w, []interface{}{})
			return
		}
		writeData(w, []interface{}{campaign})
	})
	mux.HandleFunc("/v1/datafeeds", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			writeData(w, []interface{}{})
			return
		}
		writeData(w, []interface{}{
			// sendo 没有任何活动，只能跳过
			map[string]interface{}{"id": "m-sendo", "merchant": "sendo", "name": "Ghế lười", "url": "https://sendo.vn/p/9", "price": 120000},
			map[string]interface{}{"id": "m-shopee", "merchant": "shopee", "name": "Bàn phím cơ", "url": "https://shopee.vn/p/7", "price": 350000},
		})
	})
	mux.HandleFunc("/v1/commission_policies", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, []interface{}{})
	})
	mux.HandleFunc("/v1/offers_informations", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, []interface{}{})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	env := setupIngestTest(t, server.URL)
	ctx := context.Background()

	// 本地库还没有已批准活动：整批跳过，但不报错
	result, err := env.svc.IngestProducts(ctx, "/v1/datafeeds", map[string]string{"page": "1"})
	if err != nil {
		t.Fatalf("ingest without approved campaign should skip, got error: %v", err)
	}
	if result.Upserted != 0 || result.Skipped != 2 {
		t.Fatalf("want all skipped got %+v", result)
	}

	if _, err := env.svc.SyncCampaigns(ctx, CampaignSyncOptions{OnlyMy: true}); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	// 同步之后：解析不到活动的记录跳过，其余正常落库
	result, err = env.svc.IngestProducts(ctx, "/v1/datafeeds", map[string]string{"page": "1"})
	if err != nil {
		t.Fatalf("ingest after sync failed: %v", err)
	}
	if result.Upserted != 1 || result.Skipped != 1 {
		t.Fatalf("want 1 upserted 1 skipped got %+v", result)
	}

	dropped, err := env.offerRepo.GetByNaturalKey(constants.SourceAccesstrade, "m-sendo")
	if err != nil {
		t.Fatalf("lookup m-sendo failed: %v", err)
	}
	if dropped != nil {
		t.Fatalf("unresolved record must not be persisted")
	}
	kept, err := env.offerRepo.GetByNaturalKey(constants.SourceAccesstrade, "m-shopee")
	if err != nil || kept == nil {
		t.Fatalf("resolved record missing: %v", err)
	}
	if kept.SourceType != constants.SourceTypeManual {
		t.Fatalf("source type want %q got %q", constants.SourceTypeManual, kept.SourceType)
	}
}

// deadURLChecker 指定一条链接判死，其余判活
type deadURLChecker struct{ dead string }

func (c deadURLChecker) CheckURL(ctx context.Context, url string) bool { return url != c.dead }

func TestIngestDatafeedsCheckURLsDropsDeadLinks(t *testing.T) {
	mux := http.NewServeMux()
	writeData := func(w http.ResponseWriter, data interface{}) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
	}
	mux.HandleFunc("/v1/campaigns", func(w http.ResponseWriter, r *http.Request) {
		campaign := map[string]interface{}{
			"campaign_id": "c-1",
			"merchant":    "shopee",
			"status":      "running",
			"approval":    "successful",
		}
		if r.URL.Query().Get("campaign_id") != "" {
			writeData(w, campaign)
			return
		}
		if page := r.URL.Query().Get("page"); page != "" && page != "1" {
			writeData(w, []interface{}{})
			return
		}
		writeData(w, []interface{}{campaign})
	})
	mux.HandleFunc("/v1/datafeeds", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			writeData(w, []interface{}{})
			return
		}
		writeData(w, []interface{}{
			map[string]interface{}{"id": "live-1", "merchant": "shopee", "name": "Quạt mini", "url": "https://shopee.vn/p/live", "price": 59000},
			map[string]interface{}{"id": "dead-1", "merchant": "shopee", "name": "Đèn bàn", "url": "https://shopee.vn/p/dead", "price": 79000},
		})
	})
	mux.HandleFunc("/v1/commission_policies", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, []interface{}{})
	})
	mux.HandleFunc("/v1/offers_informations", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, []interface{}{})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	env := setupIngestTest(t, server.URL)
	ctx := context.Background()

	configRepo := repository.NewApiConfigRepository(env.db)
	policyService := NewIngestPolicyService(configRepo)
	if err := policyService.SetFlag(constants.PolicyKeyCheckURLs, "true"); err != nil {
		t.Fatalf("set check_urls failed: %v", err)
	}

	client := upstream.NewClient(NewConfigCredentialSource(configRepo), upstream.NewNopSink(), upstream.ClientOptions{})
	svc := NewIngestService(
		client,
		upstream.FetcherOptions{LimitPerPage: 10, WindowPages: 2, PageConcurrency: 2, MaxPages: 4},
		NewResolver(),
		env.campaignRepo,
		env.offerRepo,
		repository.NewPromotionRepository(env.db),
		repository.NewCommissionPolicyRepository(env.db),
		env.historyRepo,
		policyService,
		deadURLChecker{dead: "https://shopee.vn/p/dead"},
		0,
	)

	result, err := svc.IngestDatafeedsAll(ctx)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if result.Upserted != 1 || result.Dead != 1 {
		t.Fatalf("want 1 upserted 1 dead got %+v", result)
	}
	if offer, err := env.offerRepo.GetByNaturalKey(constants.SourceAccesstrade, "dead-1"); err != nil || offer != nil {
		t.Fatalf("dead link must not be persisted, got %v (err %v)", offer, err)
	}
	if offer, err := env.offerRepo.GetByNaturalKey(constants.SourceAccesstrade, "live-1"); err != nil || offer == nil {
		t.Fatalf("live link missing: %v", err)
	}
}

func TestIngestDatafeedsEligibleWithoutPolicies(t *testing.T) {
	mux := http.NewServeMux()
	writeData := func(w http.ResponseWriter, data interface{}) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
	}
	mux.HandleFunc("/v1/campaigns", func(w http.ResponseWriter, r *http.Request) {
		campaign := map[string]interface{}{
			"campaign_id": "c-7",
			"merchant":    "tiki",
			"status":      "running",
			"approval":    "successful",
		}
		if r.URL.Query().Get("campaign_id") != "" {
			writeData(w, campaign)
			return
		}
		if page := r.URL.Query().Get("page"); page != "" && page != "1" {
			writeData(w, []interface{}{})
			return
		}
		writeData(w, []interface{}{campaign})
	})
	mux.HandleFunc("/v1/datafeeds", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			writeData(w, []interface{}{})
			return
		}
		writeData(w, []interface{}{
			map[string]interface{}{"id": "tk-1", "merchant": "tiki", "name": "Nồi chiên", "url": "https://tiki.vn/p/1", "price": 890000},
		})
	})
	// 佣金政策上游暂时拉不到：不得影响可得佣金判定
	mux.HandleFunc("/v1/commission_policies", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, []interface{}{})
	})
	mux.HandleFunc("/v1/offers_informations", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, []interface{}{})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	env := setupIngestTest(t, server.URL)

	if _, err := env.svc.IngestDatafeedsAll(context.Background()); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	offer, err := env.offerRepo.GetByNaturalKey(constants.SourceAccesstrade, "tk-1")
	if err != nil || offer == nil {
		t.Fatalf("offer tk-1 missing: %v", err)
	}
	if !offer.EligibleCommission {
		t.Fatalf("running+approved campaign without fetched policies: eligible commission want true")
	}
}

func TestSyncCampaignsOnlyMySkipsForeign(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/campaigns", func(w http.ResponseWriter, r *http.Request) {
		if page := r.URL.Query().Get("page"); page != "" && page != "1" {
			w.Write([]byte(`{"data":[]}`))
			return
		}
		w.Write([]byte(`{"data":[
			{"campaign_id":"c-mine","merchant":"tiki","status":"running","approval":"successful"},
			{"campaign_id":"c-foreign","merchant":"sendo","status":"running","user_registration_status":"NOT_REGISTERED"}
		]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	env := setupIngestTest(t, server.URL)

	result, err := env.svc.SyncCampaigns(context.Background(), CampaignSyncOptions{OnlyMy: true})
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if result.Fetched != 2 || result.Upserted != 1 || result.Skipped != 1 {
		t.Fatalf("want fetched 2 upserted 1 skipped 1, got %+v", result)
	}

	mine, err := env.campaignRepo.GetByCampaignID("c-mine")
	if err != nil || mine == nil {
		t.Fatalf("c-mine missing: %v", err)
	}
	foreign, err := env.campaignRepo.GetByCampaignID("c-foreign")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if foreign != nil {
		t.Fatalf("foreign campaign should be skipped")
	}
}
