package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/models"
	"github.com/mauphunmp-boop/ai-affiliate/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupLinkcheckTest(t *testing.T) (*LinkcheckService, repository.OfferRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Offer{}, &models.ApiConfig{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	db.Where("1 = 1").Delete(&models.Offer{})
	db.Where("name = ?", constants.ConfigNameIngestPolicy).Delete(&models.ApiConfig{})

	offerRepo := repository.NewOfferRepository(db)
	policyService := NewIngestPolicyService(repository.NewApiConfigRepository(db))
	svc := NewLinkcheckService(offerRepo, policyService, LinkcheckOptions{
		Concurrency: 4,
		Timeout:     2 * time.Second,
	})
	return svc, offerRepo, db
}

func TestCheckURLStatusClassification(t *testing.T) {
	svc, _, _ := setupLinkcheckTest(t)
	ctx := context.Background()

	var sawGet atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != linkcheckUserAgent {
			t.Errorf("probe without browser UA: %q", r.Header.Get("User-Agent"))
		}
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/redirected":
			w.WriteHeader(http.StatusNoContent)
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		case "/unauthorized":
			w.WriteHeader(http.StatusUnauthorized)
		case "/gone":
			w.WriteHeader(http.StatusNotFound)
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		case "/head-blocked":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			sawGet.Store(true)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cases := []struct {
		path  string
		alive bool
	}{
		{"/ok", true},
		{"/redirected", true},
		{"/forbidden", true},     // 反爬拦截视为活
		{"/unauthorized", true},  // 同上
		{"/gone", false},
		{"/broken", false},
		{"/head-blocked", true}, // HEAD 被拒则降级 GET
	}
	for _, tc := range cases {
		if got := svc.CheckURL(ctx, server.URL+tc.path); got != tc.alive {
			t.Fatalf("CheckURL(%s) want %v got %v", tc.path, tc.alive, got)
		}
	}
	if !sawGet.Load() {
		t.Fatalf("405 on HEAD should retry with GET")
	}
}

func TestCheckURLNetworkFailureIsAlive(t *testing.T) {
	svc, _, _ := setupLinkcheckTest(t)

	// 连不上的端口：网络失败不判死
	if !svc.CheckURL(context.Background(), "http://127.0.0.1:1/unreachable") {
		t.Fatalf("network failure should not mark link dead")
	}
}

func TestCheckOfferProbesOriginalURLOnly(t *testing.T) {
	svc, _, _ := setupLinkcheckTest(t)
	ctx := context.Background()

	var affHits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/aff":
			affHits.Add(1)
			w.WriteHeader(http.StatusOK)
		case "/ok":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	// 定时探活禁止打推广链接：哪怕推广链接活着，也只看原始链接
	aff := server.URL + "/aff"
	offer := &models.Offer{URL: server.URL + "/dead", AffiliateURL: &aff}
	if svc.CheckOffer(ctx, offer) {
		t.Fatalf("dead original url must mean dead, regardless of affiliate url")
	}
	if affHits.Load() != 0 {
		t.Fatalf("affiliate url must never be probed, got %d hits", affHits.Load())
	}

	offer = &models.Offer{URL: server.URL + "/ok"}
	if !svc.CheckOffer(ctx, offer) {
		t.Fatalf("offer with live original url should be alive")
	}

	if svc.CheckOffer(ctx, &models.Offer{AffiliateURL: &aff}) {
		t.Fatalf("offer without original url should be dead")
	}
}

func TestRunSliceRotationCoversAllOffers(t *testing.T) {
	svc, _, db := setupLinkcheckTest(t)
	ctx := context.Background()

	var probed atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probed.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	mod := 3
	if err := svc.policyService.SetFlag(constants.PolicyKeyLinkcheckMod, mod); err != nil {
		t.Fatalf("set mod failed: %v", err)
	}

	total := 8
	for i := 0; i < total; i++ {
		offer := models.Offer{
			Source:   constants.SourceAccesstrade,
			SourceID: "lc-rotate-" + string(rune('a'+i)),
			URL:      server.URL + "/p",
		}
		if err := db.Create(&offer).Error; err != nil {
			t.Fatalf("seed offer failed: %v", err)
		}
	}

	checked := 0
	for i := 0; i < mod; i++ {
		result, err := svc.RunSlice(ctx, false)
		if err != nil {
			t.Fatalf("run slice %d failed: %v", i, err)
		}
		if result.Cursor != i%mod {
			t.Fatalf("slice %d cursor want %d got %d", i, i%mod, result.Cursor)
		}
		checked += result.Checked
	}
	if checked != total {
		t.Fatalf("rotation covered %d offers, want %d", checked, total)
	}
	if int(probed.Load()) != total {
		t.Fatalf("probe count want %d got %d", total, probed.Load())
	}

	// 游标回绕
	policy, err := svc.policyService.Get()
	if err != nil {
		t.Fatalf("get policy failed: %v", err)
	}
	if policy.LinkcheckCursor != 0 {
		t.Fatalf("cursor should wrap to 0, got %d", policy.LinkcheckCursor)
	}
}

func TestRunSliceDeletesDeadWhenAsked(t *testing.T) {
	svc, offerRepo, db := setupLinkcheckTest(t)
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if err := svc.policyService.SetFlag(constants.PolicyKeyLinkcheckMod, 1); err != nil {
		t.Fatalf("set mod failed: %v", err)
	}
	offer := models.Offer{
		Source:   constants.SourceAccesstrade,
		SourceID: "lc-dead-1",
		URL:      server.URL + "/gone",
	}
	if err := db.Create(&offer).Error; err != nil {
		t.Fatalf("seed offer failed: %v", err)
	}

	result, err := svc.RunSlice(ctx, true)
	if err != nil {
		t.Fatalf("run slice failed: %v", err)
	}
	if result.Dead != 1 || result.Deleted != 1 {
		t.Fatalf("want 1 dead 1 deleted got %+v", result)
	}

	got, err := offerRepo.GetByID(offer.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got != nil {
		t.Fatalf("dead offer should be deleted")
	}
}
