package repository

import (
	"testing"

	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupOfferRepositoryTest(t *testing.T) (*GormOfferRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Offer{}); err != nil {
		t.Fatalf("migrate offer failed: %v", err)
	}
	return NewOfferRepository(db), db
}

func moneyPtr(amount float64) *models.Money {
	m := models.NewMoneyFromDecimal(decimal.NewFromFloat(amount))
	return &m
}

func TestOfferUpsertIdempotentOnNaturalKey(t *testing.T) {
	repo, _ := setupOfferRepositoryTest(t)

	payload := models.Offer{
		Source:   constants.SourceAccesstrade,
		SourceID: "offer-idem-1",
		Merchant: "shopee",
		Title:    "Tai nghe bluetooth",
		URL:      "https://shopee.vn/p/1",
		Price:    moneyPtr(99000),
	}
	first, err := repo.Upsert(&payload, OfferMatchStrict)
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	again := payload
	second, err := repo.Upsert(&again, OfferMatchStrict)
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same row, want id %d got %d", first.ID, second.ID)
	}

	total, err := repo.Count()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("row count want 1 got %d", total)
	}
}

func TestOfferUpsertPlaceholderNeverOverwrites(t *testing.T) {
	repo, _ := setupOfferRepositoryTest(t)

	first, err := repo.Upsert(&models.Offer{
		Source:   constants.SourceAccesstrade,
		SourceID: "offer-merge-1",
		Merchant: "lazada",
		Title:    "Nồi chiên không dầu",
		URL:      "https://lazada.vn/p/2",
		ImageURL: "https://img.lazada.vn/2.jpg",
	}, OfferMatchStrict)
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	second, err := repo.Upsert(&models.Offer{
		Source:   constants.SourceAccesstrade,
		SourceID: "offer-merge-1",
		Merchant: "API_MISSING",
		Title:    "",
		URL:      "NO_DATA",
		ImageURL: "  ",
	}, OfferMatchStrict)
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected merge into existing row")
	}
	if second.Merchant != "lazada" {
		t.Fatalf("merchant want lazada got %q", second.Merchant)
	}
	if second.Title != "Nồi chiên không dầu" {
		t.Fatalf("title was overwritten: %q", second.Title)
	}
	if second.URL != "https://lazada.vn/p/2" {
		t.Fatalf("url was overwritten: %q", second.URL)
	}
	if second.ImageURL != "https://img.lazada.vn/2.jpg" {
		t.Fatalf("image url was overwritten: %q", second.ImageURL)
	}
}

func TestOfferUpsertNumericZeroAndFalseOverwrite(t *testing.T) {
	repo, _ := setupOfferRepositoryTest(t)

	aff := "https://go.example.com/aff/3"
	first, err := repo.Upsert(&models.Offer{
		Source:                 constants.SourceAccesstrade,
		SourceID:               "offer-falsy-1",
		Merchant:               "tiki",
		Price:                  moneyPtr(150000),
		AffiliateURL:           &aff,
		EligibleCommission:     true,
		AffiliateLinkAvailable: true,
	}, OfferMatchStrict)
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if !first.EligibleCommission {
		t.Fatalf("eligible want true")
	}

	// 0 价格与 false 布尔是真实值，必须覆盖
	second, err := repo.Upsert(&models.Offer{
		Source:                 constants.SourceAccesstrade,
		SourceID:               "offer-falsy-1",
		Price:                  moneyPtr(0),
		EligibleCommission:     false,
		AffiliateLinkAvailable: false,
	}, OfferMatchStrict)
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if second.Price == nil || !second.Price.Decimal.IsZero() {
		t.Fatalf("price want 0 got %v", second.Price)
	}
	if second.EligibleCommission {
		t.Fatalf("eligible want false after refresh")
	}
	if second.AffiliateLinkAvailable {
		t.Fatalf("aff available want false after refresh")
	}
	// nil 价格表示"无信息"，保持原值
	third, err := repo.Upsert(&models.Offer{
		Source:   constants.SourceAccesstrade,
		SourceID: "offer-falsy-1",
		Price:    nil,
	}, OfferMatchStrict)
	if err != nil {
		t.Fatalf("third upsert failed: %v", err)
	}
	if third.Price == nil || !third.Price.Decimal.IsZero() {
		t.Fatalf("nil price should keep previous value, got %v", third.Price)
	}
}

func TestOfferUpsertStrategies(t *testing.T) {
	repo, _ := setupOfferRepositoryTest(t)

	seeded, err := repo.Upsert(&models.Offer{
		Source:   constants.SourceExcel,
		SourceID: "offer-strat-1",
		Merchant: "shopee",
		Title:    "Bàn phím cơ",
	}, OfferMatchStrict)
	if err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}

	// 严格口径：source 不同则新建一行
	strict, err := repo.Upsert(&models.Offer{
		Source:   constants.SourceAccesstrade,
		SourceID: "offer-strat-1",
		Merchant: "shopee",
	}, OfferMatchStrict)
	if err != nil {
		t.Fatalf("strict upsert failed: %v", err)
	}
	if strict.ID == seeded.ID {
		t.Fatalf("strict strategy should not match across sources")
	}

	// 宽松口径：仅按 source_id 命中已有行（最早一条）
	loose, err := repo.Upsert(&models.Offer{
		Source:   constants.SourceAccesstrade,
		SourceID: "offer-strat-1",
		Title:    "Bàn phím cơ RGB",
	}, OfferMatchSourceID)
	if err != nil {
		t.Fatalf("loose upsert failed: %v", err)
	}
	if loose.ID != seeded.ID {
		t.Fatalf("loose strategy want id %d got %d", seeded.ID, loose.ID)
	}
	if loose.Title != "Bàn phím cơ RGB" {
		t.Fatalf("title want updated got %q", loose.Title)
	}
}

func TestOfferListSliceByModulus(t *testing.T) {
	repo, db := setupOfferRepositoryTest(t)

	var ids []uint
	for i := 0; i < 7; i++ {
		offer := models.Offer{
			Source:   constants.SourceAccesstrade,
			SourceID: "offer-slice-" + string(rune('a'+i)),
			Merchant: "sliceshop",
		}
		if err := db.Create(&offer).Error; err != nil {
			t.Fatalf("seed offer failed: %v", err)
		}
		ids = append(ids, offer.ID)
	}

	mod := 3
	seen := make(map[uint]int)
	for cursor := 0; cursor < mod; cursor++ {
		slice, err := repo.ListSlice(mod, cursor, 0)
		if err != nil {
			t.Fatalf("list slice failed: %v", err)
		}
		for _, offer := range slice {
			if int(offer.ID)%mod != cursor {
				t.Fatalf("offer %d landed in wrong slice %d", offer.ID, cursor)
			}
			seen[offer.ID]++
		}
	}
	for _, id := range ids {
		if seen[id] != 1 {
			t.Fatalf("offer %d covered %d times, want exactly once", id, seen[id])
		}
	}
}

func TestOfferDeleteBySource(t *testing.T) {
	repo, _ := setupOfferRepositoryTest(t)

	for _, sid := range []string{"offer-del-1", "offer-del-2"} {
		if _, err := repo.Upsert(&models.Offer{
			Source:   "delsource",
			SourceID: sid,
		}, OfferMatchStrict); err != nil {
			t.Fatalf("seed upsert failed: %v", err)
		}
	}

	deleted, err := repo.DeleteBySource("delsource")
	if err != nil {
		t.Fatalf("delete by source failed: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted want 2 got %d", deleted)
	}
}
