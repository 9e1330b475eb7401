package service

import (
	"testing"

	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/upstream"
)

func TestExtractProductID(t *testing.T) {
	cases := []struct {
		item upstream.Record
		want string
	}{
		{upstream.Record{"product_id": "322_2062448047"}, "2062448047"},
		{upstream.Record{"product_id": "2062448047"}, "2062448047"},
		{upstream.Record{"id": "a_b_c"}, "c"},
		{upstream.Record{"sku": "SKU-1"}, "SKU-1"},
		{upstream.Record{}, ""},
	}
	for _, tc := range cases {
		if got := ExtractProductID(tc.item); got != tc.want {
			t.Fatalf("ExtractProductID(%v) want %q got %q", tc.item, tc.want, got)
		}
	}
}

func TestMapProductToOfferBasics(t *testing.T) {
	item := upstream.Record{
		"id":          "322_2062448047",
		"merchant":    "Shopee",
		"name":        "Chuột không dây",
		"url":         "https://shopee.vn/p/10",
		"aff_link":    "https://go.example.com/aff/10",
		"image":       "https://img.example.com/10.jpg",
		"price":       float64(129000),
		"campaign_id": "c-1",
	}

	offer := MapProductToOffer(item, nil, nil)
	if offer.Source != constants.SourceAccesstrade {
		t.Fatalf("source want accesstrade got %q", offer.Source)
	}
	if offer.SourceID != "322_2062448047" {
		t.Fatalf("source id want composite got %q", offer.SourceID)
	}
	if offer.ProductID != "2062448047" {
		t.Fatalf("product id want suffix got %q", offer.ProductID)
	}
	if offer.Merchant != "shopee" {
		t.Fatalf("merchant want lowercase got %q", offer.Merchant)
	}
	if offer.Price == nil || offer.Price.Decimal.String() != "129000" {
		t.Fatalf("price want 129000 got %v", offer.Price)
	}
	if offer.Currency != "VND" {
		t.Fatalf("currency want VND default got %q", offer.Currency)
	}
	if offer.AffiliateURL == nil || *offer.AffiliateURL != "https://go.example.com/aff/10" {
		t.Fatalf("aff url lost: %v", offer.AffiliateURL)
	}
	if !offer.AffiliateLinkAvailable {
		t.Fatalf("aff available want true")
	}
	if offer.CampaignID != "c-1" {
		t.Fatalf("campaign id want c-1 got %q", offer.CampaignID)
	}
}

func TestMapProductToOfferMerchantFallbacks(t *testing.T) {
	// merchant 缺失时退到 campaign，再退到域名首段
	offer := MapProductToOffer(upstream.Record{"campaign": "Lazada"}, nil, nil)
	if offer.Merchant != "lazada" {
		t.Fatalf("merchant want lazada got %q", offer.Merchant)
	}

	offer = MapProductToOffer(upstream.Record{"domain": "tiki.vn"}, nil, nil)
	if offer.Merchant != "tiki" {
		t.Fatalf("merchant want tiki got %q", offer.Merchant)
	}

	offer = MapProductToOffer(upstream.Record{}, nil, nil)
	if offer.Merchant != "unknown" {
		t.Fatalf("merchant want unknown got %q", offer.Merchant)
	}
	if offer.Title != "No title" {
		t.Fatalf("title want No title got %q", offer.Title)
	}
}

func TestMapProductToOfferFlattensFlatCommission(t *testing.T) {
	item := upstream.Record{"id": "p-1", "merchant": "tiki"}
	commission := []upstream.Record{
		{"sales_ratio": float64(5.5), "reward_type": "percentage"},
	}

	offer := MapProductToOffer(item, commission, nil)
	raw, ok := offer.Extra["commission"].(map[string]interface{})
	if !ok {
		t.Fatalf("commission not flattened: %v", offer.Extra["commission"])
	}
	if raw["sales_ratio"] != float64(5.5) {
		t.Fatalf("sales_ratio want 5.5 got %v", raw["sales_ratio"])
	}
	if raw["reward_type"] != "percentage" {
		t.Fatalf("reward_type want percentage got %v", raw["reward_type"])
	}
}

func TestMapProductToOfferCommissionProductMatch(t *testing.T) {
	item := upstream.Record{"product_id": "322_777", "merchant": "tiki"}
	commission := []upstream.Record{
		{
			"product": []interface{}{
				map[string]interface{}{"product_id": "888", "sales_ratio": float64(1)},
				map[string]interface{}{"product_id": "777", "sales_ratio": float64(9)},
			},
			"default": []interface{}{
				map[string]interface{}{"sales_ratio": float64(3)},
			},
		},
	}

	offer := MapProductToOffer(item, commission, nil)
	raw, ok := offer.Extra["commission"].(map[string]interface{})
	if !ok {
		t.Fatalf("commission not flattened")
	}
	if raw["sales_ratio"] != float64(9) {
		t.Fatalf("want product-level ratio 9 got %v", raw["sales_ratio"])
	}
}

func TestMapProductToOfferCommissionDefaultFallback(t *testing.T) {
	item := upstream.Record{"product_id": "no-match", "merchant": "tiki"}
	commission := []upstream.Record{
		{
			"default": []interface{}{
				map[string]interface{}{"sales_ratio": float64(2), "reward_type": "percent"},
			},
		},
	}

	offer := MapProductToOffer(item, commission, nil)
	raw, ok := offer.Extra["commission"].(map[string]interface{})
	if !ok {
		t.Fatalf("commission not flattened")
	}
	if raw["sales_ratio"] != float64(2) {
		t.Fatalf("want default ratio 2 got %v", raw["sales_ratio"])
	}
}

func TestMapProductToOfferPromotionByMerchant(t *testing.T) {
	item := upstream.Record{"id": "p-2", "merchant": "shopee"}
	promotion := []upstream.Record{
		{"merchant": "lazada", "name": "Sale Lazada"},
		{"merchant": "shopee", "name": "Sale Shopee", "content": "giảm 20%"},
	}

	offer := MapProductToOffer(item, nil, promotion)
	raw, ok := offer.Extra["promotion"].(map[string]interface{})
	if !ok {
		t.Fatalf("promotion not flattened")
	}
	if raw["name"] != "Sale Shopee" {
		t.Fatalf("want merchant-matched promotion got %v", raw["name"])
	}
	if raw["content"] != "giảm 20%" {
		t.Fatalf("content lost: %v", raw["content"])
	}
}
