package service

import (
	"testing"

	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/models"
	"github.com/mauphunmp-boop/ai-affiliate/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupIngestPolicyTest(t *testing.T) *IngestPolicyService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.ApiConfig{}); err != nil {
		t.Fatalf("migrate api config failed: %v", err)
	}
	db.Where("name = ?", constants.ConfigNameIngestPolicy).Delete(&models.ApiConfig{})
	return NewIngestPolicyService(repository.NewApiConfigRepository(db))
}

func TestIngestPolicyDefaults(t *testing.T) {
	svc := setupIngestPolicyTest(t)

	policy, err := svc.Get()
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if policy.OnlyWithCommission || policy.CheckURLs {
		t.Fatalf("boolean flags want false got %+v", policy)
	}
	if policy.LinkcheckMod != 10 {
		t.Fatalf("mod want 10 got %d", policy.LinkcheckMod)
	}
	if policy.LinkcheckCursor != 0 || policy.LinkcheckLimit != 0 {
		t.Fatalf("cursor/limit want 0 got %+v", policy)
	}
}

func TestIngestPolicySetFlagPreservesOtherKeys(t *testing.T) {
	svc := setupIngestPolicyTest(t)

	if err := svc.SetFlag(constants.PolicyKeyOnlyWithCommission, true); err != nil {
		t.Fatalf("set only_with_commission failed: %v", err)
	}
	if err := svc.SetFlag(constants.PolicyKeyLinkcheckMod, 7); err != nil {
		t.Fatalf("set linkcheck_mod failed: %v", err)
	}
	if err := svc.SetFlag(constants.PolicyKeyLinkcheckCursor, 3); err != nil {
		t.Fatalf("set linkcheck_cursor failed: %v", err)
	}

	policy, err := svc.Get()
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !policy.OnlyWithCommission {
		t.Fatalf("only_with_commission want true")
	}
	if policy.LinkcheckMod != 7 {
		t.Fatalf("mod want 7 got %d", policy.LinkcheckMod)
	}
	if policy.LinkcheckCursor != 3 {
		t.Fatalf("cursor want 3 got %d", policy.LinkcheckCursor)
	}

	// 重写单键不动其它键
	if err := svc.SetFlag(constants.PolicyKeyLinkcheckCursor, 4); err != nil {
		t.Fatalf("rewrite cursor failed: %v", err)
	}
	policy, err = svc.Get()
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if policy.LinkcheckCursor != 4 {
		t.Fatalf("cursor want 4 got %d", policy.LinkcheckCursor)
	}
	if !policy.OnlyWithCommission || policy.LinkcheckMod != 7 {
		t.Fatalf("other keys disturbed: %+v", policy)
	}
}

func TestIngestPolicyIgnoresMalformedEntries(t *testing.T) {
	svc := setupIngestPolicyTest(t)

	if err := svc.SetFlag(constants.PolicyKeyCheckURLs, "TRUE"); err != nil {
		t.Fatalf("set check_urls failed: %v", err)
	}
	if err := svc.SetFlag(constants.PolicyKeyLinkcheckMod, "not-a-number"); err != nil {
		t.Fatalf("set bad mod failed: %v", err)
	}

	policy, err := svc.Get()
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !policy.CheckURLs {
		t.Fatalf("check_urls want true (case-insensitive)")
	}
	if policy.LinkcheckMod != 10 {
		t.Fatalf("bad mod should fall back to 10, got %d", policy.LinkcheckMod)
	}
}
