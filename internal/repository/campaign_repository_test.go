package repository

import (
	"testing"

	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"
	"github.com/mauphunmp-boop/ai-affiliate/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupCampaignRepositoryTest(t *testing.T) (*GormCampaignRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Campaign{}); err != nil {
		t.Fatalf("migrate campaign failed: %v", err)
	}
	return NewCampaignRepository(db), db
}

func TestCampaignUpsertKeepsValueOnPlaceholder(t *testing.T) {
	repo, _ := setupCampaignRepositoryTest(t)

	first, err := repo.Upsert(&models.Campaign{
		CampaignID:             "camp-merge-1",
		Merchant:               "tiki",
		Name:                   "Tiki VN",
		Status:                 constants.CampaignStatusRunning,
		UserRegistrationStatus: constants.RegistrationApproved,
	})
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if first.Name != "Tiki VN" {
		t.Fatalf("name want Tiki VN got %q", first.Name)
	}

	// 占位串不得覆盖已有值
	second, err := repo.Upsert(&models.Campaign{
		CampaignID:             "camp-merge-1",
		Merchant:               "API_MISSING",
		Name:                   "NO_DATA",
		Status:                 "",
		UserRegistrationStatus: "",
	})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same row, want id %d got %d", first.ID, second.ID)
	}
	if second.Merchant != "tiki" {
		t.Fatalf("merchant want tiki got %q", second.Merchant)
	}
	if second.Name != "Tiki VN" {
		t.Fatalf("name want Tiki VN got %q", second.Name)
	}
	if second.Status != constants.CampaignStatusRunning {
		t.Fatalf("status want running got %q", second.Status)
	}
	if second.UserRegistrationStatus != constants.RegistrationApproved {
		t.Fatalf("user status want APPROVED got %q", second.UserRegistrationStatus)
	}

	// 具体值正常覆盖
	third, err := repo.Upsert(&models.Campaign{
		CampaignID: "camp-merge-1",
		Name:       "Tiki Official",
	})
	if err != nil {
		t.Fatalf("third upsert failed: %v", err)
	}
	if third.Name != "Tiki Official" {
		t.Fatalf("name want Tiki Official got %q", third.Name)
	}
}

func TestCampaignUpsertCleansPlaceholderOnInsert(t *testing.T) {
	repo, _ := setupCampaignRepositoryTest(t)

	created, err := repo.Upsert(&models.Campaign{
		CampaignID:  "camp-clean-1",
		Merchant:    "NO_DATA",
		Description: "API_MISSING",
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if created.Merchant != "" {
		t.Fatalf("merchant want empty got %q", created.Merchant)
	}
	if created.Description != "" {
		t.Fatalf("description want empty got %q", created.Description)
	}
}

func TestCampaignUpsertNormalizesRegistrationStatus(t *testing.T) {
	repo, _ := setupCampaignRepositoryTest(t)

	created, err := repo.Upsert(&models.Campaign{
		CampaignID:             "camp-norm-1",
		UserRegistrationStatus: " successful ",
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if created.UserRegistrationStatus != constants.RegistrationApproved {
		t.Fatalf("user status want APPROVED got %q", created.UserRegistrationStatus)
	}

	updated, err := repo.Upsert(&models.Campaign{
		CampaignID:             "camp-norm-1",
		UserRegistrationStatus: "pending",
	})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if updated.UserRegistrationStatus != constants.RegistrationPending {
		t.Fatalf("user status want PENDING got %q", updated.UserRegistrationStatus)
	}
}

func TestCampaignActiveMapOnlyRunningApproved(t *testing.T) {
	repo, _ := setupCampaignRepositoryTest(t)

	seeds := []models.Campaign{
		{CampaignID: "camp-act-1", Merchant: "shopee", Status: constants.CampaignStatusRunning, UserRegistrationStatus: constants.RegistrationApproved},
		{CampaignID: "camp-act-2", Merchant: "lazada", Status: constants.CampaignStatusRunning, UserRegistrationStatus: constants.RegistrationPending},
		{CampaignID: "camp-act-3", Merchant: "tiki", Status: constants.CampaignStatusPaused, UserRegistrationStatus: constants.RegistrationApproved},
	}
	for i := range seeds {
		if _, err := repo.Upsert(&seeds[i]); err != nil {
			t.Fatalf("seed upsert failed: %v", err)
		}
	}

	active, err := repo.ActiveMap()
	if err != nil {
		t.Fatalf("active map failed: %v", err)
	}
	if merchant := active["camp-act-1"]; merchant != "shopee" {
		t.Fatalf("camp-act-1 merchant want shopee got %q", merchant)
	}
	if _, ok := active["camp-act-2"]; ok {
		t.Fatalf("pending campaign should not be active")
	}
	if _, ok := active["camp-act-3"]; ok {
		t.Fatalf("paused campaign should not be active")
	}
}

func TestCampaignNormalizeUserStatusesFixesLegacyRows(t *testing.T) {
	repo, db := setupCampaignRepositoryTest(t)

	legacy := models.Campaign{
		CampaignID:             "camp-legacy-1",
		UserRegistrationStatus: "successful",
	}
	if err := db.Create(&legacy).Error; err != nil {
		t.Fatalf("seed legacy row failed: %v", err)
	}
	clean := models.Campaign{
		CampaignID:             "camp-legacy-2",
		UserRegistrationStatus: constants.RegistrationApproved,
	}
	if err := db.Create(&clean).Error; err != nil {
		t.Fatalf("seed clean row failed: %v", err)
	}

	fixed, err := repo.NormalizeUserStatuses()
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if fixed != 1 {
		t.Fatalf("fixed want 1 got %d", fixed)
	}

	got, err := repo.GetByCampaignID("camp-legacy-1")
	if err != nil || got == nil {
		t.Fatalf("reload legacy row failed: %v", err)
	}
	if got.UserRegistrationStatus != constants.RegistrationApproved {
		t.Fatalf("user status want APPROVED got %q", got.UserRegistrationStatus)
	}
}

func TestCampaignGetByCampaignIDMissingReturnsNil(t *testing.T) {
	repo, _ := setupCampaignRepositoryTest(t)

	got, err := repo.GetByCampaignID("camp-missing")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("want nil for missing campaign, got %+v", got)
	}
}
