package repository

import (
	"time"

	"github.com/mauphunmp-boop/ai-affiliate/internal/models"

	"gorm.io/gorm"
)

// PriceHistoryRepository 价格历史数据访问接口
type PriceHistoryRepository interface {
	Append(offerID uint, price *models.Money, currency string) error
	ListByOfferID(offerID uint, limit int) ([]models.PriceHistory, error)
}

// GormPriceHistoryRepository GORM 实现
type GormPriceHistoryRepository struct {
	db *gorm.DB
}

// NewPriceHistoryRepository 创建价格历史仓库
func NewPriceHistoryRepository(db *gorm.DB) *GormPriceHistoryRepository {
	return &GormPriceHistoryRepository{db: db}
}

// Append 追加一条价格记录
func (r *GormPriceHistoryRepository) Append(offerID uint, price *models.Money, currency string) error {
	return r.db.Create(&models.PriceHistory{
		OfferID:    offerID,
		Price:      price,
		Currency:   currency,
		RecordedAt: time.Now(),
	}).Error
}

// ListByOfferID 按报价ID倒序列出价格记录
func (r *GormPriceHistoryRepository) ListByOfferID(offerID uint, limit int) ([]models.PriceHistory, error) {
	var histories []models.PriceHistory
	query := r.db.Where("offer_id = ?", offerID).Order("recorded_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&histories).Error; err != nil {
		return nil, err
	}
	return histories, nil
}
