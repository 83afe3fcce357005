package repository

import (
	"context"

	"github.com/beyyuanzhang/tfoc/internal/ims/entity"
	"gorm.io/gorm"
)

type SKURepository struct {
	db *gorm.DB
}

func NewSKURepository(db *gorm.DB) *SKURepository {
	return &SKURepository{db: db}
}

func (r *SKURepository) Create(ctx context.Context, sku *entity.SKU) error {
	return r.db.WithContext(ctx).Create(sku).Error
}

func (r *SKURepository) FindByID(ctx context.Context, id string) (*entity.SKU, error) {
	var sku entity.SKU
	err := r.db.WithContext(ctx).
		Preload("Color").
		Preload("Size").
		Preload("Release").
		First(&sku, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sku, nil
}

func (r *SKURepository) FindByCode(ctx context.Context, code string) (*entity.SKU, error) {
	var sku entity.SKU
	err := r.db.WithContext(ctx).First(&sku, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &sku, nil
}

func (r *SKURepository) List(ctx context.Context, releaseID, stockStatus string, page, pageSize int) ([]entity.SKU, int64, error) {
	var skus []entity.SKU
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.SKU{})
	if releaseID != "" {
		query = query.Where("release_id = ?", releaseID)
	}
	if stockStatus != "" {
		query = query.Where("stock_status = ?", stockStatus)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Preload("Color").
		Preload("Size").
		Order("code ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&skus).Error
	return skus, total, err
}

func (r *SKURepository) Update(ctx context.Context, sku *entity.SKU) error {
	return r.db.WithContext(ctx).Save(sku).Error
}

func (r *SKURepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.SKU{}, "id = ?", id).Error
}

// UpdateStockFields 回写数量与库存状态（不触碰其他列）
func (r *SKURepository) UpdateStockFields(ctx context.Context, id string, quantity int, stockStatus, generationStatus string) error {
	return r.db.WithContext(ctx).Model(&entity.SKU{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":                 quantity,
			"stock_status":             stockStatus,
			"serial_generation_status": generationStatus,
		}).Error
}

// CountByRelease Release 下的 SKU 数
func (r *SKURepository) CountByRelease(ctx context.Context, releaseID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.SKU{}).
		Where("release_id = ?", releaseID).Count(&n).Error
	return n, err
}

// ExistsByCombination 是否已有同 Release 同色同码的 SKU（级联幂等用）
func (r *SKURepository) ExistsByCombination(ctx context.Context, releaseID, colorID, sizeID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.SKU{}).
		Where("release_id = ? AND color_id = ? AND size_id = ?", releaseID, colorID, sizeID).
		Count(&n).Error
	return n > 0, err
}
