package repository

import (
	"context"

	"github.com/beyyuanzhang/tfoc/internal/ims/entity"
	"gorm.io/gorm"
)

type SerialRepository struct {
	db *gorm.DB
}

func NewSerialRepository(db *gorm.DB) *SerialRepository {
	return &SerialRepository{db: db}
}

func (r *SerialRepository) Create(ctx context.Context, sn *entity.SerialNumber) error {
	return r.db.WithContext(ctx).Create(sn).Error
}

func (r *SerialRepository) FindByID(ctx context.Context, id string) (*entity.SerialNumber, error) {
	var sn entity.SerialNumber
	err := r.db.WithContext(ctx).
		Preload("SKU").
		First(&sn, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sn, nil
}

func (r *SerialRepository) FindByCode(ctx context.Context, code string) (*entity.SerialNumber, error) {
	var sn entity.SerialNumber
	err := r.db.WithContext(ctx).
		Preload("SKU").
		First(&sn, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &sn, nil
}

func (r *SerialRepository) List(ctx context.Context, skuID, status string, page, pageSize int) ([]entity.SerialNumber, int64, error) {
	var sns []entity.SerialNumber
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.SerialNumber{})
	if skuID != "" {
		query = query.Where("sku_id = ?", skuID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Order("seq_index ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&sns).Error
	return sns, total, err
}

func (r *SerialRepository) Update(ctx context.Context, sn *entity.SerialNumber) error {
	return r.db.WithContext(ctx).Save(sn).Error
}

func (r *SerialRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.SerialNumber{}, "id = ?", id).Error
}

// CountBySKU SKU 下已有的序列号数（级联续编用）
func (r *SerialRepository) CountBySKU(ctx context.Context, skuID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.SerialNumber{}).
		Where("sku_id = ?", skuID).Count(&n).Error
	return n, err
}

// CountBySKUAndStatuses 按状态集合统计（库存口径用）
func (r *SerialRepository) CountBySKUAndStatuses(ctx context.Context, skuID string, statuses []string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.SerialNumber{}).
		Where("sku_id = ? AND status IN ?", skuID, statuses).Count(&n).Error
	return n, err
}

// StatusCounts SKU 下各状态的数量分布
func (r *SerialRepository) StatusCounts(ctx context.Context, skuID string) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&entity.SerialNumber{}).
		Select("status, COUNT(*) AS count").
		Where("sku_id = ?", skuID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
