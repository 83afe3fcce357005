package repository

import (
	"context"

	"github.com/beyyuanzhang/tfoc/internal/ims/entity"
	"gorm.io/gorm"
)

type PrototypeRepository struct {
	db *gorm.DB
}

func NewPrototypeRepository(db *gorm.DB) *PrototypeRepository {
	return &PrototypeRepository{db: db}
}

func (r *PrototypeRepository) Create(ctx context.Context, proto *entity.Prototype) error {
	return r.db.WithContext(ctx).Create(proto).Error
}

func (r *PrototypeRepository) FindByID(ctx context.Context, id string) (*entity.Prototype, error) {
	var proto entity.Prototype
	err := r.db.WithContext(ctx).First(&proto, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &proto, nil
}

func (r *PrototypeRepository) FindByCode(ctx context.Context, code string) (*entity.Prototype, error) {
	var proto entity.Prototype
	err := r.db.WithContext(ctx).First(&proto, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &proto, nil
}

func (r *PrototypeRepository) List(ctx context.Context, status, keyword string, page, pageSize int) ([]entity.Prototype, int64, error) {
	var protos []entity.Prototype
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Prototype{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword != "" {
		query = query.Where("code ILIKE ? OR name ILIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&protos).Error
	return protos, total, err
}

func (r *PrototypeRepository) Update(ctx context.Context, proto *entity.Prototype) error {
	return r.db.WithContext(ctx).Save(proto).Error
}

func (r *PrototypeRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.Prototype{}, "id = ?", id).Error
}

// CountReleases 原型下的 Release 数（删除前校验用）
func (r *PrototypeRepository) CountReleases(ctx context.Context, id string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Release{}).
		Where("prototype_id = ?", id).Count(&n).Error
	return n, err
}
