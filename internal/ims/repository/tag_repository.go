package repository

import (
	"context"

	"github.com/beyyuanzhang/tfoc/internal/ims/entity"
	"gorm.io/gorm"
)

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) Create(ctx context.Context, tag *entity.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *TagRepository) FindByID(ctx context.Context, id string) (*entity.Tag, error) {
	var tag entity.Tag
	err := r.db.WithContext(ctx).First(&tag, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *TagRepository) FindByIDs(ctx context.Context, ids []string) ([]entity.Tag, error) {
	var tags []entity.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error
	return tags, err
}

func (r *TagRepository) List(ctx context.Context, tagType string, page, pageSize int) ([]entity.Tag, int64, error) {
	var tags []entity.Tag
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Tag{})
	if tagType != "" {
		query = query.Where("type = ?", tagType)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Order("type ASC, name ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tags).Error
	return tags, total, err
}

func (r *TagRepository) FindByTypeAndName(ctx context.Context, tagType, name string) (*entity.Tag, error) {
	var tag entity.Tag
	err := r.db.WithContext(ctx).First(&tag, "type = ? AND name = ?", tagType, name).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *TagRepository) Update(ctx context.Context, tag *entity.Tag) error {
	return r.db.WithContext(ctx).Save(tag).Error
}

func (r *TagRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.Tag{}, "id = ?", id).Error
}

// CountReferences 统计标签被 Release / SKU 引用的次数（删除前校验用）
func (r *TagRepository) CountReferences(ctx context.Context, id string) (int64, error) {
	var total int64

	var n int64
	if err := r.db.WithContext(ctx).Model(&entity.ReleaseMaterial{}).
		Where("tag_id = ?", id).Count(&n).Error; err != nil {
		return 0, err
	}
	total += n

	if err := r.db.WithContext(ctx).Model(&entity.SKU{}).
		Where("color_id = ? OR size_id = ?", id, id).Count(&n).Error; err != nil {
		return 0, err
	}
	total += n

	if err := r.db.WithContext(ctx).Model(&entity.Release{}).
		Where("size_ids @> to_jsonb(?::text) OR color_ids @> to_jsonb(?::text)", id, id).
		Count(&n).Error; err != nil {
		return 0, err
	}
	total += n

	return total, nil
}
