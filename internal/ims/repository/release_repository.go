package repository

import (
	"context"

	"github.com/beyyuanzhang/tfoc/internal/ims/entity"
	"gorm.io/gorm"
)

type ReleaseRepository struct {
	db *gorm.DB
}

func NewReleaseRepository(db *gorm.DB) *ReleaseRepository {
	return &ReleaseRepository{db: db}
}

func (r *ReleaseRepository) Create(ctx context.Context, release *entity.Release) error {
	return r.db.WithContext(ctx).Create(release).Error
}

func (r *ReleaseRepository) FindByID(ctx context.Context, id string) (*entity.Release, error) {
	var release entity.Release
	err := r.db.WithContext(ctx).
		Preload("Prototype").
		Preload("Materials").
		Preload("Materials.Tag").
		Preload("ColorMedia").
		First(&release, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &release, nil
}

func (r *ReleaseRepository) List(ctx context.Context, prototypeID, status string, page, pageSize int) ([]entity.Release, int64, error) {
	var releases []entity.Release
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Release{})
	if prototypeID != "" {
		query = query.Where("prototype_id = ?", prototypeID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Preload("Prototype").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&releases).Error
	return releases, total, err
}

func (r *ReleaseRepository) Update(ctx context.Context, release *entity.Release) error {
	return r.db.WithContext(ctx).Save(release).Error
}

func (r *ReleaseRepository) Delete(ctx context.Context, id string) error {
	r.db.WithContext(ctx).Where("release_id = ?", id).Delete(&entity.ReleaseMaterial{})
	r.db.WithContext(ctx).Where("release_id = ?", id).Delete(&entity.ReleaseColorMedia{})
	return r.db.WithContext(ctx).Delete(&entity.Release{}, "id = ?", id).Error
}

// NextReleaseNumber 同一原型下的下一个批次号（已有最大值 + 1，起始为 1）
func (r *ReleaseRepository) NextReleaseNumber(ctx context.Context, prototypeID string) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&entity.Release{}).
		Where("prototype_id = ?", prototypeID).
		Select("COALESCE(MAX(release_number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// UpdateGenerationFlags 级联结束后回写生成状态（不触碰其他列）
func (r *ReleaseRepository) UpdateGenerationFlags(ctx context.Context, id string, hasSKUs bool, status string) error {
	return r.db.WithContext(ctx).Model(&entity.Release{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"has_skus":              hasSKUs,
			"sku_generation_status": status,
		}).Error
}

// ========== Materials ==========

func (r *ReleaseRepository) ReplaceMaterials(ctx context.Context, releaseID string, materials []entity.ReleaseMaterial) error {
	tx := r.db.WithContext(ctx).Begin()
	if err := tx.Where("release_id = ?", releaseID).Delete(&entity.ReleaseMaterial{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if len(materials) > 0 {
		if err := tx.Create(&materials).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit().Error
}

// ========== ColorMedia ==========

func (r *ReleaseRepository) ReplaceColorMedia(ctx context.Context, releaseID string, media []entity.ReleaseColorMedia) error {
	tx := r.db.WithContext(ctx).Begin()
	if err := tx.Where("release_id = ?", releaseID).Delete(&entity.ReleaseColorMedia{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if len(media) > 0 {
		if err := tx.Create(&media).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit().Error
}
