package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/beyyuanzhang/tfoc/internal/ims/entity"
	"github.com/beyyuanzhang/tfoc/internal/ims/repository"
	"github.com/redis/go-redis/v9"
)

// 颜色标签的 hex 值格式
var colorHexPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

const tagCacheTTL = 10 * time.Minute

// TagService 标签服务（尺码/颜色/材质/产地/度量）
type TagService struct {
	repo *repository.TagRepository
	rdb  *redis.Client
}

func NewTagService(repo *repository.TagRepository, rdb *redis.Client) *TagService {
	return &TagService{repo: repo, rdb: rdb}
}

type CreateTagInput struct {
	Type  string `json:"type" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Value string `json:"value"`
}

func (s *TagService) Create(ctx context.Context, input *CreateTagInput, userID string) (*entity.Tag, error) {
	if !entity.IsValidTagType(input.Type) {
		return nil, fmt.Errorf("无效的标签类型: %s", input.Type)
	}

	value := input.Value
	if input.Type == entity.TagTypeColor {
		if !colorHexPattern.MatchString(value) {
			return nil, fmt.Errorf("颜色值必须为 #RRGGBB 格式: %s", value)
		}
		value = strings.ToUpper(value)
	}

	if existing, err := s.repo.FindByTypeAndName(ctx, input.Type, input.Name); err == nil && existing != nil {
		return nil, fmt.Errorf("同类型下标签名已存在: %s", input.Name)
	}

	now := time.Now()
	tag := &entity.Tag{
		ID:        generateID(),
		Type:      input.Type,
		Name:      input.Name,
		Value:     value,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, tag); err != nil {
		return nil, fmt.Errorf("创建标签失败: %w", err)
	}

	s.invalidateCache(ctx, tag.Type)
	return tag, nil
}

func (s *TagService) Get(ctx context.Context, id string) (*entity.Tag, error) {
	tag, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return tag, nil
}

func (s *TagService) List(ctx context.Context, tagType string, page, pageSize int) ([]entity.Tag, int64, error) {
	return s.repo.List(ctx, tagType, page, pageSize)
}

// ListByType 按类型取全量标签，带 Redis 缓存（级联生成时高频读取）
func (s *TagService) ListByType(ctx context.Context, tagType string) ([]entity.Tag, error) {
	cacheKey := "tags:type:" + tagType
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			var tags []entity.Tag
			if err := json.Unmarshal([]byte(cached), &tags); err == nil {
				return tags, nil
			}
		}
	}

	tags, _, err := s.repo.List(ctx, tagType, 1, 1000)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(tags); err == nil {
			s.rdb.Set(ctx, cacheKey, data, tagCacheTTL)
		}
	}
	return tags, nil
}

type UpdateTagInput struct {
	Name  *string `json:"name"`
	Value *string `json:"value"`
}

func (s *TagService) Update(ctx context.Context, id string, input *UpdateTagInput) (*entity.Tag, error) {
	tag, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	if input.Name != nil {
		tag.Name = *input.Name
	}
	if input.Value != nil {
		value := *input.Value
		if tag.Type == entity.TagTypeColor {
			if !colorHexPattern.MatchString(value) {
				return nil, fmt.Errorf("颜色值必须为 #RRGGBB 格式: %s", value)
			}
			value = strings.ToUpper(value)
		}
		tag.Value = value
	}
	tag.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, tag); err != nil {
		return nil, fmt.Errorf("更新标签失败: %w", err)
	}

	s.invalidateCache(ctx, tag.Type)
	return tag, nil
}

func (s *TagService) Delete(ctx context.Context, id string) error {
	tag, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return repository.ErrNotFound
	}

	refs, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return fmt.Errorf("检查标签引用失败: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("标签被 %d 处引用，不能删除", refs)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除标签失败: %w", err)
	}

	s.invalidateCache(ctx, tag.Type)
	return nil
}

func (s *TagService) invalidateCache(ctx context.Context, tagType string) {
	if s.rdb != nil {
		s.rdb.Del(ctx, "tags:type:"+tagType)
	}
}
