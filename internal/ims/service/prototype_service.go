package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/beyyuanzhang/tfoc/internal/ims/entity"
	"github.com/beyyuanzhang/tfoc/internal/ims/repository"
)

var prototypeCodePattern = regexp.MustCompile(`^[A-Z0-9]{2,12}$`)

var slugStripPattern = regexp.MustCompile(`[^a-z0-9]+`)

// PrototypeService 原型服务
type PrototypeService struct {
	repo *repository.PrototypeRepository
}

func NewPrototypeService(repo *repository.PrototypeRepository) *PrototypeService {
	return &PrototypeService{repo: repo}
}

type CreatePrototypeInput struct {
	Code        string           `json:"code" binding:"required"`
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Status      string           `json:"status"`
	Media       entity.MediaList `json:"media"`
}

func (s *PrototypeService) Create(ctx context.Context, input *CreatePrototypeInput, userID string) (*entity.Prototype, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if !prototypeCodePattern.MatchString(code) {
		return nil, fmt.Errorf("原型编号格式无效: %s", input.Code)
	}

	if existing, err := s.repo.FindByCode(ctx, code); err == nil && existing != nil {
		return nil, fmt.Errorf("原型编号已存在: %s", code)
	}

	status := input.Status
	if status == "" {
		status = "draft"
	}

	now := time.Now()
	proto := &entity.Prototype{
		ID:          generateID(),
		Code:        code,
		Name:        input.Name,
		Slug:        makeSlug(input.Name),
		Description: input.Description,
		Status:      status,
		Media:       input.Media,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, proto); err != nil {
		return nil, fmt.Errorf("创建原型失败: %w", err)
	}
	return proto, nil
}

func (s *PrototypeService) Get(ctx context.Context, id string) (*entity.Prototype, error) {
	proto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return proto, nil
}

func (s *PrototypeService) List(ctx context.Context, status, keyword string, page, pageSize int) ([]entity.Prototype, int64, error) {
	return s.repo.List(ctx, status, keyword, page, pageSize)
}

type UpdatePrototypeInput struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Status      *string           `json:"status"`
	Media       *entity.MediaList `json:"media"`
}

// Update 原型编号创建后不可变，更新请求不接受 code 字段
func (s *PrototypeService) Update(ctx context.Context, id string, input *UpdatePrototypeInput) (*entity.Prototype, error) {
	proto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	if input.Name != nil {
		proto.Name = *input.Name
		proto.Slug = makeSlug(*input.Name)
	}
	if input.Description != nil {
		proto.Description = *input.Description
	}
	if input.Status != nil {
		proto.Status = *input.Status
	}
	if input.Media != nil {
		proto.Media = *input.Media
	}
	proto.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, proto); err != nil {
		return nil, fmt.Errorf("更新原型失败: %w", err)
	}
	return proto, nil
}

func (s *PrototypeService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return repository.ErrNotFound
	}

	count, err := s.repo.CountReleases(ctx, id)
	if err != nil {
		return fmt.Errorf("检查原型下的Release失败: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("原型下存在 %d 个Release，不能删除", count)
	}

	return s.repo.Delete(ctx, id)
}

func makeSlug(name string) string {
	slug := slugStripPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
