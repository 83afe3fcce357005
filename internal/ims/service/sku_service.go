package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/beyyuanzhang/tfoc/internal/config"
	"github.com/beyyuanzhang/tfoc/internal/ims/entity"
	"github.com/beyyuanzhang/tfoc/internal/ims/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GenerationFailure 级联中单项的失败记录
type GenerationFailure struct {
	Item string `json:"item"`
	Err  string `json:"error"`
}

// GenerationResult 级联结果汇总
type GenerationResult struct {
	Created  int                 `json:"created"`
	Skipped  int                 `json:"skipped"`
	Failures []GenerationFailure `json:"failures,omitempty"`
	Status   string              `json:"status"`
}

// SKUService SKU服务：色×码级联生成与库存口径
type SKUService struct {
	repo        *repository.SKURepository
	serialRepo  *repository.SerialRepository
	releaseRepo *repository.ReleaseRepository
	protoRepo   *repository.PrototypeRepository
	tagRepo     *repository.TagRepository
	cfg         *config.Config
	logger      *zap.Logger

	// 级联出口与标签缓存入口，构造后由 NewServices 注入
	serialSvc *SerialService
	tagSvc    *TagService
}

func NewSKUService(
	repo *repository.SKURepository,
	serialRepo *repository.SerialRepository,
	releaseRepo *repository.ReleaseRepository,
	protoRepo *repository.PrototypeRepository,
	tagRepo *repository.TagRepository,
	cfg *config.Config,
	logger *zap.Logger,
) *SKUService {
	return &SKUService{
		repo:        repo,
		serialRepo:  serialRepo,
		releaseRepo: releaseRepo,
		protoRepo:   protoRepo,
		tagRepo:     tagRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// BuildSKUCode SKU编码：TFOC-{原型编号}-{色值去#}-{尺码名}-R{批次号}
func BuildSKUCode(protoCode, colorValue, sizeName string, releaseNumber int) string {
	hex := strings.ToUpper(strings.TrimPrefix(colorValue, "#"))
	return fmt.Sprintf("TFOC-%s-%s-%s-R%d", protoCode, hex, sizeName, releaseNumber)
}

// GenerateForRelease 将 Release 的色×码组合展开为SKU。
// 幂等：已存在的组合跳过。单项失败不打断其余组合，结果汇总回写到 Release。
func (s *SKUService) GenerateForRelease(ctx context.Context, release *entity.Release, userID string) (*GenerationResult, error) {
	proto := release.Prototype
	if proto == nil {
		var err error
		proto, err = s.protoRepo.FindByID(ctx, release.PrototypeID)
		if err != nil {
			return nil, fmt.Errorf("原型不存在: %s", release.PrototypeID)
		}
	}

	colors, err := s.lookupTags(ctx, release.ColorIDs, entity.TagTypeColor)
	if err != nil {
		return nil, fmt.Errorf("查询颜色标签失败: %w", err)
	}
	sizes, err := s.lookupTags(ctx, release.SizeIDs, entity.TagTypeSize)
	if err != nil {
		return nil, fmt.Errorf("查询尺码标签失败: %w", err)
	}

	// 无色值的颜色标签不参与组合
	validColors := colors[:0]
	for _, c := range colors {
		if c.Value != "" {
			validColors = append(validColors, c)
		}
	}
	sort.Slice(validColors, func(i, j int) bool { return validColors[i].Name < validColors[j].Name })
	sort.Slice(sizes, func(i, j int) bool { return sizes[i].Name < sizes[j].Name })

	result := &GenerationResult{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cascadeLimit())

	for _, color := range validColors {
		for _, size := range sizes {
			color, size := color, size
			g.Go(func() error {
				code := BuildSKUCode(proto.Code, color.Value, size.Name, release.ReleaseNumber)

				exists, err := s.repo.ExistsByCombination(gctx, release.ID, color.ID, size.ID)
				if err == nil && exists {
					mu.Lock()
					result.Skipped++
					mu.Unlock()
					return nil
				}
				if err == nil {
					now := time.Now()
					err = s.repo.Create(gctx, &entity.SKU{
						ID:                     generateID(),
						Code:                   code,
						ReleaseID:              release.ID,
						PrototypeID:            release.PrototypeID,
						ColorID:                color.ID,
						SizeID:                 size.ID,
						Quantity:               0,
						StockStatus:            entity.StockStatusPending,
						SerialGenerationStatus: entity.GenerationNone,
						CreatedBy:              userID,
						CreatedAt:              now,
						UpdatedAt:              now,
					})
				}

				mu.Lock()
				if err != nil {
					result.Failures = append(result.Failures, GenerationFailure{Item: code, Err: err.Error()})
				} else {
					result.Created++
				}
				mu.Unlock()
				return nil
			})
		}
	}
	g.Wait()

	result.Status = generationStatus(result)
	hasSKUs := release.HasSKUs || result.Created > 0 || result.Skipped > 0
	if err := s.releaseRepo.UpdateGenerationFlags(ctx, release.ID, hasSKUs, result.Status); err != nil {
		return nil, fmt.Errorf("回写SKU生成状态失败: %w", err)
	}

	return result, nil
}

func (s *SKUService) Get(ctx context.Context, id string) (*entity.SKU, error) {
	sku, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	s.deriveStockStatus(ctx, sku)
	return sku, nil
}

func (s *SKUService) GetByCode(ctx context.Context, code string) (*entity.SKU, error) {
	sku, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	s.deriveStockStatus(ctx, sku)
	return sku, nil
}

// deriveStockStatus 详情读取时按序列号实际状态即时推导库存状态，不回写。
// 列表沿用写入时落库的值，批量推导交给 reconcile。
func (s *SKUService) deriveStockStatus(ctx context.Context, sku *entity.SKU) {
	sellable, err := s.serialRepo.CountBySKUAndStatuses(ctx, sku.ID, entity.SellableStatuses)
	if err != nil {
		return
	}
	sku.StockStatus = stockStatusFor(sku.Quantity, int(sellable), s.cfg.Pricing.LowStockThreshold)
}

func (s *SKUService) List(ctx context.Context, releaseID, stockStatus string, page, pageSize int) ([]entity.SKU, int64, error) {
	return s.repo.List(ctx, releaseID, stockStatus, page, pageSize)
}

func (s *SKUService) CountByRelease(ctx context.Context, releaseID string) (int64, error) {
	return s.repo.CountByRelease(ctx, releaseID)
}

// UpdateQuantity 将 SKU 的数量调整到声明的总量，并为差额生成序列号。
// 数量是累计声明值：只增不减，减少会破坏已发出的序列号。
func (s *SKUService) UpdateQuantity(ctx context.Context, id string, quantity int, userID string) (*entity.SKU, *GenerationResult, error) {
	sku, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, repository.ErrNotFound
	}

	existing, err := s.serialRepo.CountBySKU(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("统计序列号失败: %w", err)
	}
	if quantity < int(existing) {
		return nil, nil, fmt.Errorf("数量不能低于已有序列号数 %d", existing)
	}

	result := &GenerationResult{Status: entity.GenerationCompleted}
	delta := quantity - int(existing)
	if delta > 0 && !IsSuppressed(ctx, EffectGenerateSerials) {
		result, err = s.serialSvc.GenerateForSKU(ctx, sku, delta, userID)
		if err != nil {
			return nil, nil, err
		}
	}

	if err := s.reconcileStock(ctx, sku, quantity, result.Status); err != nil {
		return nil, nil, err
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return updated, result, nil
}

// Reconcile 以序列号实际状态为准，重算 SKU 的数量与库存状态
func (s *SKUService) Reconcile(ctx context.Context, id string) (*entity.SKU, error) {
	sku, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	total, err := s.serialRepo.CountBySKU(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("统计序列号失败: %w", err)
	}
	if err := s.reconcileStock(ctx, sku, int(total), sku.SerialGenerationStatus); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *SKUService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return repository.ErrNotFound
	}

	count, err := s.serialRepo.CountBySKU(ctx, id)
	if err != nil {
		return fmt.Errorf("统计序列号失败: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("SKU下存在 %d 个序列号，不能删除", count)
	}

	return s.repo.Delete(ctx, id)
}

// StatusBreakdown SKU 下序列号的状态分布
func (s *SKUService) StatusBreakdown(ctx context.Context, id string) (map[string]int64, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, repository.ErrNotFound
	}
	return s.serialRepo.StatusCounts(ctx, id)
}

func (s *SKUService) reconcileStock(ctx context.Context, sku *entity.SKU, quantity int, generationStatus string) error {
	sellable, err := s.serialRepo.CountBySKUAndStatuses(ctx, sku.ID, entity.SellableStatuses)
	if err != nil {
		return fmt.Errorf("统计可售序列号失败: %w", err)
	}

	stockStatus := stockStatusFor(quantity, int(sellable), s.cfg.Pricing.LowStockThreshold)
	if err := s.repo.UpdateStockFields(ctx, sku.ID, quantity, stockStatus, generationStatus); err != nil {
		return fmt.Errorf("更新SKU库存失败: %w", err)
	}
	return nil
}

// lookupTags 级联用的标签解析：走按类型缓存的全量集合，再按选中 id 过滤
func (s *SKUService) lookupTags(ctx context.Context, ids []string, tagType string) ([]entity.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if s.tagSvc == nil {
		return s.tagRepo.FindByIDs(ctx, ids)
	}

	all, err := s.tagSvc.ListByType(ctx, tagType)
	if err != nil {
		return nil, err
	}
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}
	tags := make([]entity.Tag, 0, len(ids))
	for _, t := range all {
		if selected[t.ID] {
			tags = append(tags, t)
		}
	}
	return tags, nil
}

func (s *SKUService) cascadeLimit() int {
	if s.cfg.Pricing.CascadeConcurrency > 0 {
		return s.cfg.Pricing.CascadeConcurrency
	}
	return 4
}

func stockStatusFor(quantity, sellable, lowThreshold int) string {
	switch {
	case quantity == 0:
		return entity.StockStatusPending
	case sellable == 0:
		return entity.StockStatusOutOfStock
	case sellable < lowThreshold:
		return entity.StockStatusLowStock
	default:
		return entity.StockStatusInStock
	}
}

func generationStatus(r *GenerationResult) string {
	switch {
	case len(r.Failures) == 0:
		return entity.GenerationCompleted
	case r.Created > 0:
		return entity.GenerationPartial
	default:
		return entity.GenerationFailed
	}
}
