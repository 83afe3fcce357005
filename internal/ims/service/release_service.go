package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/beyyuanzhang/tfoc/internal/config"
	"github.com/beyyuanzhang/tfoc/internal/ims/entity"
	"github.com/beyyuanzhang/tfoc/internal/ims/repository"
	"go.uber.org/zap"
)

// 材质占比合计允许的误差
const materialSumTolerance = 0.01

// ReleaseService Release服务：定价重算、成分校验、SKU级联入口
type ReleaseService struct {
	repo      *repository.ReleaseRepository
	protoRepo *repository.PrototypeRepository
	tagRepo   *repository.TagRepository
	skuSvc    *SKUService
	cfg       *config.Config
	logger    *zap.Logger
}

func NewReleaseService(
	repo *repository.ReleaseRepository,
	protoRepo *repository.PrototypeRepository,
	tagRepo *repository.TagRepository,
	skuSvc *SKUService,
	cfg *config.Config,
	logger *zap.Logger,
) *ReleaseService {
	return &ReleaseService{
		repo:      repo,
		protoRepo: protoRepo,
		tagRepo:   tagRepo,
		skuSvc:    skuSvc,
		cfg:       cfg,
		logger:    logger,
	}
}

type MaterialInput struct {
	TagID      string  `json:"tag_id" binding:"required"`
	Percentage float64 `json:"percentage"`
}

type ColorMediaInput struct {
	ColorID string           `json:"color_id" binding:"required"`
	Media   entity.MediaList `json:"media"`
}

type CreateReleaseInput struct {
	PrototypeID string     `json:"prototype_id" binding:"required"`
	Status      string     `json:"status"`
	ReleaseDate *time.Time `json:"release_date"`
	Volume      int        `json:"volume"`

	SizeIDs   []string          `json:"size_ids"`
	ColorIDs  []string          `json:"color_ids"`
	Materials []MaterialInput   `json:"materials"`
	ColorMedia []ColorMediaInput `json:"color_media"`

	CostDevPattern float64 `json:"cost_dev_pattern"`
	CostDevSample  float64 `json:"cost_dev_sample"`
	CostDevDesign  float64 `json:"cost_dev_design"`
	CostMaterial   float64 `json:"cost_material"`
	CostLabor      float64 `json:"cost_labor"`
	CostPackaging  float64 `json:"cost_packaging"`

	Positioning        string   `json:"positioning"`
	OpLogistics        float64  `json:"op_logistics"`
	OpAfterSale        *float64 `json:"op_after_sale"`
	OpCommission       *float64 `json:"op_commission"`
	OpChannel          *float64 `json:"op_channel"`
	OpTax              *float64 `json:"op_tax"`
	DiscountStatus     string   `json:"discount_status"`
	CustomDiscountRate *float64 `json:"custom_discount_rate"`
	FinalRetailPrice   *float64 `json:"final_retail_price"`

	MarketingPercentage *float64 `json:"marketing_percentage"`
	ReturnRate          *float64 `json:"return_rate"`
	FullPriceRate       *float64 `json:"full_price_rate"`
}

func (s *ReleaseService) Create(ctx context.Context, input *CreateReleaseInput, userID string) (*entity.Release, error) {
	proto, err := s.protoRepo.FindByID(ctx, input.PrototypeID)
	if err != nil {
		return nil, fmt.Errorf("原型不存在: %s", input.PrototypeID)
	}

	if input.Volume < 0 {
		return nil, fmt.Errorf("发布数量不能为负: %d", input.Volume)
	}

	if err := s.validateTagSelection(ctx, input.SizeIDs, input.ColorIDs); err != nil {
		return nil, err
	}
	if err := s.validateMaterials(ctx, input.Materials); err != nil {
		return nil, err
	}

	number, err := s.repo.NextReleaseNumber(ctx, proto.ID)
	if err != nil {
		return nil, fmt.Errorf("分配批次号失败: %w", err)
	}

	now := time.Now()
	release := &entity.Release{
		ID:            generateID(),
		PrototypeID:   proto.ID,
		ReleaseNumber: number,
		Subtitle:      fmt.Sprintf("[%s] %s - %d", proto.Code, proto.Name, number),
		ReleaseDate:   input.ReleaseDate,
		Status:        defaultString(input.Status, "draft"),
		Volume:        input.Volume,
		SizeIDs:       input.SizeIDs,
		ColorIDs:      input.ColorIDs,

		CostDevPattern: input.CostDevPattern,
		CostDevSample:  input.CostDevSample,
		CostDevDesign:  input.CostDevDesign,
		CostMaterial:   input.CostMaterial,
		CostLabor:      input.CostLabor,
		CostPackaging:  input.CostPackaging,

		Positioning:        defaultString(input.Positioning, DefaultPositioning),
		OpLogistics:        input.OpLogistics,
		OpAfterSale:        defaultFloat(input.OpAfterSale, 3),
		OpCommission:       defaultFloat(input.OpCommission, 5),
		OpChannel:          defaultFloat(input.OpChannel, 8),
		OpTax:              defaultFloat(input.OpTax, 5),
		DiscountStatus:     defaultString(input.DiscountStatus, entity.DiscountStatusNormal),
		CustomDiscountRate: defaultFloat(input.CustomDiscountRate, 100),
		FinalRetailPrice:   input.FinalRetailPrice,

		MarketingPercentage: defaultFloat(input.MarketingPercentage, 20),
		ReturnRate:          defaultFloat(input.ReturnRate, 5),
		FullPriceRate:       defaultFloat(input.FullPriceRate, 70),

		SKUGenerationStatus: entity.GenerationNone,
		CreatedBy:           userID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := ComputePricing(release, s.cfg.Pricing.InvalidNumeric); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, release); err != nil {
		return nil, fmt.Errorf("创建Release失败: %w", err)
	}
	if err := s.saveMaterials(ctx, release.ID, input.Materials); err != nil {
		return nil, err
	}
	if err := s.saveColorMedia(ctx, release.ID, input.ColorMedia); err != nil {
		return nil, err
	}

	s.maybeGenerateSKUs(ctx, release, userID)

	return s.repo.FindByID(ctx, release.ID)
}

type UpdateReleaseInput struct {
	Status      *string    `json:"status"`
	ReleaseDate *time.Time `json:"release_date"`
	Volume      *int       `json:"volume"`

	SizeIDs    *[]string          `json:"size_ids"`
	ColorIDs   *[]string          `json:"color_ids"`
	Materials  *[]MaterialInput   `json:"materials"`
	ColorMedia *[]ColorMediaInput `json:"color_media"`

	CostDevPattern *float64 `json:"cost_dev_pattern"`
	CostDevSample  *float64 `json:"cost_dev_sample"`
	CostDevDesign  *float64 `json:"cost_dev_design"`
	CostMaterial   *float64 `json:"cost_material"`
	CostLabor      *float64 `json:"cost_labor"`
	CostPackaging  *float64 `json:"cost_packaging"`

	Positioning        *string  `json:"positioning"`
	OpLogistics        *float64 `json:"op_logistics"`
	OpAfterSale        *float64 `json:"op_after_sale"`
	OpCommission       *float64 `json:"op_commission"`
	OpChannel          *float64 `json:"op_channel"`
	OpTax              *float64 `json:"op_tax"`
	DiscountStatus     *string  `json:"discount_status"`
	CustomDiscountRate *float64 `json:"custom_discount_rate"`
	FinalRetailPrice   *float64 `json:"final_retail_price"`

	MarketingPercentage *float64 `json:"marketing_percentage"`
	ReturnRate          *float64 `json:"return_rate"`
	FullPriceRate       *float64 `json:"full_price_rate"`
}

func (s *ReleaseService) Update(ctx context.Context, id string, input *UpdateReleaseInput, userID string) (*entity.Release, error) {
	release, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	if input.Volume != nil {
		if *input.Volume < 0 {
			return nil, fmt.Errorf("发布数量不能为负: %d", *input.Volume)
		}
		release.Volume = *input.Volume
	}
	if input.Status != nil {
		release.Status = *input.Status
	}
	if input.ReleaseDate != nil {
		release.ReleaseDate = input.ReleaseDate
	}
	if input.SizeIDs != nil {
		if release.HasSKUs {
			return nil, fmt.Errorf("已生成SKU，不能修改尺码选择")
		}
		release.SizeIDs = *input.SizeIDs
	}
	if input.ColorIDs != nil {
		if release.HasSKUs {
			return nil, fmt.Errorf("已生成SKU，不能修改颜色选择")
		}
		release.ColorIDs = *input.ColorIDs
	}
	if input.SizeIDs != nil || input.ColorIDs != nil {
		if err := s.validateTagSelection(ctx, release.SizeIDs, release.ColorIDs); err != nil {
			return nil, err
		}
	}

	applyFloat(&release.CostDevPattern, input.CostDevPattern)
	applyFloat(&release.CostDevSample, input.CostDevSample)
	applyFloat(&release.CostDevDesign, input.CostDevDesign)
	applyFloat(&release.CostMaterial, input.CostMaterial)
	applyFloat(&release.CostLabor, input.CostLabor)
	applyFloat(&release.CostPackaging, input.CostPackaging)
	applyFloat(&release.OpLogistics, input.OpLogistics)
	applyFloat(&release.OpAfterSale, input.OpAfterSale)
	applyFloat(&release.OpCommission, input.OpCommission)
	applyFloat(&release.OpChannel, input.OpChannel)
	applyFloat(&release.OpTax, input.OpTax)
	applyFloat(&release.CustomDiscountRate, input.CustomDiscountRate)
	applyFloat(&release.MarketingPercentage, input.MarketingPercentage)
	applyFloat(&release.ReturnRate, input.ReturnRate)
	applyFloat(&release.FullPriceRate, input.FullPriceRate)

	if input.Positioning != nil {
		release.Positioning = *input.Positioning
	}
	if input.DiscountStatus != nil {
		release.DiscountStatus = *input.DiscountStatus
	}
	if input.FinalRetailPrice != nil {
		release.FinalRetailPrice = input.FinalRetailPrice
	}

	if input.Materials != nil {
		if err := s.validateMaterials(ctx, *input.Materials); err != nil {
			return nil, err
		}
	}

	release.UpdatedAt = time.Now()
	if err := ComputePricing(release, s.cfg.Pricing.InvalidNumeric); err != nil {
		return nil, err
	}

	// 预加载的关联不随 Save 回写
	release.Prototype = nil
	release.Materials = nil
	release.ColorMedia = nil

	if err := s.repo.Update(ctx, release); err != nil {
		return nil, fmt.Errorf("更新Release失败: %w", err)
	}
	if input.Materials != nil {
		if err := s.saveMaterials(ctx, release.ID, *input.Materials); err != nil {
			return nil, err
		}
	}
	if input.ColorMedia != nil {
		if err := s.saveColorMedia(ctx, release.ID, *input.ColorMedia); err != nil {
			return nil, err
		}
	}

	s.maybeGenerateSKUs(ctx, release, userID)

	return s.repo.FindByID(ctx, release.ID)
}

func (s *ReleaseService) Get(ctx context.Context, id string) (*entity.Release, error) {
	release, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	// 读取口径：派生字段按当前输入即时重算，入库值仅作兜底
	if err := ComputePricing(release, NumericModeCoerce); err != nil {
		s.logger.Warn("recompute pricing on read failed",
			zap.String("release_id", release.ID),
			zap.Error(err))
	}
	return release, nil
}

func (s *ReleaseService) List(ctx context.Context, prototypeID, status string, page, pageSize int) ([]entity.Release, int64, error) {
	return s.repo.List(ctx, prototypeID, status, page, pageSize)
}

func (s *ReleaseService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return repository.ErrNotFound
	}

	count, err := s.skuSvc.CountByRelease(ctx, id)
	if err != nil {
		return fmt.Errorf("检查Release下的SKU失败: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("Release下存在 %d 个SKU，不能删除", count)
	}

	return s.repo.Delete(ctx, id)
}

// GenerateSKUs 显式触发SKU级联（幂等，已有组合跳过）
func (s *ReleaseService) GenerateSKUs(ctx context.Context, id, userID string) (*GenerationResult, error) {
	release, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return s.skuSvc.GenerateForRelease(ctx, release, userID)
}

// maybeGenerateSKUs 写入后的级联触发：已生成过或副作用被抑制则跳过
func (s *ReleaseService) maybeGenerateSKUs(ctx context.Context, release *entity.Release, userID string) {
	if IsSuppressed(ctx, EffectGenerateSKUs) {
		return
	}
	if release.HasSKUs {
		return
	}
	if len(release.SizeIDs) == 0 || len(release.ColorIDs) == 0 {
		return
	}

	result, err := s.skuSvc.GenerateForRelease(ctx, release, userID)
	if err != nil {
		s.logger.Error("sku cascade failed",
			zap.String("release_id", release.ID),
			zap.Error(err))
		return
	}
	s.logger.Info("sku cascade finished",
		zap.String("release_id", release.ID),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Failures)))
}

func (s *ReleaseService) validateTagSelection(ctx context.Context, sizeIDs, colorIDs []string) error {
	if err := s.validateTagsOfType(ctx, sizeIDs, entity.TagTypeSize); err != nil {
		return err
	}
	return s.validateTagsOfType(ctx, colorIDs, entity.TagTypeColor)
}

func (s *ReleaseService) validateTagsOfType(ctx context.Context, ids []string, tagType string) error {
	if len(ids) == 0 {
		return nil
	}
	tags, err := s.tagRepo.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("查询标签失败: %w", err)
	}
	found := make(map[string]string, len(tags))
	for _, t := range tags {
		found[t.ID] = t.Type
	}
	for _, id := range ids {
		typ, ok := found[id]
		if !ok {
			return fmt.Errorf("标签不存在: %s", id)
		}
		if typ != tagType {
			return fmt.Errorf("标签 %s 类型应为 %s，实际为 %s", id, tagType, typ)
		}
	}
	return nil
}

func (s *ReleaseService) validateMaterials(ctx context.Context, materials []MaterialInput) error {
	if len(materials) == 0 {
		return nil
	}
	sum := 0.0
	ids := make([]string, 0, len(materials))
	for _, m := range materials {
		if m.Percentage <= 0 {
			return fmt.Errorf("材质占比必须为正数: %s", m.TagID)
		}
		sum += m.Percentage
		ids = append(ids, m.TagID)
	}
	if math.Abs(sum-100) > materialSumTolerance {
		return fmt.Errorf("材质占比合计必须为100%%，当前为 %.2f%%", sum)
	}
	return s.validateTagsOfType(ctx, ids, entity.TagTypeMaterial)
}

func (s *ReleaseService) saveMaterials(ctx context.Context, releaseID string, materials []MaterialInput) error {
	records := make([]entity.ReleaseMaterial, 0, len(materials))
	for _, m := range materials {
		records = append(records, entity.ReleaseMaterial{
			ID:         generateID(),
			ReleaseID:  releaseID,
			TagID:      m.TagID,
			Percentage: m.Percentage,
		})
	}
	if err := s.repo.ReplaceMaterials(ctx, releaseID, records); err != nil {
		return fmt.Errorf("保存成分占比失败: %w", err)
	}
	return nil
}

func (s *ReleaseService) saveColorMedia(ctx context.Context, releaseID string, media []ColorMediaInput) error {
	records := make([]entity.ReleaseColorMedia, 0, len(media))
	for _, m := range media {
		records = append(records, entity.ReleaseColorMedia{
			ID:        generateID(),
			ReleaseID: releaseID,
			ColorID:   m.ColorID,
			Media:     m.Media,
		})
	}
	if err := s.repo.ReplaceColorMedia(ctx, releaseID, records); err != nil {
		return fmt.Errorf("保存配色媒体失败: %w", err)
	}
	return nil
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func defaultFloat(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func applyFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
