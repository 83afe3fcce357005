package service

import (
	"context"
	"crypto/md5"
	"fmt"
	"sync"
	"time"

	"github.com/beyyuanzhang/tfoc/internal/config"
	"github.com/beyyuanzhang/tfoc/internal/ims/entity"
	"github.com/beyyuanzhang/tfoc/internal/ims/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SerialService 序列号服务：按数量展开、状态流转与履历
type SerialService struct {
	repo    *repository.SerialRepository
	skuRepo *repository.SKURepository
	cfg     *config.Config
	logger  *zap.Logger
}

func NewSerialService(
	repo *repository.SerialRepository,
	skuRepo *repository.SKURepository,
	cfg *config.Config,
	logger *zap.Logger,
) *SerialService {
	return &SerialService{repo: repo, skuRepo: skuRepo, cfg: cfg, logger: logger}
}

// BuildSerialCode 序列号编码：{SKU编码}-{序号三位}-{md5摘要前4位}
func BuildSerialCode(skuCode string, index int, at time.Time) string {
	hashInput := fmt.Sprintf("%s-%d-%d", skuCode, index, at.UnixMilli())
	digest := fmt.Sprintf("%x", md5.Sum([]byte(hashInput)))
	return fmt.Sprintf("%s-%03d-%s", skuCode, index, digest[:4])
}

// GenerateForSKU 为 SKU 追加 count 个序列号，序号接在已有数量之后。
// 单项失败不打断其余项，失败集合汇总返回。
func (s *SerialService) GenerateForSKU(ctx context.Context, sku *entity.SKU, count int, userID string) (*GenerationResult, error) {
	if count <= 0 {
		return nil, fmt.Errorf("数量必须大于0")
	}

	existing, err := s.repo.CountBySKU(ctx, sku.ID)
	if err != nil {
		return nil, fmt.Errorf("统计序列号失败: %w", err)
	}

	result := &GenerationResult{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	limit := s.cfg.Pricing.CascadeConcurrency
	if limit <= 0 {
		limit = 4
	}
	g.SetLimit(limit)

	for i := 0; i < count; i++ {
		index := int(existing) + i + 1
		g.Go(func() error {
			now := time.Now()
			code := BuildSerialCode(sku.Code, index, now)
			err := s.repo.Create(gctx, &entity.SerialNumber{
				ID:     generateID(),
				Code:   code,
				SKUID:  sku.ID,
				Index:  index,
				Status: entity.SerialStatusCreated,
				StatusHistory: entity.StatusHistory{{
					Status:    entity.SerialStatusCreated,
					Timestamp: now,
					Operator:  userID,
					Note:      "创建",
				}},
				CreatedBy: userID,
				CreatedAt: now,
				UpdatedAt: now,
			})

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
	g.Wait()

	result.Status = generationStatus(result)
	if len(result.Failures) > 0 {
		s.logger.Warn("serial cascade finished with failures",
			zap.String("sku_id", sku.ID),
			zap.Int("created", result.Created),
			zap.Int("failed", len(result.Failures)))
	}
	return result, nil
}

func (s *SerialService) Get(ctx context.Context, id string) (*entity.SerialNumber, error) {
	sn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return sn, nil
}

func (s *SerialService) GetByCode(ctx context.Context, code string) (*entity.SerialNumber, error) {
	sn, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return sn, nil
}

func (s *SerialService) List(ctx context.Context, skuID, status string, page, pageSize int) ([]entity.SerialNumber, int64, error) {
	return s.repo.List(ctx, skuID, status, page, pageSize)
}

// UpdateStatus 序列号只允许改状态和状态备注。
// 每次状态变化追加一条履历，操作人取当前用户邮箱。
func (s *SerialService) UpdateStatus(ctx context.Context, id, status, note, operatorEmail string) (*entity.SerialNumber, error) {
	if operatorEmail == "" {
		return nil, fmt.Errorf("需要用户信息来更改状态")
	}
	if !entity.IsValidSerialStatus(status) {
		return nil, fmt.Errorf("无效的序列号状态: %s", status)
	}

	sn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	if status != sn.Status {
		historyNote := note
		if historyNote == "" {
			historyNote = "状态更新"
		}
		sn.StatusHistory = append(sn.StatusHistory, entity.StatusChange{
			Status:    status,
			Timestamp: time.Now(),
			Operator:  operatorEmail,
			Note:      historyNote,
		})
	}
	sn.Status = status
	sn.StatusNote = note
	sn.UpdatedAt = time.Now()
	sn.SKU = nil

	if err := s.repo.Update(ctx, sn); err != nil {
		return nil, fmt.Errorf("更新序列号状态失败: %w", err)
	}
	return s.repo.FindByID(ctx, id)
}
