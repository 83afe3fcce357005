package service

import (
	"github.com/beyyuanzhang/tfoc/internal/config"
	"github.com/beyyuanzhang/tfoc/internal/ims/repository"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services 服务集合
type Services struct {
	Auth      *AuthService
	User      *UserService
	Tag       *TagService
	Prototype *PrototypeService
	Release   *ReleaseService
	SKU       *SKUService
	Serial    *SerialService
	Export    *ExportService
	Upload    *UploadService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	// 初始化MinIO客户端
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("minio client init failed, uploads disabled", zap.Error(err))
			minioClient = nil
		}
	}

	tagSvc := NewTagService(repos.Tag, rdb)
	skuSvc := NewSKUService(repos.SKU, repos.Serial, repos.Release, repos.Prototype, repos.Tag, cfg, logger)
	serialSvc := NewSerialService(repos.Serial, repos.SKU, cfg, logger)
	skuSvc.serialSvc = serialSvc
	skuSvc.tagSvc = tagSvc

	return &Services{
		Auth:      NewAuthService(repos.User, rdb, cfg),
		User:      NewUserService(repos.User),
		Tag:       tagSvc,
		Prototype: NewPrototypeService(repos.Prototype),
		Release:   NewReleaseService(repos.Release, repos.Prototype, repos.Tag, skuSvc, cfg, logger),
		SKU:       skuSvc,
		Serial:    serialSvc,
		Export:    NewExportService(repos.Release, repos.SKU, repos.Serial),
		Upload:    NewUploadService(minioClient, cfg.MinIO.Bucket),
	}
}

// generateID 生成 32 位实体ID
func generateID() string {
	return uuid.New().String()[:32]
}
