package implementation

import (
	"context"
	"errors"

	"jyotchat-be/internal/entity"
	"jyotchat-be/internal/mapper"
	"jyotchat-be/internal/model"
	"jyotchat-be/internal/repository/contract"
	"jyotchat-be/internal/repository/specification"

	"gorm.io/gorm"
)

const chatLogBatchSize = 100

type ChatLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatLogMapper
}

func NewChatLogRepository(db *gorm.DB) contract.ChatLogRepository {
	return &ChatLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatLogMapper(),
	}
}

func (r *ChatLogRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatLogRepositoryImpl) EnsureTable(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&model.ChatLog{})
}

func (r *ChatLogRepositoryImpl) CreateBulk(ctx context.Context, logs []*entity.ChatLog) error {
	if len(logs) == 0 {
		return nil
	}
	models := make([]*model.ChatLog, len(logs))
	for i, l := range logs {
		models[i] = r.mapper.ToModel(l)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(models, chatLogBatchSize).Error; err != nil {
		return err
	}
	for i, m := range models {
		logs[i].Id = m.Id
	}
	return nil
}

func (r *ChatLogRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatLog, error) {
	var m model.ChatLog
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ChatLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatLog, error) {
	var models []*model.ChatLog
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ChatLog, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ChatLogRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatLog{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
