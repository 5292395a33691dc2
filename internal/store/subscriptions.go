package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-maintenance-backend/internal/model"
)

// SaveSubscription creates or replaces a subscription and the equipment it follows.
func (s *gormStore) SaveSubscription(ctx context.Context, sub *model.PushSubscription, matricules []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Equipment").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(sub).Error; err != nil {
			return fmt.Errorf("failed to save subscription: %w", err)
		}

		var equipment []*model.Equipment
		if len(matricules) > 0 {
			if err := tx.Where("matricule IN ?", matricules).Find(&equipment).Error; err != nil {
				return fmt.Errorf("failed to find subscribed equipment: %w", err)
			}
		}

		if err := tx.Model(sub).Association("Equipment").Replace(equipment); err != nil {
			return fmt.Errorf("failed to link subscribed equipment: %w", err)
		}
		return nil
	})
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).Preload("Equipment").First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		return nil, notFound(err)
	}
	return &sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := &model.PushSubscription{Endpoint: endpoint}
		if err := tx.Model(sub).Association("Equipment").Clear(); err != nil {
			return fmt.Errorf("failed to unlink subscription: %w", err)
		}
		if err := tx.Delete(sub).Error; err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}
		return nil
	})
}
