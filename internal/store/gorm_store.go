package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dispetcher/backend/internal/model"
	pkgerrors "dispetcher/backend/pkg/errors"
)

// GormStore keeps collections in the record_collections table, one row per key.
type GormStore struct {
	db *gorm.DB
	// seen is set inside Atomic. Reads lock their row until commit and record
	// the revision they saw; saves of a seen key compare-and-swap on it.
	seen map[string]int
}

// NewGormStore creates a GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) find(ctx context.Context, key string) (*model.RecordCollection, error) {
	var rec model.RecordCollection
	q := s.db.WithContext(ctx)
	if s.seen != nil {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Where("collection_key = ?", key).First(&rec).Error; err != nil {
		if s.seen != nil && errors.Is(err, gorm.ErrRecordNotFound) {
			s.seen[key] = 0
		}
		return nil, err
	}
	if s.seen != nil {
		s.seen[key] = rec.Version
	}
	return &rec, nil
}

func (s *GormStore) Load(ctx context.Context, key string, dst any) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	rec, err := s.find(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(rec.Payload), dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *GormStore) Save(ctx context.Context, key string, v any) error {
	if key == "" {
		return ErrEmptyKey
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if expected, ok := s.seen[key]; ok {
		if err := s.saveVersioned(ctx, key, payload, expected); err != nil {
			return err
		}
		s.seen[key] = expected + 1
		return nil
	}

	rec := model.RecordCollection{CollectionKey: key, Payload: string(payload), Version: 1}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "collection_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"payload":    gorm.Expr("EXCLUDED.payload"),
			"version":    gorm.Expr("record_collections.version + 1"),
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// saveVersioned is a compare-and-swap on the revision counter. expected 0
// means the row must not exist yet. The locked row of a seen key cannot move,
// so in practice this fails when another unit created the row first.
func (s *GormStore) saveVersioned(ctx context.Context, key string, payload []byte, expected int) error {
	db := s.db.WithContext(ctx)

	if expected == 0 {
		rec := model.RecordCollection{CollectionKey: key, Payload: string(payload), Version: 1}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
		if res.Error != nil {
			return fmt.Errorf("save %s: %w", key, res.Error)
		}
		if res.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}
		return nil
	}

	res := db.Model(&model.RecordCollection{}).
		Where("collection_key = ? AND version = ?", key, expected).
		Updates(map[string]interface{}{
			"payload":    string(payload),
			"version":    gorm.Expr("version + 1"),
			"updated_at": gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return fmt.Errorf("save %s: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

// Atomic runs fn inside a database transaction. Reads made through the
// transactional store lock their rows until commit.
func (s *GormStore) Atomic(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, seen: make(map[string]int)})
	})
}
