package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Snapshot is the database row backing one cart session.
type Snapshot struct {
	Key       string         `gorm:"column:session_key;primaryKey;type:varchar(191)"`
	Blob      datatypes.JSON `gorm:"column:blob;not null"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null"`
}

func (Snapshot) TableName() string { return "cart_snapshots" }

type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB, now func() time.Time) *GormStore {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &GormStore{db: db, now: now}
}

func (g *GormStore) Migrate(ctx context.Context) error {
	return g.db.WithContext(ctx).AutoMigrate(&Snapshot{})
}

func (g *GormStore) Save(ctx context.Context, key, blob string) error {
	row := Snapshot{
		Key:       key,
		Blob:      datatypes.JSON(blob),
		UpdatedAt: g.now(),
	}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"blob", "updated_at"}),
	}).Create(&row).Error
}

func (g *GormStore) Load(ctx context.Context, key string) (string, bool, error) {
	var row Snapshot
	err := g.db.WithContext(ctx).Where("session_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(row.Blob), true, nil
}

func (g *GormStore) Delete(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).Where("session_key = ?", key).Delete(&Snapshot{}).Error
}

// PurgeBefore deletes snapshots last written before cutoff.
func (g *GormStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := g.db.WithContext(ctx).Where("updated_at < ?", cutoff).Delete(&Snapshot{})
	return res.RowsAffected, res.Error
}
