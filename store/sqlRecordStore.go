package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/marktlinn/kvstore/record"
	"github.com/marktlinn/kvstore/utils"
)

// SQLRecordStore keeps Records in a relational table through gorm.
// The underlying *sql.DB pools connections across requests.
type SQLRecordStore struct {
	DB *gorm.DB
}

// Connect opens dialector and pings it, retrying both according to policy.
// An unreachable server counts as a failed attempt.
func Connect(ctx context.Context, dialector gorm.Dialector, policy utils.RetryPolicy, log logrus.FieldLogger) (*SQLRecordStore, error) {
	var db *gorm.DB
	err := utils.WithRetry(ctx, policy, log, "database connection", func(ctx context.Context) error {
		conn, err := gorm.Open(dialector, &gorm.Config{
			Logger:               logger.Default.LogMode(logger.Silent),
			DisableAutomaticPing: true,
			NowFunc:              nowUTC,
		})
		if err != nil {
			return err
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return err
		}
		db = conn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return NewSQLRecordStore(db), nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// NewSQLRecordStore wraps an already opened gorm handle.
func NewSQLRecordStore(db *gorm.DB) *SQLRecordStore {
	return &SQLRecordStore{DB: db}
}

// EnsureSchema creates the record table when it does not exist yet.
func (s *SQLRecordStore) EnsureSchema(ctx context.Context) error {
	if err := s.DB.WithContext(ctx).AutoMigrate(&record.Record{}); err != nil {
		return fmt.Errorf("create table %s: %w", record.TableName, err)
	}
	return nil
}

// Put upserts key in one statement. On MySQL this renders as
// INSERT ... ON DUPLICATE KEY UPDATE.
func (s *SQLRecordStore) Put(ctx context.Context, key, value string) error {
	now := s.DB.NowFunc()
	rec := record.New(key, value, now)
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "key_name"}},
			DoUpdates: clause.Assignments(map[string]any{
				"value":      value,
				"updated_at": now,
			}),
		}).
		Create(rec).Error
	if err != nil {
		return fmt.Errorf("store %q: %w", key, err)
	}
	return nil
}

func (s *SQLRecordStore) Get(ctx context.Context, key string) (*record.Record, error) {
	var rec record.Record
	err := s.DB.WithContext(ctx).Where("key_name = ?", key).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("retrieve %q: %w", key, err)
	}
	return &rec, nil
}

func (s *SQLRecordStore) List(ctx context.Context) ([]*record.Record, error) {
	records := make([]*record.Record, 0)
	err := s.DB.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

func (s *SQLRecordStore) Delete(ctx context.Context, key string) error {
	res := s.DB.WithContext(ctx).Where("key_name = ?", key).Delete(&record.Record{})
	if res.Error != nil {
		return fmt.Errorf("delete %q: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLRecordStore) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&record.Record{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return int(n), nil
}

// Ping checks the database is reachable.
func (s *SQLRecordStore) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLRecordStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
