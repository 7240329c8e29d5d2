package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Record is the row written for every Entry.
type Record struct {
	ID        uint      `gorm:"primaryKey"`
	Kind      string    `gorm:"size:32;index"`
	PartyCode string    `gorm:"size:16;index"`
	ConnID    string    `gorm:"size:64"`
	Counter   int
	Seed      string    `gorm:"size:80"`
	At        time.Time `gorm:"index"`
}

func (Record) TableName() string { return "party_ledger" }

type PostgresStore struct {
	db *gorm.DB
}

// OpenPostgres connects with dsn and migrates the ledger table.
func OpenPostgres(dsn string, log *zap.Logger) (*PostgresStore, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("ledger: parse dsn: %w", err)
	}
	log.Info("opening ledger database",
		zap.String("host", cfg.Host),
		zap.Uint16("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("ledger: open: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			err = multierr.Append(err, sqlDB.Close())
		}
		return nil, fmt.Errorf("ledger: migrate: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Save(ctx context.Context, entries []Entry) error {
	rows := make([]Record, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Record{
			Kind:      string(e.Kind),
			PartyCode: e.PartyCode,
			ConnID:    e.ConnID,
			Counter:   e.Counter,
			Seed:      e.Seed,
			At:        e.At,
		})
	}
	return s.db.WithContext(ctx).CreateInBatches(rows, len(rows)).Error
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
