package storage

import (
	"fmt"
	"time"

	"github.com/raykavin/quantfeat/pkg/core"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// CandleRow is the relational model for a stored candle
type CandleRow struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Pair      string `gorm:"index:idx_candle,unique"`
	Timeframe string `gorm:"index:idx_candle,unique"`
	Time      int64  `gorm:"index:idx_candle,unique"`
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// SQLStore keeps candle history in a SQL database via GORM. The dialector is
// injected so callers choose the driver.
type SQLStore struct {
	db *gorm.DB
}

// FromSQL creates a new SQL candle store
func FromSQL(dialect gorm.Dialector, opts ...gorm.Option) (*SQLStore, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&CandleRow{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLStore{db: db}, nil
}

// Store saves candles in batches
func (s *SQLStore) Store(timeframe string, candles ...core.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	rows := lo.Map(candles, func(candle core.Candle, _ int) CandleRow {
		return CandleRow{
			Pair:      candle.Pair,
			Timeframe: timeframe,
			Time:      candle.Time.Unix(),
			Open:      candle.Open,
			High:      candle.High,
			Low:       candle.Low,
			Close:     candle.Close,
			Volume:    candle.Volume,
		}
	})

	if result := s.db.CreateInBatches(rows, 500); result.Error != nil {
		return fmt.Errorf("failed to store candles: %w", result.Error)
	}
	return nil
}

// Candles returns stored candles for a pair and timeframe within
// [start, end], ordered by time ascending
func (s *SQLStore) Candles(pair, timeframe string, start, end time.Time) ([]core.Candle, error) {
	var rows []CandleRow

	result := s.db.
		Where("pair = ? AND timeframe = ? AND time BETWEEN ? AND ?",
			pair, timeframe, start.Unix(), end.Unix()).
		Order("time asc").
		Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to fetch candles: %w", result.Error)
	}

	candles := lo.Map(rows, func(row CandleRow, _ int) core.Candle {
		return core.Candle{
			Pair:     row.Pair,
			Time:     time.Unix(row.Time, 0).UTC(),
			Open:     row.Open,
			High:     row.High,
			Low:      row.Low,
			Close:    row.Close,
			Volume:   row.Volume,
			Complete: true,
		}
	})
	return candles, nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
