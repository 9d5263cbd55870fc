package recorder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"paperdesk/internal/portfolio"
)

// TradeRecordModel is the journal row. The full broadcast envelope is kept
// as a JSON column next to the indexed trade fields.
type TradeRecordModel struct {
	ID         int64          `gorm:"column:id;primaryKey"`
	Seq        uint64         `gorm:"column:seq;uniqueIndex"`
	TradeID    string         `gorm:"column:trade_id"`
	Symbol     string         `gorm:"column:symbol;index"`
	Side       string         `gorm:"column:side"`
	Quantity   float64        `gorm:"column:quantity"`
	Price      float64        `gorm:"column:price"`
	Fee        float64        `gorm:"column:fee"`
	ExecutedAt int64          `gorm:"column:executed_at"`
	RawEvent   datatypes.JSON `gorm:"column:raw_event;type:TEXT"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
}

func (TradeRecordModel) TableName() string { return "trade_journal" }

// SQLiteRecorder persists trades with gorm over sqlite.
type SQLiteRecorder struct {
	db *gorm.DB
}

func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("recorder: journal path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&TradeRecordModel{}); err != nil {
		return nil, err
	}
	return &SQLiteRecorder{db: db}, nil
}

func (r *SQLiteRecorder) RecordTrade(seq uint64, trade portfolio.Trade, raw json.RawMessage) error {
	row := TradeRecordModel{
		Seq:        seq,
		TradeID:    trade.ID,
		Symbol:     trade.Symbol,
		Side:       string(trade.Side),
		Quantity:   trade.Quantity,
		Price:      trade.Price,
		Fee:        trade.Fee,
		ExecutedAt: trade.Timestamp.UnixMilli(),
		RawEvent:   datatypes.JSON(raw),
		CreatedAt:  time.Now().UTC(),
	}
	return r.db.Create(&row).Error
}

func (r *SQLiteRecorder) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
