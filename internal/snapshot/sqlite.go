package snapshot

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/obs"
)

// productRow is one product in the products table. Position keeps catalog order.
type productRow struct {
	Position    int    `gorm:"primaryKey;autoIncrement:false"`
	Name        string `gorm:"size:100;not null"`
	Description string
	Price       string `gorm:"not null"`
	Stock       int64  `gorm:"not null;default:0"`
	ChannelID   string `gorm:"size:32"`
	MessageID   string `gorm:"size:32"`
	ImageURL    string
	EmbedColor  string `gorm:"size:32"`
}

// TableName returns the table name for productRow.
func (productRow) TableName() string {
	return "products"
}

// SQLite stores the snapshot in a SQLite table, rewritten in one transaction per save.
type SQLite struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the database at path and migrates the table.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}
	// one connection keeps ":memory:" databases shared and writes serialized
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&productRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "migrate products table")
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Load(ctx context.Context) []model.Product {
	var rows []productRow
	if err := s.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		obs.Warn(ctx, "snapshot_unreadable", zap.String("backend", "sqlite"), zap.Error(err))
		return []model.Product{}
	}
	products := make([]model.Product, 0, len(rows))
	for _, r := range rows {
		price, err := decimal.NewFromString(r.Price)
		if err != nil {
			obs.Warn(ctx, "snapshot_corrupt", zap.String("backend", "sqlite"), zap.Error(err))
			return []model.Product{}
		}
		products = append(products, model.Product{
			Name:         r.Name,
			Description:  r.Description,
			Price:        price,
			Stock:        r.Stock,
			ChannelID:    r.ChannelID,
			MessageID:    r.MessageID,
			ImageURL:     r.ImageURL,
			DisplayColor: r.EmbedColor,
		})
	}
	return products
}

func (s *SQLite) Save(ctx context.Context, products []model.Product) error {
	rows := make([]productRow, 0, len(products))
	for i, p := range products {
		rows = append(rows, productRow{
			Position:    i + 1,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price.String(),
			Stock:       p.Stock,
			ChannelID:   p.ChannelID,
			MessageID:   p.MessageID,
			ImageURL:    p.ImageURL,
			EmbedColor:  p.DisplayColor,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM products").Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return errors.Wrap(err, "save sqlite snapshot")
	}
	return nil
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql.DB")
	}
	return sqlDB.Close()
}
