package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
)

const defaultProductsTable = "produits"

const (
	logMsgCatalogRead       = "catalog read"
	logMsgCatalogReadFailed = "catalog read failed"
	logAttrRequested        = "requested"
	logAttrFound            = "found"
	logAttrDurationMS       = "duration_ms"
	logAttrError            = "error"
)

// productRow maps the catalog table; only the columns the order core reads are declared.
type productRow struct {
	ID           int64  `gorm:"column:id;primaryKey"`
	Name         string `gorm:"column:nom"`
	Price        int64  `gorm:"column:prix"`
	PromoPrice   *int64 `gorm:"column:prix_promo"`
	PromoPercent *int   `gorm:"column:pourcentage_promo"`
	Stock        int    `gorm:"column:stock"`
	OutOfStock   bool   `gorm:"column:rupture_stock"`
}

func (r productRow) toProduct() Product {
	return Product{
		ID:           r.ID,
		Name:         r.Name,
		Price:        r.Price,
		PromoPrice:   r.PromoPrice,
		PromoPercent: r.PromoPercent,
		Stock:        r.Stock,
		OutOfStock:   r.OutOfStock,
	}
}

// GormReader reads products from the catalog database through GORM.
type GormReader struct {
	db     *gorm.DB
	table  string
	logger orderstore.Logger
}

type GormReaderOption func(*GormReader)

// WithProductsTable overrides the catalog table name.
func WithProductsTable(table string) GormReaderOption {
	return func(r *GormReader) {
		if table != "" {
			r.table = table
		}
	}
}

// WithGormReaderLogger sets a logger for debug output of reads and their failures.
func WithGormReaderLogger(l orderstore.Logger) GormReaderOption {
	return func(r *GormReader) {
		r.logger = l
	}
}

func NewGormReader(db *gorm.DB, opts ...GormReaderOption) *GormReader {
	r := &GormReader{db: db, table: defaultProductsTable}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// OpenPostgres opens the catalog database with GORM's postgres driver. GORM's own logger is
// silenced; reads are logged through GormReader's logger instead.
func OpenPostgres(dsn string, maxOpenConns int, connMaxLifetime time.Duration) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting catalog sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxOpenConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	return db, nil
}

func (r *GormReader) ProductsByID(ctx context.Context, ids []int64) (map[int64]Product, error) {
	result := make(map[int64]Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	start := time.Now()

	var rows []productRow
	err := r.db.WithContext(ctx).Table(r.table).Where("id IN ?", ids).Find(&rows).Error

	if err != nil {
		r.log(logMsgCatalogReadFailed, logAttrRequested, len(ids), logAttrError, err.Error())
		return nil, errors.Join(ErrReadingCatalogFailed, err)
	}

	for _, row := range rows {
		result[row.ID] = row.toProduct()
	}

	r.log(
		logMsgCatalogRead,
		logAttrRequested, len(ids),
		logAttrFound, len(result),
		logAttrDurationMS, float64(time.Since(start).Microseconds())/1000.0,
	)

	return result, nil
}

func (r *GormReader) log(msg string, args ...any) {
	if r.logger == nil {
		return
	}

	if msg == logMsgCatalogReadFailed {
		r.logger.Error(msg, args...)
		return
	}

	r.logger.Debug(msg, args...)
}
