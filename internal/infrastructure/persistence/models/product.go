package models

import (
	"time"

	"github.com/pattycroche/storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for catalog products.
// Price columns are nullable: the catalog editor may leave either empty.
type ProductModel struct {
	ID               int64            `gorm:"primaryKey;autoIncrement"`
	Name             string           `gorm:"type:varchar(200)"`
	Category         string           `gorm:"type:varchar(100);index"`
	BasePrice        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Price            *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Description      string           `gorm:"type:text"`
	PhotoURL         string           `gorm:"type:text"`
	Image            string           `gorm:"type:text"`
	AdditionalImages []string         `gorm:"type:text;serializer:json"`
	IsNew            bool             `gorm:"not null"`
	IsOnSale         bool             `gorm:"not null"`
	ShowInCatalog    bool             `gorm:"not null;index"`
	Width            *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Height           *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Length           *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Weight           *decimal.Decimal `gorm:"type:decimal(10,3)"`
	LinkNuvemshop    string           `gorm:"type:text"`
	LinkShopee       string           `gorm:"type:text"`
	LinkElo7         string           `gorm:"type:text"`
	CreatedAt        time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToRecord converts the row to the catalog's raw record
func (m *ProductModel) ToRecord() catalog.ProductRecord {
	return catalog.ProductRecord{
		ID:               m.ID,
		Name:             m.Name,
		Category:         m.Category,
		BasePrice:        m.BasePrice,
		Price:            m.Price,
		Description:      m.Description,
		PhotoURL:         m.PhotoURL,
		Image:            m.Image,
		AdditionalImages: m.AdditionalImages,
		IsNew:            m.IsNew,
		IsOnSale:         m.IsOnSale,
		ShowInCatalog:    m.ShowInCatalog,
		Dimensions: catalog.Dimensions{
			Width:  m.Width,
			Height: m.Height,
			Length: m.Length,
			Weight: m.Weight,
		},
		Links: map[catalog.Marketplace]string{
			catalog.MarketplaceNuvemshop: m.LinkNuvemshop,
			catalog.MarketplaceShopee:    m.LinkShopee,
			catalog.MarketplaceElo7:      m.LinkElo7,
		},
		CreatedAt: m.CreatedAt,
	}
}

// ToDomain converts the row to a catalog Product with defaults applied
func (m *ProductModel) ToDomain() *catalog.Product {
	p := catalog.NewProductFromRecord(m.ToRecord())
	return &p
}
