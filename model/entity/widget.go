package entity

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Widget represents the widget table exposed by the sample API.
type Widget struct {
	ID         uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SKU        string         `gorm:"column:sku;type:varchar(64);index" json:"sku"`
	Name       string         `gorm:"column:name;type:varchar(255);not null;default:''" json:"name"`
	Price      float64        `gorm:"column:price;type:decimal(12,4);not null;default:0" json:"price"`
	Attributes datatypes.JSON `gorm:"column:attributes" json:"attributes,omitempty"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Widget) TableName() string {
	return "widget"
}

// DisplayName is exposed through include_methods.
func (w *Widget) DisplayName() string {
	if w.SKU == "" {
		return w.Name
	}
	return strings.ToUpper(w.SKU) + " " + w.Name
}
