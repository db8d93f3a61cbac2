package model

import (
	"time"

	"gorm.io/gorm"
)

// Vehicle is a stock item synced from an external catalogue
type Vehicle struct {
	ID                   string         `json:"id" gorm:"primaryKey"`
	TenantID             string         `json:"-" gorm:"column:empresa_id;index;not null"`
	ExternalID           int64          `json:"external_id"`
	TituloVeiculo        *string        `json:"titulo_veiculo"`
	ModeloVeiculo        *string        `json:"modelo_veiculo"`
	MarcaVeiculo         *string        `json:"marca_veiculo"`
	AnoVeiculo           *int           `json:"ano_veiculo"`
	AnoFabricVeiculo     *int           `json:"ano_fabric_veiculo"`
	ColorVeiculo         *string        `json:"color_veiculo"`
	PriceVeiculo         *float64       `json:"price_veiculo"`
	PromotionPrice       *float64       `json:"promotion_price"`
	AccessoriesVeiculo   *string        `json:"accessories_veiculo"`
	PlateVeiculo         *string        `json:"plate_veiculo"`
	QuilometragemVeiculo *int           `json:"quilometragem_veiculo"`
	CambioVeiculo        *string        `json:"cambio_veiculo"`
	CombustivelVeiculo   *string        `json:"combustivel_veiculo"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	Images               []VehicleImage `json:"images" gorm:"foreignKey:VehicleID"`
}

func (Vehicle) TableName() string { return "vehicles" }

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	ensureID(&v.ID)
	return nil
}

// VehicleImage is one photo of a vehicle
type VehicleImage struct {
	ID        string `json:"id" gorm:"primaryKey"`
	VehicleID string `json:"-" gorm:"index;not null"`
	URL       string `json:"url" gorm:"column:url;not null"`
	Position  int    `json:"position"`
}

func (VehicleImage) TableName() string { return "vehicle_images" }

func (i *VehicleImage) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
