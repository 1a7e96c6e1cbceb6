package model

type ProductKind string

const (
	KindFinished    ProductKind = "FINISHED"
	KindRawMaterial ProductKind = "RAW_MATERIAL"
	KindOther       ProductKind = "OTHER"
)

func (k ProductKind) Valid() bool {
	switch k {
	case KindFinished, KindRawMaterial, KindOther:
		return true
	}
	return false
}

type Product struct {
	ID       string      `gorm:"type:varchar(32);primaryKey" json:"id"`
	Name     string      `gorm:"type:varchar(255);not null" json:"name" validate:"notblank"`
	Category string      `gorm:"type:varchar(100)" json:"category" validate:"notblank"`
	Kind     ProductKind `gorm:"type:varchar(20);not null;default:FINISHED" json:"kind" validate:"oneof=FINISHED RAW_MATERIAL OTHER"`
	Timestamps
}

// Normalize fills the kind of records written before kinds existed
func (p *Product) Normalize() {
	if p.Kind == "" {
		p.Kind = KindFinished
	}
}

type ProductPatch struct {
	Name     *string      `json:"name,omitempty"`
	Category *string      `json:"category,omitempty"`
	Kind     *ProductKind `json:"kind,omitempty"`
}

// ProductLabel resolves a soft reference; a vanished product shows its raw id
func ProductLabel(products []Product, id string) string {
	for _, p := range products {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}
