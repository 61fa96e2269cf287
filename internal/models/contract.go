package models

import (
	"time"
)

// ContractPart is a reusable, titled block of templated HTML content that can
// be attached to one or more contracts. Required parts are auto-included when
// a contract loads the part library; custom parts are created ad hoc by users
// and flagged so the library view can separate them.
type ContractPart struct {
	PartID     uint64 `gorm:"primaryKey;autoIncrement"`
	ExternalID string `gorm:"type:char(36);uniqueIndex;not null"`
	Title      string `gorm:"size:255;not null"`
	Content    string `gorm:"type:text"`
	IsRequired bool   `gorm:"not null;default:false"`
	IsCustom   bool   `gorm:"not null;default:false"`
	SortOrder  int    `gorm:"not null;default:0;index:idx_contractpart_sort"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Contract is a document instance. Content caches the compiled HTML produced
// by the assembler; the ordered associations are the source of truth and the
// content is regenerated in full on every save, never patched. Data holds the
// bundle the last save was compiled against so the document can be re-rendered
// server-side.
type Contract struct {
	ContractID   uint64 `gorm:"primaryKey;autoIncrement"`
	ExternalID   string `gorm:"type:char(36);uniqueIndex;not null"`
	Title        string `gorm:"size:255;not null"`
	Content      string `gorm:"type:text"`
	CompanyRef   string `gorm:"size:255;index"`
	Status       string `gorm:"size:32;not null;default:'draft'"`
	Data         JSON   `gorm:"type:json"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Associations []ContractPartAssociation `gorm:"foreignKey:ContractID"`
}

// ContractPartAssociation binds one contract to one part with an explicit
// render order. For a given contract the order_index values are contiguous
// from 0; the save path re-derives them from array position, so gaps and
// duplicates never survive a save.
type ContractPartAssociation struct {
	AssociationID  uint64 `gorm:"primaryKey;autoIncrement"`
	ContractID     uint64 `gorm:"not null;index:idx_assoc_order,unique;index:idx_assoc_part,unique"`
	ContractPartID uint64 `gorm:"not null;index:idx_assoc_part,unique"`
	OrderIndex     int    `gorm:"not null;index:idx_assoc_order,unique"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Part           ContractPart `gorm:"foreignKey:ContractPartID"`
}

// TableName overrides the table name for ContractPart
func (ContractPart) TableName() string {
	return "contractpart"
}

// TableName overrides the table name for Contract
func (Contract) TableName() string {
	return "contract"
}

// TableName overrides the table name for ContractPartAssociation
func (ContractPartAssociation) TableName() string {
	return "contract_contractpart"
}
