package services

import (
	"fmt"

	"github.com/agencykit/contractd/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// ListContractParts returns the full part library in library sort order.
func ListContractParts(db *gorm.DB) ([]models.ContractPart, error) {
	var parts []models.ContractPart
	err := db.Clauses(hints.New("MAX_EXECUTION_TIME(1000)")).
		Order("sort_order ASC").
		Find(&parts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contract parts: %w", err)
	}
	return parts, nil
}

// CreateCustomPart persists a user-authored part at the end of the library
// order and returns the stored record.
func CreateCustomPart(db *gorm.DB, title, content string) (models.ContractPart, error) {
	var part models.ContractPart

	err := db.Transaction(func(tx *gorm.DB) error {
		var maxOrder *int
		if err := tx.Model(&models.ContractPart{}).
			Select("MAX(sort_order)").Scan(&maxOrder).Error; err != nil {
			return err
		}

		sortOrder := 0
		if maxOrder != nil {
			sortOrder = *maxOrder + 1
		}

		part = models.ContractPart{
			ExternalID: uuid.NewString(),
			Title:      title,
			Content:    content,
			IsCustom:   true,
			SortOrder:  sortOrder,
		}
		return tx.Create(&part).Error
	})
	if err != nil {
		return models.ContractPart{}, fmt.Errorf("failed to create custom part: %w", err)
	}

	return part, nil
}

// DeleteCustomPart removes a custom part from the library. Default library
// parts and parts still attached to a contract are refused.
func DeleteCustomPart(db *gorm.DB, externalID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var part models.ContractPart
		err := tx.Where("external_id = ?", externalID).First(&part).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("not found")
			}
			return err
		}

		if !part.IsCustom {
			return fmt.Errorf("not custom")
		}

		var attached int64
		err = tx.Model(&models.ContractPartAssociation{}).
			Where("contract_part_id = ?", part.PartID).
			Count(&attached).Error
		if err != nil {
			return err
		}
		if attached > 0 {
			return fmt.Errorf("in use")
		}

		return tx.Delete(&models.ContractPart{}, part.PartID).Error
	})
}
