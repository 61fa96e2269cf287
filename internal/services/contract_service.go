// contract_service.go
//
// Contract assembly and part library data service
// Copyright (c) 2026 AgencyKit <dev@agencykit.io>
//
// This file is part of contractd.
// contractd is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// contractd is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with contractd.
// If not, see <https://www.gnu.org/licenses/>.

package services

import (
	"fmt"

	"github.com/agencykit/contractd/internal/builder"
	"github.com/agencykit/contractd/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreateContract creates an empty draft contract. Compiled content starts
// empty and is filled on the first save.
func CreateContract(db *gorm.DB, title, companyRef string) (models.Contract, error) {
	contract := models.Contract{
		ExternalID: uuid.NewString(),
		Title:      title,
		CompanyRef: companyRef,
		Status:     "draft",
	}
	if err := db.Create(&contract).Error; err != nil {
		return models.Contract{}, fmt.Errorf("failed to create contract: %w", err)
	}
	return contract, nil
}

// GetContract loads a contract with its part associations in render order.
func GetContract(db *gorm.DB, externalID string) (models.Contract, error) {
	var contract models.Contract
	err := db.Preload("Associations", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index ASC")
	}).Preload("Associations.Part").
		Where("external_id = ?", externalID).
		First(&contract).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return models.Contract{}, fmt.Errorf("not found")
		}
		return models.Contract{}, err
	}

	return contract, nil
}

// PartsFromContract converts a loaded contract's associations to builder
// parts, preserving render order.
func PartsFromContract(contract models.Contract) []builder.Part {
	parts := make([]builder.Part, 0, len(contract.Associations))
	for _, assoc := range contract.Associations {
		parts = append(parts, builder.Part{
			PartID:     assoc.ContractPartID,
			ExternalID: assoc.Part.ExternalID,
			Title:      assoc.Part.Title,
			Content:    assoc.Part.Content,
			IsRequired: assoc.Part.IsRequired,
			OrderIndex: assoc.OrderIndex,
		})
	}
	return parts
}

// SaveContract persists one edit session in a single transaction: the
// compiled content and data snapshot on the contract row, per-part title and
// content edits, and the association set reconciled against the desired part
// list (removed rows deleted, reordered rows updated, added rows inserted).
// The parts slice must already be normalized to contiguous order indexes.
// Returns the number of association rows touched.
func SaveContract(db *gorm.DB, externalID, title, content string, snapshot []byte, parts []builder.Part) (int64, error) {
	var affectedRows int64

	err := db.Transaction(func(tx *gorm.DB) error {
		var contract models.Contract
		if err := tx.Where("external_id = ?", externalID).First(&contract).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("not found")
			}
			return err
		}

		updates := map[string]interface{}{
			"title":   title,
			"content": content,
		}
		if snapshot != nil {
			updates["data"] = models.JSON{JSON: datatypes.JSON(snapshot)}
		}
		if err := tx.Model(&contract).Updates(updates).Error; err != nil {
			return err
		}

		// Persist part edits, creating rows for new custom parts so the join
		// table has an id to reference.
		for i := range parts {
			if parts[i].PartID == 0 {
				created, err := CreateCustomPart(tx, parts[i].Title, parts[i].Content)
				if err != nil {
					return err
				}
				parts[i].PartID = created.PartID
				parts[i].ExternalID = created.ExternalID
				continue
			}
			err := tx.Model(&models.ContractPart{}).
				Where("part_id = ?", parts[i].PartID).
				Updates(map[string]interface{}{
					"title":   parts[i].Title,
					"content": parts[i].Content,
				}).Error
			if err != nil {
				return err
			}
		}

		var existing []models.ContractPartAssociation
		if err := tx.Where("contract_id = ?", contract.ContractID).
			Find(&existing).Error; err != nil {
			return err
		}

		desired := make(map[uint64]int, len(parts))
		for _, p := range parts {
			desired[p.PartID] = p.OrderIndex
		}

		// Drop associations whose part is no longer attached. Removing them
		// first keeps the unique (contract_id, order_index) constraint
		// satisfied while reordering below.
		for _, assoc := range existing {
			if _, keep := desired[assoc.ContractPartID]; !keep {
				if err := tx.Delete(&models.ContractPartAssociation{}, assoc.AssociationID).Error; err != nil {
					return err
				}
				affectedRows++
			}
		}

		// Move surviving associations out of the way before assigning final
		// order indexes, so swaps cannot collide on the unique constraint.
		kept := make(map[uint64]models.ContractPartAssociation)
		for _, assoc := range existing {
			if finalIndex, keep := desired[assoc.ContractPartID]; keep {
				kept[assoc.ContractPartID] = assoc
				if assoc.OrderIndex != finalIndex {
					err := tx.Model(&models.ContractPartAssociation{}).
						Where("association_id = ?", assoc.AssociationID).
						Update("order_index", -int(assoc.AssociationID)-1).Error
					if err != nil {
						return err
					}
				}
			}
		}

		for _, p := range parts {
			assoc, exists := kept[p.PartID]
			if !exists {
				err := tx.Create(&models.ContractPartAssociation{
					ContractID:     contract.ContractID,
					ContractPartID: p.PartID,
					OrderIndex:     p.OrderIndex,
				}).Error
				if err != nil {
					return err
				}
				affectedRows++
				continue
			}
			if assoc.OrderIndex != p.OrderIndex {
				err := tx.Model(&models.ContractPartAssociation{}).
					Where("association_id = ?", assoc.AssociationID).
					Update("order_index", p.OrderIndex).Error
				if err != nil {
					return err
				}
				affectedRows++
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return affectedRows, nil
}
