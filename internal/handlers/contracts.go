// contracts.go
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

package handlers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agencykit/contractd/internal/assembler"
	"github.com/agencykit/contractd/internal/builder"
	"github.com/agencykit/contractd/internal/services"
	"github.com/agencykit/contractd/internal/types"
	"github.com/agencykit/contractd/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ContractsHandler handles contract routes
type ContractsHandler struct {
	DB *gorm.DB
}

// CreateContract handles POST /api/contracts
// @Summary Create a contract
// @Description Create an empty draft contract
// @Tags Contracts
// @Accept json
// @Produce json
// @Param body body object true "Contract title and company reference"
// @Success 201 {object} models.Contract
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /contracts [post]
func (h *ContractsHandler) CreateContract(c *fiber.Ctx) error {
	var body struct {
		Title      string `json:"title"`
		CompanyRef string `json:"company_ref"`
	}

	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "contracts.validation.input")
	}

	if strings.TrimSpace(body.Title) == "" {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "contracts.validation.input")
	}

	contract, err := services.CreateContract(h.DB, body.Title, body.CompanyRef)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "createContract")
	}

	return c.Status(fiber.StatusCreated).JSON(contract)
}

// GetContract handles GET /api/contracts/:id
// @Summary Get a contract
// @Description Get a contract with its parts in render order
// @Tags Contracts
// @Accept json
// @Produce json
// @Param id path string true "Contract external ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /contracts/{id} [get]
func (h *ContractsHandler) GetContract(c *fiber.Ctx) error {
	id := c.Params("id")

	contract, err := services.GetContract(h.DB, id)
	if err != nil {
		if err.Error() == "not found" {
			return utils.NotFoundResponse(c, fmt.Sprintf("Contract '%s' not found", id))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getContract")
	}

	parts := services.PartsFromContract(contract)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":          contract.ExternalID,
		"title":       contract.Title,
		"company_ref": contract.CompanyRef,
		"status":      contract.Status,
		"content":     contract.Content,
		"parts":       partViews(parts),
	})
}

// CompileContract handles POST /api/contracts/:id/compile
// @Summary Compile a contract preview
// @Description Compile the submitted parts against a data bundle without persisting anything. Omitted parts fall back to the stored part list.
// @Tags Contracts
// @Accept json
// @Produce json
// @Param id path string true "Contract external ID"
// @Param body body object true "Parts and data bundle"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /contracts/{id}/compile [post]
func (h *ContractsHandler) CompileContract(c *fiber.Ctx) error {
	id := c.Params("id")

	var body struct {
		Parts types.FlexList[builder.Part] `json:"parts"`
		dataBundle
	}

	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "contracts.validation.input")
	}

	parts := normalizeParts(body.Parts)
	if len(parts) == 0 {
		contract, err := services.GetContract(h.DB, id)
		if err != nil {
			if err.Error() == "not found" {
				return utils.NotFoundResponse(c, fmt.Sprintf("Contract '%s' not found", id))
			}
			return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "compileContract")
		}
		parts = services.PartsFromContract(contract)
	}

	content := assembler.AssembleWithData(parts, renderContext(body.dataBundle))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"content": content,
	})
}

// SaveContract handles POST /api/contracts/:id
// @Summary Save a contract
// @Description Compile the submitted parts and persist the contract content, part edits, and part ordering in one transaction
// @Tags Contracts
// @Accept json
// @Produce json
// @Param id path string true "Contract external ID"
// @Param body body object true "Title, parts, and data bundle"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /contracts/{id} [post]
func (h *ContractsHandler) SaveContract(c *fiber.Ctx) error {
	id := c.Params("id")

	var body struct {
		Title string                       `json:"title"`
		Parts types.FlexList[builder.Part] `json:"parts"`
		dataBundle
	}

	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "contracts.validation.input")
	}

	if strings.TrimSpace(body.Title) == "" {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "contracts.validation.input")
	}

	parts := normalizeParts(body.Parts)
	content := assembler.AssembleWithData(parts, renderContext(body.dataBundle))

	var snapshot []byte
	if body.ContractData != nil || body.RelatedData.SelectedMilestones != nil ||
		body.RelatedData.Products != nil || body.RelatedData.Payments != nil {
		snapshot, _ = json.Marshal(body.dataBundle)
	}

	affectedRows, err := services.SaveContract(h.DB, id, body.Title, content, snapshot, parts)
	if err != nil {
		if err.Error() == "not found" {
			return utils.NotFoundResponse(c, fmt.Sprintf("Contract '%s' not found", id))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "saveContract")
	}

	return utils.MutationSuccessResponse(c, affectedRows)
}
