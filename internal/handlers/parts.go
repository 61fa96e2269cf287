// parts.go
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
	"fmt"
	"strings"

	"github.com/agencykit/contractd/internal/services"
	"github.com/agencykit/contractd/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PartsHandler handles part library routes
type PartsHandler struct {
	DB *gorm.DB
}

// GetParts handles GET /api/parts
// @Summary List the contract part library
// @Description Get all reusable contract parts in library sort order
// @Tags Parts
// @Accept json
// @Produce json
// @Success 200 {array} models.ContractPart
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /parts [get]
func (h *PartsHandler) GetParts(c *fiber.Ctx) error {
	parts, err := services.ListContractParts(h.DB)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getParts")
	}

	return c.Status(fiber.StatusOK).JSON(parts)
}

// CreatePart handles POST /api/parts
// @Summary Create a custom contract part
// @Description Create a user-authored part at the end of the library order
// @Tags Parts
// @Accept json
// @Produce json
// @Param body body object true "Part title and template content"
// @Success 201 {object} models.ContractPart
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /parts [post]
func (h *PartsHandler) CreatePart(c *fiber.Ctx) error {
	var body struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}

	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "parts.validation.input")
	}

	if strings.TrimSpace(body.Title) == "" {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "parts.validation.input")
	}

	part, err := services.CreateCustomPart(h.DB, body.Title, body.Content)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "createPart")
	}

	return c.Status(fiber.StatusCreated).JSON(part)
}

// DeletePart handles DELETE /api/parts/:id
// @Summary Delete a custom contract part
// @Description Delete a custom part that is not attached to any contract. Default library parts cannot be deleted.
// @Tags Parts
// @Accept json
// @Produce json
// @Param id path string true "Part external ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /parts/{id} [delete]
func (h *PartsHandler) DeletePart(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := services.DeleteCustomPart(h.DB, id); err != nil {
		switch err.Error() {
		case "not found":
			return utils.NotFoundResponse(c, fmt.Sprintf("Part '%s' not found", id))
		case "not custom":
			return utils.ErrorResponse(c, "Only custom parts can be deleted", fiber.StatusBadRequest, "parts.validation.custom")
		case "in use":
			return utils.ErrorResponse(c, "Part is attached to a contract", fiber.StatusConflict, "parts.conflict.attached")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "deletePart")
	}

	return utils.MutationSuccessResponse(c, 1)
}
