package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/application/usecase"
	"github.com/jhoicas/kardex-admin/pkg/logger"
)

// CatalogHandler categorías y marcas.
type CatalogHandler struct {
	categories *usecase.CategoryUseCase
	brands     *usecase.BrandUseCase
	val        *Validator
	log        *logger.Logger
}

func NewCatalogHandler(categories *usecase.CategoryUseCase, brands *usecase.BrandUseCase, val *Validator, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{categories: categories, brands: brands, val: val, log: log}
}

// ListCategories GET /api/categories
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	out, err := h.categories.List(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// CreateCategory POST /api/categories
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var in dto.CategoryRequest
	if ok, err := bindJSON(c, h.val, &in); !ok {
		return err
	}
	out, err := h.categories.Create(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateCategory PUT /api/categories/:id
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	var in dto.CategoryRequest
	if ok, err := bindJSON(c, h.val, &in); !ok {
		return err
	}
	out, err := h.categories.Update(c.UserContext(), GetCompanyID(c), id, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// DeleteCategory DELETE /api/categories/:id. 409 IN_USE si tiene productos.
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	if err := h.categories.Delete(c.UserContext(), GetCompanyID(c), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListBrands GET /api/brands
func (h *CatalogHandler) ListBrands(c *fiber.Ctx) error {
	out, err := h.brands.List(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// CreateBrand POST /api/brands
func (h *CatalogHandler) CreateBrand(c *fiber.Ctx) error {
	var in dto.BrandRequest
	if ok, err := bindJSON(c, h.val, &in); !ok {
		return err
	}
	out, err := h.brands.Create(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateBrand PUT /api/brands/:id
func (h *CatalogHandler) UpdateBrand(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	var in dto.BrandRequest
	if ok, err := bindJSON(c, h.val, &in); !ok {
		return err
	}
	out, err := h.brands.Update(c.UserContext(), GetCompanyID(c), id, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// DeleteBrand DELETE /api/brands/:id
func (h *CatalogHandler) DeleteBrand(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	if err := h.brands.Delete(c.UserContext(), GetCompanyID(c), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
