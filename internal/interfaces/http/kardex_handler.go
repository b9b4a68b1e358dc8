package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/application/inventory"
	"github.com/jhoicas/kardex-admin/pkg/logger"
)

// KardexHandler maneja los movimientos de kardex (protegido).
type KardexHandler struct {
	ledger *inventory.LedgerService
	val    *Validator
	log    *logger.Logger
}

// NewKardexHandler construye el handler.
func NewKardexHandler(ledger *inventory.LedgerService, val *Validator, log *logger.Logger) *KardexHandler {
	return &KardexHandler{ledger: ledger, val: val, log: log}
}

// Create godoc
// @Summary      Registrar movimiento de kardex
// @Description  Aplica la entrada o salida al stock del producto en la misma transacción.
// @Tags         kardex
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequest  true  "product_id, type (entrada|salida), quantity, detail"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK"
// @Router       /api/kardex [post]
func (h *KardexHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if ok, err := bindJSON(c, h.val, &in); !ok {
		return err
	}
	out, err := h.ledger.CreateMovement(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Delete godoc
// @Summary      Anular movimiento (revierte el stock)
// @Tags         kardex
// @Security     Bearer
// @Param        id  path  int  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/kardex/{id} [delete]
func (h *KardexHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	out, err := h.ledger.DeleteMovement(c.UserContext(), GetCompanyID(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listado de kardex de la empresa
// @Tags         kardex
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/kardex [get]
func (h *KardexHandler) List(c *fiber.Ctx) error {
	out, err := h.ledger.ListMovements(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Search godoc
// @Summary      Buscar movimientos
// @Tags         kardex
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Param        type        query  string  false  "all | entrada | salida"
// @Param        product_id  query  int     false  "Producto"
// @Param        user_id     query  int     false  "Usuario"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/kardex/search [get]
func (h *KardexHandler) Search(c *fiber.Ctx) error {
	var q dto.MovementSearchQuery
	if ok, err := bindQuery(c, h.val, &q); !ok {
		return err
	}
	out, err := h.ledger.SearchMovements(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Estadísticas de movimientos de los últimos días
// @Tags         kardex
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "Ventana en días (1-365)"  default(30)
// @Success      200  {object}  dto.KardexStats
// @Router       /api/kardex/stats [get]
func (h *KardexHandler) Stats(c *fiber.Ctx) error {
	out, err := h.ledger.GetKardexStats(c.UserContext(), GetCompanyID(c), c.QueryInt("days", inventory.DefaultStatsDays))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
