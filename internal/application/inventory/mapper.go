package inventory

import (
	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
)

func movementToResponse(m *entity.Movement) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		UserID:    m.UserID,
		Type:      string(m.Type),
		Quantity:  m.Quantity,
		Detail:    m.Detail,
		Date:      m.Date,
		Status:    m.Status.String(),
	}
}

func listingsToResponse(list []*entity.MovementListing) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, l := range list {
		res := movementToResponse(&l.Movement)
		res.Product = l.Product
		res.User = l.UserName
		stock := l.CurrentStock
		res.CurrentStock = &stock
		out = append(out, *res)
	}
	return out
}
