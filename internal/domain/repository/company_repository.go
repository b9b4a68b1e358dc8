package repository

import (
	"context"

	"github.com/jhoicas/kardex-admin/internal/domain/entity"
)

// CompanyRepository define el puerto de lectura de Company. La tabla empresa se administra fuera.
type CompanyRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Company, error)
}
