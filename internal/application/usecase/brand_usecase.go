package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/domain"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
	"github.com/jhoicas/kardex-admin/internal/domain/repository"
)

// BrandUseCase CRUD de marcas por empresa.
type BrandUseCase struct {
	repo repository.BrandRepository
}

func NewBrandUseCase(repo repository.BrandRepository) *BrandUseCase {
	return &BrandUseCase{repo: repo}
}

func (uc *BrandUseCase) Create(ctx context.Context, companyID int64, in dto.BrandRequest) (*dto.BrandResponse, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, domain.Invalid("la descripción es obligatoria")
	}
	b := &entity.Brand{CompanyID: companyID, Description: desc}
	if err := uc.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return &dto.BrandResponse{ID: b.ID, Description: b.Description}, nil
}

func (uc *BrandUseCase) Update(ctx context.Context, companyID, id int64, in dto.BrandRequest) (*dto.BrandResponse, error) {
	b, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	if b.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, domain.Invalid("la descripción es obligatoria")
	}
	b.Description = desc
	if err := uc.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return &dto.BrandResponse{ID: b.ID, Description: b.Description}, nil
}

func (uc *BrandUseCase) Delete(ctx context.Context, companyID, id int64) error {
	b, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return domain.ErrNotFound
	}
	if b.CompanyID != companyID {
		return domain.ErrForbidden
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *BrandUseCase) List(ctx context.Context, companyID int64) ([]dto.BrandResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BrandResponse, 0, len(list))
	for _, b := range list {
		out = append(out, dto.BrandResponse{ID: b.ID, Description: b.Description})
	}
	return out, nil
}
