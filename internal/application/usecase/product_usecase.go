package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/domain"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
	"github.com/jhoicas/kardex-admin/internal/domain/inventory"
	"github.com/jhoicas/kardex-admin/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ProductUseCase casos de uso CRUD para productos. El stock solo cambia vía kardex.
type ProductUseCase struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	brandRepo    repository.BrandRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, categoryRepo repository.CategoryRepository, brandRepo repository.BrandRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, categoryRepo: categoryRepo, brandRepo: brandRepo}
}

// Create crea un nuevo producto con su stock inicial.
func (uc *ProductUseCase) Create(ctx context.Context, companyID int64, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, domain.Invalid("la descripción es obligatoria")
	}
	if in.Stock < 0 || in.MinStock < 0 {
		return nil, domain.Invalid("stock y stock mínimo no pueden ser negativos")
	}
	if err := checkPrices(in.PurchasePrice, in.SalePrice); err != nil {
		return nil, err
	}
	if err := uc.checkRefs(ctx, companyID, in.CategoryID, in.BrandID); err != nil {
		return nil, err
	}
	product := &entity.Product{
		CompanyID:     companyID,
		BrandID:       in.BrandID,
		CategoryID:    in.CategoryID,
		Description:   desc,
		Stock:         in.Stock,
		MinStock:      in.MinStock,
		PurchasePrice: in.PurchasePrice,
		SalePrice:     in.SalePrice,
		Barcode:       strings.TrimSpace(in.Barcode),
		InternalCode:  strings.TrimSpace(in.InternalCode),
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto de la empresa.
func (uc *ProductUseCase) GetByID(ctx context.Context, companyID, id int64) (*dto.ProductResponse, error) {
	product, err := uc.owned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Update actualiza los datos de catálogo. Stock no se modifica aquí.
func (uc *ProductUseCase) Update(ctx context.Context, companyID, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.owned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if desc == "" {
			return nil, domain.Invalid("la descripción es obligatoria")
		}
		product.Description = desc
	}
	if in.MinStock != nil {
		if *in.MinStock < 0 {
			return nil, domain.Invalid("el stock mínimo no puede ser negativo")
		}
		product.MinStock = *in.MinStock
	}
	if in.PurchasePrice != nil {
		product.PurchasePrice = *in.PurchasePrice
	}
	if in.SalePrice != nil {
		product.SalePrice = *in.SalePrice
	}
	if err := checkPrices(product.PurchasePrice, product.SalePrice); err != nil {
		return nil, err
	}
	if in.CategoryID != nil {
		product.CategoryID = *in.CategoryID
	}
	if in.BrandID != nil {
		product.BrandID = *in.BrandID
	}
	if in.CategoryID != nil || in.BrandID != nil {
		if err := uc.checkRefs(ctx, companyID, product.CategoryID, product.BrandID); err != nil {
			return nil, err
		}
	}
	if in.Barcode != nil {
		product.Barcode = strings.TrimSpace(*in.Barcode)
	}
	if in.InternalCode != nil {
		product.InternalCode = strings.TrimSpace(*in.InternalCode)
	}
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List devuelve el catálogo de la empresa con marca, categoría y estado de stock.
func (uc *ProductUseCase) List(ctx context.Context, companyID int64) ([]dto.ProductResponse, error) {
	list, err := uc.repo.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return listingsToResponse(list), nil
}

// Search busca por descripción, marca o categoría. Vacío equivale a List.
func (uc *ProductUseCase) Search(ctx context.Context, companyID int64, query string) ([]dto.ProductResponse, error) {
	list, err := uc.repo.Search(ctx, companyID, query)
	if err != nil {
		return nil, err
	}
	return listingsToResponse(list), nil
}

// Delete elimina un producto. ErrInUse si tiene movimientos.
func (uc *ProductUseCase) Delete(ctx context.Context, companyID, id int64) error {
	if _, err := uc.owned(ctx, companyID, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *ProductUseCase) owned(ctx context.Context, companyID, id int64) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return product, nil
}

func (uc *ProductUseCase) checkRefs(ctx context.Context, companyID, categoryID, brandID int64) error {
	cat, err := uc.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if cat == nil || cat.CompanyID != companyID {
		return domain.Invalid("categoría inexistente")
	}
	brand, err := uc.brandRepo.GetByID(ctx, brandID)
	if err != nil {
		return err
	}
	if brand == nil || brand.CompanyID != companyID {
		return domain.Invalid("marca inexistente")
	}
	return nil
}

func checkPrices(purchase, sale decimal.Decimal) error {
	if purchase.IsNegative() || sale.IsNegative() {
		return domain.Invalid("los precios no pueden ser negativos")
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:            p.ID,
		CompanyID:     p.CompanyID,
		Description:   p.Description,
		BrandID:       p.BrandID,
		CategoryID:    p.CategoryID,
		Stock:         p.Stock,
		MinStock:      p.MinStock,
		StockStatus:   string(inventory.Classify(p.Stock, p.MinStock)),
		PurchasePrice: p.PurchasePrice,
		SalePrice:     p.SalePrice,
		Barcode:       p.Barcode,
		InternalCode:  p.InternalCode,
	}
}

func listingsToResponse(list []*entity.ProductListing) []dto.ProductResponse {
	items := make([]dto.ProductResponse, 0, len(list))
	for _, l := range list {
		r := toProductResponse(&l.Product)
		r.Brand = l.Brand
		r.Category = l.Category
		r.CategoryColor = l.CategoryColor
		items = append(items, *r)
	}
	return items
}
