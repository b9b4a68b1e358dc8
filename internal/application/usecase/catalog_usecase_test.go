package usecase

import (
	"context"
	"testing"

	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/domain"
	"github.com/jhoicas/kardex-admin/internal/testutil/memrepo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogFixture struct {
	store      *memrepo.Store
	products   *memrepo.ProductRepo
	productUC  *ProductUseCase
	categoryUC *CategoryUseCase
	brandUC    *BrandUseCase
	categoryID int64
	brandID    int64
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	store := memrepo.NewStore()
	products := store.ProductRepo()
	f := &catalogFixture{
		store:      store,
		products:   products,
		productUC:  NewProductUseCase(products, store.CategoryRepo(), store.BrandRepo()),
		categoryUC: NewCategoryUseCase(store.CategoryRepo()),
		brandUC:    NewBrandUseCase(store.BrandRepo()),
	}
	cat, err := f.categoryUC.Create(context.Background(), 1, dto.CategoryRequest{Description: "Herramientas", Color: "#3b82f6"})
	require.NoError(t, err)
	brand, err := f.brandUC.Create(context.Background(), 1, dto.BrandRequest{Description: "Stanley"})
	require.NoError(t, err)
	f.categoryID, f.brandID = cat.ID, brand.ID
	return f
}

func (f *catalogFixture) productReq() dto.CreateProductRequest {
	return dto.CreateProductRequest{
		Description:   "Martillo",
		BrandID:       f.brandID,
		CategoryID:    f.categoryID,
		Stock:         10,
		MinStock:      5,
		PurchasePrice: decimal.NewFromInt(100),
		SalePrice:     decimal.NewFromInt(150),
	}
}

func TestProductCreate_ConEstadoDeStock(t *testing.T) {
	f := newCatalogFixture(t)

	p, err := f.productUC.Create(context.Background(), 1, f.productReq())
	require.NoError(t, err)
	assert.Equal(t, "OK", p.StockStatus)
	assert.Equal(t, 10, p.Stock)

	list, err := f.productUC.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Stanley", list[0].Brand)
	assert.Equal(t, "Herramientas", list[0].Category)
	assert.Equal(t, "#3b82f6", list[0].CategoryColor)
}

func TestProductCreate_Validaciones(t *testing.T) {
	f := newCatalogFixture(t)

	cases := map[string]func(*dto.CreateProductRequest){
		"descripcion vacia":  func(r *dto.CreateProductRequest) { r.Description = "  " },
		"stock negativo":     func(r *dto.CreateProductRequest) { r.Stock = -1 },
		"minimo negativo":    func(r *dto.CreateProductRequest) { r.MinStock = -1 },
		"precio negativo":    func(r *dto.CreateProductRequest) { r.SalePrice = decimal.NewFromInt(-1) },
		"categoria inexist.": func(r *dto.CreateProductRequest) { r.CategoryID = 999 },
		"marca de otra emp.": func(r *dto.CreateProductRequest) { r.BrandID = 999 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := f.productReq()
			mutate(&req)
			_, err := f.productUC.Create(context.Background(), 1, req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestProductUpdate_NoCambiaStock(t *testing.T) {
	f := newCatalogFixture(t)
	p, err := f.productUC.Create(context.Background(), 1, f.productReq())
	require.NoError(t, err)

	desc := "Martillo galponero"
	minStock := 20
	got, err := f.productUC.Update(context.Background(), 1, p.ID, dto.UpdateProductRequest{Description: &desc, MinStock: &minStock})
	require.NoError(t, err)
	assert.Equal(t, desc, got.Description)
	assert.Equal(t, 10, got.Stock)
	assert.Equal(t, "BAJO", got.StockStatus)

	stored, err := f.products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Stock)
}

func TestProduct_OtraEmpresa(t *testing.T) {
	f := newCatalogFixture(t)
	p, err := f.productUC.Create(context.Background(), 1, f.productReq())
	require.NoError(t, err)

	_, err = f.productUC.GetByID(context.Background(), 2, p.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.productUC.GetByID(context.Background(), 1, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductDelete_EnUso(t *testing.T) {
	f := newCatalogFixture(t)
	p, err := f.productUC.Create(context.Background(), 1, f.productReq())
	require.NoError(t, err)
	f.products.MarkInUse(p.ID)

	err = f.productUC.Delete(context.Background(), 1, p.ID)
	assert.ErrorIs(t, err, domain.ErrInUse)
}

func TestCategoryDelete_EnUso(t *testing.T) {
	f := newCatalogFixture(t)
	_, err := f.productUC.Create(context.Background(), 1, f.productReq())
	require.NoError(t, err)

	assert.ErrorIs(t, f.categoryUC.Delete(context.Background(), 1, f.categoryID), domain.ErrInUse)
	assert.ErrorIs(t, f.brandUC.Delete(context.Background(), 1, f.brandID), domain.ErrInUse)
}

func TestCategory_DuplicadoYListado(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.categoryUC.Create(context.Background(), 1, dto.CategoryRequest{Description: "herramientas"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.categoryUC.Create(context.Background(), 1, dto.CategoryRequest{Description: "Electricidad"})
	require.NoError(t, err)

	list, err := f.categoryUC.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Electricidad", list[0].Description)
}

func TestBrandUpdate(t *testing.T) {
	f := newCatalogFixture(t)

	got, err := f.brandUC.Update(context.Background(), 1, f.brandID, dto.BrandRequest{Description: "Bahco"})
	require.NoError(t, err)
	assert.Equal(t, "Bahco", got.Description)

	_, err = f.brandUC.Update(context.Background(), 2, f.brandID, dto.BrandRequest{Description: "X"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
