package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"aurotex/internal/core/id"
	"aurotex/internal/domain"
	"aurotex/internal/domain/catalogs/product"
	"aurotex/internal/infrastructure/storage/postgres"
)

const (
	productsTable     = "cat_products"
	productSizesTable = "cat_product_sizes"
)

// ProductRepo implements product.Repository. Size configurations live in a
// separate lines table and are rewritten wholesale on every update.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			productsTable,
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

// Create inserts the product and its size configuration.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	if err := r.BaseCatalogRepo.Create(ctx, p); err != nil {
		return err
	}
	return r.saveSizes(ctx, p.ID, p.Sizes)
}

// Update rewrites the product and its size configuration.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	if err := r.BaseCatalogRepo.Update(ctx, p); err != nil {
		return err
	}
	return r.saveSizes(ctx, p.ID, p.Sizes)
}

// GetByID retrieves the product with its size configuration.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, err := r.BaseCatalogRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Sizes, err = r.getSizes(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByCode retrieves the product with its size configuration.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*product.Product, error) {
	p, err := r.BaseCatalogRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if p.Sizes, err = r.getSizes(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// List retrieves products with their size configurations.
func (r *ProductRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*product.Product], error) {
	result, err := r.BaseCatalogRepo.List(ctx, filter)
	if err != nil {
		return result, err
	}
	if len(result.Items) == 0 {
		return result, nil
	}

	ids := make([]id.ID, 0, len(result.Items))
	for _, p := range result.Items {
		ids = append(ids, p.ID)
	}

	q := r.Builder().
		Select("product_id", "size", "ratio", "thread_per_piece_kg", "wage_per_piece").
		From(productSizesTable).
		Where(squirrel.Eq{"product_id": ids}).
		OrderBy("product_id", "line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build sizes query: %w", err)
	}

	var rows []struct {
		ProductID id.ID `db:"product_id"`
		product.SizeConfig
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return result, fmt.Errorf("get sizes: %w", err)
	}

	byProduct := make(map[id.ID][]product.SizeConfig, len(result.Items))
	for _, row := range rows {
		byProduct[row.ProductID] = append(byProduct[row.ProductID], row.SizeConfig)
	}
	for _, p := range result.Items {
		p.Sizes = byProduct[p.ID]
	}

	return result, nil
}

func (r *ProductRepo) getSizes(ctx context.Context, productID id.ID) ([]product.SizeConfig, error) {
	q := r.Builder().
		Select("size", "ratio", "thread_per_piece_kg", "wage_per_piece").
		From(productSizesTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sizes query: %w", err)
	}

	var sizes []product.SizeConfig
	if err := pgxscan.Select(ctx, r.querier(ctx), &sizes, sql, args...); err != nil {
		return nil, fmt.Errorf("get sizes: %w", err)
	}

	return sizes, nil
}

func (r *ProductRepo) saveSizes(ctx context.Context, productID id.ID, sizes []product.SizeConfig) error {
	querier := r.querier(ctx)

	deleteSQL := "DELETE FROM " + productSizesTable + " WHERE product_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, productID); err != nil {
		return fmt.Errorf("delete existing sizes: %w", err)
	}

	if len(sizes) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(productSizesTable).
		Columns("product_id", "line_no", "size", "ratio", "thread_per_piece_kg", "wage_per_piece")

	for i, s := range sizes {
		q = q.Values(productID, i+1, s.Size, s.Ratio, s.ThreadPerPieceKg, s.WagePerPiece)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert sizes: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sizes: %w", err)
	}

	return nil
}
