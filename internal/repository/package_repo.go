package repository

import (
	"context"

	"github.com/kmagued/beachamp-training-sub001/internal/models"
)

type CreatePackageInput struct {
	Name         string
	SessionCount int
	ValidityDays int
	Price        float64
	SortOrder    int
}

type UpdatePackageInput struct {
	Name         string
	SessionCount int
	ValidityDays int
	Price        float64
	SortOrder    int
	IsActive     bool
}

type PackageRepository struct {
	db DBTX
}

func NewPackageRepository(db DBTX) *PackageRepository {
	return &PackageRepository{db: db}
}

const packageColumns = "id, name, session_count, validity_days, price, is_active, sort_order, created_at, updated_at"

func scanPackage(row interface{ Scan(dest ...any) error }, pkg *models.Package) error {
	return row.Scan(
		&pkg.ID,
		&pkg.Name,
		&pkg.SessionCount,
		&pkg.ValidityDays,
		&pkg.Price,
		&pkg.IsActive,
		&pkg.SortOrder,
		&pkg.CreatedAt,
		&pkg.UpdatedAt,
	)
}

func (r *PackageRepository) Create(ctx context.Context, input CreatePackageInput) (*models.Package, error) {
	query := `
		INSERT INTO packages (name, session_count, validity_days, price, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + packageColumns

	var pkg models.Package
	row := r.db.QueryRow(ctx, query, input.Name, input.SessionCount, input.ValidityDays, input.Price, input.SortOrder)
	if err := scanPackage(row, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *PackageRepository) Update(ctx context.Context, id int64, input UpdatePackageInput) (*models.Package, error) {
	query := `
		UPDATE packages
		SET name = $2, session_count = $3, validity_days = $4, price = $5, sort_order = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + packageColumns

	var pkg models.Package
	row := r.db.QueryRow(ctx, query, id, input.Name, input.SessionCount, input.ValidityDays, input.Price, input.SortOrder, input.IsActive)
	if err := scanPackage(row, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *PackageRepository) Deactivate(ctx context.Context, id int64) (*models.Package, error) {
	query := `
		UPDATE packages
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + packageColumns

	var pkg models.Package
	if err := scanPackage(r.db.QueryRow(ctx, query, id), &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *PackageRepository) GetByID(ctx context.Context, id int64) (*models.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE id = $1`

	var pkg models.Package
	if err := scanPackage(r.db.QueryRow(ctx, query, id), &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *PackageRepository) List(ctx context.Context, activeOnly bool) ([]models.Package, error) {
	query := `
		SELECT ` + packageColumns + `
		FROM packages
		WHERE ($1 = FALSE OR is_active)
		ORDER BY sort_order ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	packages := make([]models.Package, 0)
	for rows.Next() {
		var pkg models.Package
		if err := scanPackage(rows, &pkg); err != nil {
			return nil, err
		}
		packages = append(packages, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return packages, nil
}
