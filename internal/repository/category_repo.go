package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/galdos/auctionhouse/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// CategoryRepository handles the category lookup table.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name) VALUES ($1, $2)`, c.ID, c.Name)
	if err != nil {
		if isUniqueViolation(err, "categories_name_key") {
			return domain.ErrCategoryTaken
		}
		return fmt.Errorf("category_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches a category by primary key.
func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, `SELECT * FROM categories WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("category_repo.GetByID: %w", err)
	}
	return &c, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	var cats []*domain.Category
	err := r.db.SelectContext(ctx, &cats, `SELECT * FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("category_repo.List: %w", err)
	}
	return cats, nil
}
