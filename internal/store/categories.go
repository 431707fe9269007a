package store

import (
	"context"
	"database/sql"

	"github.com/cuentaclara/backend/internal/models"
)

const categoryColumns = `id, user_id, name, type, description, is_default, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (*models.Category, error) {
	var (
		c           models.Category
		description sql.NullString
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &description,
		&c.IsDefault, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Description = description.String
	return &c, nil
}

func (p *Postgres) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = $1 OR is_default = true ORDER BY name`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (p *Postgres) GetCategory(ctx context.Context, userID, id string) (*models.Category, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND (user_id = $2 OR is_default = true)`,
		id, userID)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, ErrCategoryNotFound
	}
	return c, err
}

func (p *Postgres) CreateCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	c.ID = newID()
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO categories (id, user_id, name, type, description, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.UserID, c.Name, c.Type, c.Description, c.IsDefault, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Postgres) UpdateCategory(ctx context.Context, userID, id string, name, description string, ctype models.TransactionType) (*models.Category, error) {
	res, err := p.db.ExecContext(ctx,
		`UPDATE categories SET name = $1, description = $2, type = $3, updated_at = $4
		 WHERE id = $5 AND user_id = $6`,
		name, description, ctype, now(), id, userID)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrCategoryNotFound
	}
	return p.GetCategory(ctx, userID, id)
}

// DeleteCategory removes a user category. Default categories are filtered
// out here as well as in the service layer.
func (p *Postgres) DeleteCategory(ctx context.Context, userID, id string) error {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = $1 AND user_id = $2 AND is_default = false`, id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
