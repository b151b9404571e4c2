package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aniskhan146/Cartify-sub000/internal/catalog/domain"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection: SQLite serialises writers and ":memory:" is per connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) RunMigrations(migrationsPath string) error {
	driver, err := migratesqlite.WithInstance(r.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

const productColumns = `id, name, category, brand_id, description, image_urls, variants,
	rating, reviews, delivery_timescale, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p                    domain.Product
		brandID              sql.NullString
		imageURLs, variants  string
		createdAt, updatedAt string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Category, &brandID, &p.Description, &imageURLs, &variants,
		&p.Rating, &p.Reviews, &p.DeliveryTimescale, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if brandID.Valid {
		p.BrandID = &brandID.String
	}
	if err := json.Unmarshal([]byte(imageURLs), &p.ImageURLs); err != nil {
		return nil, fmt.Errorf("decode image urls of %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(variants), &p.Variants); err != nil {
		return nil, fmt.Errorf("decode variants of %s: %w", p.ID, err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *SQLiteRepository) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	var (
		where []string
		args  []any
	)
	if filter.Category != "" {
		where = append(where, "category = ? COLLATE NOCASE")
		args = append(args, filter.Category)
	}
	if filter.BrandID != "" {
		where = append(where, "brand_id = ?")
		args = append(args, filter.BrandID)
	}
	query := "SELECT " + productColumns + " FROM products"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

func (r *SQLiteRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// SaveProduct inserts when id is empty, otherwise replaces the editable
// fields of an existing product. Rating and reviews are never overwritten.
func (r *SQLiteRepository) SaveProduct(ctx context.Context, p *domain.Product, id string) (string, error) {
	imageURLs := p.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}
	images, err := json.Marshal(imageURLs)
	if err != nil {
		return "", fmt.Errorf("encode image urls: %w", err)
	}
	variants, err := json.Marshal(p.Variants)
	if err != nil {
		return "", fmt.Errorf("encode variants: %w", err)
	}
	now := formatTime(time.Now())

	if id == "" {
		id = uuid.NewString()
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO products (`+productColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, p.Name, p.Category, p.BrandID, p.Description, string(images), string(variants),
			p.Rating, p.Reviews, p.DeliveryTimescale, now, now)
		if err != nil {
			return "", fmt.Errorf("failed to insert product: %w", err)
		}
		return id, nil
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, category = ?, brand_id = ?, description = ?, image_urls = ?, variants = ?,
		    delivery_timescale = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Category, p.BrandID, p.Description, string(images), string(variants),
		p.DeliveryTimescale, now, id)
	if err != nil {
		return "", fmt.Errorf("failed to update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return "", ErrProductNotFound
	}
	return id, nil
}

func (r *SQLiteRepository) DeleteProduct(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "products", id, ErrProductNotFound)
}

func (r *SQLiteRepository) ListOptionTypes(ctx context.Context) ([]domain.OptionType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, option_values FROM option_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query option types: %w", err)
	}
	defer rows.Close()

	types := []domain.OptionType{}
	for rows.Next() {
		var (
			ot     domain.OptionType
			values string
		)
		if err := rows.Scan(&ot.ID, &ot.Name, &values); err != nil {
			return nil, fmt.Errorf("failed to scan option type: %w", err)
		}
		if err := json.Unmarshal([]byte(values), &ot.Values); err != nil {
			return nil, fmt.Errorf("decode values of %s: %w", ot.Name, err)
		}
		types = append(types, ot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return types, nil
}

// SaveOptionType always writes values in the object shape.
func (r *SQLiteRepository) SaveOptionType(ctx context.Context, ot *domain.OptionType) (string, error) {
	values := ot.Values
	if values == nil {
		values = []domain.OptionValue{}
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode option values: %w", err)
	}

	if ot.ID == "" {
		id := uuid.NewString()
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO option_types (id, name, option_values, created_at) VALUES (?, ?, ?, ?)`,
			id, ot.Name, string(encoded), formatTime(time.Now()))
		if isUniqueViolation(err) {
			return "", duplicateName("option type", ot.Name)
		}
		if err != nil {
			return "", fmt.Errorf("failed to insert option type: %w", err)
		}
		return id, nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE option_types SET name = ?, option_values = ? WHERE id = ?`,
		ot.Name, string(encoded), ot.ID)
	if isUniqueViolation(err) {
		return "", duplicateName("option type", ot.Name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to update option type: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return "", ErrOptionTypeNotFound
	}
	return ot.ID, nil
}

func (r *SQLiteRepository) DeleteOptionType(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "option_types", id, ErrOptionTypeNotFound)
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := r.listNamed(ctx, "categories", func(id, name string) {
		out = append(out, domain.Category{ID: id, Name: name})
	})
	if out == nil {
		out = []domain.Category{}
	}
	return out, err
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	id, err := r.createNamed(ctx, "categories", "category", name)
	if err != nil {
		return nil, err
	}
	return &domain.Category{ID: id, Name: name}, nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "categories", id, ErrCategoryNotFound)
}

func (r *SQLiteRepository) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	var out []domain.Brand
	err := r.listNamed(ctx, "brands", func(id, name string) {
		out = append(out, domain.Brand{ID: id, Name: name})
	})
	if out == nil {
		out = []domain.Brand{}
	}
	return out, err
}

func (r *SQLiteRepository) CreateBrand(ctx context.Context, name string) (*domain.Brand, error) {
	id, err := r.createNamed(ctx, "brands", "brand", name)
	if err != nil {
		return nil, err
	}
	return &domain.Brand{ID: id, Name: name}, nil
}

// DeleteBrand detaches the brand from its products first.
func (r *SQLiteRepository) DeleteBrand(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE products SET brand_id = NULL WHERE brand_id = ?`, id); err != nil {
		return fmt.Errorf("failed to detach brand: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM brands WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBrandNotFound
	}
	return tx.Commit()
}

// table names below are package constants, never user input

func (r *SQLiteRepository) listNamed(ctx context.Context, table string, fn func(id, name string)) error {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM "+table+" ORDER BY name")
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return fmt.Errorf("failed to scan %s: %w", table, err)
		}
		fn(id, name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) createNamed(ctx context.Context, table, what, name string) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO "+table+" (id, name, created_at) VALUES (?, ?, ?)",
		id, name, formatTime(time.Now()))
	if isUniqueViolation(err) {
		return "", duplicateName(what, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert %s: %w", what, err)
	}
	return id, nil
}

func (r *SQLiteRepository) deleteByID(ctx context.Context, table, id string, notFound error) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
