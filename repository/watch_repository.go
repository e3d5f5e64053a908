package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mihai888nextlab/ecotag/database"
	"github.com/mihai888nextlab/ecotag/models"
)

type WatchRepository struct{}

func NewWatchRepository() *WatchRepository {
	return &WatchRepository{}
}

const watchColumns = `id, url, label, last_title, last_sku, last_amount, last_currency, last_fingerprint, last_confidence, last_checked, created_at, updated_at, is_active`

// AddWatch registers a page for scheduled re-extraction
func (r *WatchRepository) AddWatch(url, label string) (*models.WatchedPage, error) {
	query := `
		INSERT INTO watched_pages (url, label, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		RETURNING ` + watchColumns

	var watch models.WatchedPage
	now := time.Now()
	err := database.DB.QueryRow(query, url, label, now).Scan(
		&watch.ID, &watch.URL, &watch.Label,
		&watch.LastTitle, &watch.LastSKU, &watch.LastAmount, &watch.LastCurrency,
		&watch.LastFingerprint, &watch.LastConfidence, &watch.LastChecked,
		&watch.CreatedAt, &watch.UpdatedAt, &watch.IsActive,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to add watch: %v", err)
	}

	return &watch, nil
}

// GetWatchedPages returns all active watched pages
func (r *WatchRepository) GetWatchedPages() ([]models.WatchedPage, error) {
	query := `
		SELECT ` + watchColumns + `
		FROM watched_pages
		WHERE is_active = true
		ORDER BY created_at DESC
	`

	rows, err := database.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get watched pages: %v", err)
	}
	defer rows.Close()

	var watches []models.WatchedPage
	for rows.Next() {
		var watch models.WatchedPage
		err := rows.Scan(
			&watch.ID, &watch.URL, &watch.Label,
			&watch.LastTitle, &watch.LastSKU, &watch.LastAmount, &watch.LastCurrency,
			&watch.LastFingerprint, &watch.LastConfidence, &watch.LastChecked,
			&watch.CreatedAt, &watch.UpdatedAt, &watch.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watched page: %v", err)
		}
		watches = append(watches, watch)
	}

	return watches, nil
}

// GetWatchByID returns a watched page by ID
func (r *WatchRepository) GetWatchByID(id int) (*models.WatchedPage, error) {
	query := `
		SELECT ` + watchColumns + `
		FROM watched_pages
		WHERE id = $1 AND is_active = true
	`

	var watch models.WatchedPage
	err := database.DB.QueryRow(query, id).Scan(
		&watch.ID, &watch.URL, &watch.Label,
		&watch.LastTitle, &watch.LastSKU, &watch.LastAmount, &watch.LastCurrency,
		&watch.LastFingerprint, &watch.LastConfidence, &watch.LastChecked,
		&watch.CreatedAt, &watch.UpdatedAt, &watch.IsActive,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("watch not found")
		}
		return nil, fmt.Errorf("failed to get watch: %v", err)
	}

	return &watch, nil
}

// UpdateWatchResult stores the fields of a successful extraction pass
func (r *WatchRepository) UpdateWatchResult(id int, product *models.ProductRecord) error {
	var amount, currency string
	if product.Price != nil {
		amount = product.Price.Amount
		currency = product.Price.Currency
	}

	query := `
		UPDATE watched_pages
		SET last_title = $1, last_sku = $2, last_amount = $3, last_currency = $4,
		    last_fingerprint = $5, last_confidence = $6, last_checked = $7, updated_at = $7
		WHERE id = $8
	`

	_, err := database.DB.Exec(query,
		product.Title, product.SKU, amount, currency,
		product.Fingerprint(), product.Confidence, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update watch result: %v", err)
	}

	return nil
}

// TouchWatch records a check that produced no change
func (r *WatchRepository) TouchWatch(id int) error {
	query := `UPDATE watched_pages SET last_checked = $1 WHERE id = $2`

	_, err := database.DB.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to touch watch: %v", err)
	}

	return nil
}

// DeleteWatch deactivates a watched page
func (r *WatchRepository) DeleteWatch(id int) error {
	query := `UPDATE watched_pages SET is_active = false, updated_at = $1 WHERE id = $2`

	result, err := database.DB.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete watch: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %v", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("watch not found")
	}

	return nil
}
