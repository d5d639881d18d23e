package repository

import (
	"context"
	"errors"
	"time"

	"github.com/BerylCAtieno/document-chat-api/internal/models"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("history item not found")

// HistoryRepository persists the client's analysis history.
type HistoryRepository interface {
	List(ctx context.Context) ([]models.HistoryItem, error)
	Create(ctx context.Context, item *models.HistoryItem) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

type repository struct {
	db *sqlx.DB
}

// historyRow stores the timestamp as Unix milliseconds.
type historyRow struct {
	ID        string `db:"id"`
	FileName  string `db:"file_name"`
	CreatedAt int64  `db:"created_at"`
	WordCount int    `db:"word_count"`
	Analysis  string `db:"analysis"`
}

func NewRepository(db *sqlx.DB) HistoryRepository {
	return &repository{db: db}
}

// List returns every item, newest first.
func (r *repository) List(ctx context.Context) ([]models.HistoryItem, error) {
	var rows []historyRow

	query := `
		SELECT id, file_name, created_at, word_count, analysis
		FROM history
		ORDER BY created_at DESC, id DESC
	`

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	items := make([]models.HistoryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.HistoryItem{
			ID:        row.ID,
			FileName:  row.FileName,
			Timestamp: time.UnixMilli(row.CreatedAt),
			WordCount: row.WordCount,
			Analysis:  row.Analysis,
		})
	}

	return items, nil
}

func (r *repository) Create(ctx context.Context, item *models.HistoryItem) error {
	query := `
		INSERT INTO history (id, file_name, created_at, word_count, analysis)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.FileName,
		item.Timestamp.UnixMilli(),
		item.WordCount,
		item.Analysis,
	)

	return err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *repository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM history`)
	return err
}
