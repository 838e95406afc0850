package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type StopWordRepository struct {
	db *sql.DB
}

func NewStopWordRepository(db *sql.DB) *StopWordRepository {
	return &StopWordRepository{db: db}
}

func (r *StopWordRepository) StopWords(ctx context.Context, language string) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT word FROM stop_words WHERE language = $1
`, strings.ToLower(language))
	if err != nil {
		return nil, fmt.Errorf("query stop words: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, fmt.Errorf("scan stop word: %w", err)
		}
		out[word] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stop words: %w", err)
	}
	return out, nil
}

func (r *StopWordRepository) AddStopWords(ctx context.Context, language string, words []string) error {
	if len(words) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stop word tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	language = strings.ToLower(language)
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO stop_words (word, language) VALUES ($1, $2)
ON CONFLICT (word, language) DO NOTHING
`, word, language); err != nil {
			return fmt.Errorf("insert stop word %q: %w", word, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit stop word tx: %w", err)
	}
	return nil
}
