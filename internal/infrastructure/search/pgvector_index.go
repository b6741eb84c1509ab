package search

import (
	"context"
	"fmt"

	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

const (
	upsertEmbeddingSQL = `
		INSERT INTO recipe_embeddings (recipe_id, embedding, dimensions, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (recipe_id) DO UPDATE
		SET embedding = EXCLUDED.embedding, dimensions = EXCLUDED.dimensions, updated_at = NOW()`

	queryEmbeddingSQL = `
		SELECT recipe_id, 1 - (embedding <=> $1) AS score
		FROM recipe_embeddings
		WHERE dimensions = $2
		ORDER BY embedding <=> $1
		LIMIT $3`
)

// PGVectorIndex stores embeddings in the recipe_embeddings table
type PGVectorIndex struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPGVectorIndex creates an index on pool
func NewPGVectorIndex(pool *pgxpool.Pool, logger *zap.Logger) *PGVectorIndex {
	return &PGVectorIndex{pool: pool, logger: logger.Named("pgvector")}
}

var _ outbound.RecipeIndex = (*PGVectorIndex)(nil)

// Upsert stores or replaces the embedding of a recipe
func (i *PGVectorIndex) Upsert(ctx context.Context, id uuid.UUID, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("search: empty vector for %s", id)
	}
	_, err := i.pool.Exec(ctx, upsertEmbeddingSQL, id.String(), pgvector.NewVector(vector), len(vector))
	if err != nil {
		return fmt.Errorf("upsert embedding: %w", err)
	}
	return nil
}

// Query returns the nearest recipes by cosine distance
func (i *PGVectorIndex) Query(ctx context.Context, vector []float32, limit int) ([]outbound.ScoredID, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := i.pool.Query(ctx, queryEmbeddingSQL, pgvector.NewVector(vector), len(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("query embeddings: %w", err)
	}
	defer rows.Close()

	var hits []outbound.ScoredID
	for rows.Next() {
		var (
			rawID string
			score float64
		)
		if err := rows.Scan(&rawID, &score); err != nil {
			return nil, fmt.Errorf("scan embedding row: %w", err)
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			i.logger.Warn("Skipping embedding with invalid recipe id", zap.String("recipe_id", rawID))
			continue
		}
		hits = append(hits, outbound.ScoredID{ID: id, Score: score})
	}
	return hits, rows.Err()
}

// Ping checks the pool
func (i *PGVectorIndex) Ping(ctx context.Context) error {
	return i.pool.Ping(ctx)
}
