package memory

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

var distanceOperators = map[string]string{
	"cosine":        "<=>",
	"inner_product": "<#>",
	"l2":            "<->",
}

// PgVectorStore persists one bank in PostgreSQL and ranks matches with a
// pgvector distance operator.
type PgVectorStore struct {
	pool     *pgxpool.Pool
	name     string
	table    string
	metric   string
	embedder Embedder
}

// NewPgVectorStore enables the vector extension and creates the bank's table
// when missing. dimensions must match the embedding model's output width.
func NewPgVectorStore(ctx context.Context, pool *pgxpool.Pool, name, metric string, embedder Embedder, dimensions int) (*PgVectorStore, error) {
	if _, ok := distanceOperators[metric]; !ok {
		return nil, fmt.Errorf("unsupported memory metric %q", metric)
	}

	table := "memory_" + sanitizeIdentifier(name)
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return nil, fmt.Errorf("enable pgvector extension: %w", err)
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		situation TEXT NOT NULL,
		recommendation TEXT NOT NULL,
		embedding vector(%d) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, table, dimensions)
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create memory table %s: %w", table, err)
	}

	return &PgVectorStore{
		pool:     pool,
		name:     name,
		table:    table,
		metric:   metric,
		embedder: embedder,
	}, nil
}

func (s *PgVectorStore) Name() string { return s.name }

func (s *PgVectorStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", s.table, err)
	}
	return count, nil
}

func (s *PgVectorStore) AddSituations(ctx context.Context, pairs []Pair) error {
	offset, err := s.Count(ctx)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, situation, recommendation, embedding)
		VALUES ($1, $2, $3, $4)`, s.table)
	for i, pair := range pairs {
		vec, err := s.embedder.Embed(ctx, pair.Situation)
		if err != nil {
			return fmt.Errorf("embed situation: %w", err)
		}
		id := strconv.Itoa(offset + i)
		if _, err := s.pool.Exec(ctx, query, id, pair.Situation, pair.Recommendation, pgvector.NewVector(vec)); err != nil {
			return fmt.Errorf("insert memory %s/%s: %w", s.table, id, err)
		}
	}
	return nil
}

func (s *PgVectorStore) Query(ctx context.Context, situation string, nMatches int) ([]Match, error) {
	if nMatches < 1 {
		nMatches = 1
	}
	vec, err := s.embedder.Embed(ctx, situation)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	op := distanceOperators[s.metric]
	query := fmt.Sprintf(`
		SELECT situation, recommendation, embedding %s $1 AS distance
		FROM %s
		ORDER BY embedding %s $1
		LIMIT $2`, op, s.table, op)

	rows, err := s.pool.Query(ctx, query, pgvector.NewVector(vec), nMatches)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var situation, recommendation string
		var distance float64
		if err := rows.Scan(&situation, &recommendation, &distance); err != nil {
			return nil, fmt.Errorf("scan memory row: %w", err)
		}
		matches = append(matches, Match{
			MatchedSituation: situation,
			Recommendation:   recommendation,
			SimilarityScore:  similarityFromDistance(s.metric, distance),
		})
	}
	return matches, rows.Err()
}

func sanitizeIdentifier(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, name)
}
