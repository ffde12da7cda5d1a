package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"
)

// InMemoryStore keeps one bank's records in process. It serves single runs
// and tests; long-lived deployments use the pgvector backend.
type InMemoryStore struct {
	name     string
	metric   string
	embedder Embedder

	mu      sync.RWMutex
	records []record
}

type record struct {
	id             string
	situation      string
	recommendation string
	embedding      []float32
}

func NewInMemoryStore(name, metric string, embedder Embedder) *InMemoryStore {
	return &InMemoryStore{name: name, metric: metric, embedder: embedder}
}

func (s *InMemoryStore) Name() string { return s.name }

func (s *InMemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *InMemoryStore) AddSituations(ctx context.Context, pairs []Pair) error {
	// Embed outside the lock; the write itself is cheap.
	embeddings := make([][]float32, 0, len(pairs))
	for _, pair := range pairs {
		vec, err := s.embedder.Embed(ctx, pair.Situation)
		if err != nil {
			return fmt.Errorf("embed situation: %w", err)
		}
		embeddings = append(embeddings, vec)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	offset := len(s.records)
	for i, pair := range pairs {
		s.records = append(s.records, record{
			id:             strconv.Itoa(offset + i),
			situation:      pair.Situation,
			recommendation: pair.Recommendation,
			embedding:      embeddings[i],
		})
	}
	return nil
}

func (s *InMemoryStore) Query(ctx context.Context, situation string, nMatches int) ([]Match, error) {
	if nMatches < 1 {
		nMatches = 1
	}
	s.mu.RLock()
	empty := len(s.records) == 0
	s.mu.RUnlock()
	if empty {
		// Nothing to rank; skip the embedding call entirely.
		return nil, nil
	}

	query, err := s.embedder.Embed(ctx, situation)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]Match, 0, len(s.records))
	for _, rec := range s.records {
		matches = append(matches, Match{
			MatchedSituation: rec.situation,
			Recommendation:   rec.recommendation,
			SimilarityScore:  similarity(s.metric, query, rec.embedding),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].SimilarityScore > matches[j].SimilarityScore
	})
	if len(matches) > nMatches {
		matches = matches[:nMatches]
	}
	return matches, nil
}

// similarity scores a pair of vectors directly, on the same scale the
// pgvector backend produces after distance conversion.
func similarity(metric string, a, b []float32) float64 {
	switch metric {
	case "inner_product":
		return dot(a, b)
	case "l2":
		return 1 / (1 + math.Sqrt(squaredDistance(a, b)))
	default: // cosine
		na, nb := norm(a), norm(b)
		if na == 0 || nb == 0 {
			return 0
		}
		return dot(a, b) / (na * nb)
	}
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(a []float32) float64 {
	return math.Sqrt(dot(a, a))
}

func squaredDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
