// Package memory stores financial situations with the advice they produced
// and retrieves the closest past situations by embedding similarity.
package memory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lilong555/tradingagent/config"
)

// Bank names, one per role that learns from past decisions.
const (
	BullMemory        = "bull_memory"
	BearMemory        = "bear_memory"
	TraderMemory      = "trader_memory"
	InvestJudgeMemory = "invest_judge_memory"
	RiskManagerMemory = "risk_manager_memory"
)

// Pair couples a situation with the recommendation it taught.
type Pair struct {
	Situation      string
	Recommendation string
}

// Match is one retrieved memory.
type Match struct {
	MatchedSituation string  `json:"matched_situation"`
	Recommendation   string  `json:"recommendation"`
	SimilarityScore  float64 `json:"similarity_score"`
}

// Store is a single named bank of situation memories.
type Store interface {
	Name() string
	AddSituations(ctx context.Context, pairs []Pair) error
	Query(ctx context.Context, situation string, nMatches int) ([]Match, error)
	Count(ctx context.Context) (int, error)
}

// Banks bundles the five role memories that feed the debate and risk rounds.
type Banks struct {
	Bull        Store
	Bear        Store
	Trader      Store
	InvestJudge Store
	RiskManager Store

	pool *pgxpool.Pool
}

// OpenBanks builds all five banks on the configured backend. The postgres
// backend shares one connection pool across banks; Close releases it.
func OpenBanks(ctx context.Context, cfg *config.Config) (*Banks, error) {
	embedder := NewOpenAIEmbedder(cfg)
	names := []string{BullMemory, BearMemory, TraderMemory, InvestJudgeMemory, RiskManagerMemory}
	stores := make([]Store, 0, len(names))

	banks := &Banks{}
	switch cfg.MemoryBackend {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres memory backend: %w", err)
		}
		banks.pool = pool
		dims := embeddingDimensions(cfg.ResolveEmbeddingModel())
		for _, name := range names {
			store, err := NewPgVectorStore(ctx, pool, name, cfg.MemoryMetric, embedder, dims)
			if err != nil {
				pool.Close()
				return nil, err
			}
			stores = append(stores, store)
		}
	default:
		for _, name := range names {
			stores = append(stores, NewInMemoryStore(name, cfg.MemoryMetric, embedder))
		}
	}

	banks.Bull, banks.Bear, banks.Trader, banks.InvestJudge, banks.RiskManager =
		stores[0], stores[1], stores[2], stores[3], stores[4]
	return banks, nil
}

// All returns the banks in a stable order.
func (b *Banks) All() []Store {
	return []Store{b.Bull, b.Bear, b.Trader, b.InvestJudge, b.RiskManager}
}

// Close releases the shared postgres pool, if any.
func (b *Banks) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
}

// similarityFromDistance converts a backend distance into the similarity
// score surfaced to prompts. Cosine distance maps to 1-d, pgvector's negated
// inner product back to the raw dot product, and L2 to a bounded inverse.
func similarityFromDistance(metric string, d float64) float64 {
	switch metric {
	case "inner_product":
		return -d
	case "l2":
		return 1 / (1 + d)
	default:
		return 1 - d
	}
}

// embeddingDimensions maps known embedding models to their vector width.
func embeddingDimensions(model string) int {
	switch model {
	case "nomic-embed-text":
		return 768
	case "text-embedding-3-large":
		return 3072
	default:
		return 1536
	}
}
