package reflection

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilong555/tradingagent/config"
	"github.com/lilong555/tradingagent/internal/memory"
	"github.com/lilong555/tradingagent/internal/models"
)

type constantEmbedder struct{}

func (constantEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

// scriptedModel replays canned responses and records the prompts it saw.
type scriptedModel struct {
	responses []string
	calls     int
	prompts   [][]*schema.Message
	err       error
}

func (m *scriptedModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.prompts = append(m.prompts, input)
	resp := fmt.Sprintf("lesson %d", m.calls)
	if m.calls < len(m.responses) {
		resp = m.responses[m.calls]
	}
	m.calls++
	return schema.AssistantMessage(resp, nil), nil
}

func (m *scriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	out, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{out}), nil
}

func (m *scriptedModel) WithTools(_ []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

func testBanks() *memory.Banks {
	e := constantEmbedder{}
	return &memory.Banks{
		Bull:        memory.NewInMemoryStore(memory.BullMemory, "cosine", e),
		Bear:        memory.NewInMemoryStore(memory.BearMemory, "cosine", e),
		Trader:      memory.NewInMemoryStore(memory.TraderMemory, "cosine", e),
		InvestJudge: memory.NewInMemoryStore(memory.InvestJudgeMemory, "cosine", e),
		RiskManager: memory.NewInMemoryStore(memory.RiskManagerMemory, "cosine", e),
	}
}

func fullState() *models.TradingState {
	return &models.TradingState{
		CompanyOfInterest:  "AAPL",
		TradeDate:          "2024-06-03",
		MarketReport:       "rsi neutral",
		SentimentReport:    "upbeat chatter",
		NewsReport:         "product launch",
		FundamentalsReport: "strong balance sheet",
		InvestmentDebateState: &models.InvestDebateState{
			BullHistory:   "Bull Analyst: growth is intact",
			BearHistory:   "Bear Analyst: valuation stretched",
			JudgeDecision: "side with the bull",
		},
		TraderInvestmentPlan: "buy with stop at 180. FINAL TRANSACTION PROPOSAL: **BUY**",
		RiskDebateState: &models.RiskDebateState{
			JudgeDecision: "approve the buy",
		},
	}
}

func TestReflectAndRememberStoresOneLessonPerRole(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	banks := testBanks()
	chat := &scriptedModel{}
	r := NewReflector(cfg, chat, banks)

	err := r.ReflectAndRemember(context.Background(), fullState(), 5.2)
	require.NoError(t, err)
	assert.Equal(t, 5, chat.calls)

	for _, store := range banks.All() {
		count, err := store.Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, count, "bank %s", store.Name())
	}

	matches, err := banks.Bull.Query(context.Background(), "anything", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "lesson 0", matches[0].Recommendation)
}

func TestReflectAndRememberPromptCarriesReturnsAndOutput(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	chat := &scriptedModel{}
	r := NewReflector(cfg, chat, testBanks())

	require.NoError(t, r.ReflectAndRemember(context.Background(), fullState(), -3.1))
	require.NotEmpty(t, chat.prompts)

	first := chat.prompts[0]
	require.Len(t, first, 2)
	assert.Equal(t, schema.System, first[0].Role)
	assert.Contains(t, first[1].Content, "Returns: -3.1")
	assert.Contains(t, first[1].Content, "growth is intact")
	assert.Contains(t, first[1].Content, "rsi neutral")
}

func TestReflectAndRememberSkipsEmptyOutputs(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	banks := testBanks()
	chat := &scriptedModel{}
	r := NewReflector(cfg, chat, banks)

	state := fullState()
	state.RiskDebateState.JudgeDecision = ""
	require.NoError(t, r.ReflectAndRemember(context.Background(), state, 1.0))

	count, err := banks.RiskManager.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, 4, chat.calls)
}

func TestReflectAndRememberPropagatesModelFailure(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.RetryMaxAttempts = 1
	banks := testBanks()
	chat := &scriptedModel{err: errors.New("backend down")}
	r := NewReflector(cfg, chat, banks)

	err := r.ReflectAndRemember(context.Background(), fullState(), 2.0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bull researcher")

	for _, store := range banks.All() {
		count, cErr := store.Count(context.Background())
		require.NoError(t, cErr)
		assert.Equal(t, 0, count)
	}
}
