package dataflows

import (
	"context"
	"errors"
	"time"

	lpconfig "github.com/longportapp/openapi-go/config"
	"github.com/longportapp/openapi-go/quote"
	"github.com/shopspring/decimal"
)

func derefDecimal(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Decimal{}
	}
	return *d
}

// LongportClient serves quotes for HK/CN listed symbols, which Yahoo
// Finance covers poorly.
type LongportClient struct {
	quoteCtx *quote.QuoteContext
}

func NewLongportClient(cfg *Config) (*LongportClient, error) {
	if cfg.LongportAppKey == "" || cfg.LongportAppSecret == "" || cfg.LongportAccessToken == "" {
		return nil, errors.New("longport API credentials not configured")
	}

	conf, err := lpconfig.New(lpconfig.WithConfigKey(cfg.LongportAppKey, cfg.LongportAppSecret, cfg.LongportAccessToken))
	if err != nil {
		return nil, err
	}

	quoteContext, err := quote.NewFromCfg(conf)
	if err != nil {
		return nil, err
	}

	return &LongportClient{quoteCtx: quoteContext}, nil
}

func (lpc *LongportClient) Close() {
	if lpc.quoteCtx != nil {
		lpc.quoteCtx.Close()
	}
}

// GetStaticInfo returns exchange metadata for the given symbols.
func (lpc *LongportClient) GetStaticInfo(ctx context.Context, symbols []string) ([]*quote.StaticInfo, error) {
	if lpc.quoteCtx == nil {
		return nil, errors.New("quote context is nil")
	}
	return lpc.quoteCtx.StaticInfo(ctx, symbols)
}

// GetDailyCandlesticks returns the most recent count daily bars for a
// symbol, oldest first.
func (lpc *LongportClient) GetDailyCandlesticks(ctx context.Context, symbol string, count int) ([]*MarketData, error) {
	if lpc.quoteCtx == nil {
		return nil, errors.New("quote context is nil")
	}
	if count <= 0 {
		count = 30
	}

	sticks, err := lpc.quoteCtx.Candlesticks(ctx, symbol, quote.PeriodDay, int32(count), quote.AdjustTypeNo)
	if err != nil {
		return nil, err
	}

	result := make([]*MarketData, 0, len(sticks))
	for _, stick := range sticks {
		result = append(result, &MarketData{
			Symbol:   symbol,
			Date:     time.Unix(stick.Timestamp, 0).UTC(),
			Open:     derefDecimal(stick.Open),
			High:     derefDecimal(stick.High),
			Low:      derefDecimal(stick.Low),
			Close:    derefDecimal(stick.Close),
			AdjClose: derefDecimal(stick.Close),
			Volume:   stick.Volume,
		})
	}
	return result, nil
}
