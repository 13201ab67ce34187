package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubject(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		wantMarket Market
		wantSymbol string
		wantErr    bool
	}{
		{
			name:       "six digit a-share",
			code:       "600519",
			wantMarket: MarketAStock,
			wantSymbol: "600519",
		},
		{
			name:       "shenzhen a-share",
			code:       "000001",
			wantMarket: MarketAStock,
			wantSymbol: "000001",
		},
		{
			name:       "short numeric is hong kong",
			code:       "700",
			wantMarket: MarketHKStock,
			wantSymbol: "00700",
		},
		{
			name:       "hk prefix",
			code:       "HK700",
			wantMarket: MarketHKStock,
			wantSymbol: "00700",
		},
		{
			name:       "five digit hong kong",
			code:       "09988",
			wantMarket: MarketHKStock,
			wantSymbol: "09988",
		},
		{
			name:       "us ticker",
			code:       "AAPL",
			wantMarket: MarketUSStock,
			wantSymbol: "AAPL",
		},
		{
			name:       "lowercase us ticker",
			code:       "tsla",
			wantMarket: MarketUSStock,
			wantSymbol: "TSLA",
		},
		{
			name:       "surrounding whitespace",
			code:       " MSFT ",
			wantMarket: MarketUSStock,
			wantSymbol: "MSFT",
		},
		{
			name:    "empty",
			code:    "",
			wantErr: true,
		},
		{
			name:    "too many letters",
			code:    "TOOLONG",
			wantErr: true,
		},
		{
			name:    "mixed garbage",
			code:    "12AB!",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSubject(tt.code)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidSubject)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMarket, got.Market)
			assert.Equal(t, tt.wantSymbol, got.Symbol)
		})
	}
}

func TestParseSubjectIdempotent(t *testing.T) {
	first, err := ParseSubject("hk700")
	require.NoError(t, err)

	second, err := ParseSubject(first.Symbol)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSubjectKeyString(t *testing.T) {
	key := SubjectKey{Market: MarketUSStock, Symbol: "AAPL"}
	assert.Equal(t, "us_stock:AAPL", key.String())
}
