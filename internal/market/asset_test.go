package market

import (
	"encoding/json"
	"strings"
	"testing"
)

const marketsJSON = `[
	{
		"id": "bitcoin",
		"symbol": "btc",
		"name": "Bitcoin",
		"image": "https://assets.example/btc.png",
		"current_price": 64250.12,
		"price_change_percentage_24h": 1.84,
		"market_cap": 1265000000000,
		"total_volume": 28400000000,
		"market_cap_rank": 1,
		"high_24h": 65100.00,
		"low_24h": 62900.50,
		"circulating_supply": 19690000
	},
	{
		"id": "ethereum",
		"symbol": "eth",
		"name": "Ethereum",
		"image": "https://assets.example/eth.png",
		"current_price": 3150.40,
		"price_change_percentage_24h": -0.52,
		"market_cap": 378000000000,
		"total_volume": 14100000000,
		"market_cap_rank": 2,
		"high_24h": 3201.00,
		"low_24h": 3088.20,
		"circulating_supply": 120200000
	}
]`

func TestValidateDocument_Valid(t *testing.T) {
	n, err := ValidateDocument([]byte(marketsJSON))
	if err != nil {
		t.Fatalf("ValidateDocument() returned unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("ValidateDocument() = %d elements, want 2", n)
	}
}

func TestValidateDocument_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"not JSON", `not json at all`, "not valid JSON"},
		{"object not array", `{"id": "bitcoin"}`, "not a JSON array"},
		{"empty array", `[]`, "array is empty"},
		{"element not object", `[42]`, "not an object"},
		{
			"missing id",
			`[{"symbol": "btc", "name": "Bitcoin", "current_price": 1, "market_cap": 1, "market_cap_rank": 1}]`,
			`missing required field "id"`,
		},
		{
			"missing current_price",
			`[{"id": "bitcoin", "symbol": "btc", "name": "Bitcoin", "market_cap": 1, "market_cap_rank": 1}]`,
			`missing required field "current_price"`,
		},
		{
			"missing market_cap_rank",
			`[{"id": "bitcoin", "symbol": "btc", "name": "Bitcoin", "current_price": 1, "market_cap": 1}]`,
			`missing required field "market_cap_rank"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateDocument([]byte(tt.body))
			if err == nil {
				t.Fatal("ValidateDocument() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateDocument() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestAsset_Decode(t *testing.T) {
	var assets []Asset
	if err := json.Unmarshal([]byte(marketsJSON), &assets); err != nil {
		t.Fatalf("Unmarshal() returned unexpected error: %v", err)
	}

	if len(assets) != 2 {
		t.Fatalf("decoded %d assets, want 2", len(assets))
	}

	btc := assets[0]
	if btc.ID != "bitcoin" {
		t.Errorf("ID = %q, want %q", btc.ID, "bitcoin")
	}
	if btc.Symbol != "btc" {
		t.Errorf("Symbol = %q, want %q", btc.Symbol, "btc")
	}
	if btc.CurrentPrice != 64250.12 {
		t.Errorf("CurrentPrice = %v, want 64250.12", btc.CurrentPrice)
	}
	if btc.MarketCapRank != 1 {
		t.Errorf("MarketCapRank = %d, want 1", btc.MarketCapRank)
	}
	if btc.High24h != 65100.00 {
		t.Errorf("High24h = %v, want 65100", btc.High24h)
	}
	if assets[1].PriceChangePct24h != -0.52 {
		t.Errorf("PriceChangePct24h = %v, want -0.52", assets[1].PriceChangePct24h)
	}
}
