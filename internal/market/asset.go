package market

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Asset is a single validated market entry from the /coins/markets endpoint.
type Asset struct {
	ID                string  `json:"id"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Image             string  `json:"image"`
	CurrentPrice      float64 `json:"current_price"`
	PriceChangePct24h float64 `json:"price_change_percentage_24h"`
	MarketCap         float64 `json:"market_cap"`
	TotalVolume       float64 `json:"total_volume"`
	MarketCapRank     int     `json:"market_cap_rank"`
	High24h           float64 `json:"high_24h"`
	Low24h            float64 `json:"low_24h"`
	CirculatingSupply float64 `json:"circulating_supply"`
}

// requiredFields must be present on every element of a markets payload.
// A decoded struct cannot tell a missing number from a zero, so presence is
// checked structurally before decoding.
var requiredFields = []string{
	"id",
	"symbol",
	"name",
	"current_price",
	"market_cap",
	"market_cap_rank",
}

// ValidateDocument checks that body is a non-empty JSON array whose elements
// all carry the required fields, and returns the element count.
func ValidateDocument(body []byte) (int, error) {
	if !gjson.ValidBytes(body) {
		return 0, fmt.Errorf("response is not valid JSON")
	}

	doc := gjson.ParseBytes(body)
	if !doc.IsArray() {
		return 0, fmt.Errorf("response is not a JSON array")
	}

	elems := doc.Array()
	if len(elems) == 0 {
		return 0, fmt.Errorf("response array is empty")
	}

	for i, el := range elems {
		if !el.IsObject() {
			return 0, fmt.Errorf("element %d is not an object", i)
		}
		for _, field := range requiredFields {
			if !el.Get(field).Exists() {
				return 0, fmt.Errorf("element %d missing required field %q", i, field)
			}
		}
	}

	return len(elems), nil
}
