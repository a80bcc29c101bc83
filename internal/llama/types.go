package llama

import "encoding/json"

// Protocol is one entry from the /protocols endpoint. Only the fields the
// pipeline reads are mapped; the rest of the payload is ignored.
type Protocol struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	Symbol         string          `json:"symbol"`
	GeckoID        *string         `json:"gecko_id"`
	CmcID          *string         `json:"cmcId"`
	Category       string          `json:"category"`
	Chains         []string        `json:"chains"`
	TVL            float64         `json:"tvl"`
	Change7d       *float64        `json:"change_7d"`
	ListedAt       int64           `json:"listedAt"`
	ParentProtocol string          `json:"parentProtocol"`
	URL            string          `json:"url"`
	Twitter        string          `json:"twitter"`
	Tags           []string        `json:"tags"`
	HasPoints      bool            `json:"points"`
	TVLHistory     []TVLChartPoint `json:"tvlChart"`
}

// TVLChartPoint is a (unix seconds, USD) sample of a protocol's TVL series.
// The provider emits it as a two-element array.
type TVLChartPoint struct {
	Timestamp int64
	USD       float64
}

// UnmarshalJSON accepts the provider's [timestamp, tvl] pair encoding.
func (p *TVLChartPoint) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	p.Timestamp = int64(pair[0])
	p.USD = pair[1]
	return nil
}

// Raise is one disclosed funding round from the /raises endpoint.
// AmountMillions follows the provider convention of reporting in $M.
type Raise struct {
	Name           string   `json:"name"`
	DefillamaID    string   `json:"defillamaId"`
	Date           int64    `json:"date"`
	AmountMillions *float64 `json:"amount"`
	Round          string   `json:"round"`
	LeadInvestors  []string `json:"leadInvestors"`
	OtherInvestors []string `json:"otherInvestors"`
}

// RaisesResponse is the envelope around the /raises list.
type RaisesResponse struct {
	Raises []Raise `json:"raises"`
}
