package entity

import (
	"github.com/shopspring/decimal"
	"time"
)

// MarketConfig holds the fee account settings. Operator receives listing fees and is the only
// account allowed to change any of these values.
type MarketConfig struct {
	Fee                decimal.Decimal `json:"fee"`
	SettlementCurrency Address         `json:"settlementCurrency"`
	Operator           Address         `json:"operator"`
}

type ListingEvent struct {
	Id      string        `json:"id"`
	Type    string        `json:"type"`
	Caller  Address       `json:"caller"`
	Listing *Listing      `json:"listing,omitempty"`
	Config  *MarketConfig `json:"config,omitempty"`
	Time    time.Time     `json:"time"`
}
