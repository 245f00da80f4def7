package models

import "time"

// NetworkFees holds fee-tier estimates in sat/vByte.
type NetworkFees struct {
	Fast        int        `json:"fast"`
	Medium      int        `json:"medium"`
	Slow        int        `json:"slow"`
	EstimatedAt *time.Time `json:"estimated_at,omitempty"`
}

// MarketSnapshot is a single point-in-time read of BTC market data. Never persisted.
type MarketSnapshot struct {
	Price          float64     `json:"price"`
	Timestamp      time.Time   `json:"timestamp"`
	High24h        *float64    `json:"high_24h"`
	Low24h         *float64    `json:"low_24h"`
	Volume24h      *float64    `json:"volume_24h"`
	PriceChange24h *float64    `json:"price_change_24h"`
	MarketCap      *float64    `json:"market_cap,omitempty"`
	Volatility     float64     `json:"volatility"`
	NetworkFees    NetworkFees `json:"network_fees"`
}

// Change24h returns the 24h percentage change, or 0 when the upstream omitted it.
func (s *MarketSnapshot) Change24h() float64 {
	if s.PriceChange24h == nil {
		return 0
	}
	return *s.PriceChange24h
}
