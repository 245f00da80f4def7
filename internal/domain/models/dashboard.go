package models

import "time"

// DashboardSummary is assembled from three independent reads.
type DashboardSummary struct {
	BitcoinData           *MarketSnapshot `json:"bitcoin_data"`
	TotalScenarios        int64           `json:"total_scenarios"`
	RecentRecommendations int             `json:"recent_recommendations"`
	MarketStatus          string          `json:"market_status"`
	Timestamp             time.Time       `json:"timestamp"`
}

// RootStatus is the API root payload.
type RootStatus struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}
