package fees

import (
	"context"
	"time"

	"OracleAgent/internal/domain/models"
)

// Static returns the fixed fee table used when no fee source is configured.
type Static struct {
	now func() time.Time
}

func NewStatic() *Static { return &Static{now: time.Now} }

func (s *Static) Estimate(context.Context) models.NetworkFees {
	at := s.now().UTC()
	return models.NetworkFees{Fast: 25, Medium: 15, Slow: 8, EstimatedAt: &at}
}

// Degraded is served when a live fee source has failed.
func Degraded() models.NetworkFees {
	return models.NetworkFees{Fast: 20, Medium: 12, Slow: 6}
}
