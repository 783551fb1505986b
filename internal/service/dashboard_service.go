package service

import (
	"context"

	"github.com/maarifahub/maarifa-backend/internal/repository"
)

// DashboardService aggregates admin dashboard statistics.
type DashboardService struct {
	stats *repository.DashboardRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(stats *repository.DashboardRepository) *DashboardService {
	return &DashboardService{stats: stats}
}

// GetStats returns the dashboard counter block.
func (s *DashboardService) GetStats(ctx context.Context) (*repository.DashboardStats, error) {
	return s.stats.GetStats(ctx)
}
