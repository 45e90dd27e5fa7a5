package report

import (
	"encoding/json"
	"time"

	"github.com/repolens/repolens/internal/domain"
)

// Export is the machine-readable dump of one analysis run.
type Export struct {
	GeneratedAt  time.Time                     `json:"generated_at"`
	User         domain.UserProfile            `json:"user"`
	Stats        domain.PortfolioStats         `json:"stats"`
	Repositories []domain.ClassifiedRepository `json:"repositories"`
}

// RenderJSON serializes the full analysis outcome as indented JSON.
func RenderJSON(user domain.UserProfile, st domain.PortfolioStats, repos []domain.ClassifiedRepository, now time.Time) ([]byte, error) {
	return json.MarshalIndent(Export{
		GeneratedAt:  now,
		User:         user,
		Stats:        st,
		Repositories: repos,
	}, "", "  ")
}
