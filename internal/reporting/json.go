package reporting

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashadar/fintracker-v2/internal/domain"
)

// correlationJSON is the serialized shape of a correlation result. The matrix
// nests asset -> asset -> coefficient.
type correlationJSON struct {
	CalculatedAt         time.Time                     `json:"calculated_at"`
	AverageCorrelation   float64                       `json:"average_correlation"`
	DiversificationScore float64                       `json:"diversification_score"`
	Matrix               map[string]map[string]float64 `json:"matrix"`
	Notes                string                        `json:"notes,omitempty"`
}

// RenderCorrelationJSON renders the correlation result as indented JSON.
func RenderCorrelationJSON(result *domain.CorrelationResult) (string, error) {
	out := correlationJSON{
		CalculatedAt:         result.CalculatedAt.UTC(),
		AverageCorrelation:   finite(result.AverageCorrelation),
		DiversificationScore: finite(result.DiversificationScore),
		Matrix:               result.Matrix,
		Notes:                result.Notes,
	}
	if out.Matrix == nil {
		out.Matrix = map[string]map[string]float64{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal correlation result: %w", err)
	}
	return string(data) + "\n", nil
}
