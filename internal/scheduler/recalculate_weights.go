package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/trogers1052/carteira-service/internal/models"
)

// WeightRecalculator recalculates peso_percentual for every tipo
type WeightRecalculator interface {
	RecalculateAll(ctx context.Context) (map[models.Tipo][]models.Position, error)
}

// RecalculateWeightsJob keeps weights fresh when positions change outside
// the HTTP surface
type RecalculateWeightsJob struct {
	service WeightRecalculator
	timeout time.Duration
	log     zerolog.Logger
}

// NewRecalculateWeightsJob creates the job
func NewRecalculateWeightsJob(service WeightRecalculator, timeout time.Duration, log zerolog.Logger) *RecalculateWeightsJob {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &RecalculateWeightsJob{
		service: service,
		timeout: timeout,
		log:     log.With().Str("job", "recalculate_weights").Logger(),
	}
}

// Name returns the job name
func (j *RecalculateWeightsJob) Name() string {
	return "recalculate_weights"
}

// Run recalculates every group
func (j *RecalculateWeightsJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	result, err := j.service.RecalculateAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to recalculate weights: %w", err)
	}

	total := 0
	for _, positions := range result {
		total += len(positions)
	}
	j.log.Info().
		Int("positions", total).
		Dur("duration", time.Since(start)).
		Msg("weights recalculated")
	return nil
}
