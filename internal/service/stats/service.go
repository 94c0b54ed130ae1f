package statsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/you-humble/paystack-checkout/internal/model"
	"github.com/you-humble/paystack-checkout/platform/logger"
)

type StatsRepository interface {
	Stats(ctx context.Context) (model.OrderStats, error)
}

type service struct {
	repo          StatsRepository
	readDBTimeout time.Duration
}

func NewStatsService(repository StatsRepository, readDBTimeout time.Duration) *service {
	return &service{repo: repository, readDBTimeout: readDBTimeout}
}

func (svc *service) Stats(ctx context.Context) (model.OrderStats, error) {
	const op string = "stats.service.Stats"

	ctx, cancel := context.WithTimeout(ctx, svc.readDBTimeout)
	defer cancel()

	st, err := svc.repo.Stats(ctx)
	if err != nil {
		logger.Error(ctx, "repository stats", logger.ErrorF(err))
		return model.OrderStats{}, fmt.Errorf("%s: %w", op, err)
	}

	return st, nil
}
