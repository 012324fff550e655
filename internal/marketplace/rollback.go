package marketplace

import (
	"context"
	"go.uber.org/zap"
)

type compensation struct {
	name string
	fn   func(ctx context.Context) error
}

// rollback undoes the side effects already applied by an operation that failed part way.
type rollback struct {
	steps []compensation
}

func (r *rollback) add(name string, fn func(ctx context.Context) error) {
	r.steps = append(r.steps, compensation{name, fn})
}

func (r *rollback) run(ctx context.Context) {
	for i := len(r.steps) - 1; i >= 0; i-- {
		step := r.steps[i]
		if err := step.fn(context.WithoutCancel(ctx)); err != nil {
			zap.L().With(zap.Error(err), zap.String("step", step.name)).Error("Marketplace: Compensation failed")
			continue
		}
		zap.L().With(zap.String("step", step.name)).Warn("Marketplace: Compensated")
	}
}
