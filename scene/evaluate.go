// SPDX-License-Identifier: MIT

package scene

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/katalvlaran/magfield/field"
	"github.com/katalvlaran/magfield/kernel"
	"go.uber.org/zap"
)

// EvalResult is the serializable outcome of one scene evaluation.
type EvalResult struct {
	ID       string    `json:"id"`
	Scene    string    `json:"scene"`
	Quantity string    `json:"quantity"`
	Unit     string    `json:"unit"`
	Sources  []string  `json:"sources"`
	Shape    []int     `json:"shape"`
	Field    any       `json:"field"`
	Created  time.Time `json:"created"`
}

// Unit returns the unit of q: mT for B, kA/m for H.
func Unit(q kernel.Quantity) string {
	if q == kernel.H {
		return "kA/m"
	}

	return "mT"
}

// Evaluate builds the scene and computes its field. A nil logger disables
// logging.
func (s *Scene) Evaluate(ctx context.Context, logger *zap.Logger) (*EvalResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c, err := s.Build()
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	logger.Debug("scene built",
		zap.String("run", id),
		zap.String("scene", s.Name),
		zap.Int("sources", len(c.Sources)))

	opts := append(append([]field.Option(nil), c.Options...), field.WithLogger(logger.With(zap.String("run", id))))
	t, err := field.Compute(ctx, c.Quantity, c.Sources, c.Observers, opts...)
	if err != nil {
		return nil, sceneErrorf(opEvaluate, err)
	}

	names := make([]string, len(c.Sources))
	for i, src := range c.Sources {
		names[i] = src.Name
	}
	logger.Info("scene evaluated",
		zap.String("run", id),
		zap.String("scene", s.Name),
		zap.Stringer("quantity", c.Quantity),
		zap.Ints("shape", t.Shape()))

	return &EvalResult{
		ID:       id,
		Scene:    s.Name,
		Quantity: c.Quantity.String(),
		Unit:     Unit(c.Quantity),
		Sources:  names,
		Shape:    t.Shape(),
		Field:    t.Nested(),
		Created:  time.Now().UTC(),
	}, nil
}
