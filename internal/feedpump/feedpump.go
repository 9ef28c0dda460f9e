// Package feedpump polls a flight feed once per frame and hands the reports
// of each frame to a sink, the way a map renderer drains the feed per frame.
package feedpump

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/unklstewy/mockflights/pkg/flightsim"
)

// Source is anything that hands out feed snapshots one at a time.
// *flightsim.Simulation implements it.
type Source interface {
	NextFlight() (string, bool)
}

// Sink receives the reports drained during one frame. Returning an error
// stops the pump.
type Sink func(ctx context.Context, batch []flightsim.Report) error

// Pump drains a Source at a fixed frame rate.
type Pump struct {
	source    Source
	limiter   *rate.Limiter
	batchSize int
	logger    *zap.Logger
}

// New creates a pump that polls source every frameInterval and takes at most
// batchSize snapshots per frame.
func New(source Source, frameInterval time.Duration, batchSize int, logger *zap.Logger) *Pump {
	if batchSize <= 0 {
		batchSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pump{
		source:    source,
		limiter:   rate.NewLimiter(rate.Every(frameInterval), 1),
		batchSize: batchSize,
		logger:    logger,
	}
}

// Drain takes up to the batch size of snapshots from the source without
// waiting. Malformed snapshots are logged and skipped.
func (p *Pump) Drain() []flightsim.Report {
	return DrainN(p.source, p.batchSize, p.logger)
}

// DrainN takes up to n snapshots from source and parses them.
func DrainN(source Source, n int, logger *zap.Logger) []flightsim.Report {
	batch := make([]flightsim.Report, 0, n)
	for len(batch) < n {
		line, ok := source.NextFlight()
		if !ok {
			break
		}
		report, err := flightsim.ParseReport(line)
		if err != nil {
			logger.Warn("Skipping feed entry", zap.String("line", line), zap.Error(err))
			continue
		}
		batch = append(batch, report)
	}
	return batch
}

// Run drains one frame per limiter slot until ctx is cancelled or the sink
// fails. Empty frames are not passed to the sink.
// It returns nil when ctx is cancelled.
func (p *Pump) Run(ctx context.Context, sink Sink) error {
	for {
		if err := p.limiter.Wait(ctx); err != nil {
			// ctx is done or its deadline falls before the next frame
			<-ctx.Done()
			return nil
		}

		batch := p.Drain()
		if len(batch) == 0 {
			continue
		}
		if err := sink(ctx, batch); err != nil {
			return fmt.Errorf("feed sink failed: %w", err)
		}
	}
}
