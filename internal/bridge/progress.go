package bridge

import (
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/modellerbridge/internal/host"
)

// Fraction maps a progress sample onto [0,1].
func Fraction(s host.ProgressSample) (float32, error) {
	span := s.High - s.Low
	if span == 0 {
		return 0, ErrZeroProgress
	}
	f := (s.Current - s.Low) / span
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidProgress
	}
	f = math.Max(0, math.Min(1, f))
	return float32(f), nil
}

// progressReporter polls a running tool and sends ProgressReport frames until
// stopped or until anything goes wrong. Ticks before the tool's first sample
// send nothing.
type progressReporter struct {
	stop chan struct{}
	done chan struct{}
}

func startProgressReporter(q host.ProgressQuerier, out *outbound, interval time.Duration) *progressReporter {
	p := &progressReporter{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go p.loop(q, out, interval)
	return p
}

func (p *progressReporter) loop(q host.ProgressQuerier, out *outbound, interval time.Duration) {
	defer close(p.done)
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Interface("panic", r).Msg("bridge.progressReporter.loop stopped on panic")
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
		}

		sample, err := q.Progress()
		if errors.Is(err, host.ErrNoProgress) {
			continue
		}
		if err != nil {
			log.Debug().Err(err).Msg("bridge.progressReporter.loop poll failed")
			return
		}
		fraction, err := Fraction(sample)
		if err != nil {
			log.Debug().Err(err).Msg("bridge.progressReporter.loop bad sample")
			return
		}
		select {
		case <-p.stop:
			return
		default:
		}
		if err := out.sendProgress(fraction); err != nil {
			log.Debug().Err(err).Msg("bridge.progressReporter.loop send failed")
			return
		}
	}
}

// Stop ends the reporter and waits for its goroutine. Safe on a nil reporter.
func (p *progressReporter) Stop() {
	if p == nil {
		return
	}
	close(p.stop)
	<-p.done
}
