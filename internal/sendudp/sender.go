package sendudp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/jonboulle/clockwork"

	"github.com/opensciencegrid/xrootd-monitoring-shoveler/internal/metrics"
	"github.com/opensciencegrid/xrootd-monitoring-shoveler/internal/netutil"
	"github.com/opensciencegrid/xrootd-monitoring-shoveler/pkg/udp"
	"github.com/opensciencegrid/xrootd-monitoring-shoveler/pkg/xrdmon"
)

const defaultMaxConcurrency = 8

// Config configures a send run.
type Config struct {
	Logger *slog.Logger
	Clock  clockwork.Clock
	Dialer udp.Dialer

	Targets []netutil.Target
	Payload Spec

	// WithHeader prepends the 8-byte monitoring header to every datagram.
	WithHeader bool

	// Code is the header code byte.
	Code byte

	// AdvanceSeq increments the header sequence byte per packet, wrapping
	// at 256. The collector's observed traffic keeps it at zero.
	AdvanceSeq bool

	// Interval pauses between sends within a stream. Zero sends back to
	// back, as the original traffic generators do.
	Interval time.Duration

	// MaxConcurrency bounds destination streams in flight; defaulted if
	// zero.
	MaxConcurrency int

	// Recorder, when set, captures every sent datagram.
	Recorder *Recorder
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Dialer == nil {
		return errors.New("dialer is required")
	}
	if len(c.Targets) == 0 {
		return errors.New("at least one target is required")
	}
	if err := c.Payload.Validate(); err != nil {
		return err
	}
	if c.Interval < 0 {
		return errors.New("interval must not be negative")
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = defaultMaxConcurrency
	}
	if c.MaxConcurrency <= 0 {
		return errors.New("max concurrency must be greater than 0")
	}
	return nil
}

// Sender drives one run: every target gets the full payload sequence over
// its own connected socket.
type Sender struct {
	cfg  Config
	pool pond.ResultPool[*Report]
}

func New(cfg Config) (*Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Sender{
		cfg:  cfg,
		pool: pond.NewResultPool[*Report](cfg.MaxConcurrency),
	}, nil
}

// Run sends the configured sequence to every target and returns one report
// per target, in target order. The header timestamp is read from the clock
// once per run, so every stream stamps the same ServerStart. Stream
// failures, including cancellation, surface in the reports rather than in
// the returned error.
func (s *Sender) Run(ctx context.Context) (*Results, error) {
	start := s.cfg.Clock.Now()
	s.cfg.Logger.Debug("Starting send run",
		"targets", len(s.cfg.Targets),
		"count", s.cfg.Payload.Count,
		"header", s.cfg.WithHeader,
		"serverStart", start.Unix(),
	)

	group := s.pool.NewGroup()
	for _, target := range s.cfg.Targets {
		target := target
		group.SubmitErr(func() (*Report, error) {
			return s.sendTo(ctx, target, start), nil
		})
	}

	reports, err := group.Wait()
	if err != nil {
		return nil, fmt.Errorf("failed to run send streams: %w", err)
	}
	return &Results{Reports: reports}, nil
}

// sendTo runs one destination stream to completion, cancellation, or its
// first error.
func (s *Sender) sendTo(ctx context.Context, target netutil.Target, start time.Time) *Report {
	log := s.cfg.Logger.With("target", target.Raw)
	report := &Report{Target: target.Raw}

	streamStart := s.cfg.Clock.Now()
	defer func() { report.Elapsed = s.cfg.Clock.Since(streamStart) }()

	metrics.StreamsInflight.Inc()
	defer metrics.StreamsInflight.Dec()

	if err := ctx.Err(); err != nil {
		report.Err = err
		return report
	}

	conn, err := s.cfg.Dialer.Dial(ctx, nil, target.Addr)
	if err != nil {
		metrics.SendErrorsTotal.WithLabelValues(target.Raw).Inc()
		report.Err = err
		return report
	}
	defer conn.Close()

	// In the fixed variant nothing varies per packet: the header is built
	// once before the loop and every datagram reuses the same bytes.
	var constant []byte
	if s.cfg.WithHeader && !s.cfg.AdvanceSeq && !s.cfg.Payload.AppendCounter {
		pkt, err := xrdmon.NewPacket(s.cfg.Code, 0, []byte(s.cfg.Payload.Text), start)
		if err != nil {
			report.Err = err
			return report
		}
		if constant, err = pkt.MarshalBinary(); err != nil {
			report.Err = err
			return report
		}
	}

	src := s.cfg.Payload.Source()
	seq := uint8(0)
	for {
		payload, ok := src.Next()
		if !ok {
			break
		}
		select {
		case <-ctx.Done():
			report.Err = ctx.Err()
			return report
		default:
		}

		datagram := payload
		switch {
		case constant != nil:
			datagram = constant
		case s.cfg.WithHeader:
			pkt, err := xrdmon.NewPacket(s.cfg.Code, seq, payload, start)
			if err != nil {
				report.Err = err
				return report
			}
			if datagram, err = pkt.MarshalBinary(); err != nil {
				report.Err = err
				return report
			}
			if s.cfg.AdvanceSeq {
				seq++
			}
		}

		sendStart := s.cfg.Clock.Now()
		n, err := conn.Write(datagram)
		metrics.SendDurations.WithLabelValues(target.Raw).Observe(s.cfg.Clock.Since(sendStart).Seconds())
		if err != nil {
			metrics.SendErrorsTotal.WithLabelValues(target.Raw).Inc()
			report.Err = fmt.Errorf("failed to send datagram %d: %w", report.Sent, err)
			return report
		}
		report.Sent++
		report.Bytes += int64(n)
		metrics.DatagramsSentTotal.WithLabelValues(target.Raw).Inc()
		metrics.BytesSentTotal.WithLabelValues(target.Raw).Add(float64(n))

		if s.cfg.Recorder != nil {
			if err := s.cfg.Recorder.Record(target.Raw, datagram); err != nil {
				report.Err = err
				return report
			}
		}

		if s.cfg.Interval > 0 && !s.sleepOrDone(ctx, s.cfg.Interval) {
			report.Err = ctx.Err()
			return report
		}
	}

	log.Debug("Stream complete", "sent", report.Sent, "bytes", report.Bytes)
	return report
}

func (s *Sender) sleepOrDone(ctx context.Context, d time.Duration) bool {
	timer := s.cfg.Clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
