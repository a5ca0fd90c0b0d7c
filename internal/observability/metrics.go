package observability

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/danmuck/drivelink/internal/protocol"
	"github.com/prometheus/client_golang/prometheus"
)

// Direction labels which side of the link a frame travelled.
type Direction string

const (
	Outbound Direction = "outbound"
	Inbound  Direction = "inbound"
)

// Metrics counts frames handled by the codec. Each instance owns its
// registry so tools and tests do not share global state.
type Metrics struct {
	registry *prometheus.Registry
	frames   *prometheus.CounterVec
	errors   *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "codec",
				Name:      "frames_total",
				Help:      "Frames encoded or decoded, by direction and tag.",
			},
			[]string{"direction", "tag"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "codec",
				Name:      "frame_errors_total",
				Help:      "Frames rejected by the codec, by direction and reason.",
			},
			[]string{"direction", "reason"},
		),
	}
	m.registry.MustRegister(m.frames, m.errors)
	return m
}

func (m *Metrics) RecordFrame(dir Direction, tag protocol.Tag) {
	m.frames.WithLabelValues(string(dir), tag.String()).Inc()
}

// RecordError files err under the first protocol sentinel it wraps.
func (m *Metrics) RecordError(dir Direction, err error) {
	m.errors.WithLabelValues(string(dir), Reason(err)).Inc()
}

var reasons = []struct {
	err  error
	name string
}{
	{protocol.ErrTruncated, "truncated"},
	{protocol.ErrLengthMismatch, "length_mismatch"},
	{protocol.ErrPayloadSizeMismatch, "payload_size_mismatch"},
	{protocol.ErrUnknownTag, "unknown_tag"},
	{protocol.ErrOverflow, "overflow"},
	{protocol.ErrFull, "full"},
	{protocol.ErrInvalidArgument, "invalid_argument"},
}

// Reason maps err to a stable label value.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.name
		}
	}
	return "other"
}

// WriteText prints every non-zero counter as "name{labels} value", sorted.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	var lines []string
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			value := metric.GetCounter().GetValue()
			if value == 0 {
				continue
			}
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, l := range metric.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), value))
		}
	}
	sort.Strings(lines)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
