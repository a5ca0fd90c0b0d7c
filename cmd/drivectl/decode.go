package main

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/danmuck/drivelink/internal/observability"
	"github.com/danmuck/drivelink/internal/protocol"
	"github.com/danmuck/drivelink/internal/protocol/command"
	"github.com/danmuck/drivelink/internal/protocol/frame"
	"github.com/danmuck/drivelink/internal/protocol/telemetry"
	"github.com/danmuck/drivelink/internal/vehicle"
	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog/log"
)

// decoded is the JSON shape printed for one frame.
type decoded struct {
	Frame string `json:"frame"`
	Kind  string `json:"kind"`
	Tag   string `json:"tag"`
	Piece string `json:"piece,omitempty"`
	Value any    `json:"value"`

	tag protocol.Tag
}

func (d decoded) direction() observability.Direction {
	if d.Kind == "command" {
		return observability.Outbound
	}
	return observability.Inbound
}

// parseHexFrame accepts plain or space/colon separated hex with an optional 0x prefix.
func parseHexFrame(raw string) ([]byte, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.NewReplacer(" ", "", ":", "", "-", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: hex %q: %v", protocol.ErrInvalidArgument, raw, err)
	}
	return b, nil
}

// decodeFrame decodes events and falls back to command parsing so outbound
// captures can be inspected with the same tool.
func decodeFrame(b []byte) (decoded, error) {
	env, err := frame.Parse(b)
	if err != nil {
		return decoded{}, err
	}
	out := decoded{Frame: hex.EncodeToString(b), Tag: env.Tag().String(), tag: env.Tag()}

	if env.Tag().IsCommand() {
		cmd, err := command.ParseEnvelope(env)
		if err != nil {
			return decoded{}, err
		}
		out.Kind = "command"
		out.Value = cmd
		return out, nil
	}

	ev, err := telemetry.DecodeEnvelope(env)
	if err != nil {
		return decoded{}, err
	}
	out.Kind = "event"
	out.Value = ev
	if pos, ok := ev.(telemetry.LocalizationPositionUpdate); ok {
		out.Piece = vehicle.PieceKind(pos.RoadPieceID).String()
	}
	return out, nil
}

func runDecode(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("decode requires at least one hex frame")
	}
	enc := json.NewEncoder(out)
	for _, arg := range args {
		b, err := parseHexFrame(arg)
		if err != nil {
			return err
		}
		d, err := decodeFrame(b)
		if err != nil {
			return fmt.Errorf("decode %s: %w", arg, err)
		}
		if err := enc.Encode(d); err != nil {
			return err
		}
	}
	return nil
}

// replaySummary counts frames per tag plus the ones that failed.
type replaySummary struct {
	Frames    int            `json:"frames"`
	Malformed int            `json:"malformed"`
	Unknown   int            `json:"unknown"`
	ByTag     map[string]int `json:"by_tag"`
}

// recordEncoder is satisfied by both json.Encoder and cbor.Encoder.
type recordEncoder interface {
	Encode(v any) error
}

func runReplay(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	path := fs.String("file", "", "capture file, one hex frame per line")
	events := fs.Bool("events", false, "print every decoded frame as JSON")
	cborPath := fs.String("out", "", "write decoded frames as a CBOR record stream")
	showMetrics := fs.Bool("metrics", false, "print codec counters after the summary")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("replay requires -file")
	}
	f, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer f.Close()

	var sinks []recordEncoder
	if *events {
		sinks = append(sinks, json.NewEncoder(out))
	}
	if *cborPath != "" {
		cf, err := os.Create(*cborPath)
		if err != nil {
			return err
		}
		defer cf.Close()
		sinks = append(sinks, cbor.NewEncoder(cf))
	}

	metrics := observability.NewMetrics("drivelink")
	summary, err := replay(f, metrics, sinks...)
	if err != nil {
		return err
	}
	if err := printSummary(out, summary); err != nil {
		return err
	}
	if *showMetrics {
		return metrics.WriteText(out)
	}
	return nil
}

// replay decodes every line of r. Bad lines are logged, counted and skipped.
func replay(r io.Reader, metrics *observability.Metrics, sinks ...recordEncoder) (replaySummary, error) {
	summary := replaySummary{ByTag: make(map[string]int)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		summary.Frames++

		b, err := parseHexFrame(line)
		if err == nil {
			var d decoded
			if d, err = decodeFrame(b); err == nil {
				summary.ByTag[d.Tag]++
				metrics.RecordFrame(d.direction(), d.tag)
				for _, sink := range sinks {
					if err := sink.Encode(d); err != nil {
						return summary, fmt.Errorf("replay write: %w", err)
					}
				}
				continue
			}
		}

		metrics.RecordError(failedDirection(b), err)
		if errors.Is(err, protocol.ErrUnknownTag) {
			summary.Unknown++
		} else {
			summary.Malformed++
		}
		log.Warn().Int("line", lineNo).Str("frame", line).Err(err).Msg("replay skipped frame")
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("replay read: %w", err)
	}
	log.Info().Int("frames", summary.Frames).Int("malformed", summary.Malformed).Int("unknown", summary.Unknown).Msg("replay complete")
	return summary, nil
}

// failedDirection attributes a rejected frame to the side its tag belongs to.
// Frames without a readable tag count as inbound.
func failedDirection(b []byte) observability.Direction {
	if len(b) >= 2 && protocol.Tag(b[1]).IsCommand() {
		return observability.Outbound
	}
	return observability.Inbound
}

func printSummary(out io.Writer, s replaySummary) error {
	tags := make([]string, 0, len(s.ByTag))
	for tag := range s.ByTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		if _, err := fmt.Fprintf(out, "%-36s %d\n", tag, s.ByTag[tag]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "frames=%d malformed=%d unknown=%d\n", s.Frames, s.Malformed, s.Unknown)
	return err
}
