package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/drivelink/internal/logging"
	"github.com/danmuck/drivelink/internal/observability"
	"github.com/danmuck/drivelink/internal/protocol"
	"github.com/danmuck/drivelink/internal/protocol/command"
	"github.com/danmuck/drivelink/internal/testutil/testlog"
	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func runCapture(t *testing.T, sub string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(sub, args, &out)
	return out.String(), err
}

func TestEncodeCommands(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"-cmd", "speed", "-speed", "300", "-accel", "500"}, "06242c01f40100"},
		{[]string{"-cmd", "ping"}, "0116"},
		{[]string{"-cmd", "sdk"}, "03900101"},
		{[]string{"-cmd", "uturn"}, "03320300"},
		{[]string{"-cmd", "lights", "-lights", "headlights=on,brake=off"}, "021d13"},
		{[]string{"-cmd", "config", "-material", "vinyl", "-supercode", "0"}, "03450001"},
	}
	for _, tc := range cases {
		got, err := runCapture(t, "encode", tc.args...)
		if err != nil {
			t.Fatalf("encode %v: %v", tc.args, err)
		}
		if strings.TrimSpace(got) != tc.want {
			t.Fatalf("encode %v: got %q want %q", tc.args, got, tc.want)
		}
	}
}

func TestEncodeRejectsInvalidInput(t *testing.T) {
	testlog.Start(t)
	for _, args := range [][]string{
		{"-cmd", "speed", "-speed", "40000"},
		{"-cmd", "pattern", "-start", "15"},
		{"-cmd", "pattern", "-cpm", "70"},
		{"-cmd", "turn", "-turn", "sideways"},
		{"-cmd", "warp"},
	} {
		_, err := runCapture(t, "encode", args...)
		if !errors.Is(err, protocol.ErrInvalidArgument) {
			t.Fatalf("encode %v: expected invalid argument, got %v", args, err)
		}
	}
	if _, err := runCapture(t, "encode"); err == nil {
		t.Fatalf("expected error without -cmd")
	}
}

func TestEncodeUsesConfigDefaults(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "drivectl.toml")
	if err := os.WriteFile(path, []byte("speed_mm_s = 300\naccel_mm_s2 = 500\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	got, err := runCapture(t, "encode", "-config", path, "-cmd", "speed")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.TrimSpace(got) != "06242c01f40100" {
		t.Fatalf("unexpected frame %q", got)
	}

	got, err = runCapture(t, "encode", "-config", path, "-cmd", "speed", "-speed", "0")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.TrimSpace(got) != "06240000f40100" {
		t.Fatalf("flag should override config, got %q", got)
	}
}

func TestDecodeEventsAndCommands(t *testing.T) {
	testlog.Start(t)
	got, err := runCapture(t, "decode", "03193412", "0a27 01 24 00000000 2c01 47", "06242c01f40100")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), got)
	}

	var version struct {
		Kind  string `json:"kind"`
		Tag   string `json:"tag"`
		Value struct {
			Version uint16 `json:"version"`
		} `json:"value"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &version); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if version.Kind != "event" || version.Tag != "version_response" || version.Value.Version != 0x1234 {
		t.Fatalf("unexpected version decode: %+v", version)
	}

	var pos decoded
	if err := json.Unmarshal([]byte(lines[1]), &pos); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if pos.Piece != "Straight" || pos.Tag != "localization_position_update" {
		t.Fatalf("unexpected position decode: %+v", pos)
	}

	var cmd decoded
	if err := json.Unmarshal([]byte(lines[2]), &cmd); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cmd.Kind != "command" || cmd.Tag != "set_speed" {
		t.Fatalf("unexpected command decode: %+v", cmd)
	}
}

func TestDecodeFrameReturnsCommandValue(t *testing.T) {
	testlog.Start(t)
	d, err := decodeFrame([]byte{0x06, 0x24, 0x2c, 0x01, 0xf4, 0x01, 0x00})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	speed, ok := d.Value.(command.SetSpeed)
	if !ok || speed.SpeedMMPerSec != 300 || speed.AccelMMPerSec2 != 500 {
		t.Fatalf("unexpected value: %#v", d.Value)
	}
}

func TestDecodeErrors(t *testing.T) {
	testlog.Start(t)
	if _, err := runCapture(t, "decode", "zz"); !errors.Is(err, protocol.ErrInvalidArgument) {
		t.Fatalf("expected invalid hex error, got %v", err)
	}
	if _, err := runCapture(t, "decode", "0199"); !errors.Is(err, protocol.ErrUnknownTag) {
		t.Fatalf("expected unknown tag, got %v", err)
	}
	if _, err := runCapture(t, "decode", "0519"); !errors.Is(err, protocol.ErrLengthMismatch) {
		t.Fatalf("expected length mismatch, got %v", err)
	}
}

func TestReplayContinuesPastBadFrames(t *testing.T) {
	testlog.Start(t)
	capture := strings.Join([]string{
		"# capture",
		"0117",
		"03360a00",
		"03360b00",
		"not-hex",
		"0199",
		"03",
		"",
		"0436",
	}, "\n")

	var events, records bytes.Buffer
	metrics := observability.NewMetrics("drivelink")
	summary, err := replay(strings.NewReader(capture), metrics, json.NewEncoder(&events), cbor.NewEncoder(&records))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if summary.Frames != 7 || summary.Malformed != 3 || summary.Unknown != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.ByTag["speed_update"] != 2 || summary.ByTag["ping_response"] != 1 {
		t.Fatalf("unexpected per-tag counts: %+v", summary.ByTag)
	}
	if got := strings.Count(events.String(), "\n"); got != 3 {
		t.Fatalf("expected 3 event lines, got %d", got)
	}

	dec := cbor.NewDecoder(&records)
	var tags []string
	for {
		var rec decoded
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatalf("cbor decode: %v", err)
		}
		tags = append(tags, rec.Tag)
	}
	if strings.Join(tags, ",") != "ping_response,speed_update,speed_update" {
		t.Fatalf("unexpected cbor records: %v", tags)
	}

	var out bytes.Buffer
	if err := printSummary(&out, summary); err != nil {
		t.Fatalf("print summary: %v", err)
	}
	if err := metrics.WriteText(&out); err != nil {
		t.Fatalf("write metrics: %v", err)
	}
	for _, want := range []string{
		"frames=7 malformed=3 unknown=1",
		`drivelink_codec_frames_total{direction="inbound",tag="speed_update"} 2`,
		`drivelink_codec_frame_errors_total{direction="inbound",reason="length_mismatch"} 1`,
		`drivelink_codec_frame_errors_total{direction="inbound",reason="unknown_tag"} 1`,
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q: %q", want, out.String())
		}
	}
}

func TestReplayAttributesCommandFailuresToOutbound(t *testing.T) {
	testlog.Start(t)
	capture := "03242c01\n0416\n03360a\n"
	metrics := observability.NewMetrics("drivelink")
	summary, err := replay(strings.NewReader(capture), metrics)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if summary.Malformed != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	var out bytes.Buffer
	if err := metrics.WriteText(&out); err != nil {
		t.Fatalf("write metrics: %v", err)
	}
	for _, want := range []string{
		`drivelink_codec_frame_errors_total{direction="outbound",reason="payload_size_mismatch"} 1`,
		`drivelink_codec_frame_errors_total{direction="outbound",reason="length_mismatch"} 1`,
		`drivelink_codec_frame_errors_total{direction="inbound",reason="length_mismatch"} 1`,
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("metrics missing %q: %q", want, out.String())
		}
	}
}

func TestReplayFile(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "capture.hex")
	if err := os.WriteFile(path, []byte("0117\n03360a00\n06242c01f40100\n"), 0o600); err != nil {
		t.Fatalf("write capture: %v", err)
	}
	cborPath := filepath.Join(t.TempDir(), "frames.cbor")
	got, err := runCapture(t, "replay", "-file", path, "-out", cborPath, "-metrics")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !strings.Contains(got, "frames=3 malformed=0 unknown=0") {
		t.Fatalf("unexpected replay output: %q", got)
	}
	if !strings.Contains(got, `direction="outbound",tag="set_speed"`) {
		t.Fatalf("expected outbound counter: %q", got)
	}
	if info, err := os.Stat(cborPath); err != nil || info.Size() == 0 {
		t.Fatalf("expected cbor output, stat err=%v", err)
	}
}

func TestInfoListsLinkIdentifiers(t *testing.T) {
	got, err := runCapture(t, "info")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, want := range []string{"be15beef-6186-407e-8381-0bd89c4d8df4", "skull", "0x14"} {
		if !strings.Contains(got, want) {
			t.Fatalf("info missing %q: %q", want, got)
		}
	}
}

func TestUnknownSubcommand(t *testing.T) {
	if _, err := runCapture(t, "fly"); err == nil {
		t.Fatalf("expected unknown command error")
	}
}

func TestConfigLogLevelEnablesDebug(t *testing.T) {
	testlog.Start(t)
	prevBase, prevGlobal := logging.Logger(), log.Logger
	t.Cleanup(func() {
		logging.Apply(logging.Config{Level: prevBase.GetLevel(), Timestamp: false, Out: os.Stderr})
		log.Logger = prevGlobal
	})

	var buf bytes.Buffer
	logging.Apply(logging.Config{Level: zerolog.InfoLevel, Bypass: true, Out: &buf})

	path := filepath.Join(t.TempDir(), "drivectl.toml")
	if err := os.WriteFile(path, []byte("log_level = 'debug'\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadConfig(path); err != nil {
		t.Fatalf("load config: %v", err)
	}
	if _, err := runCapture(t, "encode", "-config", path, "-cmd", "ping"); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(buf.String(), `"message":"config loaded"`) {
		t.Fatalf("expected debug config line, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), `"message":"encoded"`) {
		t.Fatalf("expected debug encode line, got %q", buf.String())
	}
}
