package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/danmuck/drivelink/internal/config"
	"github.com/danmuck/drivelink/internal/protocol"
	"github.com/danmuck/drivelink/internal/protocol/command"
	"github.com/danmuck/drivelink/internal/protocol/frame"
	"github.com/danmuck/drivelink/internal/protocol/lights"
	"github.com/rs/zerolog/log"
)

type encodeOptions struct {
	configPath string
	cmd        string

	speed     int
	accel     int
	laneSpeed int
	laneAccel int
	offset    float64
	hop       int
	laneTag   int

	sdkOn    bool
	sdkFlags int

	lights string

	channel string
	effect  string
	start   int
	end     int
	cpm     int
	rgb     string

	turn      string
	trigger   string
	material  string
	superCode int
}

func parseEncodeFlags(args []string) (encodeOptions, error) {
	defaults := config.DefaultDriveConfig()
	var opts encodeOptions
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "drivectl TOML config supplying defaults")
	fs.StringVar(&opts.cmd, "cmd", "", "command: speed|lane|offset|sdk|lights|pattern|engine|turn|uturn|config|ping|version|battery|cancel-lane|disconnect")
	fs.IntVar(&opts.speed, "speed", int(defaults.SpeedMMPerSec), "speed in mm/s")
	fs.IntVar(&opts.accel, "accel", int(defaults.AccelMMPerSec2), "acceleration in mm/s^2")
	fs.IntVar(&opts.laneSpeed, "lane-speed", int(defaults.LaneSpeedMMPerSec), "lane change horizontal speed in mm/s")
	fs.IntVar(&opts.laneAccel, "lane-accel", int(defaults.LaneAccelMMPerSec2), "lane change horizontal acceleration in mm/s^2")
	fs.Float64Var(&opts.offset, "offset", 0, "offset from road center in mm")
	fs.IntVar(&opts.hop, "hop", 0, "lane change hop intent")
	fs.IntVar(&opts.laneTag, "lane-tag", 0, "lane change tag")
	fs.BoolVar(&opts.sdkOn, "on", true, "sdk mode on/off")
	fs.IntVar(&opts.sdkFlags, "flags", int(defaults.SDKFlags), "sdk mode flags")
	fs.StringVar(&opts.lights, "lights", "", "light states, e.g. headlights=on,brake=off")
	fs.StringVar(&opts.channel, "channel", "red", "pattern channel")
	fs.StringVar(&opts.effect, "effect", "steady", "pattern effect")
	fs.IntVar(&opts.start, "start", 0, "pattern start intensity (0-14)")
	fs.IntVar(&opts.end, "end", lights.MaxIntensity, "pattern end intensity (0-14)")
	fs.IntVar(&opts.cpm, "cpm", 0, "pattern cycles per minute")
	fs.StringVar(&opts.rgb, "rgb", "0,0,0", "engine color r,g,b (each 0-14)")
	fs.StringVar(&opts.turn, "turn", "uturn", "turn type: none|left|right|uturn|uturn_jump")
	fs.StringVar(&opts.trigger, "trigger", "immediate", "turn trigger: immediate|intersection")
	fs.StringVar(&opts.material, "material", defaults.TrackMaterial, "track material: plastic|vinyl")
	fs.IntVar(&opts.superCode, "supercode", int(command.SuperCodeAll), "super code parse mask")
	if err := fs.Parse(args); err != nil {
		return encodeOptions{}, err
	}
	if opts.cmd == "" {
		return encodeOptions{}, fmt.Errorf("encode requires -cmd")
	}
	if opts.configPath == "" {
		return opts, nil
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return encodeOptions{}, err
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	applyConfigDefaults(&opts, cfg, set)
	return opts, nil
}

// applyConfigDefaults fills every flag the caller did not set from cfg.
func applyConfigDefaults(opts *encodeOptions, cfg config.DriveConfig, set map[string]bool) {
	if !set["speed"] {
		opts.speed = int(cfg.SpeedMMPerSec)
	}
	if !set["accel"] {
		opts.accel = int(cfg.AccelMMPerSec2)
	}
	if !set["lane-speed"] {
		opts.laneSpeed = int(cfg.LaneSpeedMMPerSec)
	}
	if !set["lane-accel"] {
		opts.laneAccel = int(cfg.LaneAccelMMPerSec2)
	}
	if !set["flags"] {
		opts.sdkFlags = int(cfg.SDKFlags)
	}
	if !set["material"] {
		opts.material = cfg.TrackMaterial
	}
}

func runEncode(args []string, out io.Writer) error {
	opts, err := parseEncodeFlags(args)
	if err != nil {
		return err
	}
	env, err := encodeFrame(opts)
	if err != nil {
		return fmt.Errorf("encode %s: %w", opts.cmd, err)
	}
	log.Debug().Str("cmd", opts.cmd).Stringer("frame", env).Msg("encoded")
	_, err = fmt.Fprintln(out, hex.EncodeToString(env.Bytes()))
	return err
}

func encodeFrame(opts encodeOptions) (frame.Envelope, error) {
	if opts.cmd == "engine" {
		r, g, b, err := parseRGB(opts.rgb)
		if err != nil {
			return frame.Envelope{}, err
		}
		effect, err := lights.ParseEffect(opts.effect)
		if err != nil {
			return frame.Envelope{}, err
		}
		cpm, err := checkedUint16("cpm", opts.cpm)
		if err != nil {
			return frame.Envelope{}, err
		}
		return lights.EngineColor(r, g, b, effect, cpm)
	}
	cmd, err := buildCommand(opts)
	if err != nil {
		return frame.Envelope{}, err
	}
	return cmd.Encode()
}

func buildCommand(opts encodeOptions) (command.Command, error) {
	switch opts.cmd {
	case "ping":
		return command.Ping{}, nil
	case "version":
		return command.VersionRequest{}, nil
	case "battery":
		return command.BatteryLevelRequest{}, nil
	case "cancel-lane":
		return command.CancelLaneChange{}, nil
	case "disconnect":
		return command.Disconnect{}, nil
	case "uturn":
		return command.Turn180(), nil
	case "sdk":
		flags, err := checkedUint8("flags", opts.sdkFlags)
		if err != nil {
			return nil, err
		}
		return command.SetSDKMode{On: opts.sdkOn, Flags: command.SDKFlags(flags)}, nil
	case "speed":
		speed, err := checkedInt16("speed", opts.speed)
		if err != nil {
			return nil, err
		}
		accel, err := checkedInt16("accel", opts.accel)
		if err != nil {
			return nil, err
		}
		return command.SetSpeed{SpeedMMPerSec: speed, AccelMMPerSec2: accel}, nil
	case "offset":
		return command.SetOffsetFromRoadCenter{OffsetMM: float32(opts.offset)}, nil
	case "lane":
		return buildChangeLane(opts)
	case "lights":
		mask, err := parseLightMask(opts.lights)
		if err != nil {
			return nil, err
		}
		return command.SetLights{Mask: mask}, nil
	case "pattern":
		cfg, err := buildChannel(opts)
		if err != nil {
			return nil, err
		}
		return command.LightsPattern{Channels: []lights.ChannelConfig{cfg}}, nil
	case "turn":
		turnType, err := command.ParseTurnType(opts.turn)
		if err != nil {
			return nil, err
		}
		trigger, err := parseTrigger(opts.trigger)
		if err != nil {
			return nil, err
		}
		return command.Turn{Type: turnType, Trigger: trigger}, nil
	case "config":
		material, err := config.DriveConfig{TrackMaterial: opts.material}.Material()
		if err != nil {
			return nil, err
		}
		code, err := checkedUint8("supercode", opts.superCode)
		if err != nil {
			return nil, err
		}
		return command.SetConfigParams{SuperCodeMask: command.SuperCode(code), TrackMaterial: material}, nil
	default:
		return nil, fmt.Errorf("%w: unknown command %q", protocol.ErrInvalidArgument, opts.cmd)
	}
}

func buildChangeLane(opts encodeOptions) (command.Command, error) {
	hSpeed, err := checkedUint16("lane-speed", opts.laneSpeed)
	if err != nil {
		return nil, err
	}
	hAccel, err := checkedUint16("lane-accel", opts.laneAccel)
	if err != nil {
		return nil, err
	}
	hop, err := checkedUint8("hop", opts.hop)
	if err != nil {
		return nil, err
	}
	tag, err := checkedUint8("lane-tag", opts.laneTag)
	if err != nil {
		return nil, err
	}
	return command.ChangeLane{
		HorizontalSpeedMMPerSec:  hSpeed,
		HorizontalAccelMMPerSec2: hAccel,
		OffsetMM:                 float32(opts.offset),
		HopIntent:                hop,
		LaneTag:                  tag,
	}, nil
}

func buildChannel(opts encodeOptions) (lights.ChannelConfig, error) {
	channel, err := lights.ParseChannel(opts.channel)
	if err != nil {
		return lights.ChannelConfig{}, err
	}
	effect, err := lights.ParseEffect(opts.effect)
	if err != nil {
		return lights.ChannelConfig{}, err
	}
	start, err := checkedUint8("start", opts.start)
	if err != nil {
		return lights.ChannelConfig{}, err
	}
	end, err := checkedUint8("end", opts.end)
	if err != nil {
		return lights.ChannelConfig{}, err
	}
	cpm, err := checkedUint16("cpm", opts.cpm)
	if err != nil {
		return lights.ChannelConfig{}, err
	}
	return lights.NewChannelConfig(channel, effect, start, end, cpm)
}

var lightNames = map[string]command.Light{
	"headlights":  command.LightHeadlights,
	"brake":       command.LightBrakelights,
	"brakelights": command.LightBrakelights,
	"front":       command.LightFrontlights,
	"frontlights": command.LightFrontlights,
	"engine":      command.LightEngine,
}

// parseLightMask reads "name=on|off" pairs separated by commas.
func parseLightMask(raw string) (command.LightMask, error) {
	var mask command.LightMask
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, state, ok := strings.Cut(part, "=")
		if !ok {
			return 0, fmt.Errorf("%w: light %q missing =on|off", protocol.ErrInvalidArgument, part)
		}
		light, ok := lightNames[strings.TrimSpace(name)]
		if !ok {
			return 0, fmt.Errorf("%w: unknown light %q", protocol.ErrInvalidArgument, name)
		}
		switch strings.TrimSpace(state) {
		case "on":
			mask = mask.With(light, true)
		case "off":
			mask = mask.With(light, false)
		default:
			return 0, fmt.Errorf("%w: light %s state %q", protocol.ErrInvalidArgument, name, state)
		}
	}
	return mask, nil
}

func parseTrigger(raw string) (command.TurnTrigger, error) {
	switch raw {
	case "immediate", "":
		return command.TriggerImmediate, nil
	case "intersection":
		return command.TriggerIntersection, nil
	default:
		return 0, fmt.Errorf("%w: unknown turn trigger %q", protocol.ErrInvalidArgument, raw)
	}
}

func parseRGB(raw string) (r, g, b uint8, err error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: rgb %q needs three values", protocol.ErrInvalidArgument, raw)
	}
	var vals [3]uint8
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: rgb %q: %v", protocol.ErrInvalidArgument, raw, err)
		}
		if vals[i], err = checkedUint8("rgb", n); err != nil {
			return 0, 0, 0, err
		}
	}
	return vals[0], vals[1], vals[2], nil
}

func checkedUint8(field string, v int) (uint8, error) {
	if err := protocol.CheckRange(field, v, 0xff); err != nil {
		return 0, err
	}
	return uint8(v), nil
}

func checkedUint16(field string, v int) (uint16, error) {
	if err := protocol.CheckRange(field, v, 0xffff); err != nil {
		return 0, err
	}
	return uint16(v), nil
}

func checkedInt16(field string, v int) (int16, error) {
	if v < -0x8000 || v > 0x7fff {
		return 0, &protocol.ArgumentError{Field: field, Value: v, Max: 0x7fff}
	}
	return int16(v), nil
}
