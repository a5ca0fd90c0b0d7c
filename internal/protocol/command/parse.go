package command

import (
	"fmt"

	"github.com/danmuck/drivelink/internal/logging"
	"github.com/danmuck/drivelink/internal/protocol"
	"github.com/danmuck/drivelink/internal/protocol/frame"
	"github.com/danmuck/drivelink/internal/protocol/lights"
)

// Parse decodes one host -> vehicle frame. Event tags and unknown tags fail
// with protocol.ErrUnknownTag.
func Parse(b []byte) (Command, error) {
	env, err := frame.Parse(b)
	if err != nil {
		return nil, err
	}
	return ParseEnvelope(env)
}

func ParseEnvelope(env frame.Envelope) (Command, error) {
	r := frame.NewReader(env.Payload())
	switch env.Tag() {
	case protocol.TagDisconnect:
		return Disconnect{}, nil
	case protocol.TagPingRequest:
		return Ping{}, nil
	case protocol.TagVersionRequest:
		return VersionRequest{}, nil
	case protocol.TagBatteryLevelRequest:
		return BatteryLevelRequest{}, nil
	case protocol.TagCancelLaneChange:
		return CancelLaneChange{}, nil
	case protocol.TagSetSDKMode:
		on, err := r.Bool()
		if err != nil {
			return nil, err
		}
		flags, err := r.Uint8()
		if err != nil {
			return nil, err
		}
		return SetSDKMode{On: on, Flags: SDKFlags(flags)}, nil
	case protocol.TagSetSpeed:
		return parseSetSpeed(r)
	case protocol.TagSetOffsetFromRoadCenter:
		offset, err := r.Float32()
		if err != nil {
			return nil, err
		}
		return SetOffsetFromRoadCenter{OffsetMM: offset}, nil
	case protocol.TagChangeLane:
		return parseChangeLane(r)
	case protocol.TagSetLights:
		mask, err := r.Uint8()
		if err != nil {
			return nil, err
		}
		return SetLights{Mask: LightMask(mask)}, nil
	case protocol.TagLightsPattern:
		channels, err := lights.ParsePattern(env.Payload())
		if err != nil {
			return nil, err
		}
		return LightsPattern{Channels: channels}, nil
	case protocol.TagTurn:
		typ, err := r.Uint8()
		if err != nil {
			return nil, err
		}
		trigger, err := r.Uint8()
		if err != nil {
			return nil, err
		}
		return Turn{Type: TurnType(typ), Trigger: TurnTrigger(trigger)}, nil
	case protocol.TagSetConfigParams:
		mask, err := r.Uint8()
		if err != nil {
			return nil, err
		}
		material, err := r.Uint8()
		if err != nil {
			return nil, err
		}
		return SetConfigParams{SuperCodeMask: SuperCode(mask), TrackMaterial: TrackMaterial(material)}, nil
	default:
		logging.Debugf("command.Parse unknown tag=%s", env.Tag())
		return nil, fmt.Errorf("%w: %s", protocol.ErrUnknownTag, env.Tag())
	}
}

func parseSetSpeed(r *frame.Reader) (Command, error) {
	speed, err := r.Int16()
	if err != nil {
		return nil, err
	}
	accel, err := r.Int16()
	if err != nil {
		return nil, err
	}
	if err := r.Skip(1); err != nil {
		return nil, err
	}
	return SetSpeed{SpeedMMPerSec: speed, AccelMMPerSec2: accel}, nil
}

func parseChangeLane(r *frame.Reader) (Command, error) {
	var (
		c   ChangeLane
		err error
	)
	if c.HorizontalSpeedMMPerSec, err = r.Uint16(); err != nil {
		return nil, err
	}
	if c.HorizontalAccelMMPerSec2, err = r.Uint16(); err != nil {
		return nil, err
	}
	if c.OffsetMM, err = r.Float32(); err != nil {
		return nil, err
	}
	if c.HopIntent, err = r.Uint8(); err != nil {
		return nil, err
	}
	if c.LaneTag, err = r.Uint8(); err != nil {
		return nil, err
	}
	return c, nil
}
