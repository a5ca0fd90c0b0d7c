package command

import (
	"fmt"

	"github.com/danmuck/drivelink/internal/logging"
	"github.com/danmuck/drivelink/internal/protocol"
	"github.com/danmuck/drivelink/internal/protocol/frame"
	"github.com/danmuck/drivelink/internal/protocol/lights"
)

// Command is one host -> vehicle message.
type Command interface {
	Tag() protocol.Tag
	Encode() (frame.Envelope, error)
}

// Encode returns the wire bytes for c.
func Encode(c Command) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil command", protocol.ErrInvalidArgument)
	}
	env, err := c.Encode()
	if err != nil {
		logging.Debugf("command.Encode tag=%s err=%v", c.Tag(), err)
		return nil, err
	}
	logging.Tracef("command.Encode tag=%s len=%d", c.Tag(), env.Len())
	return env.Bytes(), nil
}

type Disconnect struct{}

func (Disconnect) Tag() protocol.Tag { return protocol.TagDisconnect }
func (c Disconnect) Encode() (frame.Envelope, error) { return frame.New(c.Tag()), nil }

type Ping struct{}

func (Ping) Tag() protocol.Tag { return protocol.TagPingRequest }
func (c Ping) Encode() (frame.Envelope, error) { return frame.New(c.Tag()), nil }

type VersionRequest struct{}

func (VersionRequest) Tag() protocol.Tag { return protocol.TagVersionRequest }
func (c VersionRequest) Encode() (frame.Envelope, error) { return frame.New(c.Tag()), nil }

type BatteryLevelRequest struct{}

func (BatteryLevelRequest) Tag() protocol.Tag { return protocol.TagBatteryLevelRequest }
func (c BatteryLevelRequest) Encode() (frame.Envelope, error) { return frame.New(c.Tag()), nil }

type CancelLaneChange struct{}

func (CancelLaneChange) Tag() protocol.Tag { return protocol.TagCancelLaneChange }
func (c CancelLaneChange) Encode() (frame.Envelope, error) { return frame.New(c.Tag()), nil }

// SDKFlags are option bits applied while SDK mode is on.
type SDKFlags uint8

const (
	// SDKOverrideLocalization must be set for SetSpeed and ChangeLane to take
	// effect.
	SDKOverrideLocalization SDKFlags = 0x01
)

// SetSDKMode switches the vehicle between autonomous and externally driven
// operation.
type SetSDKMode struct {
	On    bool
	Flags SDKFlags
}

func (SetSDKMode) Tag() protocol.Tag { return protocol.TagSetSDKMode }

func (c SetSDKMode) Encode() (frame.Envelope, error) {
	env := frame.New(c.Tag())
	if err := env.AppendBool(c.On); err != nil {
		return frame.Envelope{}, err
	}
	if err := env.AppendUint8(uint8(c.Flags)); err != nil {
		return frame.Envelope{}, err
	}
	return env, nil
}

// SetSpeed requests a target speed. A reserved zero byte follows the two
// fields.
type SetSpeed struct {
	SpeedMMPerSec  int16
	AccelMMPerSec2 int16
}

func (SetSpeed) Tag() protocol.Tag { return protocol.TagSetSpeed }

func (c SetSpeed) Encode() (frame.Envelope, error) {
	env := frame.New(c.Tag())
	for _, err := range []error{
		env.AppendInt16(c.SpeedMMPerSec),
		env.AppendInt16(c.AccelMMPerSec2),
		env.AppendUint8(0),
	} {
		if err != nil {
			return frame.Envelope{}, err
		}
	}
	return env, nil
}

// SetOffsetFromRoadCenter sets the vehicle's notion of its current offset.
// Sending zero before a ChangeLane makes the lane change relative.
type SetOffsetFromRoadCenter struct {
	OffsetMM float32
}

func (SetOffsetFromRoadCenter) Tag() protocol.Tag { return protocol.TagSetOffsetFromRoadCenter }

func (c SetOffsetFromRoadCenter) Encode() (frame.Envelope, error) {
	env := frame.New(c.Tag())
	if err := env.AppendFloat32(c.OffsetMM); err != nil {
		return frame.Envelope{}, err
	}
	return env, nil
}

// ChangeLane moves the vehicle to OffsetMM from the road center. The vehicle
// must be moving.
type ChangeLane struct {
	HorizontalSpeedMMPerSec  uint16
	HorizontalAccelMMPerSec2 uint16
	OffsetMM                 float32
	HopIntent                uint8
	LaneTag                  uint8
}

func (ChangeLane) Tag() protocol.Tag { return protocol.TagChangeLane }

func (c ChangeLane) Encode() (frame.Envelope, error) {
	env := frame.New(c.Tag())
	for _, err := range []error{
		env.AppendUint16(c.HorizontalSpeedMMPerSec),
		env.AppendUint16(c.HorizontalAccelMMPerSec2),
		env.AppendFloat32(c.OffsetMM),
		env.AppendUint8(c.HopIntent),
		env.AppendUint8(c.LaneTag),
	} {
		if err != nil {
			return frame.Envelope{}, err
		}
	}
	return env, nil
}

// LightsPattern carries up to lights.MaxChannels channel animations.
type LightsPattern struct {
	Channels []lights.ChannelConfig
}

func (LightsPattern) Tag() protocol.Tag { return protocol.TagLightsPattern }

func (c LightsPattern) Encode() (frame.Envelope, error) {
	b := lights.NewBuilder()
	for _, cfg := range c.Channels {
		if _, err := b.Add(cfg); err != nil {
			return frame.Envelope{}, err
		}
	}
	return b.Finalize(), nil
}
