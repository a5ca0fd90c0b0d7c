package command

import (
	"fmt"

	"github.com/danmuck/drivelink/internal/protocol"
	"github.com/danmuck/drivelink/internal/protocol/frame"
)

// Light is one of the simple on/off lights addressed by SetLights.
type Light uint8

const (
	LightHeadlights  Light = 0
	LightBrakelights Light = 1
	LightFrontlights Light = 2
	LightEngine      Light = 3
)

// LightMask holds a "valid" bit per light in the low nibble and the desired
// value in the high nibble. Lights without a valid bit are left as they are.
type LightMask uint8

// With marks l as valid and sets its value.
func (m LightMask) With(l Light, on bool) LightMask {
	m |= 1 << l
	if on {
		m |= 1 << (4 + l)
	} else {
		m &^= 1 << (4 + l)
	}
	return m
}

// Has reports whether l is valid in the mask and, if so, its value.
func (m LightMask) Has(l Light) (valid, on bool) {
	return m&(1<<l) != 0, m&(1<<(4+l)) != 0
}

type SetLights struct {
	Mask LightMask
}

func (SetLights) Tag() protocol.Tag { return protocol.TagSetLights }

func (c SetLights) Encode() (frame.Envelope, error) {
	env := frame.New(c.Tag())
	if err := env.AppendUint8(uint8(c.Mask)); err != nil {
		return frame.Envelope{}, err
	}
	return env, nil
}

type TurnType uint8

const (
	TurnNone TurnType = iota
	TurnLeft
	TurnRight
	TurnUTurn
	TurnUTurnJump
)

// TurnTrigger selects when a turn runs. Current firmware only acts on
// TriggerImmediate; TriggerIntersection is still encoded as given.
type TurnTrigger uint8

const (
	TriggerImmediate TurnTrigger = iota
	TriggerIntersection
)

// Turn requests a turn. The zero value is a no-op turn.
type Turn struct {
	Type    TurnType
	Trigger TurnTrigger
}

// Turn180 is an immediate u-turn.
func Turn180() Turn {
	return Turn{Type: TurnUTurn, Trigger: TriggerImmediate}
}

func (Turn) Tag() protocol.Tag { return protocol.TagTurn }

func (c Turn) Encode() (frame.Envelope, error) {
	if err := protocol.CheckRange("turn_type", int(c.Type), int(TurnUTurnJump)); err != nil {
		return frame.Envelope{}, err
	}
	if err := protocol.CheckRange("turn_trigger", int(c.Trigger), int(TriggerIntersection)); err != nil {
		return frame.Envelope{}, err
	}
	env := frame.New(c.Tag())
	if err := env.AppendUint8(uint8(c.Type)); err != nil {
		return frame.Envelope{}, err
	}
	if err := env.AppendUint8(uint8(c.Trigger)); err != nil {
		return frame.Envelope{}, err
	}
	return env, nil
}

type TrackMaterial uint8

const (
	TrackPlastic TrackMaterial = iota
	TrackVinyl
)

// SuperCode is a bitmask of track codes the vehicle should parse.
type SuperCode uint8

const (
	SuperCodeNone      SuperCode = 0
	SuperCodeBoostJump SuperCode = 1
	SuperCodeAll                 = SuperCodeBoostJump
)

type SetConfigParams struct {
	SuperCodeMask SuperCode
	TrackMaterial TrackMaterial
}

func (SetConfigParams) Tag() protocol.Tag { return protocol.TagSetConfigParams }

func (c SetConfigParams) Encode() (frame.Envelope, error) {
	if err := protocol.CheckRange("track_material", int(c.TrackMaterial), int(TrackVinyl)); err != nil {
		return frame.Envelope{}, err
	}
	env := frame.New(c.Tag())
	if err := env.AppendUint8(uint8(c.SuperCodeMask)); err != nil {
		return frame.Envelope{}, err
	}
	if err := env.AppendUint8(uint8(c.TrackMaterial)); err != nil {
		return frame.Envelope{}, err
	}
	return env, nil
}

// ParseTurnType maps a CLI/config name to a TurnType.
func ParseTurnType(name string) (TurnType, error) {
	switch name {
	case "none", "":
		return TurnNone, nil
	case "left":
		return TurnLeft, nil
	case "right":
		return TurnRight, nil
	case "uturn":
		return TurnUTurn, nil
	case "uturn_jump":
		return TurnUTurnJump, nil
	default:
		return 0, fmt.Errorf("%w: unknown turn type %q", protocol.ErrInvalidArgument, name)
	}
}
