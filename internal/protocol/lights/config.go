package lights

import (
	"fmt"

	"github.com/danmuck/drivelink/internal/protocol"
)

const (
	MaxIntensity    = 14
	MaxCyclesPer10s = 11
	MaxChannels     = 3

	// ChannelConfigSize is the wire width of one channel block.
	ChannelConfigSize = 5
)

// Channel is one LED output on the vehicle.
type Channel uint8

const (
	ChannelRed Channel = iota
	ChannelTail
	ChannelBlue
	ChannelGreen
	ChannelFrontLeft
	ChannelFrontRight
	channelCount
)

var channelNames = [...]string{"red", "tail", "blue", "green", "front_left", "front_right"}

func (c Channel) String() string {
	if c < channelCount {
		return channelNames[c]
	}
	return fmt.Sprintf("channel(%d)", uint8(c))
}

// Effect is an intensity-over-time animation.
type Effect uint8

const (
	EffectSteady Effect = iota // hold start intensity
	EffectFade                 // start -> end
	EffectThrob                // start -> end -> start
	EffectFlash                // on between start and end
	EffectRandom               // erratic, ignores start/end
	effectCount
)

var effectNames = [...]string{"steady", "fade", "throb", "flash", "random"}

func (e Effect) String() string {
	if e < effectCount {
		return effectNames[e]
	}
	return fmt.Sprintf("effect(%d)", uint8(e))
}

// ParseChannel maps a channel name to its value.
func ParseChannel(name string) (Channel, error) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown light channel %q", protocol.ErrInvalidArgument, name)
}

// ParseEffect maps an effect name to its value.
func ParseEffect(name string) (Effect, error) {
	for i, n := range effectNames {
		if n == name {
			return Effect(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown light effect %q", protocol.ErrInvalidArgument, name)
}

// ChannelConfig is one channel's animation.
type ChannelConfig struct {
	Channel      Channel
	Effect       Effect
	Start        uint8
	End          uint8
	CyclesPer10s uint8
}

// NewChannelConfig builds a config from a rate in cycles per minute. The wire
// carries cycles per 10 seconds, rounded half up; a rate that rounds above
// MaxCyclesPer10s is rejected.
func NewChannelConfig(channel Channel, effect Effect, start, end uint8, cyclesPerMin uint16) (ChannelConfig, error) {
	per10s := CyclesPer10s(cyclesPerMin)
	if err := protocol.CheckRange("cycles_per_10s", per10s, MaxCyclesPer10s); err != nil {
		return ChannelConfig{}, err
	}
	cfg := ChannelConfig{
		Channel:      channel,
		Effect:       effect,
		Start:        start,
		End:          end,
		CyclesPer10s: uint8(per10s),
	}
	if err := cfg.Validate(); err != nil {
		return ChannelConfig{}, err
	}
	return cfg, nil
}

// CyclesPer10s converts cycles per minute to cycles per 10 seconds,
// rounding half up.
func CyclesPer10s(cyclesPerMin uint16) int {
	return (int(cyclesPerMin) + 3) / 6
}

func (c ChannelConfig) Validate() error {
	if err := protocol.CheckRange("channel", int(c.Channel), int(channelCount)-1); err != nil {
		return err
	}
	if err := protocol.CheckRange("effect", int(c.Effect), int(effectCount)-1); err != nil {
		return err
	}
	if err := protocol.CheckRange("start", int(c.Start), MaxIntensity); err != nil {
		return err
	}
	if err := protocol.CheckRange("end", int(c.End), MaxIntensity); err != nil {
		return err
	}
	return protocol.CheckRange("cycles_per_10s", int(c.CyclesPer10s), MaxCyclesPer10s)
}

func (c ChannelConfig) bytes() [ChannelConfigSize]byte {
	return [ChannelConfigSize]byte{uint8(c.Channel), uint8(c.Effect), c.Start, c.End, c.CyclesPer10s}
}

func (c ChannelConfig) String() string {
	return fmt.Sprintf("%s/%s %d->%d @%d/10s", c.Channel, c.Effect, c.Start, c.End, c.CyclesPer10s)
}
