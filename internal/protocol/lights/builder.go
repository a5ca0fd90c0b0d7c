package lights

import (
	"fmt"

	"github.com/danmuck/drivelink/internal/logging"
	"github.com/danmuck/drivelink/internal/protocol"
	"github.com/danmuck/drivelink/internal/protocol/frame"
)

// State is the builder's capacity state.
type State int

const (
	StateBuilding State = iota
	StateFull
)

func (s State) String() string {
	if s == StateFull {
		return "full"
	}
	return "building"
}

// Builder accumulates channel configs for one LightsPattern frame.
// It is owned by a single caller and is not safe for concurrent use.
type Builder struct {
	channels [MaxChannels]ChannelConfig
	count    int
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) State() State {
	if b.count >= MaxChannels {
		return StateFull
	}
	return StateBuilding
}

// Len is the number of channels added so far.
func (b *Builder) Len() int { return b.count }

// Channels returns the accumulated configs in insertion order.
func (b *Builder) Channels() []ChannelConfig {
	out := make([]ChannelConfig, b.count)
	copy(out, b.channels[:b.count])
	return out
}

// Add validates cfg and appends it. It returns the number of payload bytes the
// channel occupies. A full builder or an invalid cfg leaves b unchanged.
func (b *Builder) Add(cfg ChannelConfig) (int, error) {
	if b.State() == StateFull {
		logging.Debugf("lights.Builder.Add rejected state=full channel=%s", cfg.Channel)
		return 0, fmt.Errorf("%w: %d channels already added", protocol.ErrFull, b.count)
	}
	if err := cfg.Validate(); err != nil {
		logging.Debugf("lights.Builder.Add invalid config=%s err=%v", cfg, err)
		return 0, err
	}
	b.channels[b.count] = cfg
	b.count++
	return ChannelConfigSize, nil
}

// Finalize encodes the LightsPattern frame. Zero channels is a legal, empty
// pattern.
func (b *Builder) Finalize() frame.Envelope {
	payload := make([]byte, 0, 1+MaxChannels*ChannelConfigSize)
	payload = append(payload, uint8(b.count))
	for _, cfg := range b.channels[:b.count] {
		block := cfg.bytes()
		payload = append(payload, block[:]...)
	}
	// at most 16 payload bytes, always fits
	env, _ := frame.Build(protocol.TagLightsPattern, payload)
	return env
}

// SingleChannelPattern builds a one-channel pattern frame. The rate is given
// in cycles per minute; see NewChannelConfig.
func SingleChannelPattern(channel Channel, effect Effect, start, end uint8, cyclesPerMin uint16) (frame.Envelope, error) {
	cfg, err := NewChannelConfig(channel, effect, start, end, cyclesPerMin)
	if err != nil {
		return frame.Envelope{}, err
	}
	b := NewBuilder()
	if _, err := b.Add(cfg); err != nil {
		return frame.Envelope{}, err
	}
	return b.Finalize(), nil
}

// EngineColor drives the RGB engine light with one three-channel pattern.
// Throb and flash ramp each channel up from zero, fade ramps down to zero,
// and steady or random hold the value.
func EngineColor(r, g, b uint8, effect Effect, cyclesPerMin uint16) (frame.Envelope, error) {
	builder := NewBuilder()
	for _, c := range []struct {
		channel Channel
		value   uint8
	}{
		{ChannelRed, r},
		{ChannelGreen, g},
		{ChannelBlue, b},
	} {
		var cfg ChannelConfig
		var err error
		switch effect {
		case EffectThrob, EffectFlash:
			cfg, err = NewChannelConfig(c.channel, effect, 0, c.value, cyclesPerMin)
		case EffectFade:
			cfg, err = NewChannelConfig(c.channel, effect, c.value, 0, cyclesPerMin)
		default:
			cfg, err = NewChannelConfig(c.channel, effect, c.value, c.value, 0)
		}
		if err != nil {
			return frame.Envelope{}, err
		}
		if _, err := builder.Add(cfg); err != nil {
			return frame.Envelope{}, err
		}
	}
	return builder.Finalize(), nil
}

// ParsePattern decodes a LightsPattern payload back into channel configs.
func ParsePattern(payload []byte) ([]ChannelConfig, error) {
	r := frame.NewReader(payload)
	count, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	if err := protocol.CheckRange("channel_count", int(count), MaxChannels); err != nil {
		return nil, err
	}
	out := make([]ChannelConfig, 0, count)
	for i := 0; i < int(count); i++ {
		var block [ChannelConfigSize]uint8
		for j := range block {
			if block[j], err = r.Uint8(); err != nil {
				return nil, err
			}
		}
		out = append(out, ChannelConfig{
			Channel:      Channel(block[0]),
			Effect:       Effect(block[1]),
			Start:        block[2],
			End:          block[3],
			CyclesPer10s: block[4],
		})
	}
	return out, nil
}
