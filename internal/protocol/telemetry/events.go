package telemetry

import (
	"github.com/danmuck/drivelink/internal/protocol"
	"github.com/danmuck/drivelink/internal/protocol/frame"
)

// Event is one decoded vehicle -> host message.
type Event interface {
	Tag() protocol.Tag
	encode(env *frame.Envelope) error
}

type PingResponse struct{}

func (PingResponse) Tag() protocol.Tag { return protocol.TagPingResponse }

func (PingResponse) encode(*frame.Envelope) error { return nil }

type VersionResponse struct {
	Version uint16 `json:"version"`
}

func (VersionResponse) Tag() protocol.Tag { return protocol.TagVersionResponse }

func (e VersionResponse) encode(env *frame.Envelope) error {
	return env.AppendUint16(e.Version)
}

type BatteryLevelResponse struct {
	BatteryLevel uint16 `json:"battery_level"`
}

func (BatteryLevelResponse) Tag() protocol.Tag { return protocol.TagBatteryLevelResponse }

func (e BatteryLevelResponse) encode(env *frame.Envelope) error {
	return env.AppendUint16(e.BatteryLevel)
}

type SpeedUpdate struct {
	SpeedMMPerSec uint16 `json:"speed_mm_s"`
}

func (SpeedUpdate) Tag() protocol.Tag { return protocol.TagSpeedUpdate }

func (e SpeedUpdate) encode(env *frame.Envelope) error {
	return env.AppendUint16(e.SpeedMMPerSec)
}

// StatusUpdate follows a reserved byte on the wire.
type StatusUpdate struct {
	OnCharger   bool `json:"on_charger"`
	BatteryLow  bool `json:"battery_low"`
	BatteryFull bool `json:"battery_full"`
}

func (StatusUpdate) Tag() protocol.Tag { return protocol.TagStatusUpdate }

func (e StatusUpdate) encode(env *frame.Envelope) error {
	return appendAll(
		env.AppendUint8(0),
		env.AppendBool(e.OnCharger),
		env.AppendBool(e.BatteryLow),
		env.AppendBool(e.BatteryFull),
	)
}

// PositionClockwise is the parsing-flags value a vehicle reports while
// driving clockwise. Any other value means counter-clockwise.
const PositionClockwise uint8 = 0x47

// LocalizationPositionUpdate is sent as the vehicle reads track codes.
// IsClockwise is derived from ParsingFlags; the raw byte is kept.
type LocalizationPositionUpdate struct {
	LocationID    uint8   `json:"location_id"`
	RoadPieceID   uint8   `json:"road_piece_id"`
	OffsetMM      float32 `json:"offset_mm"`
	SpeedMMPerSec uint16  `json:"speed_mm_s"`
	IsClockwise   bool    `json:"is_clockwise"`
	ParsingFlags  uint8   `json:"parsing_flags"`
}

func (LocalizationPositionUpdate) Tag() protocol.Tag { return protocol.TagLocalizationPositionUpdate }

func (e LocalizationPositionUpdate) encode(env *frame.Envelope) error {
	flags := e.ParsingFlags
	switch {
	case e.IsClockwise:
		flags = PositionClockwise
	case flags == PositionClockwise:
		flags = 0
	}
	return appendAll(
		env.AppendUint8(e.LocationID),
		env.AppendUint8(e.RoadPieceID),
		env.AppendFloat32(e.OffsetMM),
		env.AppendUint16(e.SpeedMMPerSec),
		env.AppendUint8(flags),
	)
}

// LocalizationTransitionUpdate is sent when the vehicle moves onto a new
// road piece.
type LocalizationTransitionUpdate struct {
	RoadPieceIndex uint8   `json:"road_piece_index"`
	OffsetMM       float32 `json:"offset_mm"`
	IsClockwise    bool    `json:"is_clockwise"`
}

func (LocalizationTransitionUpdate) Tag() protocol.Tag {
	return protocol.TagLocalizationTransitionUpdate
}

func (e LocalizationTransitionUpdate) encode(env *frame.Envelope) error {
	return appendAll(
		env.AppendUint8(e.RoadPieceIndex),
		env.AppendFloat32(e.OffsetMM),
		env.AppendBool(e.IsClockwise),
	)
}

type OffsetFromRoadCenterUpdate struct {
	OffsetMM     float32 `json:"offset_mm"`
	LaneChangeID uint8   `json:"lane_change_id"`
}

func (OffsetFromRoadCenterUpdate) Tag() protocol.Tag { return protocol.TagOffsetFromRoadCenterUpdate }

func (e OffsetFromRoadCenterUpdate) encode(env *frame.Envelope) error {
	return appendAll(
		env.AppendFloat32(e.OffsetMM),
		env.AppendUint8(e.LaneChangeID),
	)
}

// RawEvent carries tags whose payload layout is vendor-defined. The payload
// is kept as received.
type RawEvent struct {
	EventTag protocol.Tag `json:"tag"`
	Payload  []byte       `json:"payload"`
}

func (e RawEvent) Tag() protocol.Tag { return e.EventTag }

func (e RawEvent) encode(env *frame.Envelope) error {
	_, err := env.Append(e.Payload)
	return err
}

func appendAll(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
