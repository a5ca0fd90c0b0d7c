package telemetry

import (
	"fmt"

	"github.com/danmuck/drivelink/internal/logging"
	"github.com/danmuck/drivelink/internal/protocol"
	"github.com/danmuck/drivelink/internal/protocol/frame"
)

// Decode parses exactly one frame and decodes its event.
func Decode(b []byte) (Event, error) {
	env, err := frame.Parse(b)
	if err != nil {
		return nil, err
	}
	return DecodeEnvelope(env)
}

// DecodeEnvelope decodes the event carried by env. A payload longer than the
// record's fixed width is accepted; the extra bytes are ignored.
func DecodeEnvelope(env frame.Envelope) (Event, error) {
	payload := env.Payload()
	r := frame.NewReader(payload)

	var (
		ev  Event
		err error
	)
	switch env.Tag() {
	case protocol.TagPingResponse:
		ev = PingResponse{}
	case protocol.TagVersionResponse:
		var v uint16
		v, err = r.Uint16()
		ev = VersionResponse{Version: v}
	case protocol.TagBatteryLevelResponse:
		var v uint16
		v, err = r.Uint16()
		ev = BatteryLevelResponse{BatteryLevel: v}
	case protocol.TagSpeedUpdate:
		var v uint16
		v, err = r.Uint16()
		ev = SpeedUpdate{SpeedMMPerSec: v}
	case protocol.TagStatusUpdate:
		ev, err = decodeStatus(r)
	case protocol.TagLocalizationPositionUpdate:
		ev, err = decodePosition(r)
	case protocol.TagLocalizationTransitionUpdate:
		ev, err = decodeTransition(r)
	case protocol.TagOffsetFromRoadCenterUpdate:
		ev, err = decodeOffset(r)
	case protocol.TagVehicleDelocalized,
		protocol.TagCarError,
		protocol.TagCarCollision,
		protocol.TagTrackSpecialTrigger,
		protocol.TagMessageCycleOvertime:
		ev = RawEvent{EventTag: env.Tag(), Payload: payload}
	default:
		logging.Warnf("telemetry.Decode unknown tag=%s len=%d", env.Tag(), env.Len())
		return nil, fmt.Errorf("%w: %s", protocol.ErrUnknownTag, env.Tag())
	}
	if err != nil {
		logging.Debugf("telemetry.Decode tag=%s payload=%d err=%v", env.Tag(), len(payload), err)
		return nil, fmt.Errorf("telemetry: decode %s: %w", env.Tag(), err)
	}
	return ev, nil
}

func decodeStatus(r *frame.Reader) (Event, error) {
	if err := r.Skip(1); err != nil {
		return nil, err
	}
	var e StatusUpdate
	var err error
	if e.OnCharger, err = r.Bool(); err != nil {
		return nil, err
	}
	if e.BatteryLow, err = r.Bool(); err != nil {
		return nil, err
	}
	if e.BatteryFull, err = r.Bool(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodePosition(r *frame.Reader) (Event, error) {
	var e LocalizationPositionUpdate
	var err error
	if e.LocationID, err = r.Uint8(); err != nil {
		return nil, err
	}
	if e.RoadPieceID, err = r.Uint8(); err != nil {
		return nil, err
	}
	if e.OffsetMM, err = r.Float32(); err != nil {
		return nil, err
	}
	if e.SpeedMMPerSec, err = r.Uint16(); err != nil {
		return nil, err
	}
	if e.ParsingFlags, err = r.Uint8(); err != nil {
		return nil, err
	}
	e.IsClockwise = e.ParsingFlags == PositionClockwise
	return e, nil
}

func decodeTransition(r *frame.Reader) (Event, error) {
	var e LocalizationTransitionUpdate
	var err error
	if e.RoadPieceIndex, err = r.Uint8(); err != nil {
		return nil, err
	}
	if e.OffsetMM, err = r.Float32(); err != nil {
		return nil, err
	}
	if e.IsClockwise, err = r.Bool(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeOffset(r *frame.Reader) (Event, error) {
	var e OffsetFromRoadCenterUpdate
	var err error
	if e.OffsetMM, err = r.Float32(); err != nil {
		return nil, err
	}
	if e.LaneChangeID, err = r.Uint8(); err != nil {
		return nil, err
	}
	return e, nil
}

// Encode writes ev in its wire layout, with reserved bytes zeroed.
func Encode(ev Event) (frame.Envelope, error) {
	if ev == nil {
		return frame.Envelope{}, fmt.Errorf("%w: nil event", protocol.ErrInvalidArgument)
	}
	if !ev.Tag().IsEvent() {
		return frame.Envelope{}, fmt.Errorf("%w: %s", protocol.ErrUnknownTag, ev.Tag())
	}
	env := frame.New(ev.Tag())
	if err := ev.encode(&env); err != nil {
		return frame.Envelope{}, err
	}
	return env, nil
}
