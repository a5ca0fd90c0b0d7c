package protocol

import "fmt"

// Frame limits.
const (
	MaxFrameSize   = 20
	MaxPayloadSize = 18
	BaseSize       = 1 // tag byte counted by the length field
)

// Tag identifies the semantics of a frame. Values are protocol constants.
type Tag uint8

// Host -> vehicle.
const (
	TagDisconnect              Tag = 0x0d
	TagPingRequest             Tag = 0x16
	TagVersionRequest          Tag = 0x18
	TagBatteryLevelRequest     Tag = 0x1a
	TagSetLights               Tag = 0x1d
	TagSetSpeed                Tag = 0x24
	TagChangeLane              Tag = 0x25
	TagCancelLaneChange        Tag = 0x26
	TagSetOffsetFromRoadCenter Tag = 0x2c
	TagTurn                    Tag = 0x32
	TagLightsPattern           Tag = 0x33
	TagSetConfigParams         Tag = 0x45
	TagSetSDKMode              Tag = 0x90

	// TagTurn180 is a Turn with a fixed u-turn payload.
	TagTurn180 = TagTurn
)

// Vehicle -> host.
const (
	TagPingResponse                 Tag = 0x17
	TagVersionResponse              Tag = 0x19
	TagBatteryLevelResponse         Tag = 0x1b
	TagLocalizationPositionUpdate   Tag = 0x27
	TagLocalizationTransitionUpdate Tag = 0x29
	TagCarError                     Tag = 0x2a
	TagVehicleDelocalized           Tag = 0x2b
	TagOffsetFromRoadCenterUpdate   Tag = 0x2d
	TagSpeedUpdate                  Tag = 0x36
	TagStatusUpdate                 Tag = 0x3f
	TagCarCollision                 Tag = 0x4d
	TagTrackSpecialTrigger          Tag = 0x53
	TagMessageCycleOvertime         Tag = 0x86
)

// Declared length byte (tag + payload) per fixed-layout message.
const (
	SizeEmpty                        = 1
	SizeSDKMode                      = 3
	SizeSetSpeed                     = 6
	SizeTurn                         = 3
	SizeSetOffsetFromRoadCenter      = 5
	SizeChangeLane                   = 11
	SizeSetLights                    = 2
	SizeLightsPattern                = 17
	SizeSetConfigParams              = 3
	SizeVersionResponse              = 3
	SizeBatteryLevelResponse         = 3
	SizeSpeedUpdate                  = 3
	SizeStatusUpdate                 = 5
	SizeLocalizationPositionUpdate   = 10
	SizeLocalizationTransitionUpdate = 7
	SizeOffsetFromRoadCenterUpdate   = 6
)

var commandNames = map[Tag]string{
	TagDisconnect:              "disconnect",
	TagPingRequest:             "ping_request",
	TagVersionRequest:          "version_request",
	TagBatteryLevelRequest:     "battery_level_request",
	TagSetLights:               "set_lights",
	TagSetSpeed:                "set_speed",
	TagChangeLane:              "change_lane",
	TagCancelLaneChange:        "cancel_lane_change",
	TagSetOffsetFromRoadCenter: "set_offset_from_road_center",
	TagTurn:                    "turn",
	TagLightsPattern:           "lights_pattern",
	TagSetConfigParams:         "set_config_params",
	TagSetSDKMode:              "set_sdk_mode",
}

var eventNames = map[Tag]string{
	TagPingResponse:                 "ping_response",
	TagVersionResponse:              "version_response",
	TagBatteryLevelResponse:         "battery_level_response",
	TagLocalizationPositionUpdate:   "localization_position_update",
	TagLocalizationTransitionUpdate: "localization_transition_update",
	TagCarError:                     "car_error",
	TagVehicleDelocalized:           "vehicle_delocalized",
	TagOffsetFromRoadCenterUpdate:   "offset_from_road_center_update",
	TagSpeedUpdate:                  "speed_update",
	TagStatusUpdate:                 "status_update",
	TagCarCollision:                 "car_collision",
	TagTrackSpecialTrigger:          "track_special_trigger",
	TagMessageCycleOvertime:         "message_cycle_overtime",
}

// IsCommand reports whether t is a host -> vehicle tag.
func (t Tag) IsCommand() bool {
	_, ok := commandNames[t]
	return ok
}

// IsEvent reports whether t is a vehicle -> host tag.
func (t Tag) IsEvent() bool {
	_, ok := eventNames[t]
	return ok
}

func (t Tag) String() string {
	if name, ok := commandNames[t]; ok {
		return name
	}
	if name, ok := eventNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tag(0x%02x)", uint8(t))
}
