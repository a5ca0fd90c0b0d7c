// Package command encodes host -> vehicle messages.
//
// Each command is a value type implementing Command. Encode writes the tag and
// then every field in wire order at its fixed width. Enumerated fields are
// range checked and rejected with protocol.ErrInvalidArgument; bitmask fields
// are forwarded as given.
//
// Driving commands (SetSpeed, ChangeLane) are only honored once the vehicle is
// in SDK mode with SDKOverrideLocalization set. Sequencing that is the
// caller's job; nothing here tracks link state.
package command
