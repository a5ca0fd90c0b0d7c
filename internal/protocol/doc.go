// Package protocol owns the vehicle link wire contract.
//
// Ownership boundary:
// - message tag table and per-message size constants
// - sentinel errors shared by the codec packages
// - frame, command, lights and telemetry subpackages
//
// Every frame on the link is `length | tag | payload` with at most 20 bytes on
// the wire. Multi-byte fields are little-endian; the offset fields are IEEE-754
// float32, also little-endian.
package protocol
