// Package telemetry decodes vehicle -> host frames into typed events.
//
// Decode dispatches on the tag to a fixed-layout record. Tags outside the
// event set fail with protocol.ErrUnknownTag; callers should log and skip
// them since newer firmware may add events.
package telemetry
