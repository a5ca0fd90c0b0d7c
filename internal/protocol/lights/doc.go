// Package lights builds multi-channel light pattern frames.
//
// A pattern carries up to three channel blocks of five bytes each, written in
// insertion order after a channel_count byte. The vehicle applies each channel
// independently.
package lights
