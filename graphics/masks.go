package graphics

import "golang.org/x/sys/cpu"

// ChannelMasks are the bit masks of each channel inside a 32-bit pixel.
type ChannelMasks struct {
	R, G, B, A uint32
}

// DefaultMasks returns the masks that put a pixel in memory as R, G, B, A
// on the host: big-endian hosts use R in the high byte, everything else
// uses the mirrored order.
func DefaultMasks() ChannelMasks {
	return masksFor(cpu.IsBigEndian)
}

func masksFor(bigEndian bool) ChannelMasks {
	if bigEndian {
		return ChannelMasks{R: 0xff000000, G: 0x00ff0000, B: 0x0000ff00, A: 0x000000ff}
	}
	return ChannelMasks{R: 0x000000ff, G: 0x0000ff00, B: 0x00ff0000, A: 0xff000000}
}

// DefaultDepth is the bits per pixel of buffers created with DefaultMasks.
const DefaultDepth = 32

// FormatRGBA32 is the format code textures report: SDL's ABGR8888, which
// is R, G, B, A in memory on little-endian hosts.
const FormatRGBA32 uint32 = 0x16762004
