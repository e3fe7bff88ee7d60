package codec

import (
	"fmt"
	"sync/atomic"
)

// Picture is a decoded video frame. Handle identifies the backing buffer for
// the lifetime between Allocator.GetBuffer and Allocator.ReleaseBuffer.
type Picture struct {
	Handle      uint64
	Width       int
	Height      int
	PixelFormat string
	Planes      [][]byte

	PictType             byte
	KeyFrame             bool
	Quality              int
	CodedPictureNumber   int
	DisplayPictureNumber int
	Interlaced           bool
	TopFieldFirst        bool
	RepeatPict           int
	Reference            bool
}

// Size returns the number of bytes held by the picture planes.
func (p *Picture) Size() int {
	if p == nil {
		return 0
	}
	total := 0
	for _, plane := range p.Planes {
		total += len(plane)
	}
	return total
}

// Allocator supplies picture memory to video decoders. GetBuffer must set
// Handle and Planes; ReleaseBuffer is called exactly once per allocated
// picture, by the decoder for pictures it drops and by the consumer for
// pictures it received.
type Allocator interface {
	GetBuffer(pic *Picture) error
	ReleaseBuffer(pic *Picture)
}

var nextHandle atomic.Uint64

// NewHandle returns a process-unique buffer handle.
func NewHandle() uint64 {
	return nextHandle.Add(1)
}

// AllocatePlanes sizes pic.Planes from its pixel format and geometry.
func AllocatePlanes(pic *Picture) error {
	layout, ok := lookupPixelFormat(pic.PixelFormat)
	if !ok {
		return fmt.Errorf("allocate picture: unsupported pixel format %q", pic.PixelFormat)
	}
	if pic.Width <= 0 || pic.Height <= 0 {
		return fmt.Errorf("allocate picture: invalid dimensions %dx%d", pic.Width, pic.Height)
	}
	sizes := layout.planeSizes(pic.Width, pic.Height)
	pic.Planes = make([][]byte, len(sizes))
	for i, size := range sizes {
		pic.Planes[i] = make([]byte, size)
	}
	return nil
}

// DefaultAllocator allocates planes without tracking ownership.
type DefaultAllocator struct{}

func (DefaultAllocator) GetBuffer(pic *Picture) error {
	if err := AllocatePlanes(pic); err != nil {
		return err
	}
	pic.Handle = NewHandle()
	return nil
}

func (DefaultAllocator) ReleaseBuffer(pic *Picture) {
	if pic != nil {
		pic.Planes = nil
	}
}
