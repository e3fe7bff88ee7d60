package codec

import (
	"fmt"

	"mediaprobe/internal/media"
)

type rawVideoDecoder struct {
	width         int
	height        int
	pixelFormat   string
	frameSize     int
	interlaced    bool
	topFieldFirst bool
	alloc         Allocator
	pictures      int
}

func newRawVideoDecoder(info media.StreamInfo, _ Options) (Decoder, error) {
	size := FrameSize(info.PixelFormat, info.Width, info.Height)
	if size <= 0 {
		return nil, fmt.Errorf("unsupported geometry %dx%d %q", info.Width, info.Height, info.PixelFormat)
	}
	return &rawVideoDecoder{
		width:         info.Width,
		height:        info.Height,
		pixelFormat:   info.PixelFormat,
		frameSize:     size,
		interlaced:    info.Interlaced,
		topFieldFirst: info.TopFieldFirst,
		alloc:         DefaultAllocator{},
	}, nil
}

func (d *rawVideoDecoder) Name() string { return "rawvideo" }

func (d *rawVideoDecoder) Type() media.CodecType { return media.CodecTypeVideo }

func (d *rawVideoDecoder) Close() error { return nil }

func (d *rawVideoDecoder) SetAllocator(alloc Allocator) {
	if alloc == nil {
		alloc = DefaultAllocator{}
	}
	d.alloc = alloc
}

// DecodeVideo copies one packed picture into allocator-provided planes.
func (d *rawVideoDecoder) DecodeVideo(data []byte) (int, *Picture, error) {
	if len(data) < d.frameSize {
		return 0, nil, fmt.Errorf("%w: picture needs %d bytes, packet has %d", ErrInvalidData, d.frameSize, len(data))
	}

	pic := &Picture{
		Width:                d.width,
		Height:               d.height,
		PixelFormat:          d.pixelFormat,
		PictType:             'I',
		KeyFrame:             true,
		CodedPictureNumber:   d.pictures,
		DisplayPictureNumber: d.pictures,
		Interlaced:           d.interlaced,
		TopFieldFirst:        d.topFieldFirst,
	}
	if err := d.alloc.GetBuffer(pic); err != nil {
		return 0, nil, err
	}

	offset := 0
	for _, plane := range pic.Planes {
		offset += copy(plane, data[offset:])
	}
	d.pictures++
	return len(data), pic, nil
}
