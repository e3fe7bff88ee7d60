package codec

// MaxDimension bounds picture width and height; larger pictures are rejected.
const MaxDimension = 16384

type pixelLayout struct {
	planes         int
	log2ChromaW    int
	log2ChromaH    int
	bytesPerSample int
	alpha          bool
}

var pixelFormats = map[string]pixelLayout{
	"gray":        {planes: 1, bytesPerSample: 1},
	"gray16le":    {planes: 1, bytesPerSample: 2},
	"yuv420p":     {planes: 3, log2ChromaW: 1, log2ChromaH: 1, bytesPerSample: 1},
	"yuv422p":     {planes: 3, log2ChromaW: 1, bytesPerSample: 1},
	"yuv444p":     {planes: 3, bytesPerSample: 1},
	"yuv411p":     {planes: 3, log2ChromaW: 2, bytesPerSample: 1},
	"yuva444p":    {planes: 4, bytesPerSample: 1, alpha: true},
	"yuv420p10le": {planes: 3, log2ChromaW: 1, log2ChromaH: 1, bytesPerSample: 2},
	"yuv422p10le": {planes: 3, log2ChromaW: 1, bytesPerSample: 2},
	"yuv444p10le": {planes: 3, bytesPerSample: 2},
}

func lookupPixelFormat(name string) (pixelLayout, bool) {
	layout, ok := pixelFormats[name]
	return layout, ok
}

func (l pixelLayout) planeSizes(width, height int) []int {
	sizes := make([]int, 0, l.planes)
	luma := width * height * l.bytesPerSample
	sizes = append(sizes, luma)
	if l.planes == 1 {
		return sizes
	}
	cw := ceilShift(width, l.log2ChromaW)
	ch := ceilShift(height, l.log2ChromaH)
	chroma := cw * ch * l.bytesPerSample
	sizes = append(sizes, chroma, chroma)
	if l.alpha {
		sizes = append(sizes, luma)
	}
	return sizes
}

func ceilShift(v, shift int) int {
	return (v + (1 << shift) - 1) >> shift
}

// FrameSize returns the byte size of one picture, or 0 for unknown formats
// and for geometry outside 1..MaxDimension.
func FrameSize(pixelFormat string, width, height int) int {
	layout, ok := lookupPixelFormat(pixelFormat)
	if !ok || width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return 0
	}
	total := 0
	for _, size := range layout.planeSizes(width, height) {
		total += size
	}
	return total
}

// KnownPixelFormat reports whether rawvideo can lay out the format.
func KnownPixelFormat(name string) bool {
	_, ok := lookupPixelFormat(name)
	return ok
}
