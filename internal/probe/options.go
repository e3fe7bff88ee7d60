package probe

// Options selects what the pipeline reads and what it reports.
type Options struct {
	ReadPackets bool
	ReadFrames  bool

	ShowTags    bool
	ShowPackets bool
	ShowFrames  bool
	ShowStreams bool
	ShowFiles   bool

	// Drain pulls pictures held back by decoders after the last packet.
	Drain bool
}

// DefaultOptions reports files and streams without reading packets.
func DefaultOptions() Options {
	return Options{ShowFiles: true, ShowStreams: true, Drain: true}
}

// Normalize applies the option implications: showing frames needs reading
// frames, which needs reading packets, as does showing packets.
func (o Options) Normalize() Options {
	if o.ShowFrames {
		o.ReadFrames = true
	}
	if o.ReadFrames || o.ShowPackets {
		o.ReadPackets = true
	}
	return o
}
