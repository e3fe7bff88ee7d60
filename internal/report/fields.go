package report

import (
	"strconv"

	"mediaprobe/internal/media"
	"mediaprobe/internal/probe"
	"mediaprobe/internal/textutil"
	"mediaprobe/internal/units"
)

// Section kinds, printed as block names.
const (
	KindTags   = "TAGS"
	KindPacket = "PACKET"
	KindFrame  = "FRAME"
	KindStream = "STREAM"
	KindFile   = "FILE"
)

// displayAspectLimit bounds the reduced display aspect ratio terms.
const displayAspectLimit = 1024 * 1024

// Field is one key=value line.
type Field struct {
	Key   string
	Value string
}

// Section is one block of fields.
type Section struct {
	Kind   string
	Fields []Field
}

// Get returns the value of key, or "" when absent.
func (s Section) Get(key string) string {
	for _, f := range s.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// Builder turns probe entities into sections.
type Builder struct {
	Flags       units.Flags
	ReadPackets bool
	ReadFrames  bool
}

// NewBuilder derives the probed-counter visibility from opts.
func NewBuilder(flags units.Flags, opts probe.Options) Builder {
	opts = opts.Normalize()
	return Builder{Flags: flags, ReadPackets: opts.ReadPackets, ReadFrames: opts.ReadFrames}
}

type fields []Field

func (f *fields) add(key, value string) {
	*f = append(*f, Field{Key: key, Value: value})
}

func (f *fields) addInt(key string, v int64) {
	f.add(key, strconv.FormatInt(v, 10))
}

func (b Builder) value(v float64, unit units.Unit, extra units.Flags) string {
	return units.ValueString(v, unit, b.Flags|extra)
}

func (b Builder) time(ts int64, tb units.Rational) string {
	return units.TimeString(ts, tb, b.Flags)
}

func flagKey(key bool) string {
	return textutil.Ternary(key, "K", "_")
}

func boolInt(v bool) string {
	return textutil.Ternary(v, "1", "0")
}

// Tags lists every tag field, set or not.
func (b Builder) Tags(c *probe.Container) Section {
	t := c.Format.Tags
	var f fields
	f.addInt("track", int64(t.Track))
	f.add("title", textutil.SanitizeValue(t.Title))
	f.add("author", textutil.SanitizeValue(t.Author))
	f.add("copyright", textutil.SanitizeValue(t.Copyright))
	f.add("comment", textutil.SanitizeValue(t.Comment))
	f.add("album", textutil.SanitizeValue(t.Album))
	f.addInt("year", int64(t.Year))
	f.add("genre", textutil.SanitizeValue(t.Genre))
	return Section{Kind: KindTags, Fields: f}
}

// Packet describes one observed packet.
func (b Builder) Packet(p probe.PacketRecord) Section {
	info := p.Stream.Info
	var f fields
	f.add("codec_type", info.CodecType.String())
	f.addInt("stream_index", int64(info.Index))
	f.add("pts", units.TicksString(p.PTS))
	f.add("pts_time", b.time(p.PTS, info.TimeBase))
	f.add("dts", units.TicksString(p.DTS))
	f.add("dts_time", b.time(p.DTS, info.TimeBase))
	f.add("size", b.value(float64(p.Size), units.UnitByte, units.UseBinaryPrefix))
	f.addInt("file_pkt_nb", p.FilePacketNumber)
	f.addInt("stream_pkt_nb", p.StreamPacketNumber)
	f.add("duration_ts", units.TicksString(p.Duration))
	f.add("duration_time", b.time(p.Duration, info.TimeBase))
	f.add("flag_key", flagKey(p.Key))
	return Section{Kind: KindPacket, Fields: f}
}

// Frame describes one decoded frame. It must be called before the frame is
// released.
func (b Builder) Frame(fr *probe.Frame) Section {
	src := fr.Source
	info := src.Stream.Info
	var f fields
	f.add("codec_type", info.CodecType.String())
	switch payload := fr.Payload.(type) {
	case *probe.PicturePayload:
		pic := payload.Picture
		pictType := pic.PictType
		if pictType == 0 {
			pictType = '?'
		}
		f.add("pict_type", string(rune(pictType)))
		f.addInt("quality", int64(pic.Quality))
		f.addInt("coded_picture_number", int64(pic.CodedPictureNumber))
		f.addInt("display_picture_number", int64(pic.DisplayPictureNumber))
		f.add("interlaced_frame", boolInt(pic.Interlaced))
		f.addInt("repeat_pict", int64(pic.RepeatPict))
		f.add("reference", boolInt(pic.Reference))
	case *probe.SamplePayload:
		f.add("samples_size", b.value(float64(len(payload.Samples)), units.UnitByte, 0))
	case *probe.SubtitlePayload:
		f.addInt("num_rects", int64(len(payload.Subtitle.Rects)))
	}
	f.addInt("stream_index", int64(info.Index))
	f.add("size", b.value(float64(fr.Size), units.UnitByte, 0))
	f.add("pkt_pts", b.time(src.PTS, info.TimeBase))
	f.add("pkt_dts", b.time(src.DTS, info.TimeBase))
	f.add("pkt_duration", b.time(src.Duration, info.TimeBase))
	f.addInt("file_pkt_nb", src.FilePacketNumber)
	f.addInt("stream_pkt_nb", src.StreamPacketNumber)
	f.addInt("file_frame_nb", fr.FileFrameNumber)
	f.addInt("stream_frame_nb", fr.StreamFrameNumber)
	f.add("pkt_flag_key", flagKey(src.Key))
	return Section{Kind: KindFrame, Fields: f}
}

// Stream describes one stream. Decoder-derived fields only appear when a
// decoder is bound.
func (b Builder) Stream(s *probe.Stream) Section {
	info := s.Info
	var f fields
	if s.Decoder != nil {
		f.add("codec_name", s.Decoder.Name())
		f.add("decoder_time_base", info.CodecTimeBase.String())
		f.add("codec_type", info.CodecType.String())
		switch info.CodecType {
		case media.CodecTypeVideo:
			f.add("r_frame_rate", strconv.FormatFloat(info.FrameRate.Float64(), 'f', 6, 64))
			f.addInt("r_frame_rate_num", info.FrameRate.Num)
			f.addInt("r_frame_rate_den", info.FrameRate.Den)
			f.addInt("width", int64(info.Width))
			f.addInt("height", int64(info.Height))
			f.addInt("gop_size", int64(info.GOPSize))
			f.addInt("has_b_frames", int64(info.HasBFrames))
			sar := info.SampleAspectRatio
			f.add("sample_aspect_ratio", sar.String())
			dar := units.Reduce(int64(info.Width)*sar.Num, int64(info.Height)*sar.Den, displayAspectLimit)
			f.add("display_aspect_ratio", dar.String())
			f.add("pix_fmt", info.PixelFormat)
		case media.CodecTypeAudio:
			f.add("sample_rate", b.value(float64(info.SampleRate), units.UnitHertz, 0))
			f.addInt("channels", int64(info.Channels))
			f.addInt("bits_per_sample", int64(info.BitsPerSample))
		}
	} else {
		f.add("codec_type", media.CodecTypeUnknown.String())
	}
	f.addInt("index", int64(info.Index))
	f.add("time_base", info.TimeBase.String())
	if lang := textutil.SanitizeValue(info.Language); lang != "" {
		f.add("language", lang)
	}
	f.add("start_time", b.time(info.StartTime, info.TimeBase))
	f.add("duration", b.time(info.Duration, info.TimeBase))
	f.addInt("nb_frames", info.NumFrames)
	if b.ReadPackets {
		f.add("probed_size", b.value(float64(s.PacketBytes), units.UnitByte, units.UseBinaryPrefix))
		f.addInt("probed_nb_pkts", s.Packets)
		f.addInt("probed_nb_frames", s.Frames)
	}
	return Section{Kind: KindStream, Fields: f}
}

// File describes the container. Tags only appear when set.
func (b Builder) File(c *probe.Container) Section {
	format := c.Format
	var f fields
	f.add("filename", textutil.SanitizeValue(format.Filename))
	f.addInt("nb_streams", int64(len(c.Streams)))
	f.add("demuxer_name", format.Name)
	if format.LongName != "" {
		f.add("demuxer_long_name", format.LongName)
	}
	t := format.Tags
	if t.Track != 0 {
		f.addInt("track", int64(t.Track))
	}
	for _, tag := range []Field{
		{"title", t.Title},
		{"author", t.Author},
		{"copyright", t.Copyright},
		{"comment", t.Comment},
		{"album", t.Album},
	} {
		if v := textutil.SanitizeValue(tag.Value); v != "" {
			f.add(tag.Key, v)
		}
	}
	if t.Year != 0 {
		f.addInt("year", int64(t.Year))
	}
	if v := textutil.SanitizeValue(t.Genre); v != "" {
		f.add("genre", v)
	}
	f.add("start_time", b.time(format.StartTime, units.TimeBaseMicros))
	f.add("duration", b.time(format.Duration, units.TimeBaseMicros))
	f.add("size", b.value(float64(format.FileSize), units.UnitByte, 0))
	f.add("bit_rate", b.value(float64(format.BitRate), units.UnitBitPerSecond, 0))
	if b.ReadPackets {
		f.add("probed_size", b.value(float64(c.PacketBytes), units.UnitByte, 0))
		f.addInt("probed_nb_pkts", c.Packets)
	}
	if b.ReadFrames {
		f.addInt("probed_nb_frames", c.Frames)
	}
	return Section{Kind: KindFile, Fields: f}
}
