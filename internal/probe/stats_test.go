package probe

import (
	"testing"

	"mediaprobe/internal/media"
)

func TestRecordPacketOrdinals(t *testing.T) {
	c := NewContainer("in", media.FormatInfo{}, []media.StreamInfo{{}, {}})
	a, b := c.Streams[0], c.Streams[1]

	order := []*Stream{a, b, a, a, b}
	var fileNbs []int64
	streamNbs := map[*Stream][]int64{}
	for _, s := range order {
		fileNb, streamNb := c.RecordPacket(s, 10)
		fileNbs = append(fileNbs, fileNb)
		streamNbs[s] = append(streamNbs[s], streamNb)
	}

	for i, nb := range fileNbs {
		if nb != int64(i+1) {
			t.Fatalf("file ordinals = %v, want 1..%d", fileNbs, len(order))
		}
	}
	for s, nbs := range streamNbs {
		for i, nb := range nbs {
			if nb != int64(i+1) {
				t.Fatalf("stream %d ordinals = %v", s.Info.Index, nbs)
			}
		}
	}
	if c.PacketBytes != 50 || a.PacketBytes != 30 || b.PacketBytes != 20 {
		t.Fatalf("unexpected byte totals: file=%d a=%d b=%d", c.PacketBytes, a.PacketBytes, b.PacketBytes)
	}
	if a.Packets+b.Packets != c.Packets {
		t.Fatalf("stream packets %d+%d do not add up to %d", a.Packets, b.Packets, c.Packets)
	}
}

func TestRecordFrameIsIndependentOfPackets(t *testing.T) {
	c := NewContainer("in", media.FormatInfo{}, []media.StreamInfo{{}})
	s := c.Streams[0]
	c.RecordPacket(s, 100)
	c.RecordPacket(s, 100)

	fileNb, streamNb := c.RecordFrame(s, 40)
	if fileNb != 1 || streamNb != 1 {
		t.Fatalf("first frame ordinals = %d/%d, want 1/1", fileNb, streamNb)
	}
	fileNb, streamNb = c.RecordFrame(s, 40)
	if fileNb != 2 || streamNb != 2 {
		t.Fatalf("second frame ordinals = %d/%d, want 2/2", fileNb, streamNb)
	}
	if c.FrameBytes != 80 || c.PacketBytes != 200 || c.Packets != 2 {
		t.Fatalf("counters mixed up: %+v", c)
	}
}

func TestRecordPacketRejectsForeignStream(t *testing.T) {
	c1 := NewContainer("a", media.FormatInfo{}, []media.StreamInfo{{}})
	c2 := NewContainer("b", media.FormatInfo{}, []media.StreamInfo{{}})
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a stream of another container")
		}
	}()
	c1.RecordPacket(c2.Streams[0], 1)
}

func TestNewContainerIndexesStreams(t *testing.T) {
	c := NewContainer("in", media.FormatInfo{}, []media.StreamInfo{{Index: 7}, {Index: 7}})
	if c.Streams[0].Info.Index != 0 || c.Streams[1].Info.Index != 1 {
		t.Fatalf("stream indexes not normalized: %d %d", c.Streams[0].Info.Index, c.Streams[1].Info.Index)
	}
	if c.Stream(2) != nil || c.Stream(-1) != nil {
		t.Fatal("out of range lookups should return nil")
	}
}

func TestPacketCursorAdvance(t *testing.T) {
	cur := NewPacketCursor([]byte("abcdef"))
	next, err := cur.Advance(4)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if string(next.Remaining()) != "ef" || next.Consumed() != 4 {
		t.Fatalf("unexpected cursor state: %q consumed=%d", next.Remaining(), next.Consumed())
	}
	if cur.Len() != 6 {
		t.Fatal("advancing must not mutate the original cursor")
	}
	if _, err := next.Advance(3); err == nil {
		t.Fatal("expected error advancing past the end")
	}
	if _, err := next.Advance(-1); err == nil {
		t.Fatal("expected error for negative advance")
	}
	end, _ := next.Advance(2)
	if !end.Exhausted() {
		t.Fatal("cursor should be exhausted")
	}
}
