package report

import "mediaprobe/internal/probe"

// sectionSink collects one file's sections and hands them to commit. With
// immediate set every section is handed over as soon as it is built and
// Commit has nothing left to write.
type sectionSink struct {
	builder   Builder
	sections  []Section
	commit    func([]Section) error
	immediate bool
}

func (s *sectionSink) add(sec Section) error {
	s.sections = append(s.sections, sec)
	if s.immediate {
		return s.Commit()
	}
	return nil
}

func (s *sectionSink) Tags(c *probe.Container) error {
	return s.add(s.builder.Tags(c))
}

func (s *sectionSink) Packet(p probe.PacketRecord) error {
	return s.add(s.builder.Packet(p))
}

func (s *sectionSink) Frame(f *probe.Frame) error {
	return s.add(s.builder.Frame(f))
}

func (s *sectionSink) Stream(st *probe.Stream) error {
	return s.add(s.builder.Stream(st))
}

func (s *sectionSink) File(c *probe.Container) error {
	return s.add(s.builder.File(c))
}

func (s *sectionSink) Commit() error {
	sections := s.sections
	s.sections = nil
	if s.immediate && len(sections) == 0 {
		return nil
	}
	return s.commit(sections)
}
