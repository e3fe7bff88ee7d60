package report

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"mediaprobe/internal/probe"
)

// JSON gathers every committed file and writes one document on Close.
type JSON struct {
	mu      sync.Mutex
	w       io.Writer
	builder Builder
	files   []jsonFile
}

type jsonFile struct {
	Path    string          `json:"path"`
	Tags    orderedFields   `json:"tags,omitempty"`
	Entries []orderedFields `json:"entries,omitempty"`
	Streams []orderedFields `json:"streams,omitempty"`
	File    orderedFields   `json:"file,omitempty"`
}

type jsonDocument struct {
	Files []jsonFile `json:"files"`
}

// orderedFields marshals as an object keeping field order.
type orderedFields []Field

func (o orderedFields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// NewJSON returns a JSON writer for w.
func NewJSON(w io.Writer, builder Builder) *JSON {
	return &JSON{w: w, builder: builder}
}

// FileSink collects one file's sections until Commit.
func (j *JSON) FileSink(path string) probe.FileSink {
	return &sectionSink{builder: j.builder, commit: func(sections []Section) error {
		j.add(path, sections)
		return nil
	}}
}

func (j *JSON) add(path string, sections []Section) {
	file := jsonFile{Path: path}
	for _, s := range sections {
		switch s.Kind {
		case KindTags:
			file.Tags = s.Fields
		case KindPacket, KindFrame:
			entry := append(orderedFields{{Key: "type", Value: strings.ToLower(s.Kind)}}, s.Fields...)
			file.Entries = append(file.Entries, entry)
		case KindStream:
			file.Streams = append(file.Streams, s.Fields)
		case KindFile:
			file.File = s.Fields
		}
	}
	j.mu.Lock()
	j.files = append(j.files, file)
	j.mu.Unlock()
}

// Close writes the document. Files appear in commit order.
func (j *JSON) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	doc := jsonDocument{Files: j.files}
	if doc.Files == nil {
		doc.Files = []jsonFile{}
	}
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
