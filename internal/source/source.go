package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// StdinName is the path that selects standard input.
const StdinName = "-"

const bufferSize = 64 * 1024

// ErrNotRegular is returned for directories and other non-file paths.
var ErrNotRegular = errors.New("not a regular file")

// Source is a buffered, peekable byte stream.
type Source struct {
	name   string
	size   int64
	reader *bufio.Reader
	file   *os.File
	stdin  bool
}

// Open opens path for reading. "-" reads standard input.
func Open(path string) (*Source, error) {
	if path == StdinName {
		return &Source{name: "pipe:", reader: bufio.NewReaderSize(os.Stdin, bufferSize), stdin: true}, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("open input %s: %w", path, ErrNotRegular)
	}
	if err := checkReadable(path); err != nil {
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	adviseSequential(file)
	return &Source{
		name:   path,
		size:   info.Size(),
		reader: bufio.NewReaderSize(file, bufferSize),
		file:   file,
	}, nil
}

// FromReader wraps an arbitrary reader; size may be 0 when unknown.
func FromReader(name string, r io.Reader, size int64) *Source {
	return &Source{name: name, size: size, reader: bufio.NewReaderSize(r, bufferSize)}
}

// Name returns the path, or "pipe:" for standard input.
func (s *Source) Name() string { return s.name }

// Size returns the on-disk size, or 0 when unknown.
func (s *Source) Size() int64 { return s.size }

// Stdin reports whether the source is standard input.
func (s *Source) Stdin() bool { return s.stdin }

// Peek returns the next n bytes without consuming them. Fewer bytes come back
// together with an error near the end of the stream.
func (s *Source) Peek(n int) ([]byte, error) {
	return s.reader.Peek(n)
}

func (s *Source) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

// Discard skips n bytes.
func (s *Source) Discard(n int64) error {
	for n > 0 {
		chunk := int(min(n, int64(bufferSize)))
		skipped, err := s.reader.Discard(chunk)
		n -= int64(skipped)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}

// Close closes the underlying file. Standard input is left open.
func (s *Source) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
