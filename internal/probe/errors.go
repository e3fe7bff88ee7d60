package probe

import "fmt"

// FileError is a failure that ends the probe of one input file.
type FileError struct {
	Path string
	// Op is "open", "read" or "report".
	Op  string
	Err error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
