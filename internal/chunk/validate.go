package chunk

import "errors"

var (
	errEmptyContent  = errors.New("chunk content is empty")
	errBareDelimiter = errors.New("chunk content is a bare delimiter")
	errBadLineRange  = errors.New("chunk line range is invalid")
)

// ValidateAll validates every chunk and the ascending start_line ordering the
// engine guarantees per file.
func ValidateAll(chunks []Chunk) error {
	prev := 0
	for i := range chunks {
		if err := chunks[i].Validate(); err != nil {
			return err
		}
		if chunks[i].StartLine < prev {
			return errBadLineRange
		}
		prev = chunks[i].StartLine
	}
	return nil
}
