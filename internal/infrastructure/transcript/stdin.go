// Package transcript adapts the speech capture collaborator. The default
// implementation reads finalized transcriptions line by line from a reader,
// which stands in for a speech-to-text frontend.
package transcript

import (
	"bufio"
	"io"

	"github.com/nekrovoice/nekro-go/internal/ports"
)

// LineSource yields one utterance per line. io.EOF ends the stream.
type LineSource struct {
	scanner *bufio.Scanner
}

// NewLineSource wraps a reader, typically os.Stdin.
func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{scanner: bufio.NewScanner(r)}
}

// Next implements ports.TranscriptSource.
func (s *LineSource) Next() (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

var _ ports.TranscriptSource = (*LineSource)(nil)
