package input

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
)

// LineCapturer treats a line-oriented reader as the speech facility: every
// non-empty line is a final fragment, an empty line or EOF ends the stream.
type LineCapturer struct {
	reader io.Reader
}

func NewLineCapturer(r io.Reader) *LineCapturer {
	return &LineCapturer{reader: r}
}

// TerminalCapturer returns a LineCapturer over stdin, or nil when stdin is not
// an interactive terminal.
func TerminalCapturer() Capturer {
	stat, err := os.Stdin.Stat()
	if err != nil || stat.Mode()&os.ModeCharDevice == 0 {
		return nil
	}
	return NewLineCapturer(os.Stdin)
}

func (c *LineCapturer) Capture(ctx context.Context) (<-chan Fragment, error) {
	if c == nil || c.reader == nil {
		return nil, ErrCaptureUnsupported
	}

	out := make(chan Fragment)
	go func() {
		defer close(out)

		scanner := bufio.NewScanner(c.reader)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				return
			}

			select {
			case out <- Fragment{Text: line, Final: true}:
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			select {
			case out <- Fragment{Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return out, nil
}
