package sandbox

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// capture collects a child's combined stdout and stderr up to max bytes.
// Excess output is counted and discarded so a chatty program cannot
// exhaust the harness's memory.
type capture struct {
	buf       bytes.Buffer
	max       int
	discarded int64
}

func newCapture(max int) *capture {
	return &capture{max: max}
}

func (c *capture) Write(p []byte) (int, error) {
	n := len(p)
	remaining := c.max - c.buf.Len()
	if remaining <= 0 {
		c.discarded += int64(n)
		return n, nil
	}
	if n > remaining {
		c.discarded += int64(n - remaining)
		p = p[:remaining]
	}
	c.buf.Write(p)
	// Report the full length so the copier does not fail with a short write.
	return n, nil
}

// String decodes the captured bytes as UTF-8, replacing invalid sequences,
// and normalises the result to NFC.
func (c *capture) String() string {
	s := norm.NFC.String(strings.ToValidUTF8(c.buf.String(), "\uFFFD"))
	if c.discarded > 0 {
		s += fmt.Sprintf("\n[%d more bytes of output discarded]\n", c.discarded)
	}
	return s
}
