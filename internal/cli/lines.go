package cli

import (
	"bufio"
	"io"
	"iter"
	"strings"
)

const maxLineSize = 1 << 20

// Lines yields the trimmed, non-empty lines of r. With a non-empty prefix,
// only lines starting with it are kept and the prefix is cut off.
func Lines(r io.Reader, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if prefix != "" {
				rest, ok := strings.CutPrefix(line, prefix)
				if !ok {
					continue
				}
				line = strings.TrimSpace(rest)
			}

			if line == "" {
				continue
			}

			if !yield(line, nil) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			yield("", err)
		}
	}
}
