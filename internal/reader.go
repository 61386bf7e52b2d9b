package internal

import (
	"bufio"
	"io"
	"strings"
)

const readBufferSize = 64 * 1024

// SatisfiedBy streams lines from reader and reports whether every pattern in
// the set fully matched at least one line. Reading stops as soon as the last
// missing pattern is found.
func (s *PatternSet) SatisfiedBy(reader io.Reader) (bool, error) {
	acc := s.newAccumulator()
	if acc.satisfied() {
		return true, nil
	}
	err := eachLine(reader, func(line string) bool {
		acc.observe(line)
		return !acc.satisfied()
	})
	if err != nil {
		return false, err
	}
	return acc.satisfied(), nil
}

// eachLine calls fn for every line of reader with the terminator stripped.
// A line ends at "\n", "\r" or "\r\n". fn returns false to stop reading.
func eachLine(reader io.Reader, fn func(line string) bool) error {
	br := bufio.NewReaderSize(reader, readBufferSize)
	for {
		chunk, err := br.ReadString('\n')
		if len(chunk) > 0 {
			chunk = strings.TrimSuffix(chunk, "\n")
			chunk = strings.TrimSuffix(chunk, "\r")
			for _, line := range strings.Split(chunk, "\r") {
				if !fn(line) {
					return nil
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
