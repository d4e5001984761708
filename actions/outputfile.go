// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package actions

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const maxOutputFileSize = 50 << 20

// ParseOutput reads the variables a script wrote to its $ENNIO_OUTPUT file
//
// Every line is either key=value or the start of a multiline value:
//
//	key<<DELIMITER
//	line 1
//	line 2
//	DELIMITER
//
// Empty lines between entries are ignored. The reader is rewound before parsing.
func ParseOutput(rs io.ReadSeeker) (map[string]string, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if size > maxOutputFileSize {
		return nil, errors.New("output file too large")
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(rs)
	scanner.Buffer(make([]byte, 0, 64*1024), maxOutputFileSize)

	result := make(map[string]string)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		eq := strings.Index(line, "=")
		heredoc := strings.Index(line, "<<")

		if heredoc >= 0 && (eq < 0 || heredoc < eq) {
			key := line[:heredoc]
			delimiter := line[heredoc+2:]
			if delimiter == "" {
				return nil, errors.New("invalid syntax: missing delimiter after '<<'")
			}

			var lines []string
			terminated := false
			for scanner.Scan() {
				if scanner.Text() == delimiter {
					terminated = true
					break
				}
				lines = append(lines, scanner.Text())
			}
			if !terminated {
				if err := scanner.Err(); err != nil {
					return nil, err
				}
				return nil, errors.New("invalid syntax: multiline value not terminated")
			}
			result[key] = strings.Join(lines, "\n")
			continue
		}

		if eq < 0 {
			return nil, errors.New("invalid syntax: non-delimited multiline value")
		}

		result[line[:eq]] = line[eq+1:]
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
