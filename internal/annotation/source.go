package annotation

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadLines reads annotation lines, skipping blank lines and '#' comments
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var lines []string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read annotations: %w", err)
	}

	return lines, nil
}

// LoadFile reads annotation lines from a file
func LoadFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotations file: %w", err)
	}
	defer file.Close()

	return ReadLines(file)
}
