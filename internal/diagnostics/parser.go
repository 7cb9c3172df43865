package diagnostics

import (
	"os"
	"strconv"
	"strings"
)

// ParseDirectOutput scans the combined stdout and stderr of an engine that
// does not write a usable log (tectonic). Lines mentioning "error:" become
// errors, otherwise lines mentioning "warning:" become warnings. Neither
// carries a location.
func ParseDirectOutput(stdout, stderr string) ([]BuildError, []BuildWarning) {
	errs := []BuildError{}
	warnings := []BuildWarning{}

	for _, line := range splitLines(stdout + "\n" + stderr) {
		switch {
		case strings.Contains(line, "error:") || strings.Contains(line, "Error:"):
			errs = append(errs, BuildError{Message: line})
		case strings.Contains(line, "warning:") || strings.Contains(line, "Warning:"):
			warnings = append(warnings, BuildWarning{Message: line})
		}
	}

	return errs, warnings
}

// ParseLog scans a TeX log. A line starting with "! " opens an error whose
// location is taken from the nearest of the preceding lines that mentions
// "<file>.tex:<line>". Lines containing "Warning:" become warnings.
func ParseLog(text string) ([]BuildError, []BuildWarning) {
	errs := []BuildError{}
	warnings := []BuildWarning{}

	lines := splitLines(text)
	for i, line := range lines {
		if strings.HasPrefix(line, "! ") {
			file, lineNum := locate(lines, i)
			errs = append(errs, BuildError{
				File:    file,
				Line:    lineNum,
				Message: strings.TrimPrefix(line, "! "),
			})
			continue
		}

		if strings.Contains(line, "Warning:") {
			warnings = append(warnings, BuildWarning{Message: line})
		}
	}

	return errs, warnings
}

// ParseLogFile reads path and runs ParseLog over it. A log that cannot be
// read produces no diagnostics.
func ParseLogFile(path string) ([]BuildError, []BuildWarning) {
	data, err := os.ReadFile(path)
	if err != nil {
		return []BuildError{}, []BuildWarning{}
	}
	return ParseLog(string(data))
}

// locate searches up to lookback lines above idx, nearest first.
func locate(lines []string, idx int) (*string, *int) {
	for i := idx - 1; i >= 0 && i >= idx-lookback; i-- {
		if file, n, ok := texReference(lines[i]); ok {
			return &file, &n
		}
	}
	return nil, nil
}

// texReference extracts the file and line from the first ".tex:<n>" in line.
// The file is the path token ending at ".tex", bounded by whitespace, '(' or
// ':' (a Windows drive prefix is kept), with a leading "./" removed.
func texReference(line string) (string, int, bool) {
	pos := strings.Index(line, ".tex:")
	if pos < 0 {
		return "", 0, false
	}

	end := pos + len(".tex")
	start := tokenStart(line, end)
	file := strings.TrimPrefix(line[start:end], "./")

	rest := line[end+1:]
	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	stem := strings.TrimSuffix(file, ".tex")
	if digits == 0 || stem == "" || strings.HasSuffix(stem, "/") {
		return "", 0, false
	}

	n, err := strconv.Atoi(rest[:digits])
	if err != nil {
		return "", 0, false
	}

	return file, n, true
}

// tokenStart walks back from end to the start of the path token.
func tokenStart(line string, end int) int {
	start := end
	for start > 0 && !isPathBoundary(line[start-1]) {
		start--
	}
	if start >= 2 && line[start-1] == ':' && isDriveLetter(line[start-2]) &&
		(start == 2 || isPathBoundary(line[start-3])) &&
		start < end && (line[start] == '/' || line[start] == '\\') {
		start -= 2
	}
	return start
}

func isPathBoundary(c byte) bool {
	switch c {
	case ' ', '\t', '(', ':':
		return true
	}
	return false
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
