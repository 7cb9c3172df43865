// Package diagnostics turns raw typesetting tool output into ordered lists of
// structured errors and warnings.
//
// Extraction is pattern based: substring and prefix checks over plain lines.
// Engine output formats are not contractually stable, so no attempt is made
// to parse TeX. Both strategies are total: unrecognised or malformed lines
// are skipped, never reported as failures, and records keep the order in
// which they were found in the text.
package diagnostics

// BuildError is a single error found in tool output. File and Line are nil
// when the location could not be recovered.
type BuildError struct {
	File    *string `json:"file"`
	Line    *int    `json:"line"`
	Message string  `json:"message"`
}

// BuildWarning is a single warning found in tool output.
type BuildWarning struct {
	File    *string `json:"file"`
	Line    *int    `json:"line"`
	Message string  `json:"message"`
}

// HasLocation reports whether the error carries a file and line.
func (e BuildError) HasLocation() bool {
	return e.File != nil && e.Line != nil
}

// lookback is how many lines above an error marker are searched for a
// file:line reference.
const lookback = 5
