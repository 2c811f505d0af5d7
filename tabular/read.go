package tabular

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ============================================================================
// SOURCE DISPATCH — Pick a reader from the file extension
// ============================================================================

// DefaultFile is the recap export the dashboard loads when no file is given.
const DefaultFile = "RECAP PENAWARAN 2025.csv"

// Format identifies a supported source format.
type Format string

const (
	FormatText     Format = "text"
	FormatWorkbook Format = "workbook"
)

// DetectFormat maps a file name to a Format.
func DetectFormat(name string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv", ".txt", "":
		return FormatText, nil
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatWorkbook, nil
	default:
		return "", fmt.Errorf("unsupported file type %q", ext)
	}
}

// Read parses r as the format implied by name. sheet is only used for
// workbooks. Every failure is an *UnreadableInputError.
func Read(name string, r io.Reader, sheet string) (*RawTable, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, &UnreadableInputError{Source: name, Cause: err}
	}

	switch format {
	case FormatWorkbook:
		table, err := ReadWorkbook(r, sheet)
		if err != nil {
			return nil, &UnreadableInputError{Source: name, Cause: err}
		}
		return table, nil
	default:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, &UnreadableInputError{Source: name, Cause: err}
		}
		return ParseText(string(data)), nil
	}
}

// ReadFile opens path and parses it with Read.
func ReadFile(path, sheet string) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &UnreadableInputError{Source: path, Cause: err}
	}
	defer func() { _ = f.Close() }()

	return Read(path, f, sheet)
}
