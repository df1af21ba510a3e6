package fiox

import (
	"path/filepath"
	"strings"
)

// IssueURL is where users are pointed when a format is not supported.
const IssueURL = "https://github.com/reoring/fiox/issues"

// Format identifies one of the supported file formats by its extension.
type Format string

const (
	FormatJSON   Format = "json"
	FormatTOML   Format = "toml"
	FormatCSV    Format = "csv"
	FormatNDJSON Format = "ndjson"
)

// Formats lists the supported formats in a stable order.
var Formats = []Format{FormatJSON, FormatTOML, FormatCSV, FormatNDJSON}

func (f Format) String() string { return string(f) }

// ParseFormat maps an extension (with or without the leading dot) to a Format.
func ParseFormat(ext string) (Format, error) {
	ext = strings.TrimPrefix(ext, ".")
	for _, f := range Formats {
		if ext == string(f) {
			return f, nil
		}
	}
	return "", &Error{
		Code:    CodeUnsupportedFormat,
		Message: "extension \"" + ext + "\" is not supported currently",
		Hint:    "Open an issue at " + IssueURL,
		Offset:  -1,
	}
}

// FormatOf resolves the format of path from its extension.
func FormatOf(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" || ext == "." {
		return "", &Error{
			Code:    CodeMissingExtension,
			Path:    path,
			Message: "file has no extension",
			Offset:  -1,
		}
	}
	f, err := ParseFormat(ext)
	if err != nil {
		e := err.(*Error)
		e.Path = path
		return "", e
	}
	return f, nil
}

// Stem returns the base name of path without its extension. It is empty for
// names such as ".csv".
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Shape tags the record sequences carried through the pipeline.
type Shape int

const (
	ShapeValues Shape = iota
	ShapeTable
	ShapeNDJSON
)

func (s Shape) String() string {
	switch s {
	case ShapeValues:
		return "values"
	case ShapeTable:
		return "table"
	case ShapeNDJSON:
		return "ndjson"
	default:
		return "unknown"
	}
}

// Severity expresses how a soft condition such as a duplicate key is handled.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Fail
)
