package dafni

import (
	"fmt"
	"time"

	shape "github.com/SimonDaKappa/go-shape"
)

// UnknownFormat is reported for media types missing from DataFormats.
const UnknownFormat = "Unknown"

// DataFormats maps the media types of dataset files to display names.
var DataFormats = map[string]string{
	"application/octet-stream": "Binary",
	"application/pdf":          "PDF",
	"application/vnd.ms-excel": "Excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": "Excel",
	"application/zip": "ZIP",
	"text/csv":        "CSV",
	"text/plain":      "Text",
}

// DataFormat returns the display name of a media type.
func DataFormat(mediaType string) string {
	if name, ok := DataFormats[mediaType]; ok {
		return name
	}
	return UnknownFormat
}

var fileSizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with decimal units, e.g. 2.7 MB.
// Sizes beyond the largest unit stay in GB.
func FormatFileSize(size float64) string {
	unit := 0
	for size >= 1000 && unit < len(fileSizeUnits)-1 {
		size /= 1000
		unit++
	}
	return fmt.Sprintf("%.1f %s", size, fileSizeUnits[unit])
}

// Date layouts used when printing records.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05"
)

// FormatDate renders an optional date, or "N/A" when it is unset.
func FormatDate(t *time.Time, includeTime bool) string {
	if t == nil {
		return "N/A"
	}
	if includeTime {
		return t.Format(DateTimeLayout)
	}
	return t.Format(DateLayout)
}

// fileSize converts dcat:byteSize. Anything but a number becomes "".
var fileSize = shape.FuncOf(func(v shape.Value) (string, error) {
	size, err := v.Float()
	if err != nil {
		return "", nil
	}
	return FormatFileSize(size), nil
})

var fileFormat = shape.FuncOf(func(v shape.Value) (string, error) {
	mediaType, ok := v.AsString()
	if !ok {
		return "", fmt.Errorf("media type must be a string, got %s", v.Kind())
	}
	return DataFormat(mediaType), nil
})
