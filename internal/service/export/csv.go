// internal/service/export/csv.go

package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"poidash/internal/domain/poi"
)

const (
	// Filename is the name offered for the downloaded export
	Filename = "pois_data.csv"

	// ContentType is the MIME type of the export
	ContentType = "text/csv"
)

// Header lists the exported columns. Latitude comes before longitude even
// though POI coordinates are stored longitude first.
var Header = []string{"Name", "Category", "Sentiment", "Latitude", "Longitude"}

// Row returns the exported fields of one POI
func Row(p poi.POI) []string {
	return []string{
		p.Name,
		p.Category,
		p.Sentiment.Label,
		formatCoordinate(p.Location.Latitude()),
		formatCoordinate(p.Location.Longitude()),
	}
}

// Serialize renders the loaded page as comma-separated text. Fields are
// written verbatim: values containing commas, quotes or newlines are not
// escaped. Rows are separated by '\n' with no trailing newline.
func Serialize(pois []poi.POI) string {
	lines := make([]string, 0, len(pois)+1)
	lines = append(lines, strings.Join(Header, ","))
	for _, p := range pois {
		lines = append(lines, strings.Join(Row(p), ","))
	}
	return strings.Join(lines, "\n")
}

// SerializeQuoted renders the page as RFC 4180 CSV, quoting fields that need
// it. Unlike Serialize the output ends with a newline.
func SerializeQuoted(pois []poi.POI) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header); err != nil {
		return "", err
	}
	for _, p := range pois {
		if err := w.Write(Row(p)); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// formatCoordinate prints the shortest representation, e.g. 20 or 20.5
func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
