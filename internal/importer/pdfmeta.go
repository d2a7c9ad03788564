package importer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dnbomberos/guardia/internal/model"
)

// subjectPrefix marks the payload the exporter embeds in the PDF /Subject
// metadata field: the prefix followed by JSON-encoded UnitReportData, with
// PDF string escaping applied.
const subjectPrefix = "unit-report-data:"

var subjectTag = []byte("/Subject")

// DecodePDFUnitReport recovers the UnitReportData a companion export
// embedded in a PDF's /Subject metadata field.
//
// The file is treated byte-for-byte (never UTF-8 decoded): the scan
// locates the /Subject tag, skips to the opening parenthesis, and walks
// forward tracking parenthesis nesting depth while skipping escaped
// characters. The depth tracking matters because the embedded JSON itself
// can contain literal parentheses that would end a naive string scan
// early. Any failure (missing tag, unbalanced string, bad JSON, missing
// zones array) is a user-facing error, never a panic.
func DecodePDFUnitReport(data []byte) (*model.UnitReportData, error) {
	at := bytes.Index(data, subjectTag)
	if at < 0 {
		return nil, fmt.Errorf("pdf has no /Subject metadata: %w", ErrFormatUnrecognized)
	}

	i := at + len(subjectTag)
	for i < len(data) && (data[i] == ' ' || data[i] == '\t' || data[i] == '\r' || data[i] == '\n') {
		i++
	}
	if i >= len(data) || data[i] != '(' {
		return nil, fmt.Errorf("pdf /Subject is not a string value: %w", ErrFormatUnrecognized)
	}

	depth := 0
	start := i
	end := -1
scan:
	for ; i < len(data); i++ {
		switch data[i] {
		case '\\':
			i++ // the escaped byte never affects depth
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				end = i
				break scan
			}
		}
	}
	if end < 0 {
		return nil, fmt.Errorf("pdf /Subject string is unbalanced")
	}

	payload := unescapePDFString(data[start+1 : end])
	if !bytes.HasPrefix(payload, []byte(subjectPrefix)) {
		return nil, fmt.Errorf("pdf /Subject carries no embedded report: %w", ErrFormatUnrecognized)
	}
	payload = payload[len(subjectPrefix):]

	// Require a zones array before committing to the struct decode, so a
	// stray JSON subject is reported as unrecognized rather than yielding
	// an empty report.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, fmt.Errorf("embedded report is not valid JSON: %w", err)
	}
	rawZones, ok := probe["zones"]
	if !ok {
		return nil, fmt.Errorf("embedded report has no zones array")
	}
	var zonesProbe []json.RawMessage
	if err := json.Unmarshal(rawZones, &zonesProbe); err != nil {
		return nil, fmt.Errorf("embedded report zones is not an array: %w", err)
	}

	var report model.UnitReportData
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("failed to decode embedded report: %w", err)
	}
	return &report, nil
}

// unescapePDFString reverses the exporter's escaping: \( \) and \\ become
// their literal bytes; any other escaped byte is kept as-is.
func unescapePDFString(s []byte) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		out = append(out, s[i])
	}
	return out
}

// escapePDFString applies the PDF string escaping the decoder undoes:
// backslash first, then both parentheses.
func escapePDFString(s []byte) []byte {
	out := make([]byte, 0, len(s)+8)
	for _, b := range s {
		switch b {
		case '\\', '(', ')':
			out = append(out, '\\')
		}
		out = append(out, b)
	}
	return out
}

// EncodePDFUnitReport produces a minimal PDF whose /Subject metadata
// carries the report, matching the shape the decoder accepts back. Page
// content generation is out of scope; the single page is blank.
func EncodePDFUnitReport(report *model.UnitReportData) ([]byte, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("1 0 obj << /Type /Catalog /Pages 2 0 R >> endobj\n")
	buf.WriteString("2 0 obj << /Type /Pages /Kids [3 0 R] /Count 1 >> endobj\n")
	buf.WriteString("3 0 obj << /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >> endobj\n")
	buf.WriteString("4 0 obj << /Subject (")
	buf.WriteString(subjectPrefix)
	buf.Write(escapePDFString(payload))
	buf.WriteString(") >> endobj\n")
	buf.WriteString("trailer << /Root 1 0 R /Info 4 0 R >>\n%%EOF\n")
	return buf.Bytes(), nil
}
