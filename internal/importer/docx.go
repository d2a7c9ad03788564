package importer

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ExtractDocxLines flattens a .docx document into its ordered sequence of
// non-empty trimmed paragraph lines, the form the text parsers consume.
//
// A .docx is a zip container; the paragraph text lives in
// word/document.xml as <w:t> runs grouped under <w:p> paragraphs. Only
// text content is extracted; styling, tables-as-layout and drawings are
// ignored.
func ExtractDocxLines(data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("not a docx container: %w", ErrFormatUnrecognized)
	}

	var doc io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc, err = f.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open document part: %w", err)
			}
			break
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("docx has no word/document.xml: %w", ErrFormatUnrecognized)
	}
	defer doc.Close()

	var (
		lines   []string
		current strings.Builder
		inText  bool
	)
	flush := func() {
		if line := strings.TrimSpace(current.String()); line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	dec := xml.NewDecoder(doc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse document xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "br", "tab":
				current.WriteByte(' ')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				flush()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	flush()
	return lines, nil
}
