package importer

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

// buildDocx assembles a minimal .docx container holding one paragraph per
// line.
func buildDocx(t *testing.T, lines []string) []byte {
	t.Helper()

	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, line := range lines {
		doc.WriteString("<w:p><w:r><w:t>")
		if err := xmlEscape(&doc, line); err != nil {
			t.Fatalf("Failed to escape line: %v", err)
		}
		doc.WriteString("</w:t></w:r></w:p>")
	}
	doc.WriteString("</w:body></w:document>")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("Failed to create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(doc.String())); err != nil {
		t.Fatalf("Failed to write document part: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return buf.Bytes()
}

func xmlEscape(b *strings.Builder, s string) error {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	_, err := b.WriteString(r.Replace(s))
	return err
}

func TestExtractDocxLines(t *testing.T) {
	data := buildDocx(t, []string{
		"GUARDIA DEL DIA 5 DE AGOSTO DE 2025",
		"1- COBERTURA EVENTO",
	})

	lines, err := ExtractDocxLines(data)
	if err != nil {
		t.Fatalf("ExtractDocxLines failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %v", len(lines), lines)
	}
	if lines[0] != "GUARDIA DEL DIA 5 DE AGOSTO DE 2025" {
		t.Errorf("Unexpected first line: %q", lines[0])
	}
}

func TestImportFileDocxSchedule(t *testing.T) {
	data := buildDocx(t, []string{
		"GUARDIA DEL DIA 5 DE AGOSTO DE 2025",
		"1- COBERTURA EVENTO",
		"QTH: ESTADIO X",
	})

	res, err := ImportFile(data, "guardia.docx", Options{Logger: testLogger()})
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	if res.Kind != KindSchedule {
		t.Fatalf("Expected schedule, got %s", res.Kind)
	}
	if len(res.Schedule.Services) != 1 {
		t.Errorf("Expected 1 service, got %d", len(res.Schedule.Services))
	}
}

func TestImportFileDocxRosterFallback(t *testing.T) {
	// No schedule markers at all, but roster date/role lines: auto mode
	// falls through to the roster extractor.
	data := buildDocx(t, []string{
		"5/8/2025",
		"JEFE DE SERVICIO: PEREZ, Juan",
	})

	res, err := ImportFile(data, "cronograma.docx", Options{Logger: testLogger()})
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	if res.Kind != KindRoster {
		t.Fatalf("Expected roster, got %s", res.Kind)
	}
	if res.Roster["2025-08-05"].Service != "PEREZ, Juan" {
		t.Errorf("Unexpected roster: %+v", res.Roster)
	}
}

func TestImportFileSpreadsheetAuto(t *testing.T) {
	// A unit-report sheet must fall through the schedule layouts to the
	// block scanner in auto mode.
	data := buildXLSX(t, [][]string{
		{"ESTACION I"},
		{"Autobomba", "IV-2638", "Para Servicio", "Capitan Schreiner", "", "8"},
	})

	res, err := ImportFile(data, "planilla.xlsx", Options{Logger: testLogger()})
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	if res.Kind != KindUnitReport {
		t.Fatalf("Expected unit report, got %s", res.Kind)
	}
	if res.UnitReport.Zones[0].Groups[0].Units[0].ID != "IV-2638" {
		t.Errorf("Unexpected report: %+v", res.UnitReport)
	}
}

func TestImportFilePDF(t *testing.T) {
	pdf, err := EncodePDFUnitReport(testReport())
	if err != nil {
		t.Fatalf("EncodePDFUnitReport failed: %v", err)
	}

	res, err := ImportFile(pdf, "novedades.pdf", Options{Logger: testLogger()})
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	if res.Kind != KindUnitReport {
		t.Fatalf("Expected unit report, got %s", res.Kind)
	}
	if res.UnitReport.ReportDate != "12/8/2025" {
		t.Errorf("Unexpected report date: %q", res.UnitReport.ReportDate)
	}
}

func TestImportFileJSONRoster(t *testing.T) {
	res, err := ImportFile([]byte(`{"2025-08-05":{"guard":"LOPEZ, Ana"}}`), "roster.json", Options{Logger: testLogger()})
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	if res.Kind != KindRoster || res.Roster["2025-08-05"].Guard != "LOPEZ, Ana" {
		t.Errorf("Unexpected result: %+v", res)
	}
}

func TestImportFileKindMismatch(t *testing.T) {
	pdf, err := EncodePDFUnitReport(testReport())
	if err != nil {
		t.Fatalf("EncodePDFUnitReport failed: %v", err)
	}
	if _, err := ImportFile(pdf, "novedades.pdf", Options{Kind: KindSchedule, Logger: testLogger()}); err == nil {
		t.Fatal("Expected error forcing schedule kind on a pdf")
	}
}

func TestImportFileUnsupportedExtension(t *testing.T) {
	_, err := ImportFile([]byte("hola"), "notas.txt", Options{Logger: testLogger()})
	if !errors.Is(err, ErrFormatUnrecognized) {
		t.Fatalf("Expected ErrFormatUnrecognized, got %v", err)
	}
}
