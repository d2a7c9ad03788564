// Package importer recovers structured schedule, unit-report and roster
// data from loosely formatted operational documents: free-text Word
// exports, multi-layout spreadsheets, and PDFs carrying their own prior
// JSON export as metadata.
//
// Parsing heuristics are tailored to one organization's known document
// templates. On unrecognized structure the parsers fail closed with
// ErrFormatUnrecognized instead of guessing; a recognized document that
// yields zero usable entities is reported as a descriptive error. A single
// bad field never aborts a parse: it falls back to a documented default
// and the pass continues.
package importer
