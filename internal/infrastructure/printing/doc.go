// Package printing turns report models into PDF documents.
//
// NativeRenderer lays reports out with the Document layout engine on top of
// the streaming pdf.Writer, so finished pages reach the HTTP response while
// later pages are still being composed. HTMLReportRenderer executes
// html/template layouts and prints them through a PDFRenderer, by default
// headless Chrome via ChromedpRenderer; its output is buffered.
//
// Both renderers share the Formatter for amounts, counts and dates.
package printing
