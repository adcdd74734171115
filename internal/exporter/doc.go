// Package exporter renders shipment document lists as downloadable files.
//
// Two formats are supported: CSV with a UTF-8 BOM so Excel opens the
// accented Portuguese text correctly, and native XLSX workbooks. Both
// writers stream to an io.Writer, so the HTTP handlers and the report CLI
// share the same code path.
package exporter
