// Package sheets persists post tracking rows to a Google spreadsheet.
//
// The data sheet holds one row per record under a fixed Spanish-language
// header. The store supports two schema versions: the current nine-column
// layout with a "Posteado en" timestamp, and a legacy eight-column layout
// without it. A second sheet supplies the URL column consumed by the
// scheduled runner.
package sheets
