// Package exporter writes cleaned asset registers and dashboard reports.
//
// CSVWriter and XLSXWriter export the cleaned table with its columns in
// header order. CSV output starts with a UTF-8 BOM so Excel picks the right
// encoding. ReportBuilder renders a dashboard as Markdown for the terminal
// and as an HTML page for the browser.
package exporter
