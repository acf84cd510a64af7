// Package shared holds helpers used by more than one package.
//
// testutil provides slog capture for asserting on log output and excelize
// workbook fixtures for building asset registers in tests.
package shared
