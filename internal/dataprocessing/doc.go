// Package dataprocessing loads, cleans and analyzes fixed-asset depreciation
// registers.
//
// A register is an xlsx sheet with one row per asset. Parser reads it into a
// domain.RawTable whose cells may be null. Cleaner turns that into a
// domain.AssetTable in a fixed order:
//
//  1. drop subtotal and total rows
//  2. drop rows with no values
//  3. reduce acquisition dates to their year
//  4. fill empty text with "-" and empty numbers with 0
//  5. renumber rows from 0
//  6. derive Rasio_Penyusutan when the sheet lacks it
//
// The aggregation helpers (GroupAndSum, TopByValue, FilterByKeyword) and
// Analyzer work on the cleaned table only. Sums are exact decimal sums of
// the float inputs.
package dataprocessing
