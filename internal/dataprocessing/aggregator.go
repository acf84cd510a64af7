package dataprocessing

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"penyusutan/pkg/contracts/domain"
)

// ColumnKindError reports a column that exists but has the wrong kind for
// the requested operation.
type ColumnKindError struct {
	Column string
	Want   string
	Got    domain.ColumnKind
}

func (e *ColumnKindError) Error() string {
	return fmt.Sprintf("column %s is %s, want %s", e.Column, e.Got, e.Want)
}

// Is matches both ErrColumnKind and ErrMissingColumn: the table has no
// column of the requested kind under that name.
func (e *ColumnKindError) Is(target error) bool {
	return target == ErrColumnKind || target == ErrMissingColumn
}

// MissingColumns returns the offending column.
func (e *ColumnKindError) MissingColumns() []string {
	return []string{e.Column}
}

func requireText(t *domain.AssetTable, column string) error {
	kind, ok := t.ColumnKind(column)
	if !ok {
		return &MissingColumnError{Columns: []string{column}}
	}
	if kind != domain.KindText {
		return &ColumnKindError{Column: column, Want: "text", Got: kind}
	}
	return nil
}

func requireNumeric(t *domain.AssetTable, column string) error {
	kind, ok := t.ColumnKind(column)
	if !ok {
		return &MissingColumnError{Columns: []string{column}}
	}
	if kind != domain.KindNumber && kind != domain.KindYear {
		return &ColumnKindError{Column: column, Want: "number", Got: kind}
	}
	return nil
}

// GroupAndSum sums valueCol per distinct value of groupCol and returns the
// topN largest groups. Groups with equal sums keep first-encounter order.
// topN <= 0 returns every group.
func GroupAndSum(t *domain.AssetTable, groupCol, valueCol string, topN int) ([]domain.GroupTotal, error) {
	if t == nil {
		return nil, &MissingColumnError{Columns: []string{groupCol}}
	}
	if err := requireText(t, groupCol); err != nil {
		return nil, err
	}
	if err := requireNumeric(t, valueCol); err != nil {
		return nil, err
	}

	type bucket struct {
		values []float64
	}
	var order []string
	buckets := make(map[string]*bucket)
	for _, a := range t.Rows {
		key, _ := a.Text(groupCol)
		v, _ := a.Number(valueCol)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}
		b.values = append(b.values, v)
	}

	groups := make([]domain.GroupTotal, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		groups = append(groups, domain.GroupTotal{
			Group: key,
			Total: Sum(b.values),
			Count: len(b.values),
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return descending(groups[i].Total, groups[j].Total)
	})
	return truncate(groups, topN), nil
}

// TopByValue returns the topN assets with the largest sortCol, keeping
// source order among equal values. topN <= 0 returns every row.
func TopByValue(t *domain.AssetTable, sortCol string, topN int) ([]domain.Asset, error) {
	if t == nil {
		return nil, &MissingColumnError{Columns: []string{sortCol}}
	}
	if err := requireNumeric(t, sortCol); err != nil {
		return nil, err
	}

	rows := append([]domain.Asset(nil), t.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		vi, _ := rows[i].Number(sortCol)
		vj, _ := rows[j].Number(sortCol)
		return descending(vi, vj)
	})
	return truncate(rows, topN), nil
}

// descending orders larger values first and NaN last.
func descending(a, b float64) bool {
	if math.IsNaN(b) {
		return !math.IsNaN(a)
	}
	return a > b
}

func truncate[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}

// Sum adds values exactly in decimal. Non-finite inputs fall back to float
// addition so NaN and infinities propagate.
func Sum(values []float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return floatSum(values)
		}
		total = total.Add(decimal.NewFromFloat(v))
	}
	f, _ := total.Float64()
	return f
}

func floatSum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
