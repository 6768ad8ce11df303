package forms

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"churnportal/internal/domain/employee"
)

// BatchValidationError groups field problems by zero-based row index.
type BatchValidationError struct {
	Rows map[int]*ValidationError
}

func (e *BatchValidationError) Error() string {
	if e == nil || len(e.Rows) == 0 {
		return "forms: invalid batch"
	}
	idx := make([]int, 0, len(e.Rows))
	for i := range e.Rows {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	parts := make([]string, 0, len(idx))
	for _, i := range idx {
		parts = append(parts, "employee "+strconv.Itoa(i+1)+": "+strings.TrimPrefix(e.Rows[i].Error(), "forms: "))
	}
	return "forms: " + strings.Join(parts, "; ")
}

// RowProblems returns the field messages for one row, or nil.
func (e *BatchValidationError) RowProblems(i int) map[string]string {
	if e == nil {
		return nil
	}
	if row, ok := e.Rows[i]; ok {
		return row.Fields
	}
	return nil
}

// BatchForm is an ordered, never empty list of employee forms.
type BatchForm struct {
	cfg  PageConfig
	rows []*Form
}

func NewBatchForm(cfg PageConfig) *BatchForm {
	return &BatchForm{cfg: cfg, rows: []*Form{NewForm(cfg)}}
}

func (b *BatchForm) Config() PageConfig {
	return b.cfg
}

func (b *BatchForm) Len() int {
	return len(b.rows)
}

func (b *BatchForm) AddRow() {
	b.rows = append(b.rows, NewForm(b.cfg))
}

func (b *BatchForm) RemoveRow(i int) error {
	if i < 0 || i >= len(b.rows) {
		return fmt.Errorf("%w: %d", ErrRowIndex, i)
	}
	if len(b.rows) == 1 {
		return ErrLastRow
	}
	b.rows = append(b.rows[:i], b.rows[i+1:]...)
	return nil
}

func (b *BatchForm) UpdateField(i int, name, value string) error {
	if i < 0 || i >= len(b.rows) {
		return fmt.Errorf("%w: %d", ErrRowIndex, i)
	}
	return b.rows[i].UpdateField(name, value)
}

// Rows returns a copy of every row's values.
func (b *BatchForm) Rows() []map[string]string {
	out := make([]map[string]string, 0, len(b.rows))
	for _, row := range b.rows {
		out = append(out, row.Values())
	}
	return out
}

// ReplaceRows swaps every row for the given values. Keys are matched with
// CanonicalField; missing fields keep their defaults.
func (b *BatchForm) ReplaceRows(rows []map[string]string) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	next := make([]*Form, 0, len(rows))
	for _, values := range rows {
		form := NewForm(b.cfg)
		for key, value := range values {
			name, ok := CanonicalField(key)
			if !ok {
				continue
			}
			form.values[name] = strings.TrimSpace(value)
		}
		next = append(next, form)
	}
	b.rows = next
	return nil
}

func (b *BatchForm) Clone() *BatchForm {
	rows := make([]*Form, 0, len(b.rows))
	for _, row := range b.rows {
		rows = append(rows, row.Clone())
	}
	return &BatchForm{cfg: b.cfg, rows: rows}
}

// Records parses every row on the page scale.
func (b *BatchForm) Records() ([]employee.Record, error) {
	records := make([]employee.Record, 0, len(b.rows))
	problems := map[int]*ValidationError{}
	for i, row := range b.rows {
		rec, err := row.Record()
		if err != nil {
			var verr *ValidationError
			if !errors.As(err, &verr) {
				return nil, err
			}
			problems[i] = verr
			continue
		}
		records = append(records, rec)
	}
	if len(problems) > 0 {
		return nil, &BatchValidationError{Rows: problems}
	}
	return records, nil
}

func (b *BatchForm) Batch() (employee.Batch, error) {
	records, err := b.Records()
	if err != nil {
		return employee.Batch{}, err
	}
	return employee.NewBatch(records)
}
