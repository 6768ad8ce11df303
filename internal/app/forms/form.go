package forms

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"churnportal/internal/domain/employee"
)

var (
	ErrLastRow  = errors.New("forms: batch must keep at least one row")
	ErrRowIndex = errors.New("forms: row index out of range")
	ErrNoRows   = errors.New("forms: no rows to load")
)

// ValidationError lists every field that blocks submission, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "forms: invalid input"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return "forms: " + strings.Join(parts, "; ")
}

// Form holds the raw input of one employee record as the user typed it.
type Form struct {
	cfg    PageConfig
	values map[string]string
}

func NewForm(cfg PageConfig) *Form {
	return &Form{cfg: cfg, values: defaultValues(cfg.Scale)}
}

func defaultValues(scale employee.Scale) map[string]string {
	values := make(map[string]string, len(FieldNames))
	for _, name := range FieldNames {
		values[name] = ""
	}
	values[FieldSatisfaction] = scale.DefaultRating()
	values[FieldEvaluation] = scale.DefaultRating()
	values[FieldAccident] = "0"
	values[FieldPromotion] = "0"
	return values
}

func (f *Form) Config() PageConfig {
	return f.cfg
}

// UpdateField replaces a single value and leaves the rest untouched.
func (f *Form) UpdateField(name, value string) error {
	if !knownField(name) {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	f.values[name] = value
	return nil
}

func (f *Form) Value(name string) string {
	return f.values[name]
}

func (f *Form) Values() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

func (f *Form) Clone() *Form {
	return &Form{cfg: f.cfg, values: f.Values()}
}

// Record parses the current values on the form's own scale.
func (f *Form) Record() (employee.Record, error) {
	return parseRecord(f.values, f.cfg.Scale)
}

func parseRecord(values map[string]string, scale employee.Scale) (employee.Record, error) {
	p := parser{values: values, problems: map[string]string{}}
	lo, hi := scale.Bounds()

	rec := employee.Record{
		SatisfactionLevel:   p.rating(FieldSatisfaction, lo, hi),
		LastEvaluation:      p.rating(FieldEvaluation, lo, hi),
		NumberProject:       p.integer(FieldProjects),
		AverageMonthlyHours: p.integer(FieldHours),
		TimeSpendCompany:    p.integer(FieldYears),
		WorkAccident:        p.flag(FieldAccident),
		PromotionLast5Years: p.flag(FieldPromotion),
	}
	if raw, ok := p.required(FieldDepartment); ok {
		dept, err := employee.ParseDepartment(raw)
		if err != nil {
			p.problems[FieldDepartment] = "must be one of the listed departments"
		}
		rec.Department = dept
	}
	if raw, ok := p.required(FieldSalary); ok {
		salary, err := employee.ParseSalary(raw)
		if err != nil {
			p.problems[FieldSalary] = "must be low, medium or high"
		}
		rec.Salary = salary
	}

	if len(p.problems) > 0 {
		return employee.Record{}, &ValidationError{Fields: p.problems}
	}

	var invalid *employee.InvalidRecordError
	if err := rec.Normalized(scale).Validate(); errors.As(err, &invalid) {
		return employee.Record{}, &ValidationError{Fields: invalid.Fields}
	} else if err != nil {
		return employee.Record{}, err
	}
	return rec, nil
}

type parser struct {
	values   map[string]string
	problems map[string]string
}

func (p *parser) required(name string) (string, bool) {
	raw := strings.TrimSpace(p.values[name])
	if raw == "" {
		p.problems[name] = "is required"
		return "", false
	}
	return raw, true
}

func (p *parser) rating(name string, lo, hi float64) float64 {
	raw, ok := p.required(name)
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.problems[name] = "must be a number"
		return 0
	}
	if v < lo || v > hi {
		p.problems[name] = fmt.Sprintf("must be between %s and %s",
			strconv.FormatFloat(lo, 'f', -1, 64), strconv.FormatFloat(hi, 'f', -1, 64))
		return 0
	}
	return v
}

func (p *parser) integer(name string) int {
	raw, ok := p.required(name)
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.problems[name] = "must be a whole number"
		return 0
	}
	spec := integerSpecs[name]
	if v < spec.Min || v > spec.Max {
		p.problems[name] = fmt.Sprintf("must be between %d and %d", spec.Min, spec.Max)
		return 0
	}
	return v
}

func (p *parser) flag(name string) int {
	raw, ok := p.required(name)
	if !ok {
		return 0
	}
	switch raw {
	case "0":
		return 0
	case "1":
		return 1
	default:
		p.problems[name] = "must be 0 or 1"
		return 0
	}
}
