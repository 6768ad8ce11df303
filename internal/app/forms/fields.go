package forms

import (
	"errors"
	"strings"

	"churnportal/internal/domain/employee"
)

var (
	ErrUnknownField = errors.New("forms: unknown field")
	ErrUnknownMode  = errors.New("forms: unknown page mode")
)

// Form field names. They match the keys the prediction API expects.
const (
	FieldSatisfaction = "satisfaction_level"
	FieldEvaluation   = "last_evaluation"
	FieldProjects     = "number_project"
	FieldHours        = "average_montly_hours"
	FieldYears        = "time_spend_company"
	FieldAccident     = "Work_accident"
	FieldPromotion    = "promotion_last_5years"
	FieldDepartment   = "Departments"
	FieldSalary       = "salary"
)

// FieldNames lists every form field in display order.
var FieldNames = []string{
	FieldSatisfaction,
	FieldEvaluation,
	FieldProjects,
	FieldHours,
	FieldYears,
	FieldAccident,
	FieldPromotion,
	FieldDepartment,
	FieldSalary,
}

type FieldKind string

const (
	KindRating  FieldKind = "rating"
	KindInteger FieldKind = "integer"
	KindChoice  FieldKind = "choice"
)

type Option struct {
	Value string
	Label string
}

type FieldSpec struct {
	Name        string
	Label       string
	ShortLabel  string
	Help        string
	Kind        FieldKind
	Min         int
	Max         int
	Placeholder string
	Options     []Option
}

var yesNoOptions = []Option{{Value: "0", Label: "No"}, {Value: "1", Label: "Yes"}}

var departmentLabels = map[employee.Department]string{
	employee.DepartmentSales:      "Sales",
	employee.DepartmentHR:         "Human Resources",
	employee.DepartmentTechnical:  "Technical",
	employee.DepartmentSupport:    "Support",
	employee.DepartmentIT:         "IT",
	employee.DepartmentProductMng: "Product Management",
	employee.DepartmentMarketing:  "Marketing",
	employee.DepartmentManagement: "Management",
}

var salaryLabels = map[employee.Salary]string{
	employee.SalaryLow:    "Low",
	employee.SalaryMedium: "Medium",
	employee.SalaryHigh:   "High",
}

func departmentOptions() []Option {
	opts := make([]Option, 0, len(employee.Departments))
	for _, d := range employee.Departments {
		opts = append(opts, Option{Value: string(d), Label: departmentLabels[d]})
	}
	return opts
}

func salaryOptions() []Option {
	opts := make([]Option, 0, len(employee.Salaries))
	for _, s := range employee.Salaries {
		opts = append(opts, Option{Value: string(s), Label: salaryLabels[s]})
	}
	return opts
}

var integerSpecs = map[string]FieldSpec{
	FieldProjects: {
		Name: FieldProjects, Label: "Number of Projects", ShortLabel: "Projects",
		Help: "How many projects the employee is currently handling.",
		Kind: KindInteger, Min: 1, Max: 20, Placeholder: "e.g. 3",
	},
	FieldHours: {
		Name: FieldHours, Label: "Average Monthly Hours", ShortLabel: "Monthly Hours",
		Help: "Average number of hours the employee works per month.",
		Kind: KindInteger, Min: 40, Max: 350, Placeholder: "e.g. 160",
	},
	FieldYears: {
		Name: FieldYears, Label: "Years at Company", ShortLabel: "Years",
		Help: "Total years the employee has spent in the organization.",
		Kind: KindInteger, Min: 0, Max: 40, Placeholder: "e.g. 4",
	},
}

// Specs describes the fields for rendering on the given scale.
func Specs(scale employee.Scale) []FieldSpec {
	lo, hi := scale.Bounds()
	suffix := " (" + scale.String() + ")"
	return []FieldSpec{
		{
			Name: FieldSatisfaction, Label: "Satisfaction Level" + suffix, ShortLabel: "Sat" + suffix,
			Help: "Overall job satisfaction score given by the employee.",
			Kind: KindRating, Min: int(lo), Max: int(hi),
		},
		{
			Name: FieldEvaluation, Label: "Last Evaluation" + suffix, ShortLabel: "Eval" + suffix,
			Help: "Performance evaluation score from the last review.",
			Kind: KindRating, Min: int(lo), Max: int(hi),
		},
		integerSpecs[FieldProjects],
		integerSpecs[FieldHours],
		integerSpecs[FieldYears],
		{
			Name: FieldAccident, Label: "Work Accident", ShortLabel: "Accident",
			Help: "Has the employee experienced a work accident?",
			Kind: KindChoice, Options: yesNoOptions,
		},
		{
			Name: FieldPromotion, Label: "Promotion in Last 5 Years", ShortLabel: "Promotion",
			Help: "Has the employee been promoted in the last 5 years?",
			Kind: KindChoice, Options: yesNoOptions,
		},
		{
			Name: FieldDepartment, Label: "Department", ShortLabel: "Department",
			Help: "Department where the employee works.",
			Kind: KindChoice, Placeholder: "Select Department...", Options: departmentOptions(),
		},
		{
			Name: FieldSalary, Label: "Salary Range", ShortLabel: "Salary",
			Help: "Overall salary band of the employee.",
			Kind: KindChoice, Placeholder: "Select Salary Range...", Options: salaryOptions(),
		},
	}
}

func knownField(name string) bool {
	for _, f := range FieldNames {
		if f == name {
			return true
		}
	}
	return false
}

// CanonicalField maps a loosely written column or field name onto a form field.
func CanonicalField(raw string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	switch key {
	case "satisfaction_level", "satisfaction":
		return FieldSatisfaction, true
	case "last_evaluation", "evaluation":
		return FieldEvaluation, true
	case "number_project", "projects":
		return FieldProjects, true
	case "average_montly_hours", "average_monthly_hours", "monthly_hours":
		return FieldHours, true
	case "time_spend_company", "years":
		return FieldYears, true
	case "work_accident", "accident":
		return FieldAccident, true
	case "promotion_last_5years", "promotion":
		return FieldPromotion, true
	case "departments", "department":
		return FieldDepartment, true
	case "salary":
		return FieldSalary, true
	default:
		return "", false
	}
}

type Mode string

const (
	ModeSingle Mode = "single"
	ModeBatch  Mode = "batch"
)

// PageConfig selects the input convention and layout of a prediction page.
type PageConfig struct {
	Scale employee.Scale `json:"scale"`
	Mode  Mode           `json:"mode"`
}

func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeSingle:
		return ModeSingle, nil
	case ModeBatch:
		return ModeBatch, nil
	default:
		return "", ErrUnknownMode
	}
}
