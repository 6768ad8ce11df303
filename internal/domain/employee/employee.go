package employee

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidDepartment = errors.New("employee: unknown department")
	ErrInvalidSalary     = errors.New("employee: unknown salary band")
)

type Department string

const (
	DepartmentSales      Department = "sales"
	DepartmentHR         Department = "hr"
	DepartmentTechnical  Department = "technical"
	DepartmentSupport    Department = "support"
	DepartmentIT         Department = "it"
	DepartmentProductMng Department = "product_mng"
	DepartmentMarketing  Department = "marketing"
	DepartmentManagement Department = "management"
)

// Departments lists the departments accepted by the prediction API in display order.
var Departments = []Department{
	DepartmentSales,
	DepartmentHR,
	DepartmentTechnical,
	DepartmentSupport,
	DepartmentIT,
	DepartmentProductMng,
	DepartmentMarketing,
	DepartmentManagement,
}

func ParseDepartment(raw string) (Department, error) {
	value := Department(strings.ToLower(strings.TrimSpace(raw)))
	for _, d := range Departments {
		if d == value {
			return d, nil
		}
	}
	return "", ErrInvalidDepartment
}

type Salary string

const (
	SalaryLow    Salary = "low"
	SalaryMedium Salary = "medium"
	SalaryHigh   Salary = "high"
)

var Salaries = []Salary{SalaryLow, SalaryMedium, SalaryHigh}

func ParseSalary(raw string) (Salary, error) {
	value := Salary(strings.ToLower(strings.TrimSpace(raw)))
	for _, s := range Salaries {
		if s == value {
			return s, nil
		}
	}
	return "", ErrInvalidSalary
}

// Record is one employee as sent to the prediction API. Satisfaction and
// evaluation are on the 0-1 scale once normalized.
type Record struct {
	SatisfactionLevel   float64    `json:"satisfaction_level" validate:"gte=0,lte=1"`
	LastEvaluation      float64    `json:"last_evaluation" validate:"gte=0,lte=1"`
	NumberProject       int        `json:"number_project" validate:"gte=1"`
	AverageMonthlyHours int        `json:"average_montly_hours" validate:"gte=0"`
	TimeSpendCompany    int        `json:"time_spend_company" validate:"gte=0"`
	WorkAccident        int        `json:"Work_accident" validate:"oneof=0 1"`
	PromotionLast5Years int        `json:"promotion_last_5years" validate:"oneof=0 1"`
	Department          Department `json:"Departments" validate:"required,oneof=sales hr technical support it product_mng marketing management"`
	Salary              Salary     `json:"salary" validate:"required,oneof=low medium high"`
}

// Normalized returns a copy with satisfaction and evaluation moved from scale
// to the 0-1 range expected by the API. Other fields pass through unchanged.
func (r Record) Normalized(scale Scale) Record {
	out := r
	out.SatisfactionLevel = scale.Normalize(r.SatisfactionLevel)
	out.LastEvaluation = scale.Normalize(r.LastEvaluation)
	return out
}

// Validate checks a normalized record. Violations are reported by wire field name.
func (r Record) Validate() error {
	err := recordValidator().Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = violationMessage(fe)
	}
	return &InvalidRecordError{Fields: fields}
}

// InvalidRecordError lists record fields that failed validation.
type InvalidRecordError struct {
	Fields map[string]string
}

func (e *InvalidRecordError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "employee: invalid record fields: " + strings.Join(names, ", ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}
