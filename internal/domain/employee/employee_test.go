package employee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() Record {
	return Record{
		SatisfactionLevel:   7,
		LastEvaluation:      8,
		NumberProject:       3,
		AverageMonthlyHours: 160,
		TimeSpendCompany:    4,
		WorkAccident:        0,
		PromotionLast5Years: 1,
		Department:          DepartmentSales,
		Salary:              SalaryMedium,
	}
}

func TestRecordNormalizedDividesRatingsOnTenScale(t *testing.T) {
	r := validRecord().Normalized(ScaleTen)

	assert.Equal(t, 0.7, r.SatisfactionLevel)
	assert.Equal(t, 0.8, r.LastEvaluation)
	assert.Equal(t, 3, r.NumberProject)
	assert.Equal(t, 160, r.AverageMonthlyHours)
	assert.Equal(t, 4, r.TimeSpendCompany)
	assert.Equal(t, 1, r.PromotionLast5Years)
	assert.Equal(t, DepartmentSales, r.Department)
	assert.Equal(t, SalaryMedium, r.Salary)
}

func TestRecordNormalizedKeepsUnitScale(t *testing.T) {
	r := validRecord()
	r.SatisfactionLevel = 0.42
	r.LastEvaluation = 0.9

	out := r.Normalized(ScaleUnit)
	assert.Equal(t, 0.42, out.SatisfactionLevel)
	assert.Equal(t, 0.9, out.LastEvaluation)
}

func TestEveryTenScaleValueDividesByTen(t *testing.T) {
	for v := 1; v <= 10; v++ {
		r := validRecord()
		r.SatisfactionLevel = float64(v)
		r.LastEvaluation = float64(v)
		out := r.Normalized(ScaleTen)
		assert.Equal(t, float64(v)/10, out.SatisfactionLevel)
		assert.Equal(t, float64(v)/10, out.LastEvaluation)
	}
}

func TestRecordValidateAcceptsNormalizedRecord(t *testing.T) {
	require.NoError(t, validRecord().Normalized(ScaleTen).Validate())
}

func TestRecordValidateReportsWireFieldNames(t *testing.T) {
	r := validRecord().Normalized(ScaleTen)
	r.Department = "finance"
	r.Salary = ""
	r.WorkAccident = 2
	r.NumberProject = 0

	err := r.Validate()
	require.Error(t, err)

	var invalid *InvalidRecordError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Fields, "Departments")
	assert.Contains(t, invalid.Fields, "salary")
	assert.Contains(t, invalid.Fields, "Work_accident")
	assert.Contains(t, invalid.Fields, "number_project")
	assert.Equal(t, "is required", invalid.Fields["salary"])
}

func TestRecordValidateRejectsUnnormalizedRatings(t *testing.T) {
	err := validRecord().Validate()

	var invalid *InvalidRecordError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Fields, "satisfaction_level")
	assert.Contains(t, invalid.Fields, "last_evaluation")
}

func TestParseDepartmentAndSalary(t *testing.T) {
	d, err := ParseDepartment(" Product_Mng ")
	require.NoError(t, err)
	assert.Equal(t, DepartmentProductMng, d)

	_, err = ParseDepartment("finance")
	assert.ErrorIs(t, err, ErrInvalidDepartment)

	s, err := ParseSalary("HIGH")
	require.NoError(t, err)
	assert.Equal(t, SalaryHigh, s)

	_, err = ParseSalary("")
	assert.ErrorIs(t, err, ErrInvalidSalary)
}

func TestParseScale(t *testing.T) {
	s, err := ParseScale("1-10")
	require.NoError(t, err)
	assert.Equal(t, ScaleTen, s)
	assert.Equal(t, "5", s.DefaultRating())

	s, err = ParseScale("0-1")
	require.NoError(t, err)
	assert.Equal(t, ScaleUnit, s)
	assert.Equal(t, "", s.DefaultRating())

	_, err = ParseScale("percent")
	assert.ErrorIs(t, err, ErrUnknownScale)
}
