package employee

import (
	"errors"
	"strconv"
	"strings"
)

const (
	LabelWillLeave = "Employee will leave"
	LabelWillStay  = "Employee will stay"
)

var ErrSummaryMismatch = errors.New("employee: will_stay + will_leave must equal total_employees")

// Prediction holds either a label returned by the model or an error sentinel.
type Prediction struct {
	Label string
	Error string
}

func (p Prediction) Failed() bool {
	return p.Error != ""
}

// Text is what the portal displays for this prediction.
func (p Prediction) Text() string {
	if p.Failed() {
		return p.Error
	}
	return p.Label
}

// Leaves reports whether the label predicts the employee leaving.
func (p Prediction) Leaves() bool {
	return !p.Failed() && strings.Contains(strings.ToLower(p.Label), "leave")
}

func (p Prediction) IsZero() bool {
	return p.Label == "" && p.Error == ""
}

type BatchSummary struct {
	TotalEmployees       int     `json:"total_employees"`
	WillStay             int     `json:"will_stay"`
	WillLeave            int     `json:"will_leave"`
	AttritionRatePercent float64 `json:"attrition_rate_percent"`
	Error                string  `json:"error,omitempty"`
}

func (s BatchSummary) Failed() bool {
	return s.Error != ""
}

func (s BatchSummary) Check() error {
	if s.Failed() {
		return nil
	}
	if s.WillStay+s.WillLeave != s.TotalEmployees {
		return ErrSummaryMismatch
	}
	return nil
}

// AttritionRateText formats the rate with the precision the API returned.
func (s BatchSummary) AttritionRateText() string {
	return strconv.FormatFloat(s.AttritionRatePercent, 'f', -1, 64)
}

// BatchOutcome is what a batch submission leaves on the page.
type BatchOutcome struct {
	Summary     BatchSummary
	Predictions []Prediction
}

func (o BatchOutcome) Failed() bool {
	return o.Summary.Failed()
}
