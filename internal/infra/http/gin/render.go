package ginserver

import (
	"html/template"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"

	"churnportal/internal/app/forms"
	"churnportal/internal/app/workspace"
	"churnportal/internal/domain/employee"
)

type pageData struct {
	Title         string
	Authenticated bool
	Username      string
	CSRFField     template.HTML
	CSRFToken     string
	Notice        string
	Error         string
	Body          template.HTML
	Login         loginView
	Single        *singleView
	Batch         *batchView
}

type loginView struct {
	Username string
	Errors   map[string]string
}

type fieldView struct {
	Spec      forms.FieldSpec
	ID        string
	InputName string
	Value     string
	Error     string
	Step      string
	Slider    bool
}

type singleView struct {
	Fields     []fieldView
	Loading    bool
	Prediction employee.Prediction
}

type rowView struct {
	Index  int
	Number int
	Fields []fieldView
}

type batchView struct {
	Rows       []rowView
	Loading    bool
	HasOutcome bool
	Outcome    employee.BatchOutcome
	ReportURL  string
}

func newPageData(c *gin.Context, title string) pageData {
	data := pageData{
		Title:     title,
		CSRFField: csrf.TemplateField(c.Request),
		CSRFToken: csrf.Token(c.Request),
	}
	if session, ok := currentSession(c); ok {
		data.Authenticated = true
		data.Username = session.Username
	}
	return data
}

func fieldViews(scale employee.Scale, prefix string, values, problems map[string]string) []fieldView {
	specs := forms.Specs(scale)
	views := make([]fieldView, 0, len(specs))
	for _, spec := range specs {
		views = append(views, fieldView{
			Spec:      spec,
			ID:        prefix + spec.Name,
			InputName: prefix + spec.Name,
			Value:     values[spec.Name],
			Error:     problems[spec.Name],
			Step:      scale.Step(),
			Slider:    scale == employee.ScaleTen,
		})
	}
	return views
}

func newSingleView(view workspace.SingleView, problems map[string]string) *singleView {
	return &singleView{
		Fields:     fieldViews(view.Config.Scale, "", view.Values, problems),
		Loading:    view.Loading,
		Prediction: view.Prediction,
	}
}

func newBatchView(view workspace.BatchView, problems *forms.BatchValidationError) *batchView {
	rows := make([]rowView, 0, len(view.Rows))
	for i, values := range view.Rows {
		rows = append(rows, rowView{
			Index:  i,
			Number: i + 1,
			Fields: fieldViews(view.Config.Scale, rowPrefix(i), values, problems.RowProblems(i)),
		})
	}
	return &batchView{
		Rows:       rows,
		Loading:    view.Loading,
		HasOutcome: view.HasOutcome,
		Outcome:    view.Outcome,
		ReportURL:  view.ReportURL,
	}
}

// rowPrefix names batch inputs rows.<i>.<field>.
func rowPrefix(i int) string {
	return "rows." + strconv.Itoa(i) + "."
}
