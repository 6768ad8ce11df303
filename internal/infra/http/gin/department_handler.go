package ginserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"churnportal/internal/app/forms"
	"churnportal/internal/app/services/prediction"
	"churnportal/internal/app/services/reports"
	"churnportal/internal/app/workspace"
	"churnportal/internal/infra/spreadsheet"
)

const (
	departmentPath = "/department"
	maxUploadBytes = 8 << 20
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type DepartmentHTTP interface {
	Show(c *gin.Context)
	Submit(c *gin.Context)
	Import(c *gin.Context)
	Report(c *gin.Context)
}

// DepartmentHandler serves the batch prediction page.
type DepartmentHandler struct {
	Predictions *prediction.Service
	Reports     *reports.Service
	Workspaces  workspace.Store
	Logger      *slog.Logger
}

func (h DepartmentHandler) Show(c *gin.Context) {
	ws, ok := loadWorkspace(c, h.Workspaces, h.Logger)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, ws, nil, "")
}

// Submit handles the three buttons of the batch form: add, remove:<i> and
// submit. Posted values are applied first so nothing typed is lost. The
// whole form is refused while a batch is in flight.
func (h DepartmentHandler) Submit(c *gin.Context) {
	ws, ok := loadWorkspace(c, h.Workspaces, h.Logger)
	if !ok {
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		h.render(c, http.StatusBadRequest, ws, nil, "invalid form submission")
		return
	}
	action := strings.TrimSpace(c.Request.PostForm.Get("action"))
	if ws.Batch().Loading {
		h.render(c, http.StatusConflict, ws, nil, busyNotice)
		return
	}
	if err := applyRows(ws, c.Request.PostForm); err != nil {
		h.render(c, http.StatusBadRequest, ws, nil, err.Error())
		return
	}

	switch {
	case action == "add":
		ws.AddRow()
		c.Redirect(http.StatusSeeOther, departmentPath)
	case strings.HasPrefix(action, "remove:"):
		idx, err := strconv.Atoi(strings.TrimPrefix(action, "remove:"))
		if err != nil {
			h.render(c, http.StatusBadRequest, ws, nil, "invalid row")
			return
		}
		if err := ws.RemoveRow(idx); err != nil {
			h.respondRowError(c, ws, err)
			return
		}
		c.Redirect(http.StatusSeeOther, departmentPath)
	case action == "submit" || action == "":
		h.submit(c, ws)
	default:
		h.render(c, http.StatusBadRequest, ws, nil, fmt.Sprintf("unknown action %q", action))
	}
}

func (h DepartmentHandler) submit(c *gin.Context, ws *workspace.Workspace) {
	batch, rows, err := ws.BeginBatch()
	if err != nil {
		var berr *forms.BatchValidationError
		switch {
		case errors.As(err, &berr):
			h.render(c, http.StatusUnprocessableEntity, ws, berr, "")
		case errors.Is(err, workspace.ErrBusy):
			h.render(c, http.StatusConflict, ws, nil, busyNotice)
		default:
			_ = c.Error(err)
			h.render(c, http.StatusInternalServerError, ws, nil, "prediction could not be started")
		}
		return
	}

	outcome := h.Predictions.PredictBatch(c.Request.Context(), batch, ws.Batch().Config.Scale)
	ws.FinishBatch(outcome, rows)

	if h.Reports.Enabled() && !outcome.Failed() {
		owner := ""
		if session, ok := currentSession(c); ok {
			owner = session.Username
		}
		if url := h.Reports.ArchiveBatch(c.Request.Context(), owner, rows, outcome); url != "" {
			ws.SetReportURL(url)
		}
	}
	h.render(c, http.StatusOK, ws, nil, "")
}

// Import replaces the batch rows with the rows of an uploaded spreadsheet.
func (h DepartmentHandler) Import(c *gin.Context) {
	ws, ok := loadWorkspace(c, h.Workspaces, h.Logger)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		h.render(c, http.StatusBadRequest, ws, nil, "Please choose a spreadsheet to import.")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.render(c, http.StatusBadRequest, ws, nil, "The uploaded file could not be read.")
		return
	}
	defer file.Close()

	rows, err := spreadsheet.ReadRows(file, header.Filename)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Info("spreadsheet import rejected", "filename", header.Filename, "error", err)
		}
		h.render(c, http.StatusUnprocessableEntity, ws, nil, importMessage(err))
		return
	}
	if err := ws.ReplaceRows(rows); err != nil {
		h.render(c, http.StatusUnprocessableEntity, ws, nil, importMessage(err))
		return
	}
	c.Redirect(http.StatusSeeOther, departmentPath)
}

// Report downloads the last batch result as xlsx.
func (h DepartmentHandler) Report(c *gin.Context) {
	ws, ok := loadWorkspace(c, h.Workspaces, h.Logger)
	if !ok {
		return
	}
	if h.Reports == nil {
		c.String(http.StatusServiceUnavailable, "report export unavailable")
		return
	}
	outcome, rows, ok := ws.LastBatch()
	if !ok || outcome.Failed() {
		c.String(http.StatusNotFound, "no batch result to export")
		return
	}
	data, err := h.Reports.Export(rows, outcome)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("report export failed", "error", err)
		}
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "report export failed")
		return
	}
	filename := fmt.Sprintf("churn-report-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxMIME, data)
}

func (h DepartmentHandler) respondRowError(c *gin.Context, ws *workspace.Workspace, err error) {
	switch {
	case errors.Is(err, forms.ErrLastRow):
		h.render(c, http.StatusConflict, ws, nil, "At least one employee is required.")
	case errors.Is(err, forms.ErrRowIndex):
		h.render(c, http.StatusNotFound, ws, nil, "That employee row no longer exists.")
	default:
		_ = c.Error(err)
		h.render(c, http.StatusInternalServerError, ws, nil, "row update failed")
	}
}

func (h DepartmentHandler) render(c *gin.Context, status int, ws *workspace.Workspace, problems *forms.BatchValidationError, notice string) {
	data := newPageData(c, "Department")
	data.Notice = notice
	data.Batch = newBatchView(ws.Batch(), problems)
	c.HTML(status, "department.html", data)
}

// applyRows writes posted row values into the workspace, lowest index first.
// Rows that no longer exist are skipped.
func applyRows(ws *workspace.Workspace, form map[string][]string) error {
	rows := rowValues(form)
	idx := make([]int, 0, len(rows))
	for i := range rows {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	for _, i := range idx {
		for name, value := range rows[i] {
			err := ws.UpdateBatch(i, name, value)
			if errors.Is(err, forms.ErrRowIndex) {
				break
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func importMessage(err error) string {
	var missing *spreadsheet.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		return "The spreadsheet is missing columns: " + strings.Join(missing.Columns, ", ")
	case errors.Is(err, spreadsheet.ErrEmptyWorksheet), errors.Is(err, forms.ErrNoRows):
		return "The spreadsheet has no employee rows."
	case errors.Is(err, spreadsheet.ErrMultipleSheets):
		return "Please upload a file with a single sheet."
	case errors.Is(err, spreadsheet.ErrUnsupportedFile):
		return "Only .xlsx and .xls files are supported."
	default:
		return "The spreadsheet could not be read."
	}
}

var _ DepartmentHTTP = DepartmentHandler{}
