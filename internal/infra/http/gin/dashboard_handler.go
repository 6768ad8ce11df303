package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"churnportal/internal/app/forms"
	"churnportal/internal/app/services/prediction"
	"churnportal/internal/app/workspace"
)

const busyNotice = "A prediction is already running for this form. Please wait for it to finish."

type DashboardHTTP interface {
	Show(c *gin.Context)
	Submit(c *gin.Context)
}

// DashboardHandler serves the single employee prediction page.
type DashboardHandler struct {
	Predictions *prediction.Service
	Workspaces  workspace.Store
	Logger      *slog.Logger
}

func (h DashboardHandler) Show(c *gin.Context) {
	ws, ok := loadWorkspace(c, h.Workspaces, h.Logger)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, ws, nil, "")
}

func (h DashboardHandler) Submit(c *gin.Context) {
	ws, ok := loadWorkspace(c, h.Workspaces, h.Logger)
	if !ok {
		return
	}
	if ws.Single().Loading {
		h.render(c, http.StatusConflict, ws, nil, busyNotice)
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		h.render(c, http.StatusBadRequest, ws, nil, "invalid form submission")
		return
	}
	if err := ws.ApplySingle(fieldValues(c.Request.PostForm, "")); err != nil {
		h.render(c, http.StatusBadRequest, ws, nil, err.Error())
		return
	}

	record, err := ws.BeginSingle()
	if err != nil {
		var verr *forms.ValidationError
		switch {
		case errors.As(err, &verr):
			h.render(c, http.StatusUnprocessableEntity, ws, verr.Fields, "")
		case errors.Is(err, workspace.ErrBusy):
			h.render(c, http.StatusConflict, ws, nil, busyNotice)
		default:
			_ = c.Error(err)
			h.render(c, http.StatusInternalServerError, ws, nil, "prediction could not be started")
		}
		return
	}

	result := h.Predictions.Predict(c.Request.Context(), record, ws.Single().Config.Scale)
	ws.FinishSingle(result)
	h.render(c, http.StatusOK, ws, nil, "")
}

func (h DashboardHandler) render(c *gin.Context, status int, ws *workspace.Workspace, problems map[string]string, notice string) {
	data := newPageData(c, "Dashboard")
	data.Notice = notice
	data.Single = newSingleView(ws.Single(), problems)
	c.HTML(status, "dashboard.html", data)
}

var _ DashboardHTTP = DashboardHandler{}
