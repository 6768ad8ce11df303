package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"churnportal/internal/app/forms"
	"churnportal/internal/app/workspace"
	"churnportal/internal/domain/employee"
)

type FormsAPIHTTP interface {
	Single(c *gin.Context)
	UpdateSingleField(c *gin.Context)
	Batch(c *gin.Context)
	AddRow(c *gin.Context)
	RemoveRow(c *gin.Context)
	UpdateRowField(c *gin.Context)
}

// FormsAPIHandler exposes the workspace forms as JSON so pages can update
// fields without a full reload.
type FormsAPIHandler struct {
	Workspaces workspace.Store
	Logger     *slog.Logger
}

type fieldUpdateRequest struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value"`
}

type predictionResponse struct {
	Label  string `json:"label,omitempty"`
	Error  string `json:"error,omitempty"`
	Leaves bool   `json:"leaves"`
}

type singleResponse struct {
	Config     forms.PageConfig    `json:"config"`
	Values     map[string]string   `json:"values"`
	Loading    bool                `json:"loading"`
	Prediction *predictionResponse `json:"prediction"`
}

type batchResponse struct {
	Config      forms.PageConfig       `json:"config"`
	Rows        []map[string]string    `json:"rows"`
	Loading     bool                   `json:"loading"`
	Summary     *employee.BatchSummary `json:"summary"`
	Predictions []predictionResponse   `json:"predictions"`
	ReportURL   string                 `json:"report_url,omitempty"`
}

func (h FormsAPIHandler) Single(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSingleResponse(ws.Single()))
}

func (h FormsAPIHandler) UpdateSingleField(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	var req fieldUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := ws.UpdateSingle(req.Name, req.Value); err != nil {
		h.respondFormError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSingleResponse(ws.Single()))
}

func (h FormsAPIHandler) Batch(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newBatchResponse(ws.Batch()))
}

func (h FormsAPIHandler) AddRow(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	ws.AddRow()
	c.JSON(http.StatusCreated, newBatchResponse(ws.Batch()))
}

func (h FormsAPIHandler) RemoveRow(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	idx, ok := rowIndexParam(c)
	if !ok {
		return
	}
	if err := ws.RemoveRow(idx); err != nil {
		h.respondFormError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBatchResponse(ws.Batch()))
}

func (h FormsAPIHandler) UpdateRowField(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	idx, ok := rowIndexParam(c)
	if !ok {
		return
	}
	var req fieldUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := ws.UpdateBatch(idx, req.Name, req.Value); err != nil {
		h.respondFormError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBatchResponse(ws.Batch()))
}

func (h FormsAPIHandler) workspace(c *gin.Context) (*workspace.Workspace, bool) {
	if h.Workspaces == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "workspace store unavailable"})
		return nil, false
	}
	ws, err := h.Workspaces.Load(c.Request.Context(), browserIDFrom(c))
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("workspace load failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "workspace unavailable"})
		return nil, false
	}
	return ws, true
}

func (h FormsAPIHandler) respondFormError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, forms.ErrUnknownField):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown field"})
	case errors.Is(err, forms.ErrRowIndex):
		c.JSON(http.StatusNotFound, gin.H{"error": "row not found"})
	case errors.Is(err, forms.ErrLastRow):
		c.JSON(http.StatusConflict, gin.H{"error": "at least one row is required"})
	default:
		if h.Logger != nil {
			h.Logger.Error("form update failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func rowIndexParam(c *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid row index"})
		return 0, false
	}
	return idx, true
}

func newPredictionResponse(p employee.Prediction) predictionResponse {
	return predictionResponse{Label: p.Label, Error: p.Error, Leaves: p.Leaves()}
}

func newSingleResponse(view workspace.SingleView) singleResponse {
	resp := singleResponse{Config: view.Config, Values: view.Values, Loading: view.Loading}
	if !view.Prediction.IsZero() {
		p := newPredictionResponse(view.Prediction)
		resp.Prediction = &p
	}
	return resp
}

func newBatchResponse(view workspace.BatchView) batchResponse {
	resp := batchResponse{
		Config:      view.Config,
		Rows:        view.Rows,
		Loading:     view.Loading,
		Predictions: []predictionResponse{},
		ReportURL:   view.ReportURL,
	}
	if view.HasOutcome {
		summary := view.Outcome.Summary
		resp.Summary = &summary
		for _, p := range view.Outcome.Predictions {
			resp.Predictions = append(resp.Predictions, newPredictionResponse(p))
		}
	}
	return resp
}

var _ FormsAPIHTTP = FormsAPIHandler{}
