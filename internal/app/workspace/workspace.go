package workspace

import (
	"context"
	"errors"
	"sync"

	"churnportal/internal/app/forms"
	"churnportal/internal/domain/auth"
	"churnportal/internal/domain/employee"
)

// ErrBusy is returned when a form is submitted while its previous submission
// is still waiting for the prediction API.
var ErrBusy = errors.New("workspace: prediction already in progress")

// Store keeps one workspace per browser session.
type Store interface {
	// Load returns the workspace for id, creating an empty one on first use.
	Load(ctx context.Context, id auth.BrowserID) (*Workspace, error)
	Delete(ctx context.Context, id auth.BrowserID) error
	// Move rebinds the workspace of from to to. A missing workspace is not an error.
	Move(ctx context.Context, from, to auth.BrowserID) error
}

// Workspace is the page state of one browser: both forms, their loading
// flags and the last results shown.
type Workspace struct {
	mu sync.Mutex

	single        *forms.Form
	singleLoading bool
	prediction    employee.Prediction

	batch        *forms.BatchForm
	batchLoading bool
	outcome      employee.BatchOutcome
	outcomeRows  []map[string]string
	hasOutcome   bool
	reportURL    string
}

func New(scale employee.Scale) *Workspace {
	return &Workspace{
		single: forms.NewForm(forms.PageConfig{Scale: scale, Mode: forms.ModeSingle}),
		batch:  forms.NewBatchForm(forms.PageConfig{Scale: scale, Mode: forms.ModeBatch}),
	}
}

type SingleView struct {
	Config     forms.PageConfig
	Values     map[string]string
	Loading    bool
	Prediction employee.Prediction
}

type BatchView struct {
	Config     forms.PageConfig
	Rows       []map[string]string
	Loading    bool
	HasOutcome bool
	Outcome    employee.BatchOutcome
	ReportURL  string
}

func (w *Workspace) Single() SingleView {
	w.mu.Lock()
	defer w.mu.Unlock()
	return SingleView{
		Config:     w.single.Config(),
		Values:     w.single.Values(),
		Loading:    w.singleLoading,
		Prediction: w.prediction,
	}
}

func (w *Workspace) Batch() BatchView {
	w.mu.Lock()
	defer w.mu.Unlock()
	return BatchView{
		Config:     w.batch.Config(),
		Rows:       w.batch.Rows(),
		Loading:    w.batchLoading,
		HasOutcome: w.hasOutcome,
		Outcome:    cloneOutcome(w.outcome),
		ReportURL:  w.reportURL,
	}
}

func (w *Workspace) UpdateSingle(name, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.single.UpdateField(name, value)
}

// ApplySingle applies several field updates at once, stopping at the first unknown field.
func (w *Workspace) ApplySingle(values map[string]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	next := w.single.Clone()
	for name, value := range values {
		if err := next.UpdateField(name, value); err != nil {
			return err
		}
	}
	w.single = next
	return nil
}

func (w *Workspace) UpdateBatch(row int, name, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.batch.UpdateField(row, name, value)
}

func (w *Workspace) AddRow() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.batch.AddRow()
	return w.batch.Len()
}

func (w *Workspace) RemoveRow(row int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.batch.RemoveRow(row)
}

// ReplaceRows swaps the batch rows, typically from a spreadsheet import.
func (w *Workspace) ReplaceRows(rows []map[string]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.batch.ReplaceRows(rows)
}

// BeginSingle validates the single form and marks it loading. A validation
// failure leaves the flag untouched.
func (w *Workspace) BeginSingle() (employee.Record, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.singleLoading {
		return employee.Record{}, ErrBusy
	}
	rec, err := w.single.Record()
	if err != nil {
		return employee.Record{}, err
	}
	w.singleLoading = true
	return rec, nil
}

// FinishSingle stores the result and clears the loading flag. The latest
// finished call always wins.
func (w *Workspace) FinishSingle(p employee.Prediction) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prediction = p
	w.singleLoading = false
}

// BeginBatch validates every row and marks the batch loading. The returned
// rows are the raw values that were submitted.
func (w *Workspace) BeginBatch() (employee.Batch, []map[string]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.batchLoading {
		return employee.Batch{}, nil, ErrBusy
	}
	batch, err := w.batch.Batch()
	if err != nil {
		return employee.Batch{}, nil, err
	}
	w.batchLoading = true
	return batch, w.batch.Rows(), nil
}

func (w *Workspace) FinishBatch(outcome employee.BatchOutcome, rows []map[string]string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.outcome = cloneOutcome(outcome)
	w.outcomeRows = rows
	w.hasOutcome = true
	w.reportURL = ""
	w.batchLoading = false
}

func (w *Workspace) SetReportURL(url string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reportURL = url
}

// LastBatch returns the last finished batch together with the rows it was computed from.
func (w *Workspace) LastBatch() (employee.BatchOutcome, []map[string]string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.hasOutcome {
		return employee.BatchOutcome{}, nil, false
	}
	rows := make([]map[string]string, len(w.outcomeRows))
	copy(rows, w.outcomeRows)
	return cloneOutcome(w.outcome), rows, true
}

func cloneOutcome(o employee.BatchOutcome) employee.BatchOutcome {
	out := o
	if o.Predictions != nil {
		out.Predictions = append([]employee.Prediction(nil), o.Predictions...)
	}
	return out
}
