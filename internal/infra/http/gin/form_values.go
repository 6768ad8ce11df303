package ginserver

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"churnportal/internal/app/forms"
	"churnportal/internal/app/workspace"
)

// fieldValues picks the known form fields carrying prefix out of a posted form.
func fieldValues(form url.Values, prefix string) map[string]string {
	values := make(map[string]string)
	for _, name := range forms.FieldNames {
		if vs, ok := form[prefix+name]; ok && len(vs) > 0 {
			values[name] = vs[0]
		}
	}
	return values
}

// rowValues groups posted rows.<i>.<field> inputs by row index.
func rowValues(form url.Values) map[int]map[string]string {
	rows := make(map[int]map[string]string)
	for key, vs := range form {
		rest, ok := strings.CutPrefix(key, "rows.")
		if !ok || len(vs) == 0 {
			continue
		}
		idx, name, ok := strings.Cut(rest, ".")
		if !ok {
			continue
		}
		i, err := strconv.Atoi(idx)
		if err != nil || i < 0 {
			continue
		}
		if rows[i] == nil {
			rows[i] = make(map[string]string)
		}
		rows[i][name] = vs[0]
	}
	return rows
}

func loadWorkspace(c *gin.Context, store workspace.Store, logger *slog.Logger) (*workspace.Workspace, bool) {
	if store == nil {
		c.String(http.StatusServiceUnavailable, "workspace store unavailable")
		return nil, false
	}
	ws, err := store.Load(c.Request.Context(), browserIDFrom(c))
	if err != nil {
		if logger != nil {
			logger.Error("workspace load failed", "error", err)
		}
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "workspace unavailable")
		return nil, false
	}
	return ws, true
}
