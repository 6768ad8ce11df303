package ginserver

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

type PagesHTTP interface {
	Home(c *gin.Context)
	About(c *gin.Context)
}

// PagesHandler serves the public pages.
type PagesHandler struct {
	about template.HTML
}

func NewPagesHandler() (*PagesHandler, error) {
	body, err := renderMarkdown(aboutMarkdown)
	if err != nil {
		return nil, err
	}
	return &PagesHandler{about: body}, nil
}

func (h *PagesHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", newPageData(c, "Home"))
}

func (h *PagesHandler) About(c *gin.Context) {
	data := newPageData(c, "About")
	data.Body = h.about
	c.HTML(http.StatusOK, "about.html", data)
}

func renderMarkdown(src []byte) (template.HTML, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", err
	}
	// the markdown is embedded at build time, never user supplied
	return template.HTML(buf.String()), nil
}

var _ PagesHTTP = (*PagesHandler)(nil)
