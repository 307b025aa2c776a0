// Package handler contains the HTTP handlers of the board service.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the incoming request (path params, query, form)
//  2. Call a service
//  3. Write the response: a rendered page, a redirect, or JSON
//
// Handlers hold no business rules. The current session comes from the request
// context, where session.Manager.Load put it.
package handler

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/sakif/boardsvc/internal/model"
	"github.com/sakif/boardsvc/web"
)

// Page names; each is parsed together with base.html into its own set so
// every page can define its own "content" block.
const (
	viewLogin     = "login"
	viewBoardList = "board_list"
	viewBoardForm = "board_form"
	viewError     = "error"
)

// Views holds the parsed page templates.
type Views struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewViews parses every page from the embedded web.FS.
func NewViews(logger *slog.Logger) (*Views, error) {
	return NewViewsFS(web.FS, logger)
}

// NewViewsFS parses pages from fsys, which must contain templates/base.html
// and one templates/<page>.html per page.
func NewViewsFS(fsys fs.FS, logger *slog.Logger) (*Views, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{viewLogin, viewBoardList, viewBoardForm, viewError} {
		tmpl, err := template.ParseFS(fsys, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("handler: parsing %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Views{pages: pages, logger: logger}, nil
}

// viewData is what every page receives; page-specific fields are left zero
// by pages that do not use them.
type viewData struct {
	Title string
	User  *model.User

	// login
	Error     bool
	LoggedOut bool
	Providers []model.SocialType

	// board_list
	Page *model.Page[model.Board]

	// board_form
	Board *model.Board
	Owner *model.User

	// error
	Status  int
	Message string
}

// render executes page into w with status.
// Template errors after the header is written can only be logged.
func (v *Views) render(w http.ResponseWriter, r *http.Request, status int, page string, data viewData) {
	tmpl, ok := v.pages[page]
	if !ok {
		v.logger.ErrorContext(r.Context(), "unknown template", "page", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		v.logger.ErrorContext(r.Context(), "failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}

// renderError shows the error page. Internal details are logged, never shown.
func (v *Views) renderError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if err != nil {
		v.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	v.render(w, r, status, viewError, viewData{
		Title:   http.StatusText(status),
		Status:  status,
		Message: http.StatusText(status),
	})
}
