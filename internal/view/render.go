package view

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/ErlanBelekov/social-discovery/internal/domain"
	"github.com/gin-gonic/gin/render"
)

//go:embed templates/*.html
var templatesFS embed.FS

const layoutTemplate = "layout"

// Page names, one template set each.
const (
	PageHome        = "home"
	PageAuth        = "auth"
	PageMatches     = "matches"
	PageMatchesList = "matches_list"
	PageChat        = "chat"
	PageProfile     = "profile"
	PageError       = "error"
)

var pages = []string{PageHome, PageAuth, PageMatches, PageMatchesList, PageChat, PageProfile, PageError}

// Page is the data every template receives.
type Page struct {
	Title   string
	Nav     NavBar
	State   domain.AuthState
	Form    *AuthForm
	Message string
}

func NewPage(title string, state domain.AuthState, active string) Page {
	return Page{Title: title, Nav: NewNavBar(state, active), State: state}
}

// Renderer implements gin's render.HTMLRender with one template set per
// page, each sharing the layout and nav partials.
type Renderer struct {
	templates map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New(name).ParseFS(templatesFS,
			"templates/layout.html",
			"templates/nav.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.templates[name]
	if !ok {
		t = r.templates[PageError]
		data = Page{Title: "Not found", Message: "Page not found"}
	}
	return render.HTML{Template: t, Name: layoutTemplate, Data: data}
}
