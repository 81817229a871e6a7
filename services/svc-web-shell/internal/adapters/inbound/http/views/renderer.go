// Package views renders the server side shell: header, sidebar and the main
// area of the current route.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/domain/model"
)

const (
	pageDashboard = "dashboard.html"
	pageNotFound  = "not_found.html"
)

//go:embed templates
var templateFS embed.FS

var layoutTemplates = []string{
	"templates/layout.html",
	"templates/header.html",
	"templates/sidebar.html",
}

type (
	// ShellData is shared by every page rendered inside the layout.
	ShellData struct {
		Title       string
		ProductName string
		CurrentPath string
		Sidebar     []model.NavEntry
	}

	StatusIcon struct {
		Status  model.HealthStatus
		Icon    string
		Current bool
	}

	DashboardPage struct {
		ShellData
		Dashboard   model.DashboardSnapshot
		StatusIcons []StatusIcon
		HealthURL   string
		EventsURL   string
		UnmountURL  string
	}

	NotFoundPage struct {
		ShellData
	}

	Renderer struct {
		productName string
		pages       map[string]*template.Template
	}
)

func NewRenderer(productName string, assets *Assets) (*Renderer, error) {
	funcs := template.FuncMap{
		"icon":  Icon,
		"asset": assets.URL,
	}

	base, err := template.New("shell").Funcs(funcs).ParseFS(templateFS, layoutTemplates...)
	if err != nil {
		return nil, fmt.Errorf("parsing layout templates: %w", err)
	}

	pages := make(map[string]*template.Template, 2)

	for _, page := range []string{pageDashboard, pageNotFound} {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning layout for %s: %w", page, err)
		}

		if _, err := clone.ParseFS(templateFS, "templates/"+page); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", page, err)
		}

		pages[page] = clone
	}

	return &Renderer{
		productName: productName,
		pages:       pages,
	}, nil
}

// Shell builds the layout data for currentPath.
func (r *Renderer) Shell(title, currentPath string) ShellData {
	return ShellData{
		Title:       title,
		ProductName: r.productName,
		CurrentPath: currentPath,
		Sidebar:     model.Sidebar(currentPath),
	}
}

// NewDashboardPage wraps a view snapshot with the endpoints the browser uses
// to follow and unmount it.
func (r *Renderer) NewDashboardPage(currentPath string, snapshot model.DashboardSnapshot) DashboardPage {
	viewPath := "/api/views/" + snapshot.ViewID.String()

	statuses := []model.HealthStatus{
		model.HealthStatusChecking,
		model.HealthStatusHealthy,
		model.HealthStatusUnhealthy,
	}

	icons := make([]StatusIcon, 0, len(statuses))
	for _, status := range statuses {
		icons = append(icons, StatusIcon{
			Status:  status,
			Icon:    status.Icon(),
			Current: status == snapshot.Health,
		})
	}

	return DashboardPage{
		ShellData:   r.Shell("Dashboard", currentPath),
		Dashboard:   snapshot,
		StatusIcons: icons,
		HealthURL:   viewPath + "/health",
		EventsURL:   viewPath + "/events",
		UnmountURL:  viewPath,
	}
}

func (r *Renderer) RenderDashboard(w io.Writer, page DashboardPage) error {
	return r.render(w, pageDashboard, page)
}

func (r *Renderer) RenderNotFound(w io.Writer, page NotFoundPage) error {
	return r.render(w, pageNotFound, page)
}

// render executes into a buffer so a failing template never leaves a
// half-written page behind.
func (r *Renderer) render(w io.Writer, page string, data any) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("rendering %s: %w", page, err)
	}

	_, err := buf.WriteTo(w)

	return err
}
