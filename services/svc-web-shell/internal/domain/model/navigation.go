package model

const (
	PathRoot      = "/"
	PathDashboard = "/dashboard"
)

type (
	NavItem struct {
		Label string
		Path  string
		Icon  string
	}

	NavEntry struct {
		NavItem
		Active bool
	}
)

var navigation = [...]NavItem{
	{Label: "Dashboard", Path: PathDashboard, Icon: "home"},
	{Label: "Customers", Path: "/customers", Icon: "users"},
	{Label: "Projects", Path: "/projects", Icon: "folder-open"},
	{Label: "Components", Path: "/components", Icon: "package"},
	{Label: "BOM Import", Path: "/bom-import", Icon: "upload"},
	{Label: "Quotes", Path: "/quotes", Icon: "calculator"},
	{Label: "Reports", Path: "/reports", Icon: "file-text"},
	{Label: "Data Management", Path: "/data", Icon: "database"},
	{Label: "Settings", Path: "/settings", Icon: "settings"},
}

// Navigation returns a copy of the sidebar entries in display order.
func Navigation() []NavItem {
	items := make([]NavItem, len(navigation))
	copy(items, navigation[:])

	return items
}

// Sidebar marks the entry whose path equals currentPath exactly.
func Sidebar(currentPath string) []NavEntry {
	entries := make([]NavEntry, len(navigation))

	for i, item := range navigation {
		entries[i] = NavEntry{
			NavItem: item,
			Active:  item.Path == currentPath,
		}
	}

	return entries
}

// IsDashboardRoute reports whether path renders the dashboard view.
func IsDashboardRoute(path string) bool {
	return path == PathRoot || path == PathDashboard
}
