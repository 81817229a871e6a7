package model_test

import (
	"testing"

	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/domain/model"
	"github.com/stretchr/testify/suite"
)

type NavigationTestSuite struct {
	suite.Suite
}

func TestNavigationTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(NavigationTestSuite))
}

func (s *NavigationTestSuite) TestNavigation_FixedOrder() {
	s.T().Parallel()

	expected := []model.NavItem{
		{Label: "Dashboard", Path: "/dashboard", Icon: "home"},
		{Label: "Customers", Path: "/customers", Icon: "users"},
		{Label: "Projects", Path: "/projects", Icon: "folder-open"},
		{Label: "Components", Path: "/components", Icon: "package"},
		{Label: "BOM Import", Path: "/bom-import", Icon: "upload"},
		{Label: "Quotes", Path: "/quotes", Icon: "calculator"},
		{Label: "Reports", Path: "/reports", Icon: "file-text"},
		{Label: "Data Management", Path: "/data", Icon: "database"},
		{Label: "Settings", Path: "/settings", Icon: "settings"},
	}

	s.Require().Equal(expected, model.Navigation())
}

func (s *NavigationTestSuite) TestNavigation_ReturnsCopy() {
	s.T().Parallel()

	items := model.Navigation()
	items[0].Label = "Changed"

	s.Require().Equal("Dashboard", model.Navigation()[0].Label)
}

func (s *NavigationTestSuite) TestSidebar_ExactlyOneActivePerDeclaredPath() {
	s.T().Parallel()

	for _, item := range model.Navigation() {
		s.Run(item.Path, func() {
			active := activeEntries(model.Sidebar(item.Path))

			s.Require().Len(active, 1)
			s.Require().Equal(item.Path, active[0].Path)
		})
	}
}

func (s *NavigationTestSuite) TestSidebar_NoneActiveForUnmatchedPaths() {
	s.T().Parallel()

	cases := []struct {
		name string
		path string
	}{
		{name: "root path", path: "/"},
		{name: "unknown path", path: "/unknown"},
		{name: "prefix of a declared path", path: "/dash"},
		{name: "declared path with suffix", path: "/dashboard/"},
		{name: "nested below a declared path", path: "/customers/42"},
		{name: "different case", path: "/Dashboard"},
		{name: "empty path", path: ""},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			entries := model.Sidebar(tc.path)

			s.Require().Len(entries, 9)
			s.Require().Empty(activeEntries(entries))
		})
	}
}

func (s *NavigationTestSuite) TestIsDashboardRoute() {
	s.T().Parallel()

	cases := []struct {
		path     string
		expected bool
	}{
		{path: "/", expected: true},
		{path: "/dashboard", expected: true},
		{path: "/customers", expected: false},
		{path: "/dashboard/extra", expected: false},
	}

	for _, tc := range cases {
		s.Run(tc.path, func() {
			s.Require().Equal(tc.expected, model.IsDashboardRoute(tc.path))
		})
	}
}

func activeEntries(entries []model.NavEntry) []model.NavEntry {
	var active []model.NavEntry

	for _, entry := range entries {
		if entry.Active {
			active = append(active, entry)
		}
	}

	return active
}
