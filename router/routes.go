package router

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// CatchAll is the pattern that matches any otherwise unmatched path.
const CatchAll = "*"

// Route is one entry of the route table. Parameter segments use the
// ":name" form; a Redirect entry forwards instead of resolving a screen.
type Route struct {
	Name         string `yaml:"name"`
	Path         string `yaml:"path"`
	Title        string `yaml:"title"`
	Redirect     string `yaml:"redirect,omitempty"`
	RequiresAuth bool   `yaml:"requires_auth,omitempty"`
}

// DefaultRoutes is the platform's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Name: "Home", Path: "/", Title: "Home"},
		{Name: "Tutorial", Path: "/tutorial", Title: "Tutorials"},

		{Name: "Blog", Path: "/blog", Title: "Blog"},
		{Name: "BlogDetail", Path: "/blog/:slug", Title: "Article"},
		{Name: "BlogCreate", Path: "/blog/create", Title: "Write Article", RequiresAuth: true},
		{Name: "BlogEdit", Path: "/blog/edit/:id", Title: "Edit Article", RequiresAuth: true},

		{Name: "Forum", Path: "/forum", Title: "Forum"},
		{Name: "ThreadDetail", Path: "/forum/thread/:id", Title: "Thread"},
		{Name: "ThreadCreate", Path: "/forum/create", Title: "New Thread", RequiresAuth: true},

		{Name: "Resources", Path: "/resources", Title: "Resources"},
		{Name: "ResourceDetail", Path: "/resources/:id", Title: "Resource"},

		{Name: "Login", Path: "/login", Title: "Sign In"},
		{Name: "Register", Path: "/register", Title: "Sign Up"},

		{Name: "UserProfile", Path: "/user/:username", Title: "Profile"},
		{Name: "Settings", Path: "/settings", Title: "Settings", RequiresAuth: true},

		{Name: "Admin", Path: "/admin", Redirect: "/admin/dashboard", RequiresAuth: true},
		{Name: "AdminDashboard", Path: "/admin/dashboard", Title: "Dashboard", RequiresAuth: true},
		{Name: "AdminUsers", Path: "/admin/users", Title: "User Management", RequiresAuth: true},
		{Name: "AdminContent", Path: "/admin/content", Title: "Content Management", RequiresAuth: true},

		{Name: "NotFound", Path: "/404", Title: "Page Not Found"},
		{Name: "Forbidden", Path: "/403", Title: "Access Denied"},

		{Name: "HomeAlias", Path: "/home", Redirect: "/"},
		{Name: "Fallback", Path: CatchAll, Redirect: "/404"},
	}
}

// LoadRoutes reads a YAML route table, for deployments that override the
// built-in one.
func LoadRoutes(r io.Reader) ([]Route, error) {
	var doc struct {
		Routes []Route `yaml:"routes"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("router: decode route table: %w", err)
	}
	if len(doc.Routes) == 0 {
		return nil, errors.New("router: route table is empty")
	}
	for _, route := range doc.Routes {
		if err := validateRoute(route); err != nil {
			return nil, err
		}
	}
	return doc.Routes, nil
}

func validateRoute(route Route) error {
	if route.Name == "" {
		return fmt.Errorf("router: route %q has no name", route.Path)
	}
	if route.Path != CatchAll && !strings.HasPrefix(route.Path, "/") {
		return fmt.Errorf("router: route %s path %q must start with /", route.Name, route.Path)
	}
	if route.Redirect == "" && route.Title == "" {
		return fmt.Errorf("router: route %s needs a title or a redirect", route.Name)
	}
	return nil
}
