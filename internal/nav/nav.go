package nav

import (
	"strings"

	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
)

// Route declares one client path. Patterns use :name segments and a
// trailing /* wildcard. Protected routes require authentication;
// RequiredRole additionally pins them to one role.
type Route struct {
	Pattern      string
	Protected    bool
	RequiredRole models.Role
}

type Decision string

const (
	DecisionAllow    Decision = "allow"
	DecisionRedirect Decision = "redirect"
	DecisionNotFound Decision = "not_found"
)

type Outcome struct {
	Decision Decision
	Route    *Route
	Target   string
	Params   map[string]string
}

type Table struct {
	routes    []Route
	redirects map[string]func(*models.Principal) string
}

// DefaultTable is the full client URL surface.
func DefaultTable() *Table {
	t := &Table{
		routes: []Route{
			{Pattern: "/"},
			{Pattern: "/login"},
			{Pattern: "/register"},
			{Pattern: "/find-mechanics"},
			{Pattern: "/mechanic/dashboard", Protected: true, RequiredRole: models.RoleMechanic},
			{Pattern: "/mechanic/requests", Protected: true, RequiredRole: models.RoleMechanic},
			{Pattern: "/mechanic/history", Protected: true, RequiredRole: models.RoleMechanic},
			{Pattern: "/mechanic/profile", Protected: true, RequiredRole: models.RoleMechanic},
			{Pattern: "/mechanic/:id"},
			{Pattern: "/mechanic-profile/:id"},
			{Pattern: "/user/dashboard", Protected: true, RequiredRole: models.RoleUser},
			{Pattern: "/user/requests", Protected: true, RequiredRole: models.RoleUser},
			{Pattern: "/user/payments", Protected: true, RequiredRole: models.RoleUser},
			{Pattern: "/request/:id", Protected: true},
			{Pattern: "/profile", Protected: true},
			{Pattern: "/admin/*", Protected: true, RequiredRole: models.RoleAdmin},
		},
		redirects: map[string]func(*models.Principal) string{
			"/dashboard": func(p *models.Principal) string {
				if p == nil {
					return "/login"
				}
				return p.Role.Home()
			},
			"/mechanics": func(*models.Principal) string { return "/find-mechanics" },
			"/admin":     func(*models.Principal) string { return "/admin/dashboard" },
			"/history": func(p *models.Principal) string {
				if p != nil && p.Role == models.RoleMechanic {
					return "/mechanic/history"
				}
				return "/user/requests"
			},
		},
	}
	return t
}

// Resolve applies the guard rules: unknown path -> not found; legacy
// path -> redirect; unauthenticated on protected -> /login; wrong role
// -> role home.
func (t *Table) Resolve(path string, principal *models.Principal) Outcome {
	path = normalize(path)

	if redirect, ok := t.redirects[path]; ok {
		return Outcome{Decision: DecisionRedirect, Target: redirect(principal)}
	}

	for i := range t.routes {
		route := &t.routes[i]
		params, ok := match(route.Pattern, path)
		if !ok {
			continue
		}

		if route.Protected && principal == nil {
			return Outcome{Decision: DecisionRedirect, Route: route, Target: "/login"}
		}
		if route.RequiredRole != "" && principal != nil && principal.Role != route.RequiredRole {
			return Outcome{Decision: DecisionRedirect, Route: route, Target: principal.Role.Home()}
		}

		return Outcome{Decision: DecisionAllow, Route: route, Params: params}
	}

	return Outcome{Decision: DecisionNotFound}
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

func match(pattern, path string) (map[string]string, bool) {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")

	if pattern == "/" {
		return nil, path == "/"
	}

	var params map[string]string
	for i, part := range patternParts {
		if part == "*" {
			return params, true
		}
		if i >= len(pathParts) {
			return nil, false
		}
		if strings.HasPrefix(part, ":") {
			if params == nil {
				params = make(map[string]string)
			}
			params[part[1:]] = pathParts[i]
			continue
		}
		if part != pathParts[i] {
			return nil, false
		}
	}

	return params, len(patternParts) == len(pathParts)
}
