package permissions

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"traveltrust/shared/constant"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

var knownRoles = []string{constant.RoleOwner, constant.RoleArbitrator, constant.RoleUser}

var knownMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
}

// Route describes one endpoint. Public routes need no token; otherwise a
// non-empty Roles list restricts the route to those roles.
type Route struct {
	Roles  []string `json:"roles"`
	Path   string   `json:"path"`
	Method string   `json:"method"`
	Public bool     `json:"public"`
}

// Allows reports whether role may call the route once authenticated.
func (r Route) Allows(role string) bool {
	return r.Public || len(r.Roles) == 0 || slices.Contains(r.Roles, role)
}

// Table is the route access table keyed by method and chi pattern.
type Table struct {
	// Skip disables role checks; tokens are still required.
	Skip   bool
	routes map[string]Route
}

type document struct {
	Endpoints []Route `json:"endpoints"`
	Skip      bool    `json:"skip"`
}

func key(method, path string) string {
	return method + " " + path
}

// Lookup returns the route registered for method and pattern.
func (t *Table) Lookup(method, pattern string) (Route, bool) {
	if t == nil {
		return Route{}, false
	}

	route, ok := t.routes[key(method, pattern)]

	return route, ok
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.routes)
}

// Parse decodes a route table. Unknown methods or roles and duplicate
// entries are rejected.
func Parse(data []byte) (*Table, error) {
	var doc document

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decode permissions")
	}

	table := &Table{Skip: doc.Skip, routes: make(map[string]Route, len(doc.Endpoints))}

	for _, route := range doc.Endpoints {
		route.Method = strings.ToUpper(route.Method)

		if !strings.HasPrefix(route.Path, "/") {
			return nil, errors.Errorf("permission path %q must start with /", route.Path)
		}

		if !slices.Contains(knownMethods, route.Method) {
			return nil, errors.Errorf("permission %s: unknown method %q", route.Path, route.Method)
		}

		for _, role := range route.Roles {
			if !slices.Contains(knownRoles, role) {
				return nil, errors.Errorf("permission %s %s: unknown role %q", route.Method, route.Path, role)
			}
		}

		k := key(route.Method, route.Path)
		if _, dup := table.routes[k]; dup {
			return nil, errors.Errorf("permission %s declared twice", k)
		}

		table.routes[k] = route
	}

	return table, nil
}

// Get loads the embedded route table.
func Get() (*Table, error) {
	table, err := Parse(permissionsData)
	if err != nil {
		return nil, err
	}

	log.Info().Int("endpoints", table.Len()).Bool("skip", table.Skip).Msg("Loaded route permissions")

	return table, nil
}
