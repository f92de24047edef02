package routes

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/deps"
	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/mw"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

// Access is who may reach a group of routes.
type Access int

const (
	// Public routes are served to everyone.
	Public Access = iota
	// Operator routes sit behind the HIDEOUT_ALLOWED_CIDRS allowlist.
	Operator
)

func (a Access) String() string {
	if a == Operator {
		return "operator"
	}
	return "public"
}

// Route is a named group of endpoints mounted together.
type Route struct {
	Name   string
	Access Access
	Mount  Registrar
	Use    []Middleware // applied after the access middleware
}

var registry []Route

// Register adds a route group. Called from init() of each routes file.
func Register(rt Route) {
	registry = append(registry, rt)
}

// RegisterAll mounts every group on r, public groups first, and returns
// the mounted names as "name (access)".
func RegisterAll(r chi.Router, d deps.Deps) []string {
	ordered := make([]Route, len(registry))
	copy(ordered, registry)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Access != ordered[j].Access {
			return ordered[i].Access < ordered[j].Access
		}
		return ordered[i].Name < ordered[j].Name
	})

	// One allowlist shared by every operator group.
	allowOps := mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)

	mounted := make([]string, 0, len(ordered))
	for _, rt := range ordered {
		mws := rt.Use
		if rt.Access == Operator {
			mws = append([]Middleware{allowOps}, rt.Use...)
		}
		if len(mws) == 0 {
			rt.Mount(r, d)
		} else {
			rt.Mount(r.With(mws...), d)
		}
		mounted = append(mounted, rt.Name+" ("+rt.Access.String()+")")
	}
	return mounted
}
