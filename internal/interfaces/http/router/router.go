package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// Route is one endpoint relative to its Area prefix
type Route struct {
	Method   string
	Path     string
	Handlers []gin.HandlerFunc
}

func Get(p string, h ...gin.HandlerFunc) Route    { return Route{http.MethodGet, p, h} }
func Post(p string, h ...gin.HandlerFunc) Route   { return Route{http.MethodPost, p, h} }
func Put(p string, h ...gin.HandlerFunc) Route    { return Route{http.MethodPut, p, h} }
func Delete(p string, h ...gin.HandlerFunc) Route { return Route{http.MethodDelete, p, h} }

// Area is a set of routes sharing a prefix and middleware, e.g. /cart
type Area struct {
	Prefix     string
	Middleware []gin.HandlerFunc
	Routes     []Route
}

// API is a versioned route table mounted under /api/<Version>
type API struct {
	Version string
	Areas   []Area
}

// Base returns the mount point, defaulting the version to v1
func (api API) Base() string {
	v := api.Version
	if v == "" {
		v = "v1"
	}
	return "/api/" + v
}

// Mount registers every area on the engine.
func (api API) Mount(engine gin.IRouter) {
	base := engine.Group(api.Base())
	for _, area := range api.Areas {
		group := base.Group(area.Prefix, area.Middleware...)
		for _, r := range area.Routes {
			group.Handle(r.Method, r.Path, r.Handlers...)
		}
	}
}

// Endpoints lists "METHOD /full/path" for every route, in table order.
func (api API) Endpoints() []string {
	var out []string
	for _, area := range api.Areas {
		for _, r := range area.Routes {
			full := path.Join(api.Base(), area.Prefix, r.Path)
			out = append(out, r.Method+" "+full)
		}
	}
	return out
}
