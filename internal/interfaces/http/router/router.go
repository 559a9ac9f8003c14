// Package router assembles the gin engine: middleware chain, versioned API
// groups and static file serving.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar registers a set of routes on a router group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts registrars under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues registrars for Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// BasePath returns the versioned API prefix
func (r *Router) BasePath() string {
	return "/api/" + r.apiVersion
}

// Setup registers all queued routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group(r.BasePath())
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// Resource groups the routes of one REST resource under a common prefix
type Resource struct {
	prefix     string
	routes     []route
	middleware []gin.HandlerFunc
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewResource creates a resource mounted at prefix, e.g. "/stocks"
func NewResource(prefix string) *Resource {
	return &Resource{prefix: prefix}
}

// Use adds middleware that applies to every route of the resource
func (res *Resource) Use(middleware ...gin.HandlerFunc) *Resource {
	res.middleware = append(res.middleware, middleware...)
	return res
}

// Handle adds a route relative to the resource prefix
func (res *Resource) Handle(method, path string, handlers ...gin.HandlerFunc) *Resource {
	res.routes = append(res.routes, route{method: method, path: path, handlers: handlers})
	return res
}

// GET registers a GET route
func (res *Resource) GET(path string, handlers ...gin.HandlerFunc) *Resource {
	return res.Handle(http.MethodGet, path, handlers...)
}

// POST registers a POST route
func (res *Resource) POST(path string, handlers ...gin.HandlerFunc) *Resource {
	return res.Handle(http.MethodPost, path, handlers...)
}

// PUT registers a PUT route
func (res *Resource) PUT(path string, handlers ...gin.HandlerFunc) *Resource {
	return res.Handle(http.MethodPut, path, handlers...)
}

// DELETE registers a DELETE route
func (res *Resource) DELETE(path string, handlers ...gin.HandlerFunc) *Resource {
	return res.Handle(http.MethodDelete, path, handlers...)
}

// RegisterRoutes implements RouteRegistrar
func (res *Resource) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(res.prefix, res.middleware...)
	for _, r := range res.routes {
		group.Handle(r.method, r.path, r.handlers...)
	}
}

// Prefix returns the resource prefix
func (res *Resource) Prefix() string {
	return res.prefix
}
