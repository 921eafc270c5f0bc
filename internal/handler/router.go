package handler

import (
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/gdb-api/internal/apiversion"
	"github.com/makkenzo/gdb-api/internal/handler/middleware"
	"github.com/makkenzo/gdb-api/internal/openapi"
)

// Registry creates versioned routers under /api/{group}.
type Registry struct {
	root         gin.IRouter
	collector    *openapi.Collector
	authenticate gin.HandlerFunc
}

func NewRegistry(root gin.IRouter, collector *openapi.Collector, authenticate gin.HandlerFunc) *Registry {
	return &Registry{
		root:         root,
		collector:    collector,
		authenticate: authenticate,
	}
}

func (r *Registry) Version(v apiversion.Version, deprecated bool) *Router {
	r.collector.Versions().Add(v, deprecated)
	return &Router{
		group:    r.root.Group("/api/" + v.GroupName()),
		version:  v,
		registry: r,
	}
}

// Router is a gin group bound to one API version. Attributes set on a router apply to every
// endpoint registered through it.
type Router struct {
	group      *gin.RouterGroup
	version    apiversion.Version
	tags       []string
	attributes []openapi.Attribute
	registry   *Registry
}

func (rt *Router) Version() apiversion.Version {
	return rt.version
}

func (rt *Router) Group(relativePath, tag string, attrs ...openapi.Attribute) *Router {
	tags := rt.tags
	if tag != "" {
		tags = []string{tag}
	}
	return &Router{
		group:      rt.group.Group(relativePath),
		version:    rt.version,
		tags:       tags,
		attributes: append(append([]openapi.Attribute{}, rt.attributes...), attrs...),
		registry:   rt.registry,
	}
}

// Handle registers ep.Path relative to the router. Authentication and role checks are
// prepended when the effective attributes require them.
func (rt *Router) Handle(ep openapi.Endpoint, handlers ...gin.HandlerFunc) {
	attrs := append(append([]openapi.Attribute{}, rt.attributes...), ep.Attributes...)

	chain := make([]gin.HandlerFunc, 0, len(handlers)+2)
	if openapi.RequiresAuthorization(attrs) {
		chain = append(chain, rt.registry.authenticate)
		if roles := openapi.RequiredRoles(attrs); len(roles) > 0 {
			chain = append(chain, middleware.RequireRoles(roles...))
		}
	}
	chain = append(chain, handlers...)

	rt.group.Handle(strings.ToUpper(ep.Method), ep.Path, chain...)

	ep.Method = strings.ToUpper(ep.Method)
	ep.Path = joinPaths(rt.group.BasePath(), ep.Path)
	ep.Attributes = attrs
	ep.Version = rt.version
	if len(ep.Tags) == 0 {
		ep.Tags = rt.tags
	}
	rt.registry.collector.Add(ep)
}

func joinPaths(base, relative string) string {
	if relative == "" {
		return base
	}
	joined := path.Join(base, relative)
	if strings.HasSuffix(relative, "/") && !strings.HasSuffix(joined, "/") {
		return joined + "/"
	}
	return joined
}
