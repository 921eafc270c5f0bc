// Package openapi generates Swagger 2.0 documents, one per API version, from the
// endpoint descriptors collected while routes are registered.
package openapi

import (
	"sort"
	"strings"
	"sync"

	"github.com/makkenzo/gdb-api/internal/apiversion"
)

// Attribute is metadata attached to a route group or to a single endpoint.
type Attribute interface {
	attribute()
}

// Authorize marks an endpoint as requiring a valid bearer token. Roles, when set, admit a
// token carrying any one of them.
type Authorize struct {
	Roles []string
}

// AllowAnonymous overrides any Authorize attribute on the same endpoint or its group.
type AllowAnonymous struct{}

func (Authorize) attribute()      {}
func (AllowAnonymous) attribute() {}

func FindAttribute[T Attribute](attrs []Attribute) (T, bool) {
	for _, a := range attrs {
		if v, ok := a.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// RequiresAuthorization reports whether attrs carry Authorize without AllowAnonymous.
func RequiresAuthorization(attrs []Attribute) bool {
	if _, ok := FindAttribute[AllowAnonymous](attrs); ok {
		return false
	}
	_, ok := FindAttribute[Authorize](attrs)
	return ok
}

// RequiredRoles merges the roles of every Authorize attribute in attrs into one any-of set.
func RequiredRoles(attrs []Attribute) []string {
	var roles []string
	seen := map[string]bool{}
	for _, a := range attrs {
		az, ok := a.(Authorize)
		if !ok {
			continue
		}
		for _, r := range az.Roles {
			if !seen[r] {
				seen[r] = true
				roles = append(roles, r)
			}
		}
	}
	return roles
}

type Response struct {
	Status      int
	Description string
	// Body is a zero value of the response model; nil means no body.
	Body any
}

type Endpoint struct {
	Method      string
	Path        string
	OperationID string
	Summary     string
	Description string
	Tags        []string
	Attributes  []Attribute
	Deprecated  bool

	// Request is a zero value of the JSON body model, Query of the query-string model.
	Request   any
	Query     any
	Responses []Response

	Version apiversion.Version
}

// Collector records endpoints as they are registered. Safe for concurrent use.
type Collector struct {
	mu        sync.RWMutex
	endpoints []Endpoint
	versions  *apiversion.Set
}

func NewCollector(versions *apiversion.Set) *Collector {
	return &Collector{versions: versions}
}

func (c *Collector) Versions() *apiversion.Set {
	return c.versions
}

func (c *Collector) Add(ep Endpoint) {
	c.mu.Lock()
	c.endpoints = append(c.endpoints, ep)
	c.mu.Unlock()
}

// Endpoints returns the endpoints of one version group ordered by path then method.
func (c *Collector) Endpoints(group string) []Endpoint {
	c.mu.RLock()
	var out []Endpoint
	for _, ep := range c.endpoints {
		if ep.Version.GroupName() == group {
			out = append(out, ep)
		}
	}
	c.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return strings.ToUpper(out[i].Method) < strings.ToUpper(out[j].Method)
	})
	return out
}
