package openapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-openapi/spec"
	"github.com/makkenzo/gdb-api/internal/handler/dto"
)

var ErrUnknownGroup = errors.New("unknown documentation group")

type Options struct {
	Title       string
	Description string
	Filters     []OperationFilter
}

type Generator struct {
	collector *Collector
	opts      Options
}

func NewGenerator(collector *Collector, opts Options) *Generator {
	if opts.Title == "" {
		opts.Title = "API"
	}
	return &Generator{collector: collector, opts: opts}
}

// Groups lists the documentation groups in ascending version order.
func (g *Generator) Groups() []string {
	descs := g.collector.Versions().Descriptions()
	groups := make([]string, len(descs))
	for i, d := range descs {
		groups[i] = d.GroupName()
	}
	return groups
}

func (g *Generator) Document(group string) (*spec.Swagger, error) {
	desc, ok := g.collector.Versions().Lookup(group)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, group)
	}

	description := g.opts.Description
	if desc.Deprecated {
		description = strings.TrimSpace(description + " This API version has been deprecated.")
	}

	schemas := NewSchemas()
	doc := &spec.Swagger{
		SwaggerProps: spec.SwaggerProps{
			Swagger: "2.0",
			Info: &spec.Info{
				InfoProps: spec.InfoProps{
					Title:       g.opts.Title,
					Description: description,
					Version:     desc.Version.String(),
				},
			},
			BasePath: "/",
			Consumes: []string{"application/json"},
			Produces: []string{"application/json"},
			Paths:    &spec.Paths{Paths: map[string]spec.PathItem{}},
			SecurityDefinitions: spec.SecurityDefinitions{
				SecuritySchemeName: BearerSecurityScheme(),
			},
		},
	}

	seenTags := map[string]bool{}
	for _, ep := range g.collector.Endpoints(group) {
		ep := ep
		op := g.operation(&ep, schemas)
		for _, f := range g.opts.Filters {
			f.Apply(op, OperationFilterContext{Endpoint: &ep, Version: desc, Schemas: schemas})
		}

		path, _ := swaggerPath(ep.Path)
		item := doc.Paths.Paths[path]
		setOperation(&item, ep.Method, op)
		doc.Paths.Paths[path] = item

		for _, t := range ep.Tags {
			if !seenTags[t] {
				seenTags[t] = true
				doc.Tags = append(doc.Tags, spec.NewTag(t, "", nil))
			}
		}
	}

	doc.Definitions = schemas.Definitions()
	return doc, nil
}

func (g *Generator) JSON(group string) ([]byte, error) {
	doc, err := g.Document(group)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (g *Generator) operation(ep *Endpoint, schemas *Schemas) *spec.Operation {
	id := ep.OperationID
	if id == "" {
		id = operationID(ep.Method, ep.Path, ep.Version.GroupName())
	}

	op := spec.NewOperation(id).
		WithSummary(ep.Summary).
		WithDescription(ep.Description).
		WithTags(ep.Tags...)
	if ep.Deprecated {
		op.Deprecate()
	}

	_, params := swaggerPath(ep.Path)
	for _, p := range params {
		op.AddParam(spec.PathParam(p).Typed("string", ""))
	}
	for _, p := range schemas.QueryParams(ep.Query) {
		op.AddParam(p)
	}
	if ep.Request != nil {
		op.AddParam(spec.BodyParam("body", schemas.For(ep.Request)).AsRequired())
	}

	for _, r := range ep.Responses {
		resp := spec.NewResponse().WithDescription(responseDescription(r))
		if r.Body != nil {
			resp.WithSchema(schemas.For(r.Body))
		}
		op.RespondsWith(r.Status, resp)
	}

	if ep.Request != nil || ep.Query != nil {
		op.RespondsWith(http.StatusBadRequest, spec.NewResponse().
			WithDescription(dto.MessageInvalidDataFormat).
			WithSchema(schemas.For(dto.ValidationErrorResponse(nil))))
	}
	op.RespondsWith(http.StatusInternalServerError, spec.NewResponse().
		WithDescription("Unhandled application error").
		WithSchema(schemas.For(dto.ApplicationErrorResponse(""))))

	return op
}

func responseDescription(r Response) string {
	if r.Description != "" {
		return r.Description
	}
	return http.StatusText(r.Status)
}

func setOperation(item *spec.PathItem, method string, op *spec.Operation) {
	switch strings.ToUpper(method) {
	case http.MethodGet:
		item.Get = op
	case http.MethodPost:
		item.Post = op
	case http.MethodPut:
		item.Put = op
	case http.MethodPatch:
		item.Patch = op
	case http.MethodDelete:
		item.Delete = op
	case http.MethodHead:
		item.Head = op
	case http.MethodOptions:
		item.Options = op
	}
}

// swaggerPath converts gin parameters (":id", "*rest") to "{id}" and returns their names.
func swaggerPath(path string) (string, []string) {
	segments := strings.Split(path, "/")
	var params []string
	for i, s := range segments {
		if strings.HasPrefix(s, ":") || strings.HasPrefix(s, "*") {
			name := s[1:]
			params = append(params, name)
			segments[i] = "{" + name + "}"
		}
	}
	return strings.Join(segments, "/"), params
}

func operationID(method, path, group string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, s := range strings.Split(path, "/") {
		s = strings.TrimLeft(s, ":*")
		if s == "" || s == "api" || s == group {
			continue
		}
		b.WriteString(strings.ToUpper(s[:1]))
		b.WriteString(s[1:])
	}
	b.WriteString(strings.ToUpper(group[:1]))
	b.WriteString(strings.NewReplacer(".", "_", "-", "_").Replace(group[1:]))
	return b.String()
}
