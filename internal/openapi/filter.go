package openapi

import (
	"net/http"

	"github.com/go-openapi/spec"
	"github.com/makkenzo/gdb-api/internal/apiversion"
	"github.com/makkenzo/gdb-api/internal/handler/dto"
)

const SecuritySchemeName = "jwt_bearer"

type OperationFilterContext struct {
	Endpoint *Endpoint
	Version  apiversion.Description
	Schemas  *Schemas
}

// OperationFilter mutates the generated operation of a single endpoint.
type OperationFilter interface {
	Apply(op *spec.Operation, ctx OperationFilterContext)
}

type OperationFilterFunc func(op *spec.Operation, ctx OperationFilterContext)

func (f OperationFilterFunc) Apply(op *spec.Operation, ctx OperationFilterContext) {
	f(op, ctx)
}

// SecurityRequirementFilter propagates deprecation from the API version and attaches the
// bearer requirement to endpoints that need authorization.
type SecurityRequirementFilter struct{}

func (SecurityRequirementFilter) Apply(op *spec.Operation, ctx OperationFilterContext) {
	op.Deprecated = op.Deprecated || ctx.Version.Deprecated

	if !RequiresAuthorization(ctx.Endpoint.Attributes) {
		return
	}

	op.SecuredWith(SecuritySchemeName)
	if op.Responses == nil || op.Responses.StatusCodeResponses[http.StatusUnauthorized].Description == "" {
		op.RespondsWith(http.StatusUnauthorized, spec.NewResponse().
			WithDescription(dto.MessageUnauthorized).
			WithSchema(ctx.Schemas.For(dto.UnauthorizedErrorResponse())))
	}
	if len(RequiredRoles(ctx.Endpoint.Attributes)) > 0 {
		op.RespondsWith(http.StatusForbidden, spec.NewResponse().
			WithDescription(dto.MessageForbidden).
			WithSchema(ctx.Schemas.For(dto.UnauthorizedErrorResponse())))
	}
}

func BearerSecurityScheme() *spec.SecurityScheme {
	scheme := spec.APIKeyAuth("Authorization", "header")
	scheme.Description = "Please enter into field the word 'Bearer' following by space and JWT"
	scheme.AddExtension("x-bearer-format", "JWT")
	return scheme
}
