package exports

import (
	apphttp "leadgen_backend/internal/http"
	"leadgen_backend/platform/validator"
)

// Module exposes lead exports over HTTP.
type Module struct {
	handler *Handler
}

func NewModule(svc *Service, val *validator.Validator) *Module {
	return &Module{handler: NewHandler(svc, val)}
}

func (m *Module) Name() string {
	return "exports"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/exports"))
}

var _ apphttp.Module = (*Module)(nil)
