package handlers

import (
	"github.com/gin-gonic/gin"

	"aurotex/internal/domain/catalogs/client"
	"aurotex/internal/domain/catalogs/contractor"
	"aurotex/internal/domain/catalogs/product"
	"aurotex/internal/domain/catalogs/rawmaterial"
	"aurotex/internal/domain/catalogs/worker"
	"aurotex/internal/infrastructure/http/v1/dto"
)

// --- Raw materials ---

// RawMaterialHandler handles the raw material catalog.
type RawMaterialHandler struct {
	*CatalogHandler[*rawmaterial.RawMaterial, dto.CreateRawMaterialRequest, dto.UpdateRawMaterialRequest]
	service *rawmaterial.Service
}

// NewRawMaterialHandler creates a raw material handler.
func NewRawMaterialHandler(base *BaseHandler, service *rawmaterial.Service) *RawMaterialHandler {
	return &RawMaterialHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*rawmaterial.RawMaterial, dto.CreateRawMaterialRequest, dto.UpdateRawMaterialRequest]{
			Service: service.CatalogService,
			MapCreateDTO: func(req dto.CreateRawMaterialRequest) (*rawmaterial.RawMaterial, error) {
				return req.ToEntity(), nil
			},
			ApplyUpdate: func(req dto.UpdateRawMaterialRequest, existing *rawmaterial.RawMaterial) {
				req.ApplyTo(existing)
			},
		}),
		service: service,
	}
}

// ListByKind handles GET /{entity}/by-kind/:kind.
func (h *RawMaterialHandler) ListByKind(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.FindByKind(ctx, rawmaterial.Kind(c.Param("kind")), query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// --- Clients ---

// ClientHandler handles the client catalog.
type ClientHandler struct {
	*CatalogHandler[*client.Client, dto.CreateClientRequest, dto.UpdateClientRequest]
}

// NewClientHandler creates a client handler.
func NewClientHandler(base *BaseHandler, service *client.Service) *ClientHandler {
	return &ClientHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*client.Client, dto.CreateClientRequest, dto.UpdateClientRequest]{
			Service: service.CatalogService,
			MapCreateDTO: func(req dto.CreateClientRequest) (*client.Client, error) {
				return req.ToEntity(), nil
			},
			ApplyUpdate: func(req dto.UpdateClientRequest, existing *client.Client) {
				req.ApplyTo(existing)
			},
		}),
	}
}

// --- Contractors ---

// ContractorHandler handles the contractor catalog.
type ContractorHandler struct {
	*CatalogHandler[*contractor.Contractor, dto.CreateContractorRequest, dto.UpdateContractorRequest]
	service *contractor.Service
}

// NewContractorHandler creates a contractor handler.
func NewContractorHandler(base *BaseHandler, service *contractor.Service) *ContractorHandler {
	return &ContractorHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*contractor.Contractor, dto.CreateContractorRequest, dto.UpdateContractorRequest]{
			Service: service.CatalogService,
			MapCreateDTO: func(req dto.CreateContractorRequest) (*contractor.Contractor, error) {
				return req.ToEntity(), nil
			},
			ApplyUpdate: func(req dto.UpdateContractorRequest, existing *contractor.Contractor) {
				req.ApplyTo(existing)
			},
		}),
		service: service,
	}
}

// ListActive handles GET /{entity}/active.
func (h *ContractorHandler) ListActive(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.FindActive(ctx, query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// Deactivate handles POST /{entity}/:id/deactivate.
func (h *ContractorHandler) Deactivate(c *gin.Context) {
	ctx := c.Request.Context()

	contractorID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	existing, err := h.service.GetByID(ctx, contractorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Deactivate(ctx, existing); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, existing)
}

// --- Workers ---

// WorkerHandler handles the worker roster.
type WorkerHandler struct {
	*CatalogHandler[*worker.Worker, dto.CreateWorkerRequest, dto.UpdateWorkerRequest]
}

// NewWorkerHandler creates a worker handler.
func NewWorkerHandler(base *BaseHandler, service *worker.Service) *WorkerHandler {
	return &WorkerHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*worker.Worker, dto.CreateWorkerRequest, dto.UpdateWorkerRequest]{
			Service: service.CatalogService,
			MapCreateDTO: func(req dto.CreateWorkerRequest) (*worker.Worker, error) {
				return req.ToEntity()
			},
			ApplyUpdate: func(req dto.UpdateWorkerRequest, existing *worker.Worker) {
				req.ApplyTo(existing)
			},
		}),
	}
}

// --- Products ---

// ProductHandler handles the finished-goods catalog.
type ProductHandler struct {
	*CatalogHandler[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]
}

// NewProductHandler creates a product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]{
			Service: service.CatalogService,
			MapCreateDTO: func(req dto.CreateProductRequest) (*product.Product, error) {
				return req.ToEntity(), nil
			},
			ApplyUpdate: func(req dto.UpdateProductRequest, existing *product.Product) {
				req.ApplyTo(existing)
			},
		}),
	}
}
