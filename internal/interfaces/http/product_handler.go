package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-qr/internal/application/catalog"
	"github.com/jhoicas/stock-qr/internal/application/dto"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/infrastructure/export"
)

// ProductHandler maneja el catálogo de productos (protegido).
type ProductHandler struct {
	uc *catalog.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *catalog.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(100)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if ok, err := bindQuery(c, &page); !ok {
		return err
	}
	page.DefaultPage()
	list, err := h.uc.List(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	from, to := page.Window(len(list))
	items := make([]dto.ProductResponse, 0, to-from)
	for _, p := range list[from:to] {
		items = append(items, toProductResponse(p))
	}
	return c.JSON(dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(list)},
	})
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	p, err := h.uc.GetByID(c.Context(), int64(id))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toProductResponse(*p))
}

// Put godoc
// @Summary      Crear o actualizar producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                 true  "ID del producto"
// @Param        body  body  dto.ProductRequest  true  "Descripción"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Put(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.ProductRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	p, err := h.uc.Upsert(c.Context(), int64(id), in.Description)
	observe("product_upsert", err)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toProductResponse(*p))
}

// Import godoc
// @Summary      Importar catálogo desde Excel
// @Description  Primera hoja, columna A id y columna B descripción; la primera fila es encabezado.
// @Tags         products
// @Security     Bearer
// @Accept       mpfd
// @Produce      json
// @Param        file  formData  file  true  "Planilla .xlsx"
// @Success      200   {object}  dto.ImportResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products/import [post]
func (h *ProductHandler) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "campo file requerido"})
	}
	file, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILE", Message: err.Error()})
	}
	defer file.Close()

	products, err := export.ReadCatalogXLSX(file)
	if err != nil {
		return writeError(c, err)
	}
	n, err := h.uc.Import(c.Context(), products)
	observe("product_import", err)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ImportResponse{Imported: n})
}

func toProductResponse(p entity.Product) dto.ProductResponse {
	return dto.ProductResponse{ID: p.ID, Description: p.Description}
}
