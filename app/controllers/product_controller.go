package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/app/services"
	"github.com/shashiranjanraj/vyapar/pkg/bind"
	"github.com/shashiranjanraj/vyapar/pkg/response"
)

// maxImageBytes caps product image uploads.
const maxImageBytes = 10 << 20 // 10 MB

type ProductController struct {
	products     *services.ProductService
	maxBodyBytes int64
}

func NewProductController(products *services.ProductService, maxBodyBytes int64) *ProductController {
	return &ProductController{products: products, maxBodyBytes: maxBodyBytes}
}

// List handles GET /products with skip/limit/category_id/min_price/
// max_price/search query filters.
func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repositories.ProductFilter{
		Skip:   queryInt(q.Get("skip")),
		Limit:  queryInt(q.Get("limit")),
		Search: q.Get("search"),
	}
	filter.CategoryID = uint(queryInt(q.Get("category_id")))
	filter.MinPrice, _ = strconv.ParseFloat(q.Get("min_price"), 64)
	filter.MaxPrice, _ = strconv.ParseFloat(q.Get("max_price"), 64)

	products, err := c.products.List(r.Context(), filter)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, products)
}

// Get handles GET /products/{id}.
func (c *ProductController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	product, err := c.products.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, product)
}

// Create handles POST /products (admin).
func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	var body services.ProductInput
	if errs, err := bind.JSON(r, &body, c.maxBodyBytes); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.products.Create(r.Context(), body)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Created(w, product)
}

// Update handles PUT /products/{id} (admin, partial update).
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body services.ProductUpdate
	if errs, err := bind.JSON(r, &body, c.maxBodyBytes); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.products.Update(r.Context(), id, body)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, product)
}

// Delete handles DELETE /products/{id} (admin).
func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.products.Delete(r.Context(), id); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.NoContent(w)
}

// UploadImage handles POST /products/{id}/image (admin, multipart).
func (c *ProductController) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Missing image file")
		return
	}
	defer file.Close()

	product, err := c.products.AttachImage(r.Context(), id, header.Filename, file)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, product)
}

// ListCategories handles GET /products/categories/list.
func (c *ProductController) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.products.ListCategories(r.Context())
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, categories)
}

// CreateCategory handles POST /products/categories (admin).
func (c *ProductController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name" validate:"required,max=255"`
		Description string `json:"description" validate:"nullable"`
	}
	if errs, err := bind.JSON(r, &body, c.maxBodyBytes); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	category, err := c.products.CreateCategory(r.Context(), body.Name, body.Description)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Created(w, category)
}

// pathID parses a {param} URL segment as an id. On failure it writes a 404
// (a non-numeric id can never name a resource) and returns ok=false.
func pathID(w http.ResponseWriter, r *http.Request, param string) (uint, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.Error(w, http.StatusNotFound, "Resource not found")
		return 0, false
	}
	return uint(id), true
}

func queryInt(raw string) int {
	n, _ := strconv.Atoi(raw)
	if n < 0 {
		return 0
	}
	return n
}
