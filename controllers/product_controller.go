package controllers

import (
	"errors"
	"math"
	"net/http"

	"github.com/yashrajoria/catalog-import-service/apperrors"
	"github.com/yashrajoria/catalog-import-service/models"
	"github.com/yashrajoria/catalog-import-service/repository"
	"github.com/yashrajoria/catalog-import-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProductController serves the single-record product routes.
type ProductController struct {
	service   ProductServiceAPI
	cache     *CacheManager
	validator *RequestValidator
}

func NewProductController(service ProductServiceAPI, cache *CacheManager, validator *RequestValidator) *ProductController {
	return &ProductController{service: service, cache: cache, validator: validator}
}

func (pc *ProductController) GetProducts(c *gin.Context) {
	page, perPage, err := pc.validator.ParsePagination(c)
	if err != nil {
		apperrors.Respond(c, apperrors.New(http.StatusBadRequest, "Invalid pagination", err))
		return
	}

	ctx := c.Request.Context()
	if cached, ok := pc.cache.GetProductList(ctx, page, perPage); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	products, total, err := pc.service.ListProducts(ctx, services.ListProductsParams{Page: page, PerPage: perPage})
	if err != nil {
		zap.L().Error("Error listing products", zap.Error(err))
		apperrors.Respond(c, apperrors.New(http.StatusInternalServerError, "Failed to fetch products", err))
		return
	}
	if products == nil {
		products = []*models.Product{}
	}

	response := gin.H{
		"products": products,
		"meta": gin.H{
			"page":       page,
			"perPage":    perPage,
			"total":      total,
			"totalPages": int(math.Ceil(float64(total) / float64(perPage))),
		},
	}
	pc.cache.SetProductListAsync(page, perPage, response)
	c.JSON(http.StatusOK, response)
}

func (pc *ProductController) GetProductByID(c *gin.Context) {
	product, err := pc.service.GetProduct(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		apperrors.Respond(c, apperrors.New(http.StatusNotFound, "Product not found", nil))
		return
	}
	if err != nil {
		zap.L().Error("Error fetching product", zap.String("id", c.Param("id")), zap.Error(err))
		apperrors.Respond(c, apperrors.New(http.StatusInternalServerError, "Error fetching product", err))
		return
	}
	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req services.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.New(http.StatusBadRequest, "Error creating product", err))
		return
	}

	ctx := c.Request.Context()
	product, err := pc.service.CreateProduct(ctx, req)
	if err != nil {
		apperrors.Respond(c, writeError("Error creating product", err))
		return
	}

	pc.invalidate(c)
	c.JSON(http.StatusCreated, product)
}

func (pc *ProductController) UpdateProduct(c *gin.Context) {
	var req services.ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.New(http.StatusBadRequest, "Error updating product", err))
		return
	}

	product, err := pc.service.UpdateProduct(c.Request.Context(), c.Param("id"), req)
	if errors.Is(err, repository.ErrNotFound) {
		apperrors.Respond(c, apperrors.New(http.StatusNotFound, "Product not found", nil))
		return
	}
	if err != nil {
		apperrors.Respond(c, writeError("Error updating product", err))
		return
	}

	pc.invalidate(c)
	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) DeleteProduct(c *gin.Context) {
	err := pc.service.DeleteProduct(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		apperrors.Respond(c, apperrors.New(http.StatusNotFound, "Product not found", nil))
		return
	}
	if err != nil {
		zap.L().Error("Error deleting product", zap.String("id", c.Param("id")), zap.Error(err))
		apperrors.Respond(c, apperrors.New(http.StatusInternalServerError, "Error deleting product", err))
		return
	}

	pc.invalidate(c)
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

func (pc *ProductController) invalidate(c *gin.Context) {
	if err := pc.cache.Invalidate(c.Request.Context()); err != nil {
		zap.L().Error("CRITICAL: Failed to invalidate cache", zap.Error(err))
	}
}

// writeError maps a create/update failure to 400 for invalid input and 500 otherwise.
func writeError(message string, err error) *apperrors.Error {
	var verr *repository.ValidationError
	if errors.As(err, &verr) || errors.Is(err, services.ErrNoUpdates) {
		return apperrors.New(http.StatusBadRequest, message, err)
	}
	zap.L().Error(message, zap.Error(err))
	return apperrors.New(http.StatusInternalServerError, message, err)
}
