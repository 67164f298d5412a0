package http

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storehelper/backend/internal/domain"
	"github.com/storehelper/backend/internal/usecase"
)

const maxQueryLength = 200

// Handler holds dependencies for HTTP handlers
type Handler struct {
	productService *usecase.ProductService
	catalogPath    string
}

// NewHandler creates a new HTTP handler.
// A nil product service disables /api/search.
func NewHandler(productService *usecase.ProductService, catalogPath string) *Handler {
	return &Handler{
		productService: productService,
		catalogPath:    catalogPath,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "storehelper",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// SearchProducts runs one store search and returns normalized products
func (h *Handler) SearchProducts(c *gin.Context) {
	if h.productService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Product search not configured",
		})
		return
	}

	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "query parameter q is required",
		})
		return
	}
	if len(term) > maxQueryLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "query parameter q is too long",
		})
		return
	}

	products, err := h.productService.Search(c.Request.Context(), term)
	if err != nil {
		log.Printf("[API] Search for %q failed: %v", term, err)
		switch {
		case errors.Is(err, domain.ErrRateLimited):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Search API rate limit reached, try again later",
			})
		default:
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Search API temporarily unavailable",
			})
		}
		return
	}

	c.JSON(http.StatusOK, products)
}

// ServeCatalog serves the last generated catalog page
func (h *Handler) ServeCatalog(c *gin.Context) {
	if _, err := os.Stat(h.catalogPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Catalog has not been generated yet",
		})
		return
	}
	c.File(h.catalogPath)
}
