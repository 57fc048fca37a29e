package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func listProductsHandler(catalog CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := intQuery(c, "limit", 20)
		offset := intQuery(c, "offset", 0)
		products, err := catalog.List(c.Request.Context(), limit, offset)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "", gin.H{
			"products": products,
			"count":    len(products),
		})
	}
}

func getProductHandler(catalog CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := catalog.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "", gin.H{"product": p})
	}
}

func intQuery(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
