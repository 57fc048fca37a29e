package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopcore/internal/domain"
)

func listAddressesHandler(addresses AddressService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := addresses.List(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "", gin.H{"addresses": list})
	}
}

func getAddressHandler(addresses AddressService) gin.HandlerFunc {
	return func(c *gin.Context) {
		addr, err := addresses.Get(c.Request.Context(), currentUser(c).ID, c.Param("addressId"))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "", gin.H{"address": addr})
	}
}

func createAddressHandler(addresses AddressService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.Address
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		addr, err := addresses.Create(c.Request.Context(), currentUser(c).ID, req)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusCreated, "address created", gin.H{"address": addr})
	}
}

func updateAddressHandler(addresses AddressService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.Address
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		addr, err := addresses.Update(c.Request.Context(), currentUser(c).ID, c.Param("addressId"), req)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "address updated", gin.H{"address": addr})
	}
}

func deleteAddressHandler(addresses AddressService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := addresses.Delete(c.Request.Context(), currentUser(c).ID, c.Param("addressId")); err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "address deleted", nil)
	}
}

func setDefaultAddressHandler(addresses AddressService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := addresses.SetDefault(c.Request.Context(), currentUser(c).ID, c.Param("addressId")); err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "default address updated", nil)
	}
}
