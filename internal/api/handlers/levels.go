package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/labyrinth/internal/level"
)

// ListLevels returns summaries of every playable level.
func ListLevels(catalog *level.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		levels, err := catalog.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"levels": levels})
	}
}

// GetLevel returns the full description of one level.
func GetLevel(catalog *level.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		lvl, err := catalog.Get(c.Request.Context(), c.Param("name"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, lvl)
	}
}
