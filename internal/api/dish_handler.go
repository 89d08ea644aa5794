package api

import (
	"alcyxob/healthera/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type DishHandler struct {
	dishService service.DishService
}

func NewDishHandler(dishService service.DishService) *DishHandler {
	return &DishHandler{dishService: dishService}
}

// ListDishes godoc
// @Summary List the dishes of every program
// @Tags Dishes
// @Produce json
// @Security BearerAuth
// @Param category query string false "breakfast, lunch, dinner, snack or all"
// @Success 200 {array} domain.Dish
// @Failure 400 {object} gin.H "Unknown category"
// @Router /dishes [get]
func (h *DishHandler) ListDishes(c *gin.Context) {
	dishes, err := h.dishService.ListDishes(c.Request.Context(), c.Query("category"))
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve dishes.")
		return
	}
	c.JSON(http.StatusOK, dishes)
}

// GetDish godoc
// @Summary Get one dish
// @Tags Dishes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Dish id, <programId>-<menuItemId>"
// @Success 200 {object} domain.Dish
// @Failure 400 {object} gin.H "Invalid id format"
// @Failure 404 {object} gin.H "Dish not found"
// @Router /dishes/{id} [get]
func (h *DishHandler) GetDish(c *gin.Context) {
	dish, err := h.dishService.GetDish(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve dish.")
		return
	}
	c.JSON(http.StatusOK, dish)
}
