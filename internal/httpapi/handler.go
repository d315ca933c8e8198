package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type handler struct {
	board Board
}

type usageView struct {
	Ingredient string `json:"ingredient"`
	Kg         string `json:"kg"`
}

type dishView struct {
	Name   string      `json:"name"`
	Price  string      `json:"price"`
	Info   string      `json:"info"`
	Usages []usageView `json:"ingredients"`
}

type ingredientView struct {
	Name       string `json:"name"`
	PricePerKg string `json:"price_per_kg"`
	Kg         string `json:"kg"`
}

type orderView struct {
	Dish     string    `json:"dish"`
	Price    string    `json:"price"`
	PlacedAt time.Time `json:"placed_at"`
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) menu(c *gin.Context) {
	dishes := h.board.Menu()
	out := make([]dishView, len(dishes))
	for i, d := range dishes {
		usages := make([]usageView, len(d.Usages))
		for j, u := range d.Usages {
			usages[j] = usageView{Ingredient: u.Ingredient, Kg: u.Quantity.String()}
		}
		out[i] = dishView{Name: d.Name, Price: d.Price.StringFixed(2), Info: d.Info, Usages: usages}
	}
	c.JSON(http.StatusOK, gin.H{"dishes": out})
}

func (h *handler) stock(c *gin.Context) {
	items := h.board.Stock()
	out := make([]ingredientView, len(items))
	for i, ing := range items {
		out[i] = ingredientView{Name: ing.Name, PricePerKg: ing.PricePerUnit.StringFixed(2), Kg: ing.Quantity.String()}
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": out})
}

func (h *handler) budget(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"balance": h.board.Balance().StringFixed(2)})
}

func (h *handler) orders(c *gin.Context) {
	user := c.Param("user")
	orders := h.board.History(user)
	out := make([]orderView, len(orders))
	for i, o := range orders {
		out[i] = orderView{Dish: o.Dish, Price: o.Price.StringFixed(2), PlacedAt: o.PlacedAt}
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "orders": out})
}
