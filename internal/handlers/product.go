package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/urbanstyle/tienda/internal/models"
	"github.com/urbanstyle/tienda/internal/mykafka"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	ESIndex  string
}

type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Gender      string          `json:"gender"`
	ColorsJSON  string          `json:"colors_json"`
	Sizes       json.RawMessage `json:"sizes"`
	PriceBase   float64         `json:"price_base"`
	Stock       *uint           `json:"stock"`
	Image       string          `json:"image"`
}

// normalizeSizes accepts either an ordered list or an already delimited
// string and stores the comma-joined form.
func normalizeSizes(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ",")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

// makeSKU derives NAM-G-1234 from the product name and gender plus a random
// disambiguator, the way the store has always coded its articles.
func makeSKU(name, gender string) string {
	prefix := []rune(name)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return fmt.Sprintf("%s-%c-%d", strings.ToUpper(string(prefix)), []rune(gender)[0], rand.IntN(10000))
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *ProductHandler) indexProduct(c echo.Context, p models.Product) {
	if h.ES == nil {
		return
	}
	body, err := json.Marshal(p)
	if err != nil {
		return
	}
	res, err := h.ES.Index(
		h.ESIndex,
		bytes.NewReader(body),
		h.ES.Index.WithDocumentID(strconv.Itoa(int(p.ID))),
		h.ES.Index.WithContext(c.Request().Context()),
	)
	if err != nil {
		c.Logger().Errorf("ES index error: %v", err)
		return
	}
	res.Body.Close()
}

func (h *ProductHandler) removeFromIndex(c echo.Context, id int) {
	if h.ES == nil {
		return
	}
	res, err := h.ES.Delete(
		h.ESIndex,
		strconv.Itoa(id),
		h.ES.Delete.WithContext(c.Request().Context()),
	)
	if err != nil {
		c.Logger().Errorf("ES delete error: %v", err)
		return
	}
	res.Body.Close()
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	var items []models.Product
	if err := h.DB.Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" || req.Gender == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Todos los campos son obligatorios")
	}
	if req.PriceBase < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "el precio no puede ser negativo")
	}

	prod := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Gender:      req.Gender,
		ColorsJSON:  req.ColorsJSON,
		Sizes:       normalizeSizes(req.Sizes),
		PriceBase:   req.PriceBase,
		Stock:       1,
		SKU:         makeSKU(req.Name, req.Gender),
		Image:       req.Image,
	}
	if err := h.DB.Create(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	h.indexProduct(c, prod)

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"id":      prod.ID,
		"sku":     prod.SKU,
	})
}

// UpdateProduct overwrites every mutable field, it is a full replace, not a
// patch. The SKU keeps its creation-time value.
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PriceBase < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "el precio no puede ser negativo")
	}

	var stock uint
	if req.Stock != nil {
		stock = *req.Stock
	}

	updates := map[string]any{
		"name":        req.Name,
		"description": req.Description,
		"category":    req.Category,
		"gender":      req.Gender,
		"colors_json": req.ColorsJSON,
		"sizes":       normalizeSizes(req.Sizes),
		"price_base":  req.PriceBase,
		"stock":       stock,
		"image":       req.Image,
	}
	if err := h.DB.Model(&models.Product{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "product_updated",
		"productID": id,
		"name":      req.Name,
	})

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err == nil {
		h.indexProduct(c, prod)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	result := h.DB.Delete(&models.Product{}, id)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Producto no encontrado")
	}

	h.publish(c, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	h.removeFromIndex(c, id)

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
