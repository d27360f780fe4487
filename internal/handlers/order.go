package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/urbanstyle/tienda/internal/logging"
	"github.com/urbanstyle/tienda/internal/middleware/auth"
	"github.com/urbanstyle/tienda/internal/models"
)

var errLineInsert = errors.New("line insert")

type OrderHandler struct {
	DB *gorm.DB
}

type orderItemRequest struct {
	ProductID uint    `json:"id"`
	Quantity  uint    `json:"quantity"`
	PriceBase float64 `json:"price_base"`
}

type createOrderRequest struct {
	Total float64            `json:"total"`
	Items []orderItemRequest `json:"items"`
}

// CreateOrder inserts the order header and every line inside one transaction;
// a failing line rolls the whole order back. The client total must match the
// sum of the submitted lines.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	userID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Faltan datos para crear la orden.")
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Faltan datos para crear la orden.")
	}
	if len(req.Items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Faltan datos para crear la orden.")
	}

	var total float64
	lines := make([]models.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Faltan datos para crear la orden.")
		}
		if item.PriceBase < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "el precio no puede ser negativo")
		}
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		total += float64(item.Quantity) * item.PriceBase
		lines = append(lines, models.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.PriceBase,
		})
	}
	if math.Abs(total-req.Total) > 1e-6 {
		return echo.NewHTTPError(http.StatusBadRequest, "el total no coincide con los artículos")
	}

	order := models.Order{
		Fecha:  time.Now().UTC().Format(time.RFC3339),
		UserID: userID,
		Total:  total,
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderID = order.ID
			if err := tx.Create(&lines[i]).Error; err != nil {
				return fmt.Errorf("%w: %v", errLineInsert, err)
			}
		}
		return nil
	})
	if txErr != nil {
		l.Warn("create_order_error", "status", 500, "error", txErr)
		if errors.Is(txErr, errLineInsert) {
			return echo.NewHTTPError(http.StatusInternalServerError, "Error al insertar los detalles.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al registrar la orden principal.")
	}

	l.Info("create_order_success", "order_id", order.ID, "lines", len(lines))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Orden creada exitosamente",
		"orderId": order.ID,
	})
}

// GetOrders lists the caller's orders newest-first; an admin sees everyone's.
func (h *OrderHandler) GetOrders(c echo.Context) error {
	claims := auth.ClaimsFrom(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusForbidden, "token inválido")
	}

	q := h.DB.Model(&models.Order{}).Order("id DESC")
	if !claims.IsAdmin() {
		userID, err := auth.UserID(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusForbidden, "token inválido")
		}
		q = q.Where("id_usuario = ?", userID)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, orders)
}

const purchaseDetailQuery = `
SELECT
    dc.id_orden,
    oc.fecha,
    dc.id_producto,
    p.name AS nombre_producto,
    p.gender AS genero,
    p.sizes AS talla,
    dc.cantidad,
    dc.precio_unitario,
    u.id AS usuario_id,
    u.name,
    u.lastname,
    u.email
FROM detalle_compra dc
JOIN orden_compra oc ON dc.id_orden = oc.id
JOIN products p ON dc.id_producto = p.id
JOIN users u ON oc.id_usuario = u.id`

// GetOrderDetails returns the denormalized purchase view: every line joined
// with its order, product and purchaser. Non-admins only see their own.
func (h *OrderHandler) GetOrderDetails(c echo.Context) error {
	claims := auth.ClaimsFrom(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusForbidden, "token inválido")
	}

	sql := purchaseDetailQuery
	args := []any{}
	if !claims.IsAdmin() {
		userID, err := auth.UserID(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusForbidden, "token inválido")
		}
		sql += " WHERE oc.id_usuario = ?"
		args = append(args, userID)
	}
	sql += " ORDER BY dc.id_orden DESC, p.name ASC"

	var rows []models.PurchaseDetail
	if err := h.DB.Raw(sql, args...).Scan(&rows).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}
