package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/merch-storefront/internal/apperr"
	"github.com/loganlanou/merch-storefront/internal/bundle"
	"github.com/loganlanou/merch-storefront/internal/cart"
	"github.com/loganlanou/merch-storefront/internal/catalog"
	"github.com/loganlanou/merch-storefront/internal/middleware"
	"github.com/loganlanou/merch-storefront/internal/utils"
	"github.com/shopspring/decimal"
)

type CartHandler struct {
	carts    cart.Store
	resolver variantResolver
}

func NewCartHandler(carts cart.Store, resolver variantResolver) *CartHandler {
	return &CartHandler{carts: carts, resolver: resolver}
}

// CartView is the cart with its totals.
type CartView struct {
	Items          []cart.LineItem `json:"items"`
	TotalItems     int             `json:"total_items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Savings        decimal.Decimal `json:"savings"`
	Total          decimal.Decimal `json:"total"`
	Currency       string          `json:"currency"`
	FormattedTotal string          `json:"formatted_total"`
}

func NewCartView(c *cart.Cart) CartView {
	items := c.Items
	if items == nil {
		items = []cart.LineItem{}
	}
	return CartView{
		Items:          items,
		TotalItems:     c.TotalItems(),
		Subtotal:       c.Subtotal(),
		Savings:        bundle.TotalSavings(c.Items),
		Total:          c.TotalPrice(),
		Currency:       utils.DefaultCurrency,
		FormattedTotal: utils.FormatPrice(c.TotalPrice(), utils.DefaultCurrency),
	}
}

type AddToCartRequest struct {
	Category string `json:"category" validate:"required"`
	Design   string `json:"design"`
	Size     string `json:"size"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1"`
	Image    string `json:"image"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) HandleGetCart(c echo.Context) error {
	return h.respondWithCart(c, http.StatusOK)
}

// HandleAddItem resolves a single product selection and adds it. Adding the
// same variant again bumps its quantity.
func (h *CartHandler) HandleAddItem(c echo.Context) error {
	var req AddToCartRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	category, err := catalog.ParseCategory(req.Category)
	if err != nil {
		return Error(c, err)
	}
	sel := bundle.Selection{Size: catalog.Size(req.Size), Color: req.Color}
	if req.Design != "" {
		design, ok := catalog.ParseDesign(req.Design)
		if !ok {
			return Error(c, apperr.New(apperr.CodeValidation, "design must be DARK or LIGHT"))
		}
		sel.Design = design
	}

	entry, err := h.resolver.Resolve(category, sel)
	if err != nil {
		return Error(c, err)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item := SingleItem(entry, req.Quantity)
	item.Image = req.Image
	if err := h.carts.Add(c.Request().Context(), middleware.SessionID(c), item); err != nil {
		return Error(c, err)
	}
	return h.respondWithCart(c, http.StatusCreated)
}

// SingleItem is the cart line for a product bought on its own, at the
// variant's standalone price.
func SingleItem(entry catalog.Entry, quantity int) cart.LineItem {
	ref := entry.Ref
	return cart.LineItem{
		ID:                ref.String(),
		Name:              entry.ProductName,
		Price:             entry.Price,
		Quantity:          quantity,
		PrintfulVariantID: strconv.FormatInt(ref.ID, 10),
		ExternalID:        entry.ExternalID,
		Ref:               &ref,
		Category:          ref.Category,
		Size:              string(entry.Size),
		Color:             entry.Color,
	}
}

func (h *CartHandler) HandleUpdateItem(c echo.Context) error {
	var req UpdateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}
	id, err := itemParam(c)
	if err != nil {
		return Error(c, err)
	}
	if err := h.carts.UpdateQuantity(c.Request().Context(), middleware.SessionID(c), id, req.Quantity); err != nil {
		return Error(c, err)
	}
	return h.respondWithCart(c, http.StatusOK)
}

func (h *CartHandler) HandleRemoveItem(c echo.Context) error {
	id, err := itemParam(c)
	if err != nil {
		return Error(c, err)
	}
	if err := h.carts.Remove(c.Request().Context(), middleware.SessionID(c), id); err != nil {
		return Error(c, err)
	}
	return h.respondWithCart(c, http.StatusOK)
}

// HandleRemoveBundle drops a bundle's items and its discount line together.
func (h *CartHandler) HandleRemoveBundle(c echo.Context) error {
	if err := h.carts.RemoveBundle(c.Request().Context(), middleware.SessionID(c), c.Param("bundleId")); err != nil {
		return Error(c, err)
	}
	return h.respondWithCart(c, http.StatusOK)
}

func (h *CartHandler) HandleClearCart(c echo.Context) error {
	if err := h.carts.Clear(c.Request().Context(), middleware.SessionID(c)); err != nil {
		return Error(c, err)
	}
	return h.respondWithCart(c, http.StatusOK)
}

func (h *CartHandler) respondWithCart(c echo.Context, status int) error {
	current, err := h.carts.Get(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return Error(c, err)
	}
	return c.JSON(status, NewCartView(current))
}

func itemParam(c echo.Context) (string, error) {
	id, err := url.PathUnescape(c.Param("id"))
	if err != nil || strings.TrimSpace(id) == "" {
		return "", apperr.New(apperr.CodeValidation, "invalid item id")
	}
	return id, nil
}
