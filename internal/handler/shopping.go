package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/petrkov/shopping-list/internal/list"
	"github.com/petrkov/shopping-list/internal/queue"
	"github.com/petrkov/shopping-list/internal/repository"
)

// ShoppingHandler implements the /shopping endpoints. All of them run behind
// SessionAuth, and the user identity comes exclusively from the verified
// session in the request context. Bodies may still carry a legacy userId
// field sent by older clients; it is ignored.
//
// Every mutation goes through ListRepo.Mutate, so the read-modify-write on
// the user's row holds a row lock and concurrent edits serialize.
type ShoppingHandler struct {
	Lists *repository.ListRepo
	// Publish, when set, is invoked after each successful mutation. Failures
	// are the publisher's problem; the request flow never depends on it.
	Publish func(ctx context.Context, ev queue.ListActivityEvent) error
}

func NewShoppingHandler(lists *repository.ListRepo) *ShoppingHandler {
	return &ShoppingHandler{Lists: lists}
}

type addItemReq struct {
	Item     string `json:"item"`
	Quantity *int   `json:"quantity"`
}
type updateQuantityReq struct {
	Index *int `json:"index"`
	Value *int `json:"value"`
}
type indexReq struct {
	Index *int `json:"index"`
}

// sessionUserID reads the identity SessionAuth stored in the context.
func sessionUserID(c echo.Context) string {
	v, _ := c.Get("user_id").(string)
	return v
}

func (h *ShoppingHandler) publish(userID, action, item string, index int, l list.List) {
	if h.Publish == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = h.Publish(ctx, queue.ListActivityEvent{
		UserID:     userID,
		Action:     action,
		Item:       item,
		Index:      index,
		ItemsCount: l.Len(),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// GetList returns the user's list, materializing an empty row on first
// access. A second call finds the row and returns the same empty result
// without re-creating it.
func (h *ShoppingHandler) GetList(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.Lists.Ensure(ctx, sessionUserID(c))
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{
			"status":        400,
			"items":         []string{},
			"quantities":    []int{},
			"checked_items": []int{},
			"message":       "Failed to get user's shopping list",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":        200,
		"items":         l.Items,
		"quantities":    l.Quantities,
		"checked_items": l.CheckedAsInts(),
		"message":       "",
	})
}

// AddItem appends an item with its quantity, unchecked.
func (h *ShoppingHandler) AddItem(c echo.Context) error {
	var req addItemReq
	if err := c.Bind(&req); err != nil {
		// A non-integer quantity is the only field that can fail decoding.
		return c.JSON(http.StatusOK, echo.Map{"status": 400, "message": "Quantity not provided"})
	}
	if req.Item == "" {
		return c.JSON(http.StatusOK, echo.Map{"status": 400, "message": "Item not provided"})
	}
	if req.Quantity == nil {
		return c.JSON(http.StatusOK, echo.Map{"status": 400, "message": "Quantity not provided"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID := sessionUserID(c)
	l, err := h.Lists.Mutate(ctx, userID, func(l *list.List) error {
		return l.Append(req.Item, *req.Quantity)
	})
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"status": 400, "message": mutationMessage(err)})
	}

	h.publish(userID, queue.ActionAddItem, req.Item, l.Len()-1, l)
	return c.JSON(http.StatusOK, echo.Map{"status": 200, "message": ""})
}

// UpdateQuantity replaces the quantity at an index and returns the updated
// quantities sequence.
func (h *ShoppingHandler) UpdateQuantity(c echo.Context) error {
	var req updateQuantityReq
	if err := c.Bind(&req); err != nil || req.Index == nil {
		return c.JSON(http.StatusOK, echo.Map{
			"status": 400, "quantities": []int{}, "message": "Index not provided",
		})
	}
	if req.Value == nil {
		return c.JSON(http.StatusOK, echo.Map{
			"status": 400, "quantities": []int{}, "message": "Value not provided",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID := sessionUserID(c)
	l, err := h.Lists.Mutate(ctx, userID, func(l *list.List) error {
		return l.SetQuantity(*req.Index, *req.Value)
	})
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{
			"status": 400, "quantities": []int{}, "message": mutationMessage(err),
		})
	}

	h.publish(userID, queue.ActionUpdateQuantity, "", *req.Index, l)
	return c.JSON(http.StatusOK, echo.Map{
		"status": 200, "quantities": l.Quantities, "message": "",
	})
}

// DeleteItem removes the entry at an index from all three sequences and
// returns the updated list.
func (h *ShoppingHandler) DeleteItem(c echo.Context) error {
	var req indexReq
	if err := c.Bind(&req); err != nil || req.Index == nil {
		return c.JSON(http.StatusOK, echo.Map{
			"status":        400,
			"items":         []string{},
			"quantities":    []int{},
			"checked_items": []int{},
			"message":       "Index not provided",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID := sessionUserID(c)
	l, err := h.Lists.Mutate(ctx, userID, func(l *list.List) error {
		return l.DeleteAt(*req.Index)
	})
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{
			"status":        400,
			"items":         []string{},
			"quantities":    []int{},
			"checked_items": []int{},
			"message":       mutationMessage(err),
		})
	}

	h.publish(userID, queue.ActionDeleteItem, "", *req.Index, l)
	return c.JSON(http.StatusOK, echo.Map{
		"status":        200,
		"items":         l.Items,
		"quantities":    l.Quantities,
		"checked_items": l.CheckedAsInts(),
		"message":       "",
	})
}

// DeleteAll resets the list to empty.
func (h *ShoppingHandler) DeleteAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID := sessionUserID(c)
	l, err := h.Lists.Mutate(ctx, userID, func(l *list.List) error {
		l.Clear()
		return nil
	})
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"status": 400, "message": mutationMessage(err)})
	}

	h.publish(userID, queue.ActionClearList, "", -1, l)
	return c.JSON(http.StatusOK, echo.Map{"status": 200, "message": ""})
}

// ToggleItemCheck flips the checked flag at an index.
func (h *ShoppingHandler) ToggleItemCheck(c echo.Context) error {
	var req indexReq
	if err := c.Bind(&req); err != nil || req.Index == nil {
		return c.JSON(http.StatusOK, echo.Map{"status": 400, "message": "Index not provided"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID := sessionUserID(c)
	l, err := h.Lists.Mutate(ctx, userID, func(l *list.List) error {
		return l.ToggleChecked(*req.Index)
	})
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"status": 400, "message": mutationMessage(err)})
	}

	h.publish(userID, queue.ActionToggleChecked, "", *req.Index, l)
	return c.JSON(http.StatusOK, echo.Map{"status": 200, "message": ""})
}

// mutationMessage maps list/storage errors onto the human-readable message
// field. Domain rejections keep their specific wording; anything else is a
// storage fault and reported generically.
func mutationMessage(err error) string {
	switch err {
	case list.ErrIndexOutOfRange:
		return "Index out of range"
	case list.ErrEmptyItem:
		return "Item not provided"
	default:
		return "Failed to update shopping list"
	}
}
