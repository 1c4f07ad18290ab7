package services

import (
	"fmt"
	"strconv"
	"strings"

	"go-food-ordering/models"
	"go-food-ordering/payment"
)

// MaxItemQuantity caps a single cart line.
const MaxItemQuantity = 100

type LineItem struct {
	MenuItemID string
	Name       string
	UnitAmount int64
	Quantity   int64
}

// PriceCart prices every cart entry from the restaurant's menu. Names and
// prices always come from the menu; the cart only contributes references and
// quantities. Any bad entry fails the whole cart.
func PriceCart(cart []models.CartItem, menu []models.MenuItem) ([]LineItem, error) {
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	byID := make(map[string]models.MenuItem, len(menu))
	for _, item := range menu {
		byID[item.ID.Hex()] = item
	}

	lineItems := make([]LineItem, 0, len(cart))
	for _, cartItem := range cart {
		menuItem, ok := byID[cartItem.MenuItemID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, cartItem.MenuItemID)
		}
		quantity, err := ParseQuantity(string(cartItem.Quantity))
		if err != nil {
			return nil, err
		}
		lineItems = append(lineItems, LineItem{
			MenuItemID: cartItem.MenuItemID,
			Name:       menuItem.Name,
			UnitAmount: menuItem.Price,
			Quantity:   quantity,
		})
	}
	return lineItems, nil
}

func ParseQuantity(raw string) (int64, error) {
	quantity, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidQuantity, raw)
	}
	if quantity <= 0 || quantity > MaxItemQuantity {
		return 0, fmt.Errorf("%w: %d is outside 1..%d", ErrInvalidQuantity, quantity, MaxItemQuantity)
	}
	return quantity, nil
}

func toGatewayLineItems(items []LineItem) []payment.LineItem {
	out := make([]payment.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, payment.LineItem{
			Name:       item.Name,
			UnitAmount: item.UnitAmount,
			Quantity:   item.Quantity,
		})
	}
	return out
}
