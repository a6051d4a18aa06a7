package httpapi

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"

	"github.com/atvtrailers/shop-api/internal/auth"
	"github.com/atvtrailers/shop-api/internal/middleware"
	"github.com/atvtrailers/shop-api/internal/model"
	"github.com/atvtrailers/shop-api/internal/repository"
)

// OrdersController handles checkout and admin order management
type OrdersController struct {
	orders *repository.Orders
	logger auth.Logger
}

// OrderCustomerPayload is the embedded customer snapshot
type OrderCustomerPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Validate will validate the payload
func (p OrderCustomerPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Phone, validation.Required),
	)
}

// OrderDeliveryPayload is the chosen delivery method and location refs
type OrderDeliveryPayload struct {
	Method     string `json:"method"`
	CityRef    string `json:"cityRef"`
	CityName   string `json:"cityName"`
	BranchRef  string `json:"branchRef"`
	BranchName string `json:"branchName"`
}

// Validate will validate the payload
func (p OrderDeliveryPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Method, validation.Required, validation.In(model.DeliveryPickup, model.DeliveryCarrier)),
	)
}

// OrderPaymentPayload is the chosen payment method
type OrderPaymentPayload struct {
	Method string `json:"method"`
}

// Validate will validate the payload
func (p OrderPaymentPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Method, validation.Required, validation.In(model.PaymentCash, model.PaymentCard)),
	)
}

// CreateOrderPayload is the checkout body
type CreateOrderPayload struct {
	Customer *OrderCustomerPayload `json:"customer"`
	Delivery *OrderDeliveryPayload `json:"delivery"`
	Payment  *OrderPaymentPayload  `json:"payment"`
	Items    []model.OrderItem     `json:"items"`
	Total    *float64              `json:"total"`
}

// Validate will validate the payload; each failure names the missing
// field category.
func (p CreateOrderPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Customer, validation.Required),
		validation.Field(&p.Delivery, validation.Required),
		validation.Field(&p.Payment, validation.Required),
		validation.Field(&p.Items, validation.Required),
		validation.Field(&p.Total, validation.By(requiredNumber)),
	)
}

// UpdateOrderStatusPayload carries the new status value
type UpdateOrderStatusPayload struct {
	Status string `json:"status"`
}

// Create places an order. Guests and authenticated customers share this
// route; a valid bearer token attributes the order to its caller.
func (o *OrdersController) Create(c *fiber.Ctx) error {
	payload := new(CreateOrderPayload)
	if err := c.BodyParser(payload); err != nil {
		return parseError(err)
	}
	if err := payload.Validate(); err != nil {
		return validationError(err)
	}

	order := &model.Order{
		Customer: model.OrderCustomer{
			Name:  payload.Customer.Name,
			Email: payload.Customer.Email,
			Phone: normalizePhone(payload.Customer.Phone),
		},
		Delivery: model.OrderDelivery{
			Method:     payload.Delivery.Method,
			CityRef:    payload.Delivery.CityRef,
			CityName:   payload.Delivery.CityName,
			BranchRef:  payload.Delivery.BranchRef,
			BranchName: payload.Delivery.BranchName,
		},
		Payment: model.OrderPayment{
			Method: payload.Payment.Method,
		},
		Items: payload.Items,
		Total: *payload.Total,
	}

	if claims, ok := middleware.ClaimsFrom(c); ok {
		order.UserID = claims.ID()
	}

	order, err := o.orders.Create(c.Context(), order)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

// MyOrders returns the caller's own orders
func (o *OrdersController) MyOrders(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return errors.New("not authorized", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}

	orders, err := o.orders.ListByUser(c.Context(), claims.ID())
	if err != nil {
		return err
	}
	if orders == nil {
		orders = []*model.Order{}
	}
	return c.JSON(orders)
}

// List returns every order
func (o *OrdersController) List(c *fiber.Ctx) error {
	orders, err := o.orders.List(c.Context())
	if err != nil {
		return err
	}
	if orders == nil {
		orders = []*model.Order{}
	}
	return c.JSON(orders)
}

// GetByID returns a single order by its external id
func (o *OrdersController) GetByID(c *fiber.Ctx) error {
	order, err := o.orders.GetByOrderID(c.Context(), c.Params("orderId"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// UpdateStatus sets the order status. Any of the declared enum values is
// accepted from any current state.
func (o *OrdersController) UpdateStatus(c *fiber.Ctx) error {
	payload := new(UpdateOrderStatusPayload)
	if err := c.BodyParser(payload); err != nil {
		return parseError(err)
	}

	if !model.ValidOrderStatus(payload.Status) {
		return errors.New("invalid order status", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithMetadata(map[string]any{"status": payload.Status})
	}

	order, err := o.orders.UpdateStatus(c.Context(), c.Params("orderId"), payload.Status)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "order status updated",
		"order":   order,
	})
}

// Delete removes an order
func (o *OrdersController) Delete(c *fiber.Ctx) error {
	if err := o.orders.Delete(c.Context(), c.Params("orderId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "order deleted"})
}

// normalizePhone stores phones in E.164 when they parse as valid numbers
// and leaves them untouched otherwise. Presence is the only hard
// requirement at checkout.
func normalizePhone(raw string) string {
	num, err := phonenumbers.Parse(raw, "UA")
	if err != nil {
		return raw
	}
	if !phonenumbers.IsValidNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
