package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"pasar/internal/events"
	"pasar/internal/models"
	"pasar/internal/repositories"
	"pasar/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderService handles business logic related to orders.
type OrderService struct {
	orders    repositories.OrderRepository
	products  repositories.ProductRepository
	addresses repositories.AddressRepository
	publisher events.Publisher
	currency  string
	newOTP    func() (string, error)
}

// NewOrderService creates a new OrderService.
func NewOrderService(orders repositories.OrderRepository, products repositories.ProductRepository,
	addresses repositories.AddressRepository, publisher events.Publisher, currency string) *OrderService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &OrderService{
		orders:    orders,
		products:  products,
		addresses: addresses,
		publisher: publisher,
		currency:  currency,
		newOTP:    generateOTP,
	}
}

// OrderLine is one requested (product, variant, quantity).
type OrderLine struct {
	ProductID string
	VariantID string
	Quantity  int
}

// PlaceOrderRequest is a checkout of cart lines.
type PlaceOrderRequest struct {
	Items         []OrderLine
	Address       string
	AddressID     string
	PromoCode     string
	GiftCard      string
	Total         *decimal.Decimal
	PaymentMethod models.PaymentMethod
}

// PlaceOrderResult lists the orders created by one checkout, one per vendor.
type PlaceOrderResult struct {
	OrderIDs []string        `json:"orderIds"`
	Orders   []*models.Order `json:"orders"`
	Total    decimal.Decimal `json:"total"`
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (s *OrderService) shippingAddress(ctx context.Context, userID string, req PlaceOrderRequest) (string, error) {
	if req.AddressID != "" {
		address, err := s.addresses.Get(ctx, userID, req.AddressID)
		if err != nil {
			return "", domainErr(err)
		}
		return address.Format(), nil
	}
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return "", invalid("address is required")
	}
	return address, nil
}

// mergeLines validates the lines and sums repeated variants.
func mergeLines(items []OrderLine) ([]OrderLine, error) {
	if len(items) == 0 {
		return nil, invalid("items are required")
	}
	index := make(map[string]int, len(items))
	merged := make([]OrderLine, 0, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.VariantID == "" {
			return nil, invalid("every item needs productId and variantId")
		}
		if item.Quantity <= 0 {
			return nil, invalid("quantity of variant %s must be positive", item.VariantID)
		}
		if i, ok := index[item.VariantID]; ok {
			if merged[i].ProductID != item.ProductID {
				return nil, invalid("variant %s listed under two products", item.VariantID)
			}
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.VariantID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

// PlaceOrder turns the requested lines into one order per vendor. Prices are
// snapshotted from the variants and the grand total must match req.Total.
// Stock is taken, ordered cart lines are cleared and vendors are notified in
// the same transaction as the order rows.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	lines, err := mergeLines(req.Items)
	if err != nil {
		return nil, err
	}
	if req.Total == nil {
		return nil, invalid("total is required")
	}
	switch req.PaymentMethod {
	case "":
		req.PaymentMethod = models.PaymentCOD
	case models.PaymentCOD, models.PaymentCard:
	default:
		return nil, invalid("unknown payment method %q", req.PaymentMethod)
	}
	address, err := s.shippingAddress(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(lines))
	for i, line := range lines {
		ids[i] = line.VariantID
	}
	variants, err := s.products.GetVariants(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.ProductVariant, len(variants))
	for _, v := range variants {
		byID[v.ID] = v
	}

	var (
		vendors  []string
		byVendor = make(map[string]*models.Order)
		grand    = decimal.Zero
	)
	for _, line := range lines {
		variant, ok := byID[line.VariantID]
		if !ok || variant.Product == nil {
			return nil, fmt.Errorf("%w: variant %s", ErrNotFound, line.VariantID)
		}
		if variant.ProductID != line.ProductID {
			return nil, invalid("variant %s does not belong to product %s", line.VariantID, line.ProductID)
		}
		if variant.InOrder == models.InOrderReserved || variant.Stock < line.Quantity {
			return nil, fmt.Errorf("%w: %s (%s) has %d left, %d requested",
				ErrInsufficientStock, variant.Product.Name, variant.Name, variant.Stock, line.Quantity)
		}

		vendorID := variant.Product.VendorID
		order, ok := byVendor[vendorID]
		if !ok {
			order = &models.Order{
				UserID:        userID,
				VendorID:      vendorID,
				Address:       address,
				PaymentMethod: req.PaymentMethod,
				PromoCode:     strings.TrimSpace(req.PromoCode),
				GiftCard:      strings.TrimSpace(req.GiftCard),
				Status:        models.OrderPending,
				Total:         decimal.Zero,
			}
			byVendor[vendorID] = order
			vendors = append(vendors, vendorID)
		}
		item := models.OrderItem{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			Price:     variant.Price,
		}
		order.Items = append(order.Items, item)
		order.Total = order.Total.Add(item.Subtotal())
		grand = grand.Add(item.Subtotal())
	}

	if !grand.Equal(*req.Total) {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrTotalMismatch, grand.StringFixed(2), req.Total.StringFixed(2))
	}

	orders := make([]*models.Order, 0, len(vendors))
	for _, vendorID := range vendors {
		order := byVendor[vendorID]
		code, err := s.newOTP()
		if err != nil {
			return nil, err
		}
		order.Otp = &models.OrderOtp{Code: code}
		orders = append(orders, order)
	}

	if err := s.orders.CreateOrders(ctx, orders, placedNotifications(orders)); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", domainErr(err))
	}

	result := &PlaceOrderResult{Orders: orders, Total: grand}
	for _, order := range orders {
		result.OrderIDs = append(result.OrderIDs, order.ID)
		events.Emit(ctx, s.publisher, events.OrderCreated, events.NewOrderEvent(order))
	}
	return result, nil
}

// placedNotifications builds one vendor notification per order. Order ids are
// assigned up front so the message can name them.
func placedNotifications(orders []*models.Order) []*models.Notification {
	out := make([]*models.Notification, 0, len(orders))
	for _, order := range orders {
		if order.ID == "" {
			order.ID = uuid.New().String()
		}
		count := 0
		for _, item := range order.Items {
			count += item.Quantity
		}
		out = append(out, &models.Notification{
			RecipientRole: models.RoleVendor,
			RecipientID:   order.VendorID,
			Type:          models.NotifyOrderPlaced,
			Content: fmt.Sprintf("New order #%s: %d item(s), total %s (%s)",
				shortID(order.ID), count, order.Total.StringFixed(2), order.PaymentMethod),
		})
	}
	return out
}

// ListForUser returns the user's orders, newest first, with their delivery codes.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListForVendor returns the vendor's orders, optionally filtered by status.
func (s *OrderService) ListForVendor(ctx context.Context, vendorID, status string) ([]models.Order, error) {
	var filter models.OrderStatus
	if status != "" {
		filter = models.OrderStatus(strings.ToUpper(status))
		if !knownStatus(filter) {
			return nil, invalid("unknown order status %q", status)
		}
	}
	orders, err := s.orders.ListByVendor(ctx, vendorID, filter)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Otp = nil
	}
	return orders, nil
}

func knownStatus(status models.OrderStatus) bool {
	for _, s := range models.OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Get returns an order to its user or its vendor. Vendors never see the delivery code.
func (s *OrderService) Get(ctx context.Context, sess *session.Session, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, domainErr(err)
	}
	switch {
	case sess.IsUser() && order.UserID == sess.AccountID:
	case sess.IsVendor() && order.VendorID == sess.AccountID:
		if order.Otp != nil {
			order.Otp.Code = ""
		}
	default:
		return nil, fmt.Errorf("%w: order %s", ErrForbidden, id)
	}
	return order, nil
}

func (s *OrderService) vendorOrder(ctx context.Context, vendorID, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, domainErr(err)
	}
	if order.VendorID != vendorID {
		return nil, fmt.Errorf("%w: order %s belongs to another vendor", ErrForbidden, orderID)
	}
	return order, nil
}

// VerifyOTP confirms delivery of an order with the code the customer holds.
// A matching code marks the order DELIVERED and consumes the code; cash on
// delivery orders get their PAID payment in the same transaction.
func (s *OrderService) VerifyOTP(ctx context.Context, vendorID, orderID, code string) (*models.Order, error) {
	order, err := s.vendorOrder(ctx, vendorID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Otp == nil {
		return nil, fmt.Errorf("%w: order %s", ErrOTPNotFound, orderID)
	}
	if order.Otp.Verified {
		return nil, fmt.Errorf("%w: order %s", ErrOTPAlreadyUsed, orderID)
	}
	if code != order.Otp.Code {
		return nil, ErrOTPMismatch
	}
	if order.Status.Terminal() {
		return nil, fmt.Errorf("%w: order %s is %s", ErrInvalidState, orderID, order.Status)
	}

	var payment *models.Payment
	if order.PaymentMethod == models.PaymentCOD {
		payment = &models.Payment{
			OrderID:  order.ID,
			Provider: "cod",
			Method:   models.PaymentCOD,
			Amount:   order.Total,
			Currency: s.currency,
			Status:   models.PaymentPaid,
		}
	}
	notification := &models.Notification{
		RecipientRole: models.RoleUser,
		RecipientID:   order.UserID,
		Type:          models.NotifyOrderDelivered,
		Content:       fmt.Sprintf("Your order #%s has been delivered", shortID(order.ID)),
	}

	if err := s.orders.ConfirmDelivery(ctx, order.ID, payment, notification); err != nil {
		if errors.Is(err, repositories.ErrStateChanged) {
			return nil, s.lostRace(ctx, order.ID)
		}
		return nil, err
	}

	delivered, err := s.orders.GetByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, s.publisher, events.OrderDelivered, events.NewOrderEvent(delivered))
	return delivered, nil
}

// lostRace explains why a conditional delivery update matched nothing.
func (s *OrderService) lostRace(ctx context.Context, orderID string) error {
	current, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return domainErr(err)
	}
	if current.Otp != nil && current.Otp.Verified {
		return fmt.Errorf("%w: order %s", ErrOTPAlreadyUsed, orderID)
	}
	return fmt.Errorf("%w: order %s is %s", ErrInvalidState, orderID, current.Status)
}

// Cancel lets the vendor cancel a non-terminal order. Stock of every item is
// restored and the customer is notified.
func (s *OrderService) Cancel(ctx context.Context, vendorID, orderID string) (*models.Order, error) {
	order, err := s.vendorOrder(ctx, vendorID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, fmt.Errorf("%w: order %s is already %s", ErrInvalidState, orderID, order.Status)
	}

	notification := &models.Notification{
		RecipientRole: models.RoleUser,
		RecipientID:   order.UserID,
		Type:          models.NotifyOrderCancelled,
		Content:       fmt.Sprintf("Your order #%s was cancelled by the vendor", shortID(order.ID)),
	}
	if err := s.orders.Cancel(ctx, order.ID, notification); err != nil {
		return nil, fmt.Errorf("failed to cancel order %s: %w", orderID, domainErr(err))
	}

	order.Status = models.OrderCancelled
	order.Otp = nil
	events.Emit(ctx, s.publisher, events.OrderCancelled, events.NewOrderEvent(order))
	return order, nil
}

// allowedFrom lists the statuses a vendor may advance an order from.
var allowedFrom = map[models.OrderStatus][]models.OrderStatus{
	models.OrderProcessing: {models.OrderPending},
	models.OrderShipped:    {models.OrderPending, models.OrderProcessing},
}

// UpdateStatus moves an order forward to PROCESSING or SHIPPED.
func (s *OrderService) UpdateStatus(ctx context.Context, vendorID, orderID string, status models.OrderStatus) (*models.Order, error) {
	from, ok := allowedFrom[status]
	if !ok {
		return nil, invalid("status must be one of %s, %s", models.OrderProcessing, models.OrderShipped)
	}
	order, err := s.vendorOrder(ctx, vendorID, orderID)
	if err != nil {
		return nil, err
	}
	permitted := false
	for _, f := range from {
		permitted = permitted || order.Status == f
	}
	if !permitted {
		return nil, fmt.Errorf("%w: cannot move order %s from %s to %s", ErrInvalidState, orderID, order.Status, status)
	}

	notification := &models.Notification{
		RecipientRole: models.RoleUser,
		RecipientID:   order.UserID,
		Type:          models.NotifyOrderStatus,
		Content:       fmt.Sprintf("Your order #%s is now %s", shortID(order.ID), strings.ToLower(string(status))),
	}
	if err := s.orders.UpdateStatus(ctx, order.ID, from, status, notification); err != nil {
		return nil, domainErr(err)
	}
	order.Status = status
	order.Otp = nil
	return order, nil
}
