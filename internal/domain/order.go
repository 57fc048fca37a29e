package domain

import "time"

// Order is the durable record created from a successful reservation.
// Item and address snapshots are frozen at purchase time; later catalog or
// address edits never change historical orders. Orders are never hard
// deleted: cancellation is a status.
type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          string          `json:"userId"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress OrderAddress    `json:"shippingAddress"`
	SubtotalCents   int64           `json:"subtotalCents"`
	ShippingCents   int64           `json:"shippingCents"`
	DiscountCents   int64           `json:"discountCents"`
	TaxCents        int64           `json:"taxCents"`
	TotalCents      int64           `json:"totalCents"`
	OrderStatus     OrderStatus     `json:"orderStatus"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	TrackingNumber  string          `json:"trackingNumber,omitempty"`
	CourierName     string          `json:"courierName,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CancelledReason string          `json:"cancelledReason,omitempty"`
	CancelledAt     *time.Time      `json:"cancelledAt,omitempty"`
	ShippingDate    *time.Time      `json:"shippingDate,omitempty"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// OrderItem is a frozen snapshot of a purchased line item.
type OrderItem struct {
	ProductID       string  `json:"productId"`
	ProductName     string  `json:"productName"`
	VariantID       *string `json:"variantId,omitempty"`
	SizeID          *string `json:"sizeId,omitempty"`
	Color           string  `json:"color,omitempty"`
	Size            string  `json:"size,omitempty"`
	Quantity        int     `json:"quantity"`
	UnitPriceCents  int64   `json:"unitPriceCents"`
	TotalPriceCents int64   `json:"totalPriceCents"`
	Image           string  `json:"image,omitempty"`
}

// OrderAddress is the shipping address copied onto the order at checkout.
type OrderAddress struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	AddressLine string `json:"addressLine"`
	City        string `json:"city"`
	State       string `json:"state"`
	PinCode     string `json:"pinCode"`
	PhoneNumber string `json:"phoneNumber"`
	Country     string `json:"country"`
}

// SnapshotAddress copies the fields the order keeps from an address book
// entry.
func SnapshotAddress(a Address) OrderAddress {
	return OrderAddress{
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		AddressLine: a.AddressLine,
		City:        a.City,
		State:       a.State,
		PinCode:     a.PinCode,
		PhoneNumber: a.PhoneNumber,
		Country:     a.Country,
	}
}
