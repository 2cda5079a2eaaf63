package models

// Variant is a purchasable pack-size/price/stock combination of a product.
type Variant struct {
	Weight string `json:"weight"`
	Price  int64  `json:"price"`
	Stock  int    `json:"stock"`
}

// Product represents a catalog product. The core reads products, never
// mutates them.
type Product struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Category     string    `json:"category"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Badges       []string  `json:"badges,omitempty"`
	Variants     []Variant `json:"variants"`
	Rating       float64   `json:"rating"`
	ReviewCount  int       `json:"reviewCount"`
	IsBestseller bool      `json:"isBestseller"`
	IsNew        bool      `json:"isNew"`
}

// CartItem is a single cart line, keyed by product+variant. The unit
// price is captured when the line is added and never re-derived.
type CartItem struct {
	ID       string  `json:"id"`
	Product  Product `json:"product"`
	Variant  string  `json:"variant"`
	Quantity int     `json:"quantity"`
	Price    int64   `json:"price"`
}

// CartState is the full cart snapshot persisted under the cart-state key.
// Total and ItemCount are derived from Items; every mutation recomputes
// both.
type CartState struct {
	Items     []CartItem `json:"items"`
	Total     int64      `json:"total"`
	ItemCount int        `json:"itemCount"`
}

// Address is a saved delivery address. Only creation assigns the ID.
type Address struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	IsDefault    bool   `json:"isDefault"`
}

// OrderLine is a snapshot of a cart line embedded in an order, decoupled
// from the live catalog so historical orders survive catalog changes.
type OrderLine struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Variant     string `json:"variant"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
}

// OrderStatus enumerates order lifecycle states.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is created once at checkout commit and never mutated afterwards.
type Order struct {
	ID             string      `json:"id"`
	Date           string      `json:"date"`
	Status         OrderStatus `json:"status"`
	Items          []OrderLine `json:"items"`
	Total          int64       `json:"total"`
	Address        Address     `json:"address"`
	PaymentMethod  string      `json:"paymentMethod"`
	TrackingNumber string      `json:"trackingNumber,omitempty"`
	Notes          string      `json:"notes,omitempty"`
}

// User is the single authenticated account, persisted wholesale under the
// session-user key on every mutation. Orders are newest-first.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Addresses []Address `json:"addresses"`
	Wishlist  []string  `json:"wishlist"`
	Orders    []Order   `json:"orders"`
}

// DefaultAddress returns the first address flagged as default, or nil.
// Multiple defaults are not prevented; callers get the first one.
func (u *User) DefaultAddress() *Address {
	for i := range u.Addresses {
		if u.Addresses[i].IsDefault {
			return &u.Addresses[i]
		}
	}
	return nil
}

// AddressByID returns the address with the given id, or nil.
func (u *User) AddressByID(id string) *Address {
	for i := range u.Addresses {
		if u.Addresses[i].ID == id {
			return &u.Addresses[i]
		}
	}
	return nil
}
