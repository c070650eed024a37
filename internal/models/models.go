package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey"            json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"  json:"username"`
	Email        string    `gorm:"index"                 json:"email"`
	PasswordHash string    `gorm:"not null"              json:"-"`
	Role         string    `gorm:"not null;default:user" json:"role"`
	Locale       string    `gorm:"default:''"            json:"locale"`
	CreatedAt    time.Time `json:"created_at"`

	Orders    []Order   `json:"orders,omitempty"`
	Addresses []Address `json:"addresses,omitempty"`
}

type Address struct {
	ID       uint   `gorm:"primaryKey"     json:"id"`
	UserID   uint   `gorm:"index;not null" json:"user_id"`
	FullName string `gorm:"not null"       json:"full_name"`
	Phone    string `json:"phone"`
	Line     string `gorm:"not null"       json:"line"`
	City     string `json:"city"`
}

type Category struct {
	ID          uint   `gorm:"primaryKey"           json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
}

type Product struct {
	ID              uint      `gorm:"primaryKey"                                json:"id"`
	Name            string    `gorm:"not null"                                  json:"name"`
	Description     string    `json:"description"`
	Price           float64   `gorm:"not null;check:price >= 0"                 json:"price"`
	DiscountPercent int       `gorm:"default:0;check:discount_percent BETWEEN 0 AND 100" json:"discount_percent"`
	StockQuantity   int       `gorm:"not null;default:0;check:stock_quantity >= 0" json:"stock_quantity"`
	CategoryID      uint      `gorm:"index;not null"                            json:"category_id"`
	Category        *Category `json:"category,omitempty"`
	ImageURL        string    `json:"image_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DiscountedPrice is the effective unit price after applying the
// product's discount percentage.
func (p Product) DiscountedPrice() float64 {
	return p.Price * (1 - float64(p.DiscountPercent)/100)
}

type CartItem struct {
	ID        uint     `gorm:"primaryKey"                 json:"id"`
	UserID    uint     `gorm:"index;not null"             json:"user_id"`
	ProductID uint     `gorm:"not null"                   json:"product_id"`
	Quantity  int      `gorm:"default:1;check:quantity>0" json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

type Order struct {
	ID          uint        `gorm:"primaryKey"     json:"id"`
	UserID      uint        `gorm:"index;not null" json:"user_id"`
	AddressID   uint        `json:"address_id"`
	Status      OrderStatus `gorm:"not null;index" json:"status"`
	TotalPrice  float64     `gorm:"not null"       json:"total_price"`
	Message     string      `json:"message"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	CreatedAt   time.Time   `gorm:"index"          json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	Details []OrderDetail `json:"details,omitempty"`
	Payment *Payment      `json:"payment,omitempty"`
}

// OrderDetail is one line of an order. Price is the discounted unit
// price captured at checkout and never updated afterwards.
type OrderDetail struct {
	ID        uint     `gorm:"primaryKey"     json:"id"`
	OrderID   uint     `gorm:"index;not null" json:"order_id"`
	ProductID uint     `gorm:"not null"       json:"product_id"`
	Quantity  int      `gorm:"not null;check:quantity >= 0" json:"quantity"`
	Price     float64  `gorm:"not null"       json:"price"`
	Product   *Product `json:"product,omitempty"`
}

type Payment struct {
	ID            uint      `gorm:"primaryKey"            json:"id"`
	OrderID       uint      `gorm:"uniqueIndex;not null"  json:"order_id"`
	PaymentMethod string    `gorm:"not null"              json:"payment_method"`
	PaymentStatus string    `gorm:"not null;default:pending" json:"payment_status"`
	TransactionID string    `gorm:"uniqueIndex"           json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

const (
	PaymentMethodCOD        = "cod"
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodPayPal     = "paypal"
	PaymentMethodVNPay      = "vnpay"
)

func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodCreditCard, PaymentMethodPayPal, PaymentMethodVNPay:
		return true
	}
	return false
}

type Review struct {
	ID        uint      `gorm:"primaryKey"               json:"id"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	ProductID uint      `gorm:"index;not null"           json:"product_id"`
	Rating    int       `gorm:"not null;check:rating BETWEEN 1 AND 5" json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type Post struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	Title     string    `gorm:"not null"             json:"title"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	Content   string    `json:"content"`
	AuthorID  uint      `gorm:"index;not null"       json:"author_id"`
	Published bool      `gorm:"default:false"        json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Notification struct {
	ID        uint       `gorm:"primaryKey"     json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	Type      string     `gorm:"not null"       json:"type"`
	Title     string     `gorm:"not null"       json:"title"`
	Body      string     `json:"body"`
	Locale    string     `json:"locale"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"           json:"id"`
	Token     string `gorm:"uniqueIndex;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"       json:"user_id"`
	ExpiresAt int64  `gorm:"not null"             json:"expires_at"`
	Revoked   bool   `gorm:"default:false"        json:"revoked"`
}

// All lists every entity registered with AutoMigrate.
func All() []any {
	return []any{
		&User{}, &Address{}, &Category{}, &Product{}, &CartItem{},
		&Order{}, &OrderDetail{}, &Payment{}, &Review{}, &Post{},
		&Notification{}, &RefreshToken{},
	}
}
