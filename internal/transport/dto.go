package transport

import "time"

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	IsAdmin     bool      `json:"is_admin"`
}

type CategoryRequest struct {
	Name string `json:"name"`
}

type CreateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
	ImageURL    string `json:"image_url"`
	CategoryID  *uint  `json:"category_id"`
}

// PatchProductRequest has no stock field; stock moves through restock and
// orders only.
type PatchProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	ImageURL    *string `json:"image_url"`
	CategoryID  *uint   `json:"category_id"`
}

type RestockRequest struct {
	Quantity int `json:"quantity"`
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type RemoveFromCartResponse struct {
	ItemID    uint `json:"item_id"`
	ProductID uint `json:"product_id"`
	Deleted   bool `json:"deleted"`
	Quantity  int  `json:"quantity"`
}

type CreateFromCartRequest struct {
	Address string `json:"address"`
}

type CreateSingleRequest struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Address   string `json:"address"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type CreatePaymentIntentRequest struct {
	OrderID uint `json:"order_id"`
}

type PaymentIntentResponse struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}
