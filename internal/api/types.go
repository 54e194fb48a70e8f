package api

// Wire types mirror the backend's JSON field names exactly, including the
// historical "Discription" spelling on categories. The backend is the source
// of truth for these shapes; do not "fix" them client-side.

// User is the account record returned by login and register.
type User struct {
	UserID      string `json:"UserId"`
	Email       string `json:"Email"`
	DisplayName string `json:"DisplayName,omitempty"`
	AvatarURL   string `json:"AvatarURL,omitempty"`
	Status      string `json:"Status,omitempty"`
}

// Stock is a named inventory container owned by a user.
type Stock struct {
	StockID   string `json:"StockID"`
	UserID    string `json:"UserID"`
	StockName string `json:"StockName"`
}

// Product is a quantity-tracked item in one stock. Category holds the
// category's name, not its ID; the reference breaks silently when the
// category is deleted.
type Product struct {
	ProductID   string `json:"ProductID"`
	StockID     string `json:"StockID"`
	ProductName string `json:"ProductName"`
	Category    string `json:"Category,omitempty"`
	Unit        string `json:"Unit,omitempty"`
	ProductQty  int    `json:"ProductQty"`
}

// Category groups products within one stock. CategoryID may be empty in
// server payloads; the name then stands in as the identity for deletes.
type Category struct {
	CategoryID   string `json:"CategoryID,omitempty"`
	StockID      string `json:"StockID"`
	CategoryName string `json:"CategoryName"`
	Discription  string `json:"Discription,omitempty"`
}

// LoginRequest is the POST /api/login body.
type LoginRequest struct {
	Email    string `json:"Email"`
	Password string `json:"Password"`
}

// RegisterRequest is the POST /api/register body.
type RegisterRequest struct {
	DisplayName string `json:"DisplayName"`
	Email       string `json:"Email"`
	Password    string `json:"Password"`
	AvatarURL   string `json:"AvatarURL,omitempty"`
}

// CreateStockRequest is the POST /api/stocks body. The same shape is sent
// on PUT /api/stocks/{id} for renames.
type CreateStockRequest struct {
	StockName string `json:"StockName"`
	UserID    string `json:"UserID"`
}

// CreateProductRequest is the PUT /api/products body.
type CreateProductRequest struct {
	Category    string `json:"Category"`
	ProductName string `json:"ProductName"`
	ProductQty  int    `json:"ProductQty"`
	StockID     string `json:"StockID"`
	Unit        string `json:"Unit"`
}

// CreateCategoryRequest is one element of the POST /api/categories batch.
type CreateCategoryRequest struct {
	CategoryName string `json:"CategoryName"`
	Discription  string `json:"Discription"`
	StockID      string `json:"StockID"`
}

// Confirmation is the loose success envelope some mutating endpoints return.
// Either spelling of message may be present, or neither.
type Confirmation struct {
	Message      string `json:"message,omitempty"`
	MessageUpper string `json:"Message,omitempty"`
}

// Text returns whichever message field the server populated, if any.
func (c Confirmation) Text() string {
	if c.Message != "" {
		return c.Message
	}
	return c.MessageUpper
}
