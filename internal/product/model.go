package product

const (
	StatusAvailable   = "available"
	StatusUnavailable = "unavailable"
)

type Product struct {
	ID            uint    `json:"id"`
	RetailerID    uint    `json:"retailer_id"`
	Name          string  `json:"name"`
	ImageURL      *string `json:"image_url,omitempty"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
	Status        string  `json:"status"`
	SubcategoryID uint    `json:"subcategory_id"`
}

func (p *Product) Available() bool {
	return p.Status == StatusAvailable
}
