package domain

type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	PurchaseCount int      `json:"purchase_count"`
	AverageRating float64  `json:"average_rating"`
}
