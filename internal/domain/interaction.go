package domain

import "time"

type InteractionType string

const (
	InteractionView     InteractionType = "view"
	InteractionCart     InteractionType = "cart"
	InteractionPurchase InteractionType = "purchase"
	InteractionRating   InteractionType = "rating"
)

const defaultRatingWeight = 3.0

type Interaction struct {
	UserID      string          `json:"user_id"`
	ProductID   string          `json:"product_id"`
	Type        InteractionType `json:"type"`
	RatingValue *float64        `json:"rating_value,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

// Weight returns the contribution of a single interaction to the
// user x product matrix. Unknown types count as a view.
func (i Interaction) Weight() float64 {
	switch i.Type {
	case InteractionView:
		return 1
	case InteractionCart:
		return 2
	case InteractionPurchase:
		return 5
	case InteractionRating:
		if i.RatingValue != nil {
			return *i.RatingValue
		}
		return defaultRatingWeight
	default:
		return 1
	}
}
