package domain

import "strings"

type ProductID string

type Product struct {
	ProductID   ProductID `json:"product_id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Category    int       `json:"category"`
	Condition   string    `json:"condition"`
	Status      int       `json:"status"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	// Images holds base64 encoded image data as returned by the backend.
	Images []string `json:"images"`
}

type ImageUpload struct {
	Filename string
	Data     []byte
}

type NewProduct struct {
	Name        string
	Description string
	Price       float64
	Category    int
	Condition   string
	Location    string
	Images      []ImageUpload
}

var Conditions = []string{"New", "Like New", "Good", "Fair", "Poor"}

func ValidCondition(condition string) bool {
	for _, known := range Conditions {
		if strings.EqualFold(known, strings.TrimSpace(condition)) {
			return true
		}
	}
	return false
}
