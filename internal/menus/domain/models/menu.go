package models

import (
	"time"
)

type Menu struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"` //nolint:tagliatelle
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DishCount   int       `json:"dish_count"` //nolint:tagliatelle
	CreatedAt   time.Time `json:"created_at"` //nolint:tagliatelle
	UpdatedAt   time.Time `json:"updated_at"` //nolint:tagliatelle
	Dishes      []Dish    `json:"dishes,omitempty"`
}

// Ownership is the minimal record the authorization guard decides on.
type Ownership struct {
	MenuID  int64
	OwnerID int64
}

// Tastes holds intensities in 0..5, nil when unset.
type Tastes struct {
	Bitter  *int `json:"bitter"`
	Salty   *int `json:"salty"`
	Sour    *int `json:"sour"`
	Sweet   *int `json:"sweet"`
	Umami   *int `json:"umami"`
	Fat     *int `json:"fat"`
	Piquant *int `json:"piquant"`
}

// Dish keeps the stored color1..color3 columns in ColorSlots ("" when
// unset); Colors is the compacted list clients see.
type Dish struct {
	ID          int64  `json:"id"`
	MenuID      int64  `json:"menu_id"` //nolint:tagliatelle
	Name        string `json:"name"`
	Description string `json:"description"`
	Section     string `json:"section"`
	Tastes
	Temperature *int              `json:"temperature"`
	ColorSlots  [MaxColors]string `json:"-"`
	Colors      []string          `json:"colors"`
	Emotions    []Attribute       `json:"emotions"`
	Textures    []Attribute       `json:"textures"`
	Shapes      []Attribute       `json:"shapes"`
}

// AttributeIDs are the catalog references of a dish. A nil slice means
// "leave unchanged" on update.
type AttributeIDs struct {
	Emotions []int64
	Textures []int64
	Shapes   []int64
}

const MaxColors = 3

// CompactColors returns the set slots in order.
func CompactColors(slots [MaxColors]string) []string {
	colors := make([]string, 0, MaxColors)

	for _, c := range slots {
		if c != "" {
			colors = append(colors, c)
		}
	}

	return colors
}
