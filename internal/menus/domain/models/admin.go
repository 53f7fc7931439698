package models

import "time"

type RequestLog struct {
	ID         int64     `json:"id"`
	CreatedAt  time.Time `json:"timestamp"`
	Method     string    `json:"method"`
	Endpoint   string    `json:"endpoint"`
	StatusCode int       `json:"status_code"` //nolint:tagliatelle
	UserID     *int64    `json:"user_id"`     //nolint:tagliatelle
}

type DailyCount struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

type Stats struct {
	Users    int64 `json:"users"`
	Menus    int64 `json:"menus"`
	Dishes   int64 `json:"dishes"`
	Emotions int64 `json:"emotions"`
	Textures int64 `json:"textures"`
	Shapes   int64 `json:"shapes"`
	Requests int64 `json:"requests"`
}

type EventType string

const (
	MenuCreated EventType = "menu.created"
	MenuUpdated EventType = "menu.updated"
	MenuDeleted EventType = "menu.deleted"
	DishCreated EventType = "dish.created"
	DishUpdated EventType = "dish.updated"
	DishDeleted EventType = "dish.deleted"
)

// MenuEvent tells downstream consumers that menu data changed.
type MenuEvent struct {
	Type       EventType `json:"type"`
	MenuID     int64     `json:"menu_id"`           //nolint:tagliatelle
	DishID     int64     `json:"dish_id,omitempty"` //nolint:tagliatelle
	OwnerID    int64     `json:"owner_id"`          //nolint:tagliatelle
	OccurredAt time.Time `json:"occurred_at"`       //nolint:tagliatelle
}
