package model

type RoomCategory struct {
	ID               int         `json:"id"`
	Name             string      `json:"categoryName"`
	Slug             string      `json:"categorySlug"`
	Description      string      `json:"description"`
	ShortDescription string      `json:"shortDescription"`
	SizeSqm          *int        `json:"sizeSqm"`
	MaxOccupancy     int         `json:"maxOccupancy"`
	MaxAdults        int         `json:"maxAdults"`
	MaxChildren      int         `json:"maxChildren"`
	BasePrice        float64     `json:"basePrice"`
	WeekendPrice     *float64    `json:"weekendPrice"`
	TotalRooms       int         `json:"totalRooms"`
	Amenities        []Amenity   `json:"amenities"`
	Images           []RoomImage `json:"images"`
}

type Amenity struct {
	ID       int     `json:"id"`
	Name     string  `json:"amenityName"`
	Icon     *string `json:"amenityIcon"`
	Category *string `json:"category"`
}

type RoomImage struct {
	ID        int     `json:"id"`
	URL       string  `json:"imageUrl"`
	Type      string  `json:"imageType"`
	Title     *string `json:"title"`
	SortOrder int     `json:"sortOrder"`
}

// AvailableRoom is one row returned by check_room_availability.
type AvailableRoom struct {
	ID         int     `json:"id"`
	RoomNumber string  `json:"roomNumber"`
	Floor      *int    `json:"floor"`
	ViewType   *string `json:"viewType"`
}
