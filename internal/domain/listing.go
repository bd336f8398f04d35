package domain

// Listing is one synthesized vehicle offer.
//
// The JSON names match the generation wire format so a reply can be
// decoded and re-served without a second shape.
type Listing struct {
	// ─────────────────────────────
	// Vehicle
	// ─────────────────────────────

	// Name is the human-readable title.
	// Example: Dacia Duster 2022
	Name string `json:"carName" validate:"required"`

	// Year is the manufacture year.
	Year int `json:"year" validate:"gte=1900"`

	// Mileage is the distance driven, in kilometres.
	Mileage int `json:"mileage" validate:"gte=0"`

	// ─────────────────────────────
	// Offer
	// ─────────────────────────────

	// Price is the asking price in Moroccan dirham.
	Price float64 `json:"price" validate:"gte=0"`

	// Location is a free-text city name.
	Location string `json:"location" validate:"required"`

	// Source is the marketplace the offer claims to come from.
	Source Source `json:"source" validate:"required"`

	// ImageURL points at a representative, not necessarily real, picture.
	ImageURL string `json:"imageUrl" validate:"required,url"`
}
