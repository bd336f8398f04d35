package listing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/moteur/internal/domain"
)

// wireListing is one item as the model writes it. Numbers arrive as JSON
// numbers that may carry a fraction, so they are rounded afterwards.
type wireListing struct {
	CarName  string  `json:"carName"`
	Price    float64 `json:"price"`
	Year     float64 `json:"year"`
	Mileage  float64 `json:"mileage"`
	Location string  `json:"location"`
	Source   string  `json:"source"`
	ImageURL string  `json:"imageUrl"`
}

// Rejected describes an item dropped while decoding.
type Rejected struct {
	Index  int
	Reason string
}

// Decoded is the outcome of decoding a reply.
type Decoded struct {
	Listings []domain.Listing
	Rejected []Rejected
	// Coerced counts items whose source was replaced by the default one.
	Coerced int
	// NotArray is set when the reply parsed but was not a JSON array.
	NotArray bool
}

// Decoder turns a model reply into validated listings.
type Decoder struct {
	validate *validator.Validate
	now      func() time.Time
}

func NewDecoder() *Decoder {
	return &Decoder{
		validate: validator.New(),
		now:      time.Now,
	}
}

// Decode parses text. A syntax error is returned as is; anything that parses
// but is not an array decodes to no listings.
func (d *Decoder) Decode(text string) (Decoded, error) {
	data := []byte(stripCodeFence(text))

	var doc json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return Decoded{}, fmt.Errorf("failed to parse reply: %w", err)
	}

	doc = bytes.TrimSpace(doc)
	if len(doc) == 0 || doc[0] != '[' {
		return Decoded{Listings: []domain.Listing{}, NotArray: true}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(doc, &items); err != nil {
		return Decoded{}, fmt.Errorf("failed to parse reply array: %w", err)
	}

	out := Decoded{Listings: make([]domain.Listing, 0, len(items))}
	maxYear := d.now().Year() + 1

	for i, raw := range items {
		var w wireListing
		if err := json.Unmarshal(raw, &w); err != nil {
			out.Rejected = append(out.Rejected, Rejected{Index: i, Reason: err.Error()})
			continue
		}

		src, coerced := domain.NormalizeSource(w.Source)
		if coerced {
			out.Coerced++
		}

		l := domain.Listing{
			Name:     strings.TrimSpace(w.CarName),
			Price:    w.Price,
			Year:     int(math.Round(w.Year)),
			Mileage:  int(math.Round(w.Mileage)),
			Location: strings.TrimSpace(w.Location),
			Source:   src,
			ImageURL: strings.TrimSpace(w.ImageURL),
		}

		if err := d.validate.Struct(l); err != nil {
			out.Rejected = append(out.Rejected, Rejected{Index: i, Reason: err.Error()})
			continue
		}
		if l.Year > maxYear {
			out.Rejected = append(out.Rejected, Rejected{Index: i, Reason: fmt.Sprintf("year %d is in the future", l.Year)})
			continue
		}

		out.Listings = append(out.Listings, l)
	}

	return out, nil
}

// stripCodeFence removes a surrounding ```json fence some models add even in
// JSON mode.
func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
