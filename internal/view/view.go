// Package view turns a search snapshot into the page model rendered by the
// HTML handlers.
package view

import (
	"time"

	"github.com/MrSnakeDoc/moteur/internal/catalog"
	"github.com/MrSnakeDoc/moteur/internal/domain"
	"github.com/MrSnakeDoc/moteur/internal/search"
)

// Kind selects the main panel of the page.
type Kind string

const (
	KindWelcome           Kind = "welcome"
	KindCredentialMissing Kind = "credential_missing"
	KindLoading           Kind = "loading"
	KindError             Kind = "error"
	KindEmpty             Kind = "empty"
	KindResults           Kind = "results"
)

// SkeletonCount is the number of placeholder cards shown while loading.
const SkeletonCount = 8

// RefreshSeconds is how often a loading page reloads itself.
const RefreshSeconds = 1

// Card is one rendered listing.
type Card struct {
	Name     string
	ImageURL string
	Source   string
	Badge    catalog.Badge
	Price    string
	Year     int
	Mileage  string
	Location string
}

// Page is everything the index template needs.
type Page struct {
	Kind              Kind
	Query             string
	Error             string
	Cards             []Card
	Skeletons         []int
	CredentialPresent bool
	Loading           bool
	SearchDisabled    bool
	ShowHeading       bool
	RefreshSeconds    int
	Placeholder       string
	Year              int
}

// Build picks the panel for the snapshot. Loading wins over everything, then
// an error, then a missing credential, then empty or filled results. A
// session that never searched gets the welcome panel.
func Build(s search.Snapshot, credentialPresent bool, c *catalog.Catalog) Page {
	p := Page{
		Query:             s.Query,
		CredentialPresent: credentialPresent,
		Loading:           s.IsLoading,
		SearchDisabled:    s.IsLoading || !credentialPresent,
		Placeholder:       "مثال: Dacia Duster 2021",
		Year:              time.Now().Year(),
	}

	switch {
	case s.IsLoading:
		p.Kind = KindLoading
		p.Skeletons = make([]int, SkeletonCount)
		p.RefreshSeconds = RefreshSeconds
	case s.Error != "":
		p.Kind = KindError
		p.Error = s.Error
	case !credentialPresent:
		p.Kind = KindCredentialMissing
	case s.HasSearched && len(s.Results) == 0:
		p.Kind = KindEmpty
	case len(s.Results) > 0:
		p.Kind = KindResults
		p.ShowHeading = s.HasSearched
		p.Cards = Cards(s.Results, c)
	default:
		p.Kind = KindWelcome
	}
	return p
}

// Cards formats listings in order.
func Cards(listings []domain.Listing, c *catalog.Catalog) []Card {
	cards := make([]Card, 0, len(listings))
	for _, l := range listings {
		cards = append(cards, Card{
			Name:     l.Name,
			ImageURL: l.ImageURL,
			Source:   l.Source.String(),
			Badge:    c.BadgeFor(l.Source),
			Price:    FormatPrice(l.Price),
			Year:     l.Year,
			Mileage:  FormatMileage(l.Mileage),
			Location: l.Location,
		})
	}
	return cards
}
