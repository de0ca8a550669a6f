package search

import (
	"github.com/varoOP/kinobot/internal/domain"
	"github.com/varoOP/kinobot/internal/extract"
)

// Results is what the three lookups brought back for one query
type Results struct {
	PrimaryLink  string
	FallbackLink string

	Movie    domain.MovieRecord
	HasMovie bool

	// Page is only consulted when NeedsPage is true
	Page extract.Page
}

// NeedsPage reports whether the primary link's page has to be scraped
// before merging: no database data, but a primary link exists.
func NeedsPage(r Results) bool {
	return !r.HasMovie && r.PrimaryLink != ""
}

// Link picks the watch link: primary site first, then the fallback site
func (r Results) Link() string {
	if r.PrimaryLink != "" {
		return r.PrimaryLink
	}
	return r.FallbackLink
}

// Merge applies the source precedence and fills defaults. It is pure:
// database data wins, then the scraped primary page, then the bare
// fallback link, otherwise the nothing-found record.
func Merge(query string, r Results) domain.MovieRecord {
	var rec domain.MovieRecord

	switch {
	case r.HasMovie:
		rec = r.Movie
		rec.Link = r.Link()
		rec.Source = domain.SourceKinopoisk

	case r.PrimaryLink != "":
		rec = domain.MovieRecord{
			Title:       r.Page.Title,
			Description: r.Page.Description,
			Link:        r.PrimaryLink,
			Source:      domain.SourceLordfilm,
		}

	case r.FallbackLink != "":
		rec = domain.MovieRecord{
			Title:       query,
			Description: domain.LinkAvailable,
			Link:        r.FallbackLink,
			Source:      domain.SourceRutube,
		}

	default:
		return domain.NotFoundRecord()
	}

	return rec.WithDefaults(query)
}
