package model

// Movie is a film shown at the cinema.  Movies and their screenings are
// created by an external catalog process; this service only reads them.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – display title.
//  Genre       – primary genre label.
//  Description – synopsis shown on the listing page.
//  DurationMin – running time in minutes.
type Movie struct {
	ID          uint64 `json:"id"`           // movies.id
	Title       string `json:"title"`        // movies.title
	Genre       string `json:"genre"`        // movies.genre
	Description string `json:"description"`  // movies.description
	DurationMin uint32 `json:"duration_min"` // movies.duration_min
}
