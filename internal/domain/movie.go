package domain

// Movie is a movie record as returned by the remote database.
// Runtime and Genres are only populated by the details endpoint.
type Movie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	Overview     string  `json:"overview"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Runtime      *int    `json:"runtime,omitempty"`
	Genres       []Genre `json:"genres,omitempty"`
}

// Genre is a remote genre entry
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreNames returns the genre names in order
func (m Movie) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return names
}

// SearchResponse is one page of movie results
type SearchResponse struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalResults int     `json:"total_results"`
	TotalPages   int     `json:"total_pages"`
}

// HasMore reports whether a later page exists
func (r SearchResponse) HasMore() bool {
	return r.Page < r.TotalPages
}

// Credits holds cast and crew for a movie
type Credits struct {
	ID   int          `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// CastMember is one credited actor
type CastMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
	Order       int     `json:"order"`
}

// CrewMember is one credited crew member
type CrewMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Job         string  `json:"job"`
	Department  string  `json:"department"`
	ProfilePath *string `json:"profile_path"`
}

// JobDirector is the crew job that identifies a director
const JobDirector = "Director"

// Director returns the first crew member credited as director, or "".
func (c Credits) Director() string {
	for _, member := range c.Crew {
		if member.Job == JobDirector {
			return member.Name
		}
	}
	return ""
}
