package models

// Page mirrors the paginated list envelope returned by the REST API.
type Page[T any] struct {
	Count    int    `json:"count"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
	Results  []T    `json:"results"`
}

// TotalPages returns the number of pages for the given page size.
func (p *Page[T]) TotalPages(pageSize int) int {
	if p == nil || pageSize <= 0 || p.Count == 0 {
		return 1
	}
	return (p.Count + pageSize - 1) / pageSize
}

// Character is a player character (personaje) owned by a user.
type Character struct {
	ID           int64  `json:"id"`
	User         int64  `json:"user,omitempty"`
	Name         string `json:"nombre_personaje"`
	Level        int    `json:"nivel"`
	Gold         int    `json:"oro"`
	Downtime     int    `json:"tiempo_libre"`
	Class        string `json:"clase"`
	Species      string `json:"especie"`
	Faction      string `json:"faccion"`
	Strength     int    `json:"fuerza"`
	Intelligence int    `json:"inteligencia"`
	Wisdom       int    `json:"sabiduria"`
	Dexterity    int    `json:"destreza"`
	Constitution int    `json:"constitucion"`
	Charisma     int    `json:"carisma"`
}

// DnDClass is a character class definition managed by staff.
type DnDClass struct {
	ID             int64  `json:"id"`
	Slug           string `json:"slug"`
	Name           string `json:"name"`
	HitDie         int    `json:"hit_die,omitempty"`
	PrimaryAbility string `json:"primary_ability,omitempty"`
	Source         string `json:"source,omitempty"`
}

// RegisterRequest is the body of the account registration endpoint.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}
