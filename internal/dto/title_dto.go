package dto

type DictionaryRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// TitleRequest carries the write representation: category and genres are
// referenced by slug. Pointer fields distinguish "absent" from zero on
// partial updates; creation requires name, year, category and genre.
type TitleRequest struct {
	Name        *string   `json:"name"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Genre       *[]string `json:"genre"`
}

type TitleFilters struct {
	Category string
	Genre    string
	Name     string
	Year     *int
}
