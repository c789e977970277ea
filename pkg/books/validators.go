package books

type ListBooksQuery struct {
	Limit    int     `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=100"`
	Offset   int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Search   *string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
	Enriched *bool   `query:"enriched" json:"enriched,omitempty"`
}

type ListBookScansQuery struct {
	Limit  int `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=200"`
	Offset int `query:"offset" json:"offset,omitempty" validate:"min=0"`
}
