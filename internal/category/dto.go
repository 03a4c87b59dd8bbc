package category

type CategoryResponse struct {
	Key         DataCategory `json:"key"`
	Name        string       `json:"name"`
	Label       string       `json:"label"`
	Description string       `json:"description"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}
