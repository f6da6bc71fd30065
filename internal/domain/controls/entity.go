package controls

// Category groups Annex A controls by theme
type Category string

const (
	CategoryOrganizational Category = "Organizational"
	CategoryPeople         Category = "People"
	CategoryPhysical       Category = "Physical"
	CategoryTechnological  Category = "Technological"
)

// Control is a single ISO/IEC 27001:2022 Annex A requirement, e.g. A.8.1
type Control struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}
