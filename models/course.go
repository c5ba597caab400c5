package models

// Course is returned by the listing endpoints without lessons and by the
// detail endpoint with them. PurchasedAt is only set on "my courses".
type Course struct {
	ID          int      `json:"id" yaml:"id"`
	ProjectID   int      `json:"project_id" yaml:"project_id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Price       int      `json:"price" yaml:"price"`
	IsPurchased bool     `json:"is_purchased" yaml:"is_purchased"`
	Image       string   `json:"image" yaml:"image"`
	Lessons     []Lesson `json:"lessons,omitempty" yaml:"-"`
	PurchasedAt string   `json:"purchased_at,omitempty" yaml:"-"`
}

// Clone copies the course including its lesson slice.
func (c Course) Clone() Course {
	if c.Lessons != nil {
		c.Lessons = append([]Lesson(nil), c.Lessons...)
	}
	return c
}

// CourseSummary is the purchased-course entry embedded in a profile.
type CourseSummary struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	PurchasedAt string `json:"purchased_at"`
}
