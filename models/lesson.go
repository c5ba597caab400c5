package models

// HasVideo is derived by the backend from the parent course's purchase flag.
type Lesson struct {
	ID          int    `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	HasVideo    bool   `json:"has_video" yaml:"-"`
}

type LessonVideo struct {
	VideoURL string `json:"video_url"`
}
