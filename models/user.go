package models

type User struct {
	ID         int             `json:"id"`
	TelegramID int64           `json:"telegram_id"`
	Username   string          `json:"username"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	PhotoURL   *string         `json:"photo_url"`
	Courses    []CourseSummary `json:"courses"`
}

// Clone copies the user including the embedded course list.
func (u User) Clone() User {
	if u.Courses != nil {
		u.Courses = append([]CourseSummary(nil), u.Courses...)
	}
	if u.PhotoURL != nil {
		photo := *u.PhotoURL
		u.PhotoURL = &photo
	}
	return u
}
