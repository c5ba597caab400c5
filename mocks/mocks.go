// Package mocks serves deterministic fixture data shaped exactly like the
// backend responses, for demo mode and the local mock backend.
package mocks

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"course_miniapp/models"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// isoLayout matches JavaScript's Date.toISOString output.
const isoLayout = "2006-01-02T15:04:05.000Z"

type fixtures struct {
	LessonVideoURL string           `yaml:"lesson_video_url"`
	PaymentURLBase string           `yaml:"payment_url_base"`
	Projects       []models.Project `yaml:"projects"`
	Courses        []models.Course  `yaml:"courses"`
	Lessons        []models.Lesson  `yaml:"lessons"`
	Me             struct {
		ID         int    `yaml:"id"`
		TelegramID int64  `yaml:"telegram_id"`
		Username   string `yaml:"username"`
		FirstName  string `yaml:"first_name"`
		LastName   string `yaml:"last_name"`
	} `yaml:"me"`
}

// Provider generates fixture payloads. Every method returns fresh copies.
type Provider struct {
	data fixtures
	now  func() time.Time
}

// New decodes the embedded fixtures.
func New() (*Provider, error) {
	var data fixtures
	if err := yaml.Unmarshal(fixturesYAML, &data); err != nil {
		return nil, fmt.Errorf("error decoding mock fixtures: %w", err)
	}
	if len(data.Courses) == 0 {
		return nil, fmt.Errorf("mock fixtures contain no courses")
	}
	return &Provider{data: data, now: time.Now}, nil
}

// MustNew is New for package initialisation paths where the embedded file
// is known to be valid.
func MustNew() *Provider {
	p, err := New()
	if err != nil {
		panic(err)
	}
	return p
}

// WithClock returns a copy of the provider using now for purchase stamps.
func (p *Provider) WithClock(now func() time.Time) *Provider {
	cp := *p
	cp.now = now
	return &cp
}

func (p *Provider) Projects() []models.Project {
	return append([]models.Project(nil), p.data.Projects...)
}

// HasProject reports whether projectID has fixture courses.
func (p *Provider) HasProject(projectID int) bool {
	for _, c := range p.data.Courses {
		if c.ProjectID == projectID {
			return true
		}
	}
	return false
}

// CoursesByProject lists a project's courses, or every course when
// projectID is zero or unknown.
func (p *Provider) CoursesByProject(projectID int) []models.Course {
	var out []models.Course
	if projectID != 0 {
		for _, c := range p.data.Courses {
			if c.ProjectID == projectID {
				out = append(out, c.Clone())
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	return p.allCourses()
}

// FindCourse looks up an exact (project, course) pair without fallback.
func (p *Provider) FindCourse(projectID, courseID int) (models.Course, bool) {
	for _, c := range p.data.Courses {
		if c.ID == courseID && (projectID == 0 || c.ProjectID == projectID) {
			return p.withLessons(c), true
		}
	}
	return models.Course{}, false
}

// CourseByID returns course detail with lessons. Unknown ids fall back to
// the first course of the project listing.
func (p *Provider) CourseByID(projectID, courseID int) models.Course {
	list := p.CoursesByProject(projectID)
	course := list[0]
	for _, c := range list {
		if c.ID == courseID {
			course = c
			break
		}
	}
	return p.withLessons(course)
}

// MyCourses lists purchased courses stamped with the current time.
func (p *Provider) MyCourses() []models.Course {
	stamp := p.now().UTC().Format(isoLayout)
	var out []models.Course
	for _, c := range p.data.Courses {
		if !c.IsPurchased {
			continue
		}
		c = c.Clone()
		c.PurchasedAt = stamp
		out = append(out, c)
	}
	return out
}

func (p *Provider) LessonVideo() models.LessonVideo {
	return models.LessonVideo{VideoURL: p.data.LessonVideoURL}
}

func (p *Provider) CreateCoursePayment(courseID int) models.PaymentResponse {
	suffix := "demo"
	if courseID != 0 {
		suffix = strconv.Itoa(courseID)
	}
	return models.PaymentResponse{PaymentURL: p.data.PaymentURLBase + suffix}
}

func (p *Provider) Me() models.User {
	me := p.data.Me
	user := models.User{
		ID:         me.ID,
		TelegramID: me.TelegramID,
		Username:   me.Username,
		FirstName:  me.FirstName,
		LastName:   me.LastName,
		Courses:    []models.CourseSummary{},
	}
	for _, c := range p.MyCourses() {
		user.Courses = append(user.Courses, models.CourseSummary{
			ID:          c.ID,
			Title:       c.Title,
			PurchasedAt: c.PurchasedAt,
		})
	}
	return user
}

func (p *Provider) allCourses() []models.Course {
	out := make([]models.Course, 0, len(p.data.Courses))
	for _, c := range p.data.Courses {
		out = append(out, c.Clone())
	}
	return out
}

func (p *Provider) withLessons(course models.Course) models.Course {
	course = course.Clone()
	course.Lessons = make([]models.Lesson, 0, len(p.data.Lessons))
	for _, l := range p.data.Lessons {
		l.Description = strings.ReplaceAll(l.Description, "{course}", course.Title)
		l.HasVideo = course.IsPurchased
		course.Lessons = append(course.Lessons, l)
	}
	return course
}
