package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"course_miniapp/models"
)

// ErrNoInitData is reported when Telegram auth is attempted outside the
// mini app.
var ErrNoInitData = errors.New("authorization is only available inside the Telegram mini app")

// Loading keys.
const (
	KeyAuth      = "auth"
	KeyMe        = "me"
	KeyProjects  = "projects"
	KeyCourses   = "courses"
	KeyCourse    = "course"
	KeyMyCourses = "myCourses"
	KeyPayment   = "payment"
	KeyLesson    = "lesson"
)

// ProjectCoursesKey is the loading key of one project's course listing.
func ProjectCoursesKey(projectID int) string {
	return fmt.Sprintf("project-%d-courses", projectID)
}

// Init resolves init data, loads projects and then restores or creates a
// session.
func (s *Store) Init(ctx context.Context) {
	var initData string
	var present bool
	if s.initData != nil {
		initData = s.initData.Resolve()
		present = s.initData.Present()
	}
	s.update(func(st *State) {
		st.TelegramInitData = initData
		st.TelegramReady = initData != "" || present
	})

	s.LoadProjects(ctx)

	if s.Snapshot().Authenticated() {
		s.LoadProfile(ctx)
		s.LoadAllCourses(ctx)
		return
	}

	if initData != "" {
		s.TelegramAuth(ctx, initData)
		return
	}

	if s.backend.UseMocks() {
		s.LoadAllCourses(ctx)
	}
}

// DevLogin authenticates through the developer bypass.
func (s *Store) DevLogin(ctx context.Context) bool {
	return s.run(ctx, KeyAuth, func(ctx context.Context) error {
		res, err := s.backend.DevLogin(ctx)
		if err != nil {
			return err
		}
		s.setToken(res.Token, "Authorized")
		s.LoadProfile(ctx)
		s.LoadAllCourses(ctx)
		return nil
	})
}

// TelegramAuth exchanges init data for a fresh session. An empty argument
// falls back to the init data resolved at Init, then to a new resolve.
func (s *Store) TelegramAuth(ctx context.Context, initData string) bool {
	return s.run(ctx, KeyAuth, func(ctx context.Context) error {
		payload := strings.TrimSpace(initData)
		if payload == "" {
			payload = s.Snapshot().TelegramInitData
		}
		if payload == "" && s.initData != nil {
			payload = s.initData.Resolve()
		}
		if payload == "" {
			return ErrNoInitData
		}

		// Drop the old session so the backend always issues a new token.
		if err := s.backend.Logout(); err != nil {
			return err
		}
		s.update(func(st *State) {
			st.Token = ""
			st.TelegramInitData = payload
			st.TelegramReady = true
		})

		res, err := s.backend.AuthWithTelegram(ctx, payload)
		if err != nil {
			return err
		}
		s.setToken(res.Token, "Authorized via Telegram")
		s.LoadProfile(ctx)
		s.LoadAllCourses(ctx)
		return nil
	})
}

// ClearAuth forgets the session and the user-specific state.
func (s *Store) ClearAuth() {
	if err := s.backend.Logout(); err != nil {
		s.log.WithError(err).Warn("failed to clear stored session token")
	}
	s.update(func(st *State) {
		st.Token = ""
		st.User = nil
		st.MyCourses = []models.Course{}
		st.Status = "Token cleared"
	})
}

func (s *Store) LoadProfile(ctx context.Context) bool {
	return s.run(ctx, KeyMe, func(ctx context.Context) error {
		me, err := s.backend.FetchMe(ctx)
		if err != nil {
			return err
		}
		mine := make([]models.Course, 0, len(me.Courses))
		for _, c := range me.Courses {
			mine = append(mine, models.Course{ID: c.ID, Title: c.Title, PurchasedAt: c.PurchasedAt})
		}
		s.update(func(st *State) {
			st.User = &me
			st.MyCourses = mine
			st.Status = "Profile loaded"
		})
		return nil
	})
}

func (s *Store) LoadProjects(ctx context.Context) bool {
	return s.run(ctx, KeyProjects, func(ctx context.Context) error {
		projects, err := s.backend.FetchProjects(ctx)
		if err != nil {
			return err
		}
		s.update(func(st *State) {
			st.Projects = projects
			st.Status = "Projects updated"
		})
		return nil
	})
}

func (s *Store) LoadAllCourses(ctx context.Context) bool {
	return s.run(ctx, KeyCourses, func(ctx context.Context) error {
		courses, err := s.backend.FetchCourses(ctx)
		if err != nil {
			return err
		}
		s.update(func(st *State) {
			st.Courses = courses
			st.Status = "Courses updated"
		})
		return nil
	})
}

// LoadProjectCourses fetches and caches one project's courses.
func (s *Store) LoadProjectCourses(ctx context.Context, projectID int) []models.Course {
	var out []models.Course
	s.run(ctx, ProjectCoursesKey(projectID), func(ctx context.Context) error {
		courses, err := s.backend.FetchProjectCourses(ctx, projectID)
		if err != nil {
			return err
		}
		s.update(func(st *State) {
			st.ProjectCourses[projectID] = courses
			st.Status = "Project courses updated"
		})
		out = cloneCourses(courses)
		return nil
	})
	return out
}

// OpenCourse always refetches the course detail and resets the payment
// link, the selected lesson and its video. A response overtaken by a newer
// OpenCourse is dropped.
func (s *Store) OpenCourse(ctx context.Context, projectID, courseID int) *models.Course {
	var out *models.Course
	s.run(ctx, KeyCourse, func(ctx context.Context) error {
		stamp := s.stamp(&s.courseGen)

		course, err := s.backend.FetchCourseByID(ctx, projectID, courseID)
		if err != nil {
			if s.isStale(&s.courseGen, stamp) {
				return nil
			}
			return err
		}

		s.commitIf(&s.courseGen, stamp, func(st *State) {
			detail := course.Clone()
			st.CourseDetails = &detail
			st.PaymentURL = ""
			st.SelectedLesson = nil
			st.LessonVideo = ""
			st.Status = "Course loaded"
			c := course.Clone()
			out = &c
		})
		return nil
	})
	return out
}

// EnsureCourseLoaded opens the course only when the cached detail is for a
// different (project, course) pair.
func (s *Store) EnsureCourseLoaded(ctx context.Context, projectID, courseID int) {
	s.mu.RLock()
	cached := s.state.CourseDetails
	fresh := cached != nil && cached.ID == courseID && cached.ProjectID == projectID
	s.mu.RUnlock()

	if !fresh {
		s.OpenCourse(ctx, projectID, courseID)
	}
}

func (s *Store) LoadMyCourses(ctx context.Context) bool {
	return s.run(ctx, KeyMyCourses, func(ctx context.Context) error {
		courses, err := s.backend.FetchMyCourses(ctx)
		if err != nil {
			return err
		}
		s.update(func(st *State) {
			st.MyCourses = courses
			st.Status = "My courses updated"
		})
		return nil
	})
}

// StartPayment requests a payment link for the loaded course. Without a
// loaded course it does nothing at all.
func (s *Store) StartPayment(ctx context.Context) bool {
	s.mu.RLock()
	course := s.state.CourseDetails
	s.mu.RUnlock()
	if course == nil {
		return false
	}
	courseID := course.ID

	return s.run(ctx, KeyPayment, func(ctx context.Context) error {
		res, err := s.backend.CreateCoursePayment(ctx, courseID)
		if err != nil {
			return err
		}
		s.update(func(st *State) {
			st.PaymentURL = res.PaymentURL
			st.Status = "Payment link received"
		})
		return nil
	})
}

// OpenLesson makes sure the parent course is loaded, selects the lesson
// and fetches its video URL.
func (s *Store) OpenLesson(ctx context.Context, projectID, courseID, lessonID int) *models.Lesson {
	var out *models.Lesson
	s.run(ctx, KeyLesson, func(ctx context.Context) error {
		stamp := s.stamp(&s.lessonGen)

		s.EnsureCourseLoaded(ctx, projectID, courseID)
		lesson := s.findLesson(lessonID)
		if !s.commitIf(&s.lessonGen, stamp, func(st *State) { st.SelectedLesson = lesson }) {
			return nil
		}

		video, err := s.backend.FetchLessonVideo(ctx, lessonID)
		if err != nil {
			if s.isStale(&s.lessonGen, stamp) {
				return nil
			}
			return err
		}

		s.commitIf(&s.lessonGen, stamp, func(st *State) {
			st.LessonVideo = video.VideoURL
			st.Status = "Lesson video loaded"
			if lesson != nil {
				l := *lesson
				out = &l
			}
		})
		return nil
	})
	return out
}

func (s *Store) findLesson(lessonID int) *models.Lesson {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.CourseDetails == nil {
		return nil
	}
	for _, l := range s.state.CourseDetails.Lessons {
		if l.ID == lessonID {
			found := l
			return &found
		}
	}
	return nil
}

func (s *Store) isStale(gen *uint64, stamp uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *gen != stamp
}

func (s *Store) setToken(token, status string) {
	if token == "" {
		stored, err := s.backend.Token()
		if err != nil {
			s.log.WithError(err).Warn("could not read stored session token")
		}
		token = stored
	}
	s.update(func(st *State) {
		st.Token = token
		st.Status = status
	})
}
