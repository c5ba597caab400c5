// Package store holds the UI-observable state of the mini app and the
// intents that sequence backend calls into it. Intent failures never
// propagate: they land in State.Error and the matching loading flag clears.
package store

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"course_miniapp/initdata"
	"course_miniapp/models"
)

const fallbackErrorMessage = "Something went wrong"

// Backend is the API surface the store orchestrates.
type Backend interface {
	UseMocks() bool
	Token() (string, error)
	AuthWithTelegram(ctx context.Context, initData string) (models.AuthResponse, error)
	DevLogin(ctx context.Context) (models.AuthResponse, error)
	Logout() error
	FetchMe(ctx context.Context) (models.User, error)
	FetchProjects(ctx context.Context) ([]models.Project, error)
	FetchCourses(ctx context.Context) ([]models.Course, error)
	FetchProjectCourses(ctx context.Context, projectID int) ([]models.Course, error)
	FetchCourseByID(ctx context.Context, projectID, courseID int) (models.Course, error)
	FetchMyCourses(ctx context.Context) ([]models.Course, error)
	FetchLessonVideo(ctx context.Context, lessonID int) (models.LessonVideo, error)
	CreateCoursePayment(ctx context.Context, courseID int) (models.PaymentResponse, error)
}

// State is everything views render. Snapshots handed out are deep copies.
type State struct {
	Loading map[string]bool `json:"loading"`
	Error   string          `json:"error"`
	Status  string          `json:"status"`

	Token            string `json:"-"`
	TelegramInitData string `json:"-"`
	TelegramReady    bool   `json:"telegram_ready"`

	User           *models.User            `json:"user"`
	Projects       []models.Project        `json:"projects"`
	Courses        []models.Course         `json:"courses"`
	ProjectCourses map[int][]models.Course `json:"project_courses"`
	CourseDetails  *models.Course          `json:"course_details"`
	MyCourses      []models.Course         `json:"my_courses"`

	SelectedLesson *models.Lesson `json:"selected_lesson"`
	LessonVideo    string         `json:"lesson_video"`
	PaymentURL     string         `json:"payment_url"`
}

// Authenticated reports whether a session token is held.
func (s State) Authenticated() bool {
	return s.Token != ""
}

// Options configures a Store.
type Options struct {
	// InitData resolves mini-app init data. Nil means none is ever found.
	InitData *initdata.Chain
	Logger   logrus.FieldLogger
}

// Store is safe for concurrent use. State is never locked across a
// backend call.
type Store struct {
	backend  Backend
	initData *initdata.Chain
	log      logrus.FieldLogger

	mu        sync.RWMutex
	state     State
	courseGen uint64
	lessonGen uint64
	// inflight counts running invocations per loading key.
	inflight map[string]int

	subsMu  sync.Mutex
	subs    map[int]chan State
	nextSub int
}

// New builds a store and reads the persisted session token.
func New(backend Backend, opts Options) *Store {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	token, err := backend.Token()
	if err != nil {
		log.WithError(err).Warn("could not read stored session token")
	}

	return &Store{
		backend:  backend,
		initData: opts.InitData,
		log:      log,
		state: State{
			Loading:        make(map[string]bool),
			Token:          token,
			ProjectCourses: make(map[int][]models.Course),
		},
		inflight: make(map[string]int),
		subs:     make(map[int]chan State),
	}
}

// UseMocks reports whether the backend answers from fixtures.
func (s *Store) UseMocks() bool {
	return s.backend.UseMocks()
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// IsLoading reports whether the intent behind key is in flight.
func (s *Store) IsLoading(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loading[key]
}

// Subscribe returns a channel that receives a snapshot after every state
// change. Slow readers only see the latest snapshot. cancel closes the
// channel.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			close(ch)
			s.subsMu.Unlock()
		})
	}
	return ch, cancel
}

// run is the execution wrapper every intent goes through. The loading flag
// stays set until the last overlapping invocation for key finishes.
func (s *Store) run(ctx context.Context, key string, fn func(ctx context.Context) error) bool {
	s.update(func(st *State) {
		s.inflight[key]++
		st.Loading[key] = true
		st.Error = ""
	})

	err := fn(ctx)

	s.update(func(st *State) {
		if err != nil {
			st.Error = errorMessage(err)
		}
		if s.inflight[key]--; s.inflight[key] <= 0 {
			delete(s.inflight, key)
			st.Loading[key] = false
		}
	})

	if err != nil {
		s.log.WithError(err).WithField("key", key).Error("intent failed")
		return false
	}
	return true
}

func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	s.mu.Unlock()
	s.notify()
}

// commitIf applies fn only while *gen still equals stamp, i.e. no newer
// invocation of the same intent has started.
func (s *Store) commitIf(gen *uint64, stamp uint64, fn func(st *State)) bool {
	s.mu.Lock()
	if *gen != stamp {
		s.mu.Unlock()
		return false
	}
	fn(&s.state)
	s.mu.Unlock()
	s.notify()
	return true
}

func (s *Store) stamp(gen *uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	*gen++
	return *gen
}

func (s *Store) notify() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if len(s.subs) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func errorMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallbackErrorMessage
}

func (st State) clone() State {
	out := st

	out.Loading = make(map[string]bool, len(st.Loading))
	for k, v := range st.Loading {
		out.Loading[k] = v
	}

	out.ProjectCourses = make(map[int][]models.Course, len(st.ProjectCourses))
	for k, v := range st.ProjectCourses {
		out.ProjectCourses[k] = cloneCourses(v)
	}

	if st.User != nil {
		u := st.User.Clone()
		out.User = &u
	}
	if st.CourseDetails != nil {
		c := st.CourseDetails.Clone()
		out.CourseDetails = &c
	}
	if st.SelectedLesson != nil {
		l := *st.SelectedLesson
		out.SelectedLesson = &l
	}
	out.Projects = append([]models.Project(nil), st.Projects...)
	out.Courses = cloneCourses(st.Courses)
	out.MyCourses = cloneCourses(st.MyCourses)
	return out
}

func cloneCourses(in []models.Course) []models.Course {
	if in == nil {
		return nil
	}
	out := make([]models.Course, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
