package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"course_miniapp/store"
)

// View is the JSON view model every page renders.
type View struct {
	Page   string         `json:"page"`
	Params map[string]int `json:"params,omitempty"`
	State  store.State    `json:"state"`
	Data   any            `json:"data,omitempty"`
}

// ViewHandler renders the catalog pages. Intent failures are part of the
// rendered state, so these handlers answer 200 unless a route id is bad.
type ViewHandler struct {
	store *store.Store
	log   logrus.FieldLogger
}

func NewViewHandler(s *store.Store, log logrus.FieldLogger) *ViewHandler {
	return &ViewHandler{store: s, log: log}
}

func (h *ViewHandler) Projects(c *gin.Context) {
	h.store.LoadProjects(c.Request.Context())
	render(c, h.store, "projects", nil, nil)
}

func (h *ViewHandler) ProjectCourses(c *gin.Context) {
	params, ok := intParams(c, "projectId")
	if !ok {
		return
	}
	courses := h.store.LoadProjectCourses(c.Request.Context(), params["projectId"])
	render(c, h.store, "project-courses", params, courses)
}

func (h *ViewHandler) Course(c *gin.Context) {
	params, ok := intParams(c, "projectId", "courseId")
	if !ok {
		return
	}
	h.store.OpenCourse(c.Request.Context(), params["projectId"], params["courseId"])
	render(c, h.store, "course", params, nil)
}

func (h *ViewHandler) Lesson(c *gin.Context) {
	params, ok := intParams(c, "projectId", "courseId", "lessonId")
	if !ok {
		return
	}
	h.store.OpenLesson(c.Request.Context(), params["projectId"], params["courseId"], params["lessonId"])
	render(c, h.store, "lesson", params, nil)
}

func (h *ViewHandler) MyCourses(c *gin.Context) {
	h.store.LoadMyCourses(c.Request.Context())
	render(c, h.store, "my-courses", nil, nil)
}

// StartPayment makes sure the course is loaded and requests its payment
// link.
func (h *ViewHandler) StartPayment(c *gin.Context) {
	params, ok := intParams(c, "projectId", "courseId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	h.store.EnsureCourseLoaded(ctx, params["projectId"], params["courseId"])
	h.store.StartPayment(ctx)

	st := h.store.Snapshot()
	render(c, h.store, "payment", params, gin.H{"payment_url": st.PaymentURL})
}

func render(c *gin.Context, s *store.Store, page string, params map[string]int, data any) {
	c.JSON(http.StatusOK, View{
		Page:   page,
		Params: params,
		State:  s.Snapshot(),
		Data:   data,
	})
}

// intParams parses numeric route params, answering 400 on the first bad
// one.
func intParams(c *gin.Context, names ...string) (map[string]int, bool) {
	out := make(map[string]int, len(names))
	for _, name := range names {
		v, err := strconv.Atoi(c.Param(name))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
			return nil, false
		}
		out[name] = v
	}
	return out, true
}
