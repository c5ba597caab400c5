// Package mockapi is a local stand-in for the course backend. It serves the
// fixture data over the same REST surface the client consumes, with real
// session tokens, so the whole HTTP path can run without the production
// backend.
package mockapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	tginit "github.com/telegram-mini-apps/init-data-golang"

	"course_miniapp/middleware"
	"course_miniapp/mocks"
	"course_miniapp/models"
)

// BasePath is where the REST surface is mounted.
const BasePath = "/api"

const defaultInitDataMaxAge = 24 * time.Hour

var notFoundBody = gin.H{"message": "not found"}

// Config configures the mock backend.
type Config struct {
	JWTSecret []byte
	// BotToken enables init-data signature checks on /auth/telegram.
	BotToken       string
	InitDataMaxAge time.Duration
	Mocks          *mocks.Provider
	Logger         logrus.FieldLogger
}

type Server struct {
	tokens   *middleware.TokenService
	mocks    *mocks.Provider
	botToken string
	maxAge   time.Duration
	log      logrus.FieldLogger
}

func New(cfg Config) (*Server, error) {
	if len(cfg.JWTSecret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	provider := cfg.Mocks
	if provider == nil {
		var err error
		if provider, err = mocks.New(); err != nil {
			return nil, err
		}
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	maxAge := cfg.InitDataMaxAge
	if maxAge == 0 {
		maxAge = defaultInitDataMaxAge
	}
	return &Server{
		tokens:   middleware.NewTokenService(cfg.JWTSecret),
		mocks:    provider,
		botToken: cfg.BotToken,
		maxAge:   maxAge,
		log:      log,
	}, nil
}

// Handler returns a gin engine with the REST surface mounted at BasePath.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(s.log))
	s.SetupRoutes(r.Group(BasePath))
	return r
}

func (s *Server) SetupRoutes(g *gin.RouterGroup) {
	// Public routes
	g.POST("/auth/telegram", s.authTelegram)
	g.POST("/dev/login", s.devLogin)
	g.GET("/projects", s.projects)
	g.GET("/setup-webhook", s.setupWebhook)
	g.POST("/payments/webhook/tochka", s.tochkaWebhook)

	// Protected routes
	protected := g.Group("/")
	protected.Use(middleware.BearerAuth(s.tokens, s.log))
	{
		protected.GET("/me", s.me)
		protected.GET("/courses", s.courses)
		protected.GET("/projects/:projectId/courses", s.projectCourses)
		protected.GET("/projects/:projectId/courses/:courseId", s.course)
		protected.GET("/my/courses", s.myCourses)
		protected.GET("/lessons/:lessonId/video", s.lessonVideo)
		protected.POST("/payments/course", s.coursePayment)
	}
}

func (s *Server) authTelegram(c *gin.Context) {
	var req models.TelegramAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.InitData = c.GetHeader(middleware.InitDataHeader)
	}
	if strings.TrimSpace(req.InitData) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "initData is required"})
		return
	}

	if s.botToken != "" {
		if err := tginit.Validate(req.InitData, s.botToken, s.maxAge); err != nil {
			s.log.WithError(err).Warn("rejected telegram init data")
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid init data"})
			return
		}
	}

	user := s.mocks.Me()
	if parsed, err := tginit.Parse(req.InitData); err == nil && parsed.User.ID != 0 {
		user.TelegramID = parsed.User.ID
		if parsed.User.Username != "" {
			user.Username = parsed.User.Username
		}
	}
	s.issue(c, user)
}

func (s *Server) devLogin(c *gin.Context) {
	s.issue(c, s.mocks.Me())
}

func (s *Server) issue(c *gin.Context, user models.User) {
	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		s.log.WithError(err).Error("failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, models.AuthResponse{Token: token})
}

func (s *Server) me(c *gin.Context) {
	user := s.mocks.Me()
	if claims, ok := c.Get(middleware.ClaimsKey); ok {
		if cl, ok := claims.(*models.Claims); ok && cl.TelegramID != 0 {
			user.TelegramID = cl.TelegramID
		}
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) projects(c *gin.Context) {
	c.JSON(http.StatusOK, s.mocks.Projects())
}

func (s *Server) courses(c *gin.Context) {
	c.JSON(http.StatusOK, s.mocks.CoursesByProject(0))
}

func (s *Server) projectCourses(c *gin.Context) {
	projectID, ok := pathID(c, "projectId")
	if !ok {
		return
	}
	if !s.mocks.HasProject(projectID) {
		c.JSON(http.StatusNotFound, notFoundBody)
		return
	}
	c.JSON(http.StatusOK, s.mocks.CoursesByProject(projectID))
}

func (s *Server) course(c *gin.Context) {
	projectID, ok := pathID(c, "projectId")
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	course, found := s.mocks.FindCourse(projectID, courseID)
	if !found {
		c.JSON(http.StatusNotFound, notFoundBody)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (s *Server) myCourses(c *gin.Context) {
	c.JSON(http.StatusOK, s.mocks.MyCourses())
}

func (s *Server) lessonVideo(c *gin.Context) {
	if _, ok := pathID(c, "lessonId"); !ok {
		return
	}
	c.JSON(http.StatusOK, s.mocks.LessonVideo())
}

func (s *Server) coursePayment(c *gin.Context) {
	var req models.CoursePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if _, found := s.mocks.FindCourse(0, req.CourseID); !found {
		c.JSON(http.StatusNotFound, notFoundBody)
		return
	}
	c.JSON(http.StatusOK, s.mocks.CreateCoursePayment(req.CourseID))
}

func (s *Server) setupWebhook(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) tochkaWebhook(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to read webhook body"})
		return
	}
	s.log.WithFields(logrus.Fields{
		"content_type": c.ContentType(),
		"bytes":        len(raw),
	}).Info("received payment webhook")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid " + name})
		return 0, false
	}
	return id, true
}
