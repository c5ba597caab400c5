package routes

import (
	"net/http"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"course_miniapp/handlers"
	"course_miniapp/middleware"
	"course_miniapp/store"
)

// Dependencies are what the views need. Metrics and Gatherer are optional.
type Dependencies struct {
	Store    *store.Store
	Webhooks handlers.WebhookRelay
	DB       *badger.DB
	Logger   logrus.FieldLogger
	Metrics  *middleware.HTTPMetrics
	Gatherer prometheus.Gatherer
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(r *gin.Engine, deps Dependencies) {
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	r.Use(middleware.RequestID(), middleware.RequestLogger(log))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}
	r.Use(middleware.CaptureInitData())

	// Initialize handlers
	viewHandler := handlers.NewViewHandler(deps.Store, log)
	sessionHandler := handlers.NewSessionHandler(deps.Store, log)
	streamHandler := handlers.NewStreamHandler(deps.Store, log)
	webhookHandler := handlers.NewWebhookHandler(deps.Webhooks, log)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Store.UseMocks())

	// Pages
	r.GET("/", viewHandler.Projects)
	r.GET("/projects/:projectId", viewHandler.ProjectCourses)
	r.GET("/projects/:projectId/courses/:courseId", viewHandler.Course)
	r.GET("/projects/:projectId/courses/:courseId/lessons/:lessonId", viewHandler.Lesson)
	r.POST("/projects/:projectId/courses/:courseId/payment", viewHandler.StartPayment)
	r.GET("/my", viewHandler.MyCourses)
	r.GET("/legal/privacy", handlers.Legal("privacy"))
	r.GET("/legal/offer", handlers.Legal("offer"))

	// Session routes
	r.GET("/session", sessionHandler.Get)
	r.POST("/session/dev", sessionHandler.DevLogin)
	r.POST("/session/telegram", sessionHandler.TelegramAuth)
	r.DELETE("/session", sessionHandler.Logout)

	// State stream
	r.GET("/state/ws", streamHandler.State)

	// Payment webhooks
	r.GET("/webhooks/setup", webhookHandler.Setup)
	r.POST("/webhooks/tochka", webhookHandler.Tochka)

	// Ops
	r.GET("/healthz", healthHandler.HealthCheck)
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Unknown paths land on the project list
	r.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/")
	})
}
