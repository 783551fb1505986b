package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/maarifahub/maarifa-backend/internal/config"
	"github.com/maarifahub/maarifa-backend/internal/handler"
	"github.com/maarifahub/maarifa-backend/internal/middleware"
	"github.com/maarifahub/maarifa-backend/internal/response"
	"github.com/maarifahub/maarifa-backend/internal/service"
)

// VideoProxyPath is the public route of the playlist segment proxy. Playlist
// rewriting points every segment URI here.
const VideoProxyPath = "/api/v1/videos/proxy"

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Attempt      *handler.AttemptHandler
	Catalog      *handler.CatalogHandler
	Exam         *handler.ExamHandler
	Subscription *handler.SubscriptionHandler
	Media        *handler.MediaHandler
	Video        *handler.VideoHandler
	Staff        *handler.StaffHandler
	Setting      *handler.SettingHandler
	Dashboard    *handler.DashboardHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	users middleware.UserSource,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin", "Content-Type", "Authorization", "X-Request-ID",
		middleware.HeaderUserID, middleware.HeaderDeviceID,
	}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	requireAuth := middleware.RequireAuth(authService, users)
	requireDevice := middleware.RequireDevice(users)

	// Public routes, no auth.
	public := router.Group("/api/v1")
	{
		public.GET("/settings", middleware.CacheControl(60), handlers.Setting.GetPublic)
	}

	// Rate limiter for login routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/telegram", handlers.Auth.TelegramLogin)
		auth.POST("/staff/login", handlers.Auth.StaffLogin)

		auth.POST("/logout", requireAuth, handlers.Auth.Logout)
		auth.GET("/me", requireAuth, handlers.Auth.Me)
	}

	// Student-facing routes behind the device gate.
	studentAPI := router.Group("/api/v1")
	studentAPI.Use(requireAuth, requireDevice)
	{
		studentAPI.GET("/courses", handlers.Catalog.ListCourses)
		studentAPI.GET("/courses/:courseId", handlers.Catalog.GetCourse)

		studentAPI.POST("/exams/:examId/attempts", handlers.Attempt.Start)
		studentAPI.POST("/attempts/:attemptId/submit", handlers.Attempt.Submit)
		studentAPI.POST("/attempts/:attemptId/beacon", handlers.Attempt.SubmitBeacon)
		studentAPI.GET("/attempts/:attemptId/result", handlers.Attempt.Result)

		studentAPI.POST("/subscriptions", handlers.Subscription.Request)
		studentAPI.POST("/profile/avatar", handlers.Media.UploadAvatar)

		studentAPI.GET("/media/:name", middleware.CacheImmutable(86400), handlers.Media.Serve)
		studentAPI.GET("/videos/proxy", handlers.Video.Proxy)
		studentAPI.GET("/videos/:contentId/streams", handlers.Video.Streams)
		studentAPI.GET("/videos/:contentId/playlist", handlers.Video.Playlist)
	}

	// Staff dashboard.
	dashboardAPI := router.Group("/api/v1/dashboard")
	dashboardAPI.Use(requireAuth, middleware.RequireStaff())
	{
		dashboardAPI.GET("/stats", handlers.Dashboard.Stats)

		dashboardAPI.POST("/courses", handlers.Catalog.CreateCourse)
		dashboardAPI.PUT("/courses/:courseId", handlers.Catalog.UpdateCourse)
		dashboardAPI.DELETE("/courses/:courseId", handlers.Catalog.DeleteCourse)
		dashboardAPI.POST("/courses/:courseId/subjects", handlers.Catalog.CreateSubject)
		dashboardAPI.PUT("/subjects/:subjectId", handlers.Catalog.UpdateSubject)
		dashboardAPI.DELETE("/subjects/:subjectId", handlers.Catalog.DeleteSubject)

		dashboardAPI.GET("/subjects/:subjectId/exams", handlers.Exam.ListBySubject)
		dashboardAPI.POST("/subjects/:subjectId/exams", handlers.Exam.Create)
		dashboardAPI.GET("/exams/:examId", handlers.Exam.Get)
		dashboardAPI.PUT("/exams/:examId", handlers.Exam.Update)
		dashboardAPI.DELETE("/exams/:examId", handlers.Exam.Delete)
		dashboardAPI.GET("/exams/:examId/questions", handlers.Exam.ListQuestions)
		dashboardAPI.POST("/exams/:examId/questions", handlers.Exam.AddQuestion)
		dashboardAPI.PUT("/exams/:examId/questions", handlers.Exam.ReplaceQuestions)
		dashboardAPI.DELETE("/questions/:questionId", handlers.Exam.DeleteQuestion)
		dashboardAPI.GET("/exams/:examId/attempts", handlers.Attempt.ListResults)

		dashboardAPI.GET("/subscriptions/pending", handlers.Subscription.ListPending)
		dashboardAPI.POST("/subscriptions/:requestId/approve", handlers.Subscription.Approve)
		dashboardAPI.POST("/subscriptions/:requestId/reject", handlers.Subscription.Reject)

		dashboardAPI.POST("/media", handlers.Media.Upload)
		dashboardAPI.GET("/media/:name", middleware.CacheImmutable(86400), handlers.Media.Serve)

		dashboardAPI.GET("/settings", handlers.Setting.GetAll)
		dashboardAPI.PUT("/settings", handlers.Setting.Update)

		// Staff account management, owner only.
		staff := dashboardAPI.Group("/staff")
		staff.Use(middleware.RequireOwner())
		{
			staff.GET("", handlers.Staff.List)
			staff.POST("", handlers.Staff.Create)
			staff.PUT("/:userId", handlers.Staff.Update)
			staff.DELETE("/:userId", handlers.Staff.Delete)
		}
	}

	return router
}
