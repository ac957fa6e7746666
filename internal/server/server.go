package server

import (
	"log"
	"strings"
	"time"

	"github.com/DukeZhu95/classroom-backend/internal/config"
	"github.com/DukeZhu95/classroom-backend/internal/middleware"
	"github.com/DukeZhu95/classroom-backend/pkg/storage"

	classroomHttp "github.com/DukeZhu95/classroom-backend/internal/modules/classroom/delivery/http"
	classroomRepo "github.com/DukeZhu95/classroom-backend/internal/modules/classroom/repository"
	classroomService "github.com/DukeZhu95/classroom-backend/internal/modules/classroom/service"

	profileHttp "github.com/DukeZhu95/classroom-backend/internal/modules/profile/delivery/http"
	profileRepo "github.com/DukeZhu95/classroom-backend/internal/modules/profile/repository"
	profileService "github.com/DukeZhu95/classroom-backend/internal/modules/profile/service"

	scheduleHttp "github.com/DukeZhu95/classroom-backend/internal/modules/schedule/delivery/http"
	scheduleRepo "github.com/DukeZhu95/classroom-backend/internal/modules/schedule/repository"
	scheduleService "github.com/DukeZhu95/classroom-backend/internal/modules/schedule/service"

	searchHttp "github.com/DukeZhu95/classroom-backend/internal/modules/search/delivery/http"
	searchService "github.com/DukeZhu95/classroom-backend/internal/modules/search/service"

	submissionHttp "github.com/DukeZhu95/classroom-backend/internal/modules/submission/delivery/http"
	submissionRepo "github.com/DukeZhu95/classroom-backend/internal/modules/submission/repository"
	submissionService "github.com/DukeZhu95/classroom-backend/internal/modules/submission/service"

	taskHttp "github.com/DukeZhu95/classroom-backend/internal/modules/task/delivery/http"
	taskRepo "github.com/DukeZhu95/classroom-backend/internal/modules/task/repository"
	taskService "github.com/DukeZhu95/classroom-backend/internal/modules/task/service"

	userHttp "github.com/DukeZhu95/classroom-backend/internal/modules/user/delivery/http"
	userRepo "github.com/DukeZhu95/classroom-backend/internal/modules/user/repository"
	userService "github.com/DukeZhu95/classroom-backend/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, meiliClient meilisearch.ServiceManager) *Server {
	fileStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Fatalf("failed to initialize cloudinary storage: %v", err)
	}

	classroomRepository := classroomRepo.NewClassroomRepository(db)
	taskRepository := taskRepo.NewTaskRepository(db)
	submissionRepository := submissionRepo.NewSubmissionRepository(db)

	searchSvc := searchService.NewTaskSearchService(meiliClient, classroomRepository)

	userRepository := userRepo.NewUserRepository(db)
	authSvc := userService.NewAuthService(userRepository, searchSvc, cfg.JWTTTL)
	authHandler := userHttp.NewAuthHandler(authSvc)

	profileRepository := profileRepo.NewProfileRepository(db)
	profileSvc := profileService.NewProfileService(profileRepository, fileStorage)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	classroomSvc := classroomService.NewClassroomService(classroomRepository, redisClient, cfg.RateLimitJoin)
	classroomHandler := classroomHttp.NewClassroomHandler(classroomSvc)

	taskSvc := taskService.NewTaskService(taskRepository, classroomRepository, submissionRepository, searchSvc, fileStorage)
	taskHandler := taskHttp.NewTaskHandler(taskSvc)

	submissionSvc := submissionService.NewSubmissionService(submissionRepository, taskRepository, classroomRepository, fileStorage, redisClient, cfg.RateLimitSubmit)
	submissionHandler := submissionHttp.NewSubmissionHandler(submissionSvc)

	scheduleRepository := scheduleRepo.NewScheduleRepository(db)
	scheduleSvc := scheduleService.NewScheduleService(scheduleRepository, classroomRepository)
	scheduleHandler := scheduleHttp.NewScheduleHandler(scheduleSvc)

	searchHandler := searchHttp.NewSearchHandler(searchSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware()

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/me", authHandler.Me)

		// Profile routes (role-dispatched)
		protected.GET("/profile", profileHandler.GetProfile)
		protected.PUT("/profile", profileHandler.UpdateProfile)
		protected.DELETE("/profile", authMiddleware.RequireTeacher(), profileHandler.DeleteTeacherProfile)

		// Classroom routes
		protected.POST("/classrooms", authMiddleware.RequireTeacher(), classroomHandler.CreateClass)
		protected.GET("/classrooms", classroomHandler.ListClassrooms)
		protected.GET("/classrooms/code/:code", classroomHandler.GetClassroomByCode)
		protected.POST("/classrooms/join", authMiddleware.RequireStudent(), classroomHandler.JoinClass)
		protected.GET("/classrooms/:id", classroomHandler.GetClassroom)
		protected.GET("/classrooms/:id/roster", authMiddleware.RequireTeacher(), classroomHandler.GetRoster)
		protected.GET("/classrooms/:id/tasks", taskHandler.ListClassTasks)
		protected.GET("/classrooms/:id/stats", authMiddleware.RequireTeacher(), submissionHandler.ClassSubmissionStats)

		// Task routes
		protected.POST("/tasks", authMiddleware.RequireTeacher(), taskHandler.CreateTask)
		protected.GET("/tasks/student", authMiddleware.RequireStudent(), taskHandler.ListStudentTasks)
		protected.GET("/tasks/teacher", authMiddleware.RequireTeacher(), taskHandler.ListTeacherTasks)
		protected.GET("/tasks/search", searchHandler.GetSearchToken)
		protected.PUT("/tasks/:id", authMiddleware.RequireTeacher(), taskHandler.UpdateTask)
		protected.DELETE("/tasks/:id", authMiddleware.RequireTeacher(), taskHandler.DeleteTask)
		protected.POST("/tasks/:id/archive", authMiddleware.RequireTeacher(), taskHandler.ArchiveTask)

		// Submission routes
		protected.POST("/tasks/:id/submissions", authMiddleware.RequireStudent(), submissionHandler.Submit)
		protected.GET("/tasks/:id/submissions", authMiddleware.RequireTeacher(), submissionHandler.ListTaskSubmissions)
		protected.GET("/tasks/:id/submissions/me", authMiddleware.RequireStudent(), submissionHandler.GetMySubmission)
		protected.POST("/tasks/:id/submissions/:studentId/grade", authMiddleware.RequireTeacher(), submissionHandler.Grade)
		protected.GET("/submissions/student", authMiddleware.RequireStudent(), submissionHandler.ListStudentSubmissions)

		// Schedule routes
		protected.POST("/schedules", authMiddleware.RequireTeacher(), scheduleHandler.CreateSchedule)
		protected.GET("/schedules", scheduleHandler.WeekCalendar)
		protected.PUT("/schedules/:id", authMiddleware.RequireTeacher(), scheduleHandler.UpdateSchedule)
		protected.DELETE("/schedules/:id", authMiddleware.RequireTeacher(), scheduleHandler.DeleteSchedule)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
