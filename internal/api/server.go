package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/opencampus-id/guestbook-api/docs"
	v1 "github.com/opencampus-id/guestbook-api/internal/api/handler/v1"
	"github.com/opencampus-id/guestbook-api/internal/api/middleware"
	"github.com/opencampus-id/guestbook-api/internal/broker"
	"github.com/opencampus-id/guestbook-api/internal/config"
	"github.com/opencampus-id/guestbook-api/internal/repository"
	"github.com/opencampus-id/guestbook-api/internal/repository/dao"
	"github.com/opencampus-id/guestbook-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
	Hub    *broker.Hub
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
		Hub:    broker.NewHub(),
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(db)
	eventHandler := s.initEventHandler(db)
	attendanceHandler := s.initAttendanceHandler(db)
	institutionHandler := s.initInstitutionHandler(db)
	displayHandler := s.initDisplayHandler(db)
	s.MountHandlers(authHandler, eventHandler, attendanceHandler, institutionHandler, displayHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	repo := repository.NewUserRepository(dao.NewUserDAO(db))
	svc := service.NewAuthService(repo)
	uSvc := service.NewUserService(repo)

	return v1.NewAuthHandler(s.Config.API, svc, uSvc)
}

func (s *Server) initEventHandler(db *gorm.DB) *v1.EventHandler {
	svc := s.newEventService(db)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))

	return v1.NewEventHandler(svc, uSvc)
}

func (s *Server) initAttendanceHandler(db *gorm.DB) *v1.AttendanceHandler {
	attendanceRepo := repository.NewAttendanceRepository(dao.NewAttendanceDAO(db))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	institutionRepo := repository.NewInstitutionRepository(dao.NewInstitutionDAO(db))
	svc := service.NewAttendanceService(attendanceRepo, eventRepo, institutionRepo, s.Hub)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))

	return v1.NewAttendanceHandler(svc, uSvc)
}

func (s *Server) initInstitutionHandler(db *gorm.DB) *v1.InstitutionHandler {
	institutionRepo := repository.NewInstitutionRepository(dao.NewInstitutionDAO(db))
	attendanceRepo := repository.NewAttendanceRepository(dao.NewAttendanceDAO(db))
	svc := service.NewInstitutionService(institutionRepo, attendanceRepo)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))

	return v1.NewInstitutionHandler(svc, uSvc)
}

func (s *Server) initDisplayHandler(db *gorm.DB) *v1.DisplayHandler {
	return v1.NewDisplayHandler(s.Hub, s.newEventService(db), s.Config.Display)
}

func (s *Server) newEventService(db *gorm.DB) *service.EventService {
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	attendanceRepo := repository.NewAttendanceRepository(dao.NewAttendanceDAO(db))
	institutionRepo := repository.NewInstitutionRepository(dao.NewInstitutionDAO(db))

	return service.NewEventService(eventRepo, attendanceRepo, institutionRepo)
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	eventHandler *v1.EventHandler,
	attendanceHandler *v1.AttendanceHandler,
	institutionHandler *v1.InstitutionHandler,
	displayHandler *v1.DisplayHandler,
) {
	const basePath = "/api/v1"

	verifyJWT := middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT()

	// The kiosk and display surface is unauthenticated.
	public := s.Router.Group(basePath)
	{
		public.POST("/auth/login", authHandler.HandleLogin)

		public.GET("/events", eventHandler.HandleListEvents)
		public.GET("/events/upcoming", eventHandler.HandleGetUpcomingEvents)
		public.GET("/events/past", eventHandler.HandleGetPastEvents)
		public.GET("/events/:eventID", eventHandler.HandleGetEvent)
		public.GET("/events/slug/:slug", eventHandler.HandleGetEventBySlug)

		public.POST("/events/slug/:slug/attendance", attendanceHandler.HandleSubmitAttendance)
		public.GET("/events/slug/:slug/attendances", attendanceHandler.HandleListEventAttendanceBySlug)

		public.GET("/institutions", institutionHandler.HandleListInstitutions)
	}

	protected := s.Router.Group(basePath, verifyJWT)
	{
		protected.POST("/auth/register", authHandler.HandleRegister)
		protected.GET("/auth/me", authHandler.HandleGetMe)
		protected.POST("/auth/refresh", authHandler.HandleRefreshToken)

		protected.POST("/events", eventHandler.HandleCreateEvent)
		protected.PUT("/events/:eventID", eventHandler.HandleUpdateEvent)
		protected.DELETE("/events/:eventID", eventHandler.HandleDeleteEvent)

		protected.GET("/events/:eventID/attendances", attendanceHandler.HandleListEventAttendance)
		protected.GET("/events/:eventID/attendances/stats", attendanceHandler.HandleGetEventAttendanceStats)
		protected.GET("/events/:eventID/attendances/export", attendanceHandler.HandleExportEventAttendance)
		protected.GET("/attendances/search", attendanceHandler.HandleSearchAttendance)
		protected.DELETE("/attendances/:attendanceID", attendanceHandler.HandleDeleteAttendance)

		protected.GET("/institutions/:institutionID", institutionHandler.HandleGetInstitution)
		protected.POST("/institutions", institutionHandler.HandleCreateInstitution)
		protected.PUT("/institutions/:institutionID", institutionHandler.HandleUpdateInstitution)
		protected.DELETE("/institutions/:institutionID", institutionHandler.HandleDeleteInstitution)

		protected.GET("/stats", eventHandler.HandleGetSystemStats)
	}

	s.Router.GET("/ws/display", displayHandler.HandleDisplaySocket)

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Campus Event Guestbook API"
	docs.SwaggerInfo.Description = "Digital guestbook for campus events, with live guest displays."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
