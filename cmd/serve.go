package cmd

import (
	"database/sql"
	"net"

	"github.com/vibast-solutions/ms-go-contacts/app/controller"
	"github.com/vibast-solutions/ms-go-contacts/app/middleware"
	"github.com/vibast-solutions/ms-go-contacts/app/repository"
	"github.com/vibast-solutions/ms-go-contacts/app/service"
	"github.com/vibast-solutions/ms-go-contacts/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the HTTP (Echo) server exposing the auth, contacts, groups and admin APIs.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	startHTTPServer(cfg, db)
}

func startHTTPServer(cfg *config.Config, db *sql.DB) {
	userRepo := repository.NewUserRepository(db)
	contactRepo := repository.NewContactRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	documentRepo := repository.NewDocumentRepository(db)

	tokens := service.NewTokenService(cfg.JWT)
	otp := service.NewOTPManager(cfg.OTP)
	mailer := service.NewMailer(cfg.Mail)
	uploads := service.NewUploadStore(cfg.Uploads)

	authService := service.NewAuthService(userRepo, tokens, otp, mailer, cfg)
	contactService := service.NewContactService(contactRepo)
	groupService := service.NewGroupService(groupRepo, membershipRepo, documentRepo, userRepo, tokens, cfg)
	adminService := service.NewAdminService(userRepo, contactRepo, membershipRepo, documentRepo)

	authController := controller.NewAuthController(authService, uploads)
	googleController := controller.NewGoogleController(authService, cfg.Google)
	contactController := controller.NewContactController(contactService)
	groupController := controller.NewGroupController(groupService, uploads)
	adminController := controller.NewAdminController(adminService)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	e := echo.New()
	defer e.Close()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.Static("/uploads", uploads.Dir())

	auth := e.Group("/auth")
	auth.POST("/signup", authController.Signup)
	auth.POST("/verify-email", authController.VerifyEmail)
	auth.POST("/login", authController.Login)
	auth.POST("/refresh-token", authController.RefreshToken)
	auth.POST("/send-reset-otp", authController.SendResetOTP)
	auth.POST("/verify-reset-otp", authController.VerifyResetOTP)
	auth.POST("/reset-password", authController.ResetPassword)
	auth.GET("/google", googleController.Redirect)
	auth.GET("/google/callback", googleController.Callback)

	authProtected := auth.Group("")
	authProtected.Use(authMiddleware.RequireAuth)
	authProtected.POST("/logout", authController.Logout)
	authProtected.GET("/profile", authController.Profile)
	authProtected.POST("/avatar", authController.UploadAvatar)

	contacts := e.Group("/contacts")
	contacts.Use(authMiddleware.RequireAuth)
	contacts.POST("", contactController.Add)
	contacts.GET("", contactController.List)
	contacts.GET("/search", contactController.Search)
	contacts.GET("/:id", contactController.Detail)
	contacts.PUT("/:id", contactController.Edit)
	contacts.DELETE("/:id", contactController.Delete)

	groups := e.Group("/groups")
	groups.Use(authMiddleware.RequireAuth)
	groups.GET("", groupController.List)
	groups.GET("/:id", groupController.Detail)
	groups.GET("/:id/members", groupController.Members)
	groups.POST("/:id/leave", groupController.Leave)
	groups.POST("/:id/documents", groupController.UploadDocuments)
	groups.GET("/:id/documents", groupController.ListDocuments)
	groups.DELETE("/documents", groupController.DeleteDocuments)
	groups.GET("/invite/validate", groupController.ValidateInvite)
	groups.POST("/invite/redeem", groupController.RedeemInvite)

	groupsAdmin := groups.Group("")
	groupsAdmin.Use(authMiddleware.RequireAdmin)
	groupsAdmin.POST("", groupController.Create)
	groupsAdmin.GET("/all", groupController.ListAll)
	groupsAdmin.DELETE("/:id", groupController.Delete)
	groupsAdmin.POST("/:id/members", groupController.AddMembers)
	groupsAdmin.DELETE("/:id/members", groupController.RemoveMembers)
	groupsAdmin.GET("/:id/invite", groupController.GenerateInvite)

	admin := e.Group("/admin")
	admin.Use(authMiddleware.RequireAuth, authMiddleware.RequireAdmin)
	admin.GET("/users", adminController.ListUsers)
	admin.GET("/users/search", adminController.SearchUsers)
	admin.GET("/users/:id", adminController.UserDetail)
	admin.DELETE("/users/:id", adminController.DeleteUser)

	httpAddr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)
	logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
	if err := e.Start(httpAddr); err != nil {
		logrus.WithError(err).Fatal("Failed to start HTTP server")
	}
}
