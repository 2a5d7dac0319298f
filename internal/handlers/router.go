package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yukikurage/studio-manager-api/internal/constants"
	"github.com/yukikurage/studio-manager-api/internal/middleware"
	"github.com/yukikurage/studio-manager-api/internal/models"
	"github.com/yukikurage/studio-manager-api/internal/services"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth      *services.AuthService
	Users     *services.UserService
	Clients   *services.ClientService
	Projects  *services.ProjectService
	Tasks     *services.TaskService
	Time      *services.TimeService
	Dashboard *services.DashboardService
}

// NewRouter wires middleware and routes onto a new gin engine.
func NewRouter(svc Services, store sessions.Store, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.RequestLogger(logger))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	authHandler := NewAuthHandler(svc.Auth)
	userHandler := NewUserHandler(svc.Users)
	clientHandler := NewClientHandler(svc.Clients)
	projectHandler := NewProjectHandler(svc.Projects)
	boardHandler := NewBoardHandler(svc.Tasks)
	taskHandler := NewTaskHandler(svc.Tasks, svc.Projects)
	timeHandler := NewTimeEntryHandler(svc.Time)
	dashboardHandler := NewDashboardHandler(svc.Dashboard)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Studio Manager API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := []gin.HandlerFunc{middleware.RequireAuth(), middleware.LoadProfile(svc.Auth)}
	projectAccess := middleware.RequireProjectAccess(svc.Projects)
	taskAccess := middleware.RequireTaskAccess(svc.Tasks, svc.Projects)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/accept-invite", authHandler.AcceptInvite)
			auth.GET("/me", append(requireAuth, authHandler.GetCurrentUser)...)
		}

		protected := api.Group("")
		protected.Use(requireAuth...)

		users := protected.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)

			admin := users.Group("")
			admin.Use(middleware.RequireRole(models.Role.IsAdminOrManager))
			admin.POST("", userHandler.InviteUser)
			admin.PATCH("/:id", userHandler.UpdateUser)
			admin.DELETE("/:id", userHandler.DeleteUser)
		}

		clients := protected.Group("/clients")
		{
			clients.GET("", clientHandler.ListClients)
			clients.POST("", clientHandler.CreateClient)
			clients.GET("/:id", clientHandler.GetClient)
			clients.PATCH("/:id", clientHandler.UpdateClient)
			clients.DELETE("/:id", clientHandler.DeleteClient)
		}

		projects := protected.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)

			project := projects.Group("/:id")
			project.Use(projectAccess)
			project.GET("", projectHandler.GetProject)
			project.PATCH("", projectHandler.UpdateProject)
			project.DELETE("", projectHandler.DeleteProject)
			project.GET("/members", projectHandler.ListMembers)
			project.POST("/members", projectHandler.AddMember)
			project.DELETE("/members/:user_id", projectHandler.RemoveMember)
			project.GET("/board", boardHandler.GetBoard)
			project.POST("/board/drag", boardHandler.StartDrag)
			project.POST("/board/drop", boardHandler.Drop)
			project.POST("/board/cancel", boardHandler.CancelDrag)
			project.POST("/tasks/generate", taskHandler.GenerateTasks)
		}

		tasks := protected.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskAccess, taskHandler.GetTask)
			tasks.PATCH("/:id", taskAccess, taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskAccess, taskHandler.DeleteTask)
			tasks.PATCH("/:id/status", taskAccess, taskHandler.UpdateStatus)
		}

		entries := protected.Group("/time-entries")
		{
			entries.GET("", timeHandler.ListEntries)
			entries.GET("/active", timeHandler.GetActive)
			entries.POST("/start", timeHandler.Start)
			entries.POST("/:id/stop", timeHandler.Stop)
		}

		protected.GET("/dashboard", dashboardHandler.GetDashboard)
	}

	return r
}
