package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/openmechanic/garage-manager/config"
	"github.com/openmechanic/garage-manager/controllers"
	"github.com/openmechanic/garage-manager/middleware"
	"github.com/openmechanic/garage-manager/models"
	"github.com/openmechanic/garage-manager/services"
)

func main() {
	log := config.GetLogger()
	log.Info("Starting Garage Manager API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	config.ConfigureLogger(cfg)

	if err := config.ConnectDatabase(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := config.GetDB().AutoMigrate(models.AllModels()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Info("Database migration completed successfully")

	if _, err := services.InitDocumentStorage(); err != nil {
		log.Fatalf("Failed to initialize document storage: %v", err)
	}

	router := setupRouter(cfg)

	addr := ":" + cfg.Port
	log.Infof("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the full API surface: public auth endpoints plus the
// authenticated resource collections under /api/v1
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)

		v1.POST("/register/", controllers.Register)
		v1.POST("/login/", controllers.Login)
		v1.POST("/token/refresh/", controllers.RefreshToken)

		authed := v1.Group("")
		authed.Use(middleware.RequireAuth(cfg))
		registerResources(authed)
	}

	return router
}

// registerResources mounts one CRUD controller per entity collection
func registerResources(group *gin.RouterGroup) {
	owners := controllers.NewResourceController(controllers.ResourceOptions[models.Owner]{
		AllowedFilters:   map[string]bool{"full_name": true, "email": true, "phone": true},
		UpdatableColumns: map[string]bool{"full_name": true, "email": true, "phone": true, "address": true},
		UniqueColumns:    []string{"full_name"},
	})
	owners.Register(group, "owners")

	vehicles := controllers.NewResourceController(controllers.ResourceOptions[models.Vehicle]{
		AllowedFilters:   map[string]bool{"brand": true, "model": true, "year": true, "license_plate": true, "owner_id": true},
		UpdatableColumns: map[string]bool{"brand": true, "model": true, "year": true, "license_plate": true, "owner_id": true},
		UniqueColumns:    []string{"license_plate"},
		Preloads:         []string{"Owner"},
	})
	vehicles.Register(group, "vehicles")

	inventory := controllers.NewResourceController(controllers.ResourceOptions[models.InventoryPart]{
		AllowedFilters:   map[string]bool{"name": true, "reference": true, "category": true},
		UpdatableColumns: map[string]bool{"name": true, "reference": true, "category": true, "quantity": true, "unit_price": true},
		UniqueColumns:    []string{"reference"},
	})
	inventory.Register(group, "inventory")

	templates := controllers.NewResourceController(controllers.ResourceOptions[models.TaskTemplate]{
		AllowedFilters:   map[string]bool{"name": true},
		UpdatableColumns: map[string]bool{"name": true, "description": true, "price": true},
		UniqueColumns:    []string{"name"},
	})
	templates.Register(group, "task-templates")

	reports := controllers.NewResourceController(controllers.ResourceOptions[models.Report]{
		AllowedFilters:   map[string]bool{"status": true, "vehicle_id": true, "user_id": true},
		UpdatableColumns: map[string]bool{"status": true, "remarks": true, "vehicle_id": true},
		Preloads:         []string{"Vehicle", "Vehicle.Owner", "User", "Tasks.Task", "Parts.Part"},
		BeforeCreate:     controllers.ReportBeforeCreate,
		BeforeUpdate:     controllers.ReportBeforeUpdate,
		AfterSave:        controllers.ReportAfterSave,
	})
	reports.Register(group, "reports")
	group.POST("/reports/:id/export/", controllers.ExportReport)
	controllers.RegisterReportLineItemRoutes(group)

	invoices := controllers.NewResourceController(controllers.ResourceOptions[models.Invoice]{
		AllowedFilters: map[string]bool{"number": true, "owner_name": true, "license_plate": true, "report_id": true},
		// Invoices are immutable once exported; only bookkeeping mistakes
		// in the display copies can be corrected.
		UpdatableColumns: map[string]bool{"owner_name": true},
		UniqueColumns:    []string{"number"},
	})
	invoices.Register(group, "invoices")

	users := controllers.NewResourceController(controllers.ResourceOptions[models.User]{
		AllowedFilters:   map[string]bool{"username": true, "email": true, "role": true},
		UpdatableColumns: map[string]bool{"email": true, "role": true},
	})
	users.Register(group, "users")
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Garage Manager API is running",
	})
}
