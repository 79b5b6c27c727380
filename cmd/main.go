package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/pizza-admin/docs" // Import generated docs
	"github.com/franciscosanchezn/pizza-admin/internal/auth"
	"github.com/franciscosanchezn/pizza-admin/internal/config"
	"github.com/franciscosanchezn/pizza-admin/internal/controllers"
	"github.com/franciscosanchezn/pizza-admin/internal/database"
	"github.com/franciscosanchezn/pizza-admin/internal/middleware"
	"github.com/franciscosanchezn/pizza-admin/internal/models"
	"github.com/franciscosanchezn/pizza-admin/internal/services"
	"github.com/franciscosanchezn/pizza-admin/internal/topping"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// @title Pizza Admin API
// @version 1.0
// @description Pizza catalogue with topping rename and delete propagation
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration := loadConfig()
	applyLogLevel()

	// Initialize database connection
	db := setupDatabase(configuration)

	router := setupRouter(db, configuration)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%v:%d", configuration.Host, configuration.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// applyLogLevel lets an explicit LOG_LEVEL override the APP_ENV default
func applyLogLevel() {
	raw, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		return
	}
	level, err := log.ParseLevel(raw)
	if err != nil {
		log.Warnf("Ignoring invalid LOG_LEVEL %q", raw)
		return
	}
	log.SetLevel(level)
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase opens the configured database, migrates the schema and seeds it when empty
func setupDatabase(conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(conf.Database())
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))
	checkPanicErr(database.Seed(db))

	purged, err := auth.NewGormTokenStore(db).PurgeExpired(context.Background(), time.Now())
	if err != nil {
		log.WithError(err).Warn("Failed to purge expired OAuth tokens")
	} else if purged > 0 {
		log.WithField("tokens", purged).Info("Purged expired OAuth tokens")
	}
	return db
}

// setupRouter wires services and controllers and sets up the routes
func setupRouter(db *gorm.DB, conf *config.Config) *gin.Engine {
	pizzaService := services.NewPizzaService(db)
	coordinator := topping.NewCoordinator(pizzaService, conf.ToppingMaxParallel)
	oauthService := auth.NewOAuthService(db, conf.JWTSecret)

	pizzaController := controllers.NewPizzaController(pizzaService)
	toppingController := controllers.NewToppingController(pizzaService, coordinator)
	baseController := controllers.NewBaseController(services.NewBaseService(db))
	clientController := controllers.NewClientController(services.NewClientService(db))

	router := gin.New()
	router.Use(middleware.RequestLogger(log.StandardLogger()), gin.Recovery())

	// Health check endpoint
	router.GET("/health", healthCheckHandler)

	// OAuth2 token endpoint (client credentials)
	router.POST("/oauth/token", oauthService.HandleToken)

	api := router.Group("/api")
	{
		api.GET("/pizzas", pizzaController.ListPizzas)
		api.GET("/pizzas/:id", pizzaController.GetPizzaByID)
		api.GET("/bases", baseController.ListBases)
		api.GET("/toppings", toppingController.ListToppings)

		// Writes require an admin token
		admin := api.Group("")
		admin.Use(middleware.OAuth2Auth([]byte(conf.JWTSecret)), middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/pizzas", pizzaController.CreatePizza)
			admin.PUT("/pizzas/:id", pizzaController.UpdatePizza)
			admin.DELETE("/pizzas/:id", pizzaController.DeletePizza)
			admin.POST("/bases", baseController.CreateBase)
			admin.PUT("/toppings/:name", toppingController.RenameTopping)
			admin.DELETE("/toppings", toppingController.DeleteToppings)
			admin.GET("/clients", clientController.ListClients)
			admin.POST("/clients", clientController.CreateClient)
			admin.DELETE("/clients/:id", clientController.DeleteClient)
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "pizza-admin",
	})
}
