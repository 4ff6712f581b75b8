package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/gemmarket/internal/cache"
	"github.com/example/gemmarket/internal/config"
	"github.com/example/gemmarket/internal/handlers"
	"github.com/example/gemmarket/internal/middleware"
	"github.com/example/gemmarket/internal/repository"
	"github.com/example/gemmarket/internal/services"
)

// NewApp builds the Fiber application with every route registered.
func NewApp(db *gorm.DB, cfg *config.Config, c *cache.Cache, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Gem Market Backend",
		ErrorHandler: handlers.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if cfg.IsDevelopment() {
		app.Use(logger.New())
	}

	Register(app, db, cfg, c, log)
	return app
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, c *cache.Cache, log *zap.Logger) {
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	speciesRepo := repository.NewSpeciesRepository(db)
	laboratoryRepo := repository.NewLaboratoryRepository(db)
	originRepo := repository.NewOriginRepository(db)
	newsRepo := repository.NewNewsRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	userRepo := repository.NewUserRepository(db)
	pointRepo := repository.NewPointSettingRepository(db)

	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat, log)
	productService := services.NewProductService(productRepo, c, telegramService, log)
	categoryService := services.NewCategoryService(categoryRepo, c)
	speciesService := services.NewSpeciesService(speciesRepo, c)
	laboratoryService := services.NewLaboratoryService(laboratoryRepo, c)
	originService := services.NewOriginService(originRepo, c)
	newsService := services.NewNewsService(newsRepo, c)
	articleService := services.NewArticleService(articleRepo, c)
	userService := services.NewUserService(userRepo, c)
	pointsService := services.NewPointsService(pointRepo, c, log)
	authService := services.NewAuthService(userRepo, pointsService, c, cfg.JWTSecret, cfg.TokenExpires, log)
	mobileService := services.NewMobileAuthService(authService, log)

	productHandler := handlers.NewProductHandler(productService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	speciesHandler := handlers.NewSpeciesHandler(speciesService)
	laboratoryHandler := handlers.NewLaboratoryHandler(laboratoryService)
	originHandler := handlers.NewOriginHandler(originService)
	newsHandler := handlers.NewNewsHandler(newsService)
	articleHandler := handlers.NewArticleHandler(articleService)
	profileHandler := handlers.NewProfileHandler(userService)
	authHandler := handlers.NewAuthHandler(authService, mobileService, cfg)
	pointsHandler := handlers.NewPointsHandler(pointsService)
	adminHandler := handlers.NewAdminHandler(productService, userService, map[string]handlers.Counter{
		"users":        userService,
		"categories":   categoryService,
		"species":      speciesService,
		"laboratories": laboratoryService,
		"origins":      originService,
		"news":         newsService,
		"articles":     articleService,
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Use(middleware.Session(authService, cfg.SessionCookie))

	api := app.Group("/api", middleware.PublicCache())

	// Auth routes
	auth := api.Group("/auth", middleware.NoStore())
	auth.Post("/sign-up/email", authHandler.SignUpEmail)
	auth.Post("/sign-in/email", authHandler.SignInEmail)
	auth.Post("/sign-out", authHandler.SignOut)
	auth.Get("/session", authHandler.GetSession)

	mobile := api.Group("/mobile", middleware.NoStore(), limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
	}))
	mobile.Post("/register", authHandler.MobileRegister)
	mobile.Post("/login", authHandler.MobileLogin)

	// Catalog routes
	categories := api.Group("/categories")
	categories.Get("/", categoryHandler.ListCategories)
	categories.Get("/:id", categoryHandler.GetCategory)

	speciesHandler.RegisterPublic(api.Group("/species"))
	laboratoryHandler.RegisterPublic(api.Group("/laboratories"))
	originHandler.RegisterPublic(api.Group("/origins"))
	articleHandler.RegisterPublic(api.Group("/articles"))
	newsHandler.RegisterPublic(api.Group("/news"))

	// Products
	productHandler.RegisterProductRoutes(api.Group("/products"))

	api.Get("/points/rates", pointsHandler.GetRates)

	// Protected routes
	profile := api.Group("/profile", middleware.NoStore(), middleware.RequireUser())
	profile.Get("/", profileHandler.GetProfile)
	profile.Patch("/", profileHandler.UpdateProfile)

	// Back office
	admin := app.Group("/admin", middleware.AdminGate(), middleware.NoStore())
	adminAPI := admin.Group("/api")

	adminAPI.Get("/dashboard", adminHandler.DashboardStats)

	adminProducts := adminAPI.Group("/products")
	adminProducts.Get("/", adminHandler.ListProducts)
	adminProducts.Get("/:id", adminHandler.GetProduct)
	adminProducts.Post("/", productHandler.CreateProduct)
	adminProducts.Patch("/:id", productHandler.UpdateProduct)
	adminProducts.Delete("/:id", productHandler.DeleteProduct)
	adminProducts.Patch("/:id/moderation", adminHandler.ModerateProduct)
	adminProducts.Patch("/:id/featured", adminHandler.FeatureProduct)

	adminCategories := adminAPI.Group("/categories")
	adminCategories.Get("/", categoryHandler.ListCategories)
	adminCategories.Get("/:id", categoryHandler.GetCategory)
	adminCategories.Post("/", categoryHandler.CreateCategory)
	adminCategories.Patch("/:id", categoryHandler.UpdateCategory)
	adminCategories.Put("/:id/species", categoryHandler.ReplaceCategorySpecies)
	adminCategories.Delete("/:id", categoryHandler.DeleteCategory)

	speciesHandler.RegisterAdmin(adminAPI.Group("/species"))
	laboratoryHandler.RegisterAdmin(adminAPI.Group("/laboratories"))
	originHandler.RegisterAdmin(adminAPI.Group("/origins"))
	newsHandler.RegisterAdmin(adminAPI.Group("/news"))
	articleHandler.RegisterAdmin(adminAPI.Group("/articles"))

	adminUsers := adminAPI.Group("/users")
	adminUsers.Get("/", adminHandler.ListUsers)
	adminUsers.Get("/:id", adminHandler.GetUser)
	adminUsers.Patch("/:id", adminHandler.UpdateUser)
	adminUsers.Delete("/:id", adminHandler.DeleteUser)

	adminPoints := adminAPI.Group("/points")
	adminPoints.Get("/", pointsHandler.GetSettings)
	adminPoints.Put("/", pointsHandler.SaveSettings)
	adminPoints.Get("/rates", pointsHandler.GetRates)
}
