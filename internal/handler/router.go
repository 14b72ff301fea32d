package handler

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-registrar-api/internal/middleware"
	"github.com/noah-isme/campus-registrar-api/internal/service"
	"github.com/noah-isme/campus-registrar-api/pkg/config"
	"github.com/noah-isme/campus-registrar-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-registrar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-registrar-api/pkg/middleware/requestid"
)

// RouterParams carries everything the HTTP surface is built from.
type RouterParams struct {
	Config    *config.Config
	Logger    *zap.Logger
	Templates *template.Template
	Observer  middleware.RequestObserver
	Auth      middleware.TokenValidator

	Students    *StudentHandler
	Courses     *CourseHandler
	Books       *BookHandler
	Enrollments *EnrollmentHandler
	Borrows     *BorrowHandler
	Dashboard   *DashboardHandler
	Exports     *ExportHandler
	Login       *AuthHandler
	Metrics     *MetricsHandler
	Pages       *PageHandler
}

// NewRouter assembles the gin engine: middleware chain, JSON API, HTML pages and ops endpoints.
func NewRouter(p RouterParams) *gin.Engine {
	cfg := p.Config
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(p.Logger))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(p.Logger))
	r.Use(middleware.ReportErrors())
	r.Use(middleware.Metrics(p.Observer))
	r.Use(corsmiddleware.New(cfg.CORS))

	if p.Metrics != nil {
		r.GET("/health", p.Metrics.Health)
		r.GET("/ready", p.Metrics.Ready)
		r.GET("/metrics", p.Metrics.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	write := api.Group("")
	if cfg.Auth.Enabled && p.Auth != nil {
		write.Use(middleware.JWT(p.Auth))
	}

	if p.Login != nil {
		api.POST("/auth/login", p.Login.Login)
		if p.Auth != nil {
			api.GET("/auth/me", middleware.JWT(p.Auth), p.Login.Me)
		}
	}

	api.GET("/students", p.Students.List)
	api.GET("/students/:id", p.Students.Get)
	write.POST("/students", p.Students.Create)
	write.PUT("/students/:id", p.Students.Update)
	write.DELETE("/students/:id", p.Students.Delete)

	api.GET("/courses", p.Courses.List)
	api.GET("/courses/:id", p.Courses.Get)
	write.POST("/courses", p.Courses.Create)
	write.PUT("/courses/:id", p.Courses.Update)
	write.DELETE("/courses/:id", p.Courses.Delete)

	api.GET("/books", p.Books.List)
	api.GET("/books/:id", p.Books.Get)
	write.POST("/books", p.Books.Create)
	write.PUT("/books/:id", p.Books.Update)
	write.DELETE("/books/:id", p.Books.Delete)

	api.GET("/enrollments", p.Enrollments.List)
	api.GET("/enrollments/:id", p.Enrollments.Get)
	write.POST("/enrollments", p.Enrollments.Create)
	write.PUT("/enrollments/:id", p.Enrollments.Update)
	write.DELETE("/enrollments/:id", p.Enrollments.Drop)
	write.DELETE("/enrollments/:id/purge", p.Enrollments.Purge)

	api.GET("/borrows", p.Borrows.List)
	api.GET("/borrows/overdue", p.Borrows.Overdue)
	api.GET("/borrows/:id", p.Borrows.Get)
	write.POST("/borrows", p.Borrows.Create)
	write.PUT("/borrows/:id", p.Borrows.Update)
	write.DELETE("/borrows/:id", p.Borrows.Delete)
	write.POST("/borrows/maintenance/overdue", p.Borrows.MarkOverdue)

	api.GET("/dashboard", p.Dashboard.Summary)
	if p.Exports != nil {
		api.GET("/exports/:dataset", p.Exports.Download)
	}

	if p.Pages != nil && p.Templates != nil {
		r.SetHTMLTemplate(p.Templates)
		r.GET("/", p.Pages.Index)
		r.GET("/dashboard", p.Pages.Dashboard)
		r.GET("/students", p.Pages.Table(service.DatasetStudents, "Students"))
		r.GET("/courses", p.Pages.Table(service.DatasetCourses, "Courses"))
		r.GET("/books", p.Pages.Table(service.DatasetBooks, "Books"))
		r.GET("/enrollments", p.Pages.Table(service.DatasetEnrollments, "Enrollments"))
		r.GET("/borrows", p.Pages.Table(service.DatasetBorrows, "Borrow records"))
		r.GET("/borrows/overdue", p.Pages.Table(service.DatasetOverdue, "Overdue loans"))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "route not found", "error_type": "NotFound"})
	})
	return r
}
