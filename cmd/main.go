package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/loopfz/gadgeto/tonic"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	catalog "github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/database"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/handler"
	problem "github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/helpers/problem"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/repositories"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/services"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/storage"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/jobs"
)

func init() {
	tonic.SetErrorHook(func(c *gin.Context, err error) (int, interface{}) {
		// Bind/validate errors → 400
		var be tonic.BindError
		if errors.As(err, &be) || isValidationErr(err) {
			apiErr := problem.NewBadRequest("body", err.Error())
			c.Header("Content-Type", "application/problem+json")
			return apiErr.Status, apiErr
		}

		// Domain errors carry their own status
		var apiErr problem.APIError
		if errors.As(err, &apiErr) {
			c.Header("Content-Type", "application/problem+json")
			return apiErr.Status, apiErr
		}

		internal := problem.NewInternalServerError(err.Error())
		c.Header("Content-Type", "application/problem+json")
		return internal.Status, internal
	})
}

func isValidationErr(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	dbcon := "postgres://" +
		os.Getenv("DB_USERNAME") + ":" +
		os.Getenv("DB_PASSWORD") + "@" +
		os.Getenv("DB_HOSTNAME") + "/" +
		os.Getenv("DB_DBNAME")
	db, err := database.Connect(dbcon)
	if err != nil {
		log.Fatalf("[FATAL] no database connection: %v", err)
	}

	store := storage.NewOS(envOr("STORAGE_PATH", "./storage"))

	repo := repositories.NewCatalogRepository(db)
	catalogService := services.NewCatalogService(repo)
	ingestService := services.NewIngestService(repo)
	downloadService := services.NewDownloadService(catalogService, store)

	catalogController := handler.NewCatalogController(catalogService)
	adminController := handler.NewAdminController(ingestService)
	downloadController := handler.NewDownloadController(downloadService)

	jobs.ScheduleDailySweep(context.Background(), catalogService, store)

	router := catalog.NewRouter(envOr("API_VERSION", "1.0.0"), catalogController, adminController, downloadController)

	addr := ":" + envOr("PORT", "8080")
	log.Printf("Server is running on %s", addr)
	log.Fatal(http.ListenAndServe(addr, router))
}
