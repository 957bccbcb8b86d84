package handler

import (
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/models"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/services"
	"github.com/gin-gonic/gin"
)

// AdminController binds the write-side HTTP requests to the IngestService.
type AdminController struct {
	Service *services.IngestService
}

func NewAdminController(s *services.IngestService) *AdminController {
	return &AdminController{Service: s}
}

// CreateProject handles POST /admin/projects
func (h *AdminController) CreateProject(c *gin.Context, body *models.Project) (*models.Project, error) {
	return h.Service.CreateProject(c.Request.Context(), body)
}

// Upload handles POST /admin/upload
func (h *AdminController) Upload(c *gin.Context, body *models.IngestRequest) (*models.IngestResponse, error) {
	return h.Service.Ingest(c.Request.Context(), body)
}
