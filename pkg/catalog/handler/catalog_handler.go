package handler

import (
	"regexp"
	"time"

	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/helpers/httpcache"
	problem "github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/helpers/problem"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/models"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/services"
	"github.com/gin-gonic/gin"
)

// Cache policies per route group, mirroring how long each payload stays
// valid: hierarchy membership changes rarely, build lists change with every
// ingestion.
var (
	cacheWeek    = httpcache.SMaxAgePublic(7 * 24 * time.Hour)
	cacheShort   = httpcache.SMaxAgePublic(5 * time.Minute)
	cacheHalfDay = httpcache.SMaxAgePublic(12 * time.Hour)
	cacheNone    = httpcache.NoStore()
)

// CatalogController binds the read-side HTTP requests to the CatalogService.
type CatalogController struct {
	Service *services.CatalogService
}

func NewCatalogController(s *services.CatalogService) *CatalogController {
	return &CatalogController{Service: s}
}

func checkParam(name, value string, pattern *regexp.Regexp) error {
	if !pattern.MatchString(value) {
		return problem.NewBadRequest(name, "path parameter does not match its grammar",
			problem.InvalidParam{Name: name, Reason: "must match " + pattern.String()})
	}
	return nil
}

// ListProjects handles GET /projects
func (h *CatalogController) ListProjects(c *gin.Context) (*models.ProjectsResponse, error) {
	cacheWeek.Apply(c)
	return h.Service.Projects(c.Request.Context())
}

// RetrieveProject handles GET /projects/:project
func (h *CatalogController) RetrieveProject(c *gin.Context, p *models.ProjectParams) (*models.ProjectResponse, error) {
	if err := checkParam("project", p.Project, models.ProjectNamePattern); err != nil {
		return nil, err
	}
	cacheWeek.Apply(c)
	return h.Service.Project(c.Request.Context(), p.Project)
}

// RetrieveFamily handles GET /projects/:project/version_group/:family
func (h *CatalogController) RetrieveFamily(c *gin.Context, p *models.FamilyParams) (*models.FamilyResponse, error) {
	if err := checkParam("project", p.Project, models.ProjectNamePattern); err != nil {
		return nil, err
	}
	cacheShort.Apply(c)
	return h.Service.Family(c.Request.Context(), p.Project, p.Family)
}

// RetrieveFamilyBuilds handles GET /projects/:project/version_group/:family/builds
func (h *CatalogController) RetrieveFamilyBuilds(c *gin.Context, p *models.FamilyParams) (*models.FamilyBuildsResponse, error) {
	if err := checkParam("project", p.Project, models.ProjectNamePattern); err != nil {
		return nil, err
	}
	cacheShort.Apply(c)
	return h.Service.FamilyBuilds(c.Request.Context(), p.Project, p.Family)
}

// RetrieveVersion handles GET /projects/:project/versions/:version
func (h *CatalogController) RetrieveVersion(c *gin.Context, p *models.VersionParams) (*models.VersionResponse, error) {
	if err := h.checkVersionPath(p.Project, p.Version); err != nil {
		return nil, err
	}
	cacheShort.Apply(c)
	return h.Service.Version(c.Request.Context(), p.Project, p.Version)
}

// RetrieveVersionBuilds handles GET /projects/:project/versions/:version/builds
func (h *CatalogController) RetrieveVersionBuilds(c *gin.Context, p *models.VersionParams) (*models.VersionBuildsResponse, error) {
	if err := h.checkVersionPath(p.Project, p.Version); err != nil {
		return nil, err
	}
	cacheShort.Apply(c)
	return h.Service.VersionBuilds(c.Request.Context(), p.Project, p.Version)
}

// RetrieveBuild handles GET /projects/:project/versions/:version/builds/:build
func (h *CatalogController) RetrieveBuild(c *gin.Context, p *models.BuildParams) (*models.BuildResponse, error) {
	if err := h.checkVersionPath(p.Project, p.Version); err != nil {
		return nil, err
	}
	cacheWeek.Apply(c)
	return h.Service.Build(c.Request.Context(), p.Project, p.Version, p.Build)
}

// RetrieveArtifacts handles GET …/builds/:build/artifacts
func (h *CatalogController) RetrieveArtifacts(c *gin.Context, p *models.BuildParams) (*models.ArtifactsResponse, error) {
	if err := h.checkVersionPath(p.Project, p.Version); err != nil {
		return nil, err
	}
	cacheShort.Apply(c)
	return h.Service.Artifacts(c.Request.Context(), p.Project, p.Version, p.Build)
}

// RetrieveArtifact handles GET …/builds/:build/artifacts/:artifact
func (h *CatalogController) RetrieveArtifact(c *gin.Context, p *models.ArtifactParams) (*models.ArtifactResponse, error) {
	if err := h.checkVersionPath(p.Project, p.Version); err != nil {
		return nil, err
	}
	if err := checkParam("artifact", p.Artifact, models.ArtifactNamePattern); err != nil {
		return nil, err
	}
	cacheWeek.Apply(c)
	return h.Service.Artifact(c.Request.Context(), p.Project, p.Version, p.Build, p.Artifact)
}

// RetrieveLatest handles GET /projects/:project/latest
func (h *CatalogController) RetrieveLatest(c *gin.Context, p *models.ProjectParams) (*models.LatestResponse, error) {
	if err := checkParam("project", p.Project, models.ProjectNamePattern); err != nil {
		return nil, err
	}
	cacheWeek.Apply(c)
	return h.Service.Latest(c.Request.Context(), p.Project)
}

func (h *CatalogController) checkVersionPath(project, version string) error {
	if err := checkParam("project", project, models.ProjectNamePattern); err != nil {
		return err
	}
	return checkParam("version", version, models.VersionNamePattern)
}
