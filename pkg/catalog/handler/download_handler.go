package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	problem "github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/helpers/problem"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/models"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/services"
	"github.com/gin-gonic/gin"
)

// DownloadController serves file content, so its handlers write to the
// response stream directly instead of going through tonic.
type DownloadController struct {
	Service *services.DownloadService
}

func NewDownloadController(s *services.DownloadService) *DownloadController {
	return &DownloadController{Service: s}
}

// Download handles GET …/artifacts/:artifact/downloads/:download
func (h *DownloadController) Download(c *gin.Context) {
	projectName := c.Param("project")
	versionName := c.Param("version")
	artifactName := c.Param("artifact")
	downloadName := c.Param("download")

	buildNumber, err := strconv.Atoi(c.Param("build"))
	if err != nil || buildNumber < 1 {
		writeProblem(c, problem.NewBadRequest("build", "build number must be a positive integer",
			problem.InvalidParam{Name: "build", Reason: "must match \\d+"}))
		return
	}
	for _, check := range []error{
		checkParam("project", projectName, models.ProjectNamePattern),
		checkParam("version", versionName, models.VersionNamePattern),
		checkParam("artifact", artifactName, models.ArtifactNamePattern),
		checkParam("download", downloadName, models.DownloadNamePattern),
	} {
		if check != nil {
			writeProblem(c, check)
			return
		}
	}

	download, err := h.Service.ResolveDownload(c.Request.Context(), projectName, versionName, buildNumber, artifactName, downloadName)
	if err != nil {
		writeProblem(c, err)
		return
	}
	defer download.Content.Close()

	cacheHalfDay.Apply(c)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.FileName))
	c.Header("Last-Modified", download.ModTime.UTC().Format(http.TimeFormat))
	c.DataFromReader(http.StatusOK, download.Size, "application/java-archive", download.Content, nil)
}

// DownloadLatest handles GET /projects/:project/latest/download. The zip is
// produced on the fly; once the first byte is out a failure can only be
// reported by abandoning the connection.
func (h *DownloadController) DownloadLatest(c *gin.Context) {
	projectName := c.Param("project")
	if err := checkParam("project", projectName, models.ProjectNamePattern); err != nil {
		writeProblem(c, err)
		return
	}

	cacheNone.Apply(c)
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", projectName+".zip"))

	if err := h.Service.BundleLatest(c.Request.Context(), projectName, c.Writer); err != nil {
		if !c.Writer.Written() {
			writeProblem(c, err)
			return
		}
		log.Printf("[download] bundle aborted for project=%s: %v", projectName, err)
		c.Abort()
	}
}

// writeProblem emits a problem+json response for handlers outside the
// tonic error hook.
func writeProblem(c *gin.Context, err error) {
	var apiErr problem.APIError
	if !errors.As(err, &apiErr) {
		apiErr = problem.NewInternalServerError(err.Error())
	}
	c.Header("Content-Type", "application/problem+json")
	c.AbortWithStatusJSON(apiErr.Status, apiErr)
}
