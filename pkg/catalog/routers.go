package catalog

import (
	"net/http"

	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/handler"
	"github.com/gin-gonic/gin"
	"github.com/loopfz/gadgeto/tonic"
	"github.com/wI2L/fizz"
	"github.com/wI2L/fizz/openapi"
)

var (
	apiVersionHeader = fizz.Header(
		"API-Version",
		"The API version of the response",
		"",
	)

	notFoundResponse = fizz.Response(
		"404",
		"Not Found",
		nil,
		nil,
		nil,
	)

	conflictResponse = fizz.Response(
		"409",
		"Conflict",
		nil,
		nil,
		nil,
	)
)

func NewRouter(apiVersion string, catalog *handler.CatalogController, admin *handler.AdminController, downloads *handler.DownloadController) *fizz.Fizz {
	g := gin.Default()
	g.Use(APIVersionMiddleware(apiVersion))
	f := fizz.NewFromEngine(g)

	info := &openapi.Info{
		Title:       "ISDownload API",
		Description: "Catalog and download API for build artifacts",
		Version:     apiVersion,
	}

	root := f.Group("/v1", "API v1", "Build downloads API v1 routes")

	read := root.Group("", "Read", "Catalog resolution endpoints")
	read.GET("/projects",
		[]fizz.OperationOption{
			fizz.Summary("List all projects"),
			apiVersionHeader,
		},
		tonic.Handler(catalog.ListProjects, 200),
	)
	read.GET("/projects/:project",
		[]fizz.OperationOption{
			fizz.Summary("Get a project with its version groups and versions"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(catalog.RetrieveProject, 200),
	)
	read.GET("/projects/:project/version_group/:family",
		[]fizz.OperationOption{
			fizz.Summary("Get a version group and its member versions"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(catalog.RetrieveFamily, 200),
	)
	read.GET("/projects/:project/version_group/:family/builds",
		[]fizz.OperationOption{
			fizz.Summary("Get every build of every version in a version group"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(catalog.RetrieveFamilyBuilds, 200),
	)
	read.GET("/projects/:project/versions/:version",
		[]fizz.OperationOption{
			fizz.Summary("Get a version and its build numbers"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(catalog.RetrieveVersion, 200),
	)
	read.GET("/projects/:project/versions/:version/builds",
		[]fizz.OperationOption{
			fizz.Summary("Get the builds of a version"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(catalog.RetrieveVersionBuilds, 200),
	)
	read.GET("/projects/:project/versions/:version/builds/:build",
		[]fizz.OperationOption{
			fizz.Summary("Get one build"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(catalog.RetrieveBuild, 200),
	)
	read.GET("/projects/:project/versions/:version/builds/:build/artifacts",
		[]fizz.OperationOption{
			fizz.Summary("List the artifacts of a build"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(catalog.RetrieveArtifacts, 200),
	)
	read.GET("/projects/:project/versions/:version/builds/:build/artifacts/:artifact",
		[]fizz.OperationOption{
			fizz.Summary("Get one artifact with its downloads"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(catalog.RetrieveArtifact, 200),
	)
	read.GET("/projects/:project/latest",
		[]fizz.OperationOption{
			fizz.Summary("Get the latest build of a project"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(catalog.RetrieveLatest, 200),
	)

	// Streaming endpoints write to the response body directly, so they are
	// registered on the engine instead of going through tonic.
	g.GET("/v1/projects/:project/versions/:version/builds/:build/artifacts/:artifact/downloads/:download", downloads.Download)
	g.GET("/v1/projects/:project/latest/download", downloads.DownloadLatest)

	write := root.Group("", "Admin", "Catalog ingestion endpoints")
	write.POST("/admin/projects",
		[]fizz.OperationOption{
			fizz.Summary("Register a new project"),
			apiVersionHeader,
			conflictResponse,
		},
		tonic.Handler(admin.CreateProject, 201),
	)
	write.POST("/admin/upload",
		[]fizz.OperationOption{
			fizz.Summary("Ingest the metadata of a new build"),
			apiVersionHeader,
			notFoundResponse,
			conflictResponse,
		},
		tonic.Handler(admin.Upload, 201),
	)

	f.GET("/v1/openapi.json", []fizz.OperationOption{}, f.OpenAPI(info, "json"))

	redirect := func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/v1/openapi.json")
	}
	g.GET("/", redirect)
	g.GET("/docs", redirect)

	return f
}

type apiVersionWriter struct {
	gin.ResponseWriter
	version string
}

func (w *apiVersionWriter) WriteHeader(code int) {
	if code >= 200 && code < 300 {
		w.Header().Set("API-Version", w.version)
	}
	w.ResponseWriter.WriteHeader(code)
}

func APIVersionMiddleware(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &apiVersionWriter{c.Writer, version}
		c.Next()
	}
}
