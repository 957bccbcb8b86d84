package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/database"
	problem "github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/helpers/problem"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/models"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/repositories"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSha = "d34db33fd34db33fd34db33fd34db33fd34db33fd34db33fd34db33fd34db33f"

func setupRepo(t *testing.T) repositories.CatalogRepository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return repositories.NewCatalogRepository(db)
}

func createProject(t *testing.T, ingest *services.IngestService, name string) *models.Project {
	project, err := ingest.CreateProject(context.Background(), &models.Project{Name: name, FriendlyName: "Demo"})
	require.NoError(t, err)
	return project
}

func ingestRequest(build int) *models.IngestRequest {
	return &models.IngestRequest{
		ProjectName: "demo",
		Version:     "1.2.3",
		BuildNumber: build,
		BuildTime:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		BuildChanges: []models.ChangeSpec{
			{Commit: "abc123", Summary: "fix", Message: "fix the thing"},
		},
		Artifacts: map[string]map[string]models.DownloadSpec{
			"server": {
				"jar": {Name: "server.jar", Sha256: testSha},
			},
		},
	}
}

func TestIngest_HappyPath(t *testing.T) {
	repo := setupRepo(t)
	ingest := services.NewIngestService(repo)
	ctx := context.Background()
	createProject(t, ingest, "demo")

	res, err := ingest.Ingest(ctx, ingestRequest(5))
	require.NoError(t, err)
	assert.NotEmpty(t, res.VersionFamilyID)
	assert.NotEmpty(t, res.VersionID)
	assert.NotEmpty(t, res.BuildID)
	assert.Contains(t, res.ArtifactIDs, "server")

	// the family name is the version truncated at the last dot
	family, err := repo.FindFamilyByProjectAndName(ctx, res.ProjectID, "1.2")
	require.NoError(t, err)
	require.NotNil(t, family)
	assert.Equal(t, res.VersionFamilyID, family.ID)

	latest, err := repo.FindLatestByProject(ctx, res.ProjectID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, res.BuildID, latest.BuildID)
}

func TestIngest_ReusesFamilyAndVersion(t *testing.T) {
	repo := setupRepo(t)
	ingest := services.NewIngestService(repo)
	ctx := context.Background()
	createProject(t, ingest, "demo")

	first, err := ingest.Ingest(ctx, ingestRequest(1))
	require.NoError(t, err)
	second, err := ingest.Ingest(ctx, ingestRequest(2))
	require.NoError(t, err)

	assert.Equal(t, first.VersionFamilyID, second.VersionFamilyID)
	assert.Equal(t, first.VersionID, second.VersionID)
	assert.NotEqual(t, first.BuildID, second.BuildID)

	// no duplicate version row was created
	versions, err := repo.VersionsByProject(ctx, first.ProjectID)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestIngest_DuplicateBuildConflicts(t *testing.T) {
	repo := setupRepo(t)
	ingest := services.NewIngestService(repo)
	ctx := context.Background()
	createProject(t, ingest, "demo")

	_, err := ingest.Ingest(ctx, ingestRequest(5))
	require.NoError(t, err)

	// a different payload for the same build number is still a conflict
	again := ingestRequest(5)
	again.BuildChanges = nil
	_, err = ingest.Ingest(ctx, again)
	require.Error(t, err)
	assert.True(t, problem.IsConflict(err))
}

func TestIngest_UnknownProject(t *testing.T) {
	ingest := services.NewIngestService(setupRepo(t))

	_, err := ingest.Ingest(context.Background(), ingestRequest(1))
	require.Error(t, err)
	assert.True(t, problem.IsNotFound(err))
	assert.Equal(t, "project_not_found", problem.Code(err))
}

func TestIngest_DotlessVersionRejected(t *testing.T) {
	ingest := services.NewIngestService(setupRepo(t))

	req := ingestRequest(1)
	req.Version = "123"
	_, err := ingest.Ingest(context.Background(), req)
	require.Error(t, err)

	var apiErr problem.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
}

func TestIngest_UnknownChannelRejected(t *testing.T) {
	ingest := services.NewIngestService(setupRepo(t))

	req := ingestRequest(1)
	req.Channel = "nightly"
	_, err := ingest.Ingest(context.Background(), req)
	require.Error(t, err)

	var apiErr problem.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
}

func TestIngest_LatestPointerSwaps(t *testing.T) {
	repo := setupRepo(t)
	ingest := services.NewIngestService(repo)
	catalog := services.NewCatalogService(repo)
	ctx := context.Background()
	createProject(t, ingest, "demo")

	_, err := ingest.Ingest(ctx, ingestRequest(1))
	require.NoError(t, err)
	second, err := ingest.Ingest(ctx, ingestRequest(2))
	require.NoError(t, err)

	latest, err := catalog.Latest(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, 2, latest.BuildNumber)

	pointer, err := repo.FindLatestByProject(ctx, second.ProjectID)
	require.NoError(t, err)
	require.NotNil(t, pointer)
	assert.Equal(t, second.BuildID, pointer.BuildID)
}

func TestCreateProject_Conflict(t *testing.T) {
	ingest := services.NewIngestService(setupRepo(t))
	ctx := context.Background()

	_, err := ingest.CreateProject(ctx, &models.Project{Name: "demo", FriendlyName: "Demo"})
	require.NoError(t, err)

	_, err = ingest.CreateProject(ctx, &models.Project{Name: "demo", FriendlyName: "Other"})
	require.Error(t, err)
	assert.True(t, problem.IsConflict(err))
}

func TestCreateProject_NameGrammar(t *testing.T) {
	ingest := services.NewIngestService(setupRepo(t))

	_, err := ingest.CreateProject(context.Background(), &models.Project{Name: "Demo1", FriendlyName: "Demo"})
	require.Error(t, err)

	var apiErr problem.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
}
