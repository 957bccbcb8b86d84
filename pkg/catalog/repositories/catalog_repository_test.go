package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/database"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/models"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedHierarchy(t *testing.T, repo repositories.CatalogRepository) (*models.Project, *models.Version, *models.Build) {
	ctx := context.Background()

	project := &models.Project{ID: "p1", Name: "demo", FriendlyName: "Demo"}
	require.NoError(t, repo.SaveProject(ctx, project))

	family := &models.VersionFamily{ID: "f1", ProjectID: project.ID, Name: "1.2"}
	require.NoError(t, repo.SaveFamily(ctx, family))

	version := &models.Version{ID: "v1", ProjectID: project.ID, FamilyID: family.ID, Name: "1.2.3"}
	require.NoError(t, repo.SaveVersion(ctx, version))

	build := &models.Build{
		ID: "b1", ProjectID: project.ID, VersionID: version.ID, Number: 5,
		Time:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Channel: models.BuildChannelStable,
		Changes: []models.Change{
			{ID: "c1", BuildID: "b1", Position: 0, Commit: "aaa", Summary: "first", Message: "first change"},
			{ID: "c2", BuildID: "b1", Position: 1, Commit: "bbb", Summary: "second", Message: "second change"},
		},
	}
	require.NoError(t, repo.SaveBuild(ctx, build))
	return project, version, build
}

func TestFindProjectByName(t *testing.T) {
	repo := repositories.NewCatalogRepository(setupDB(t))
	ctx := context.Background()
	seedHierarchy(t, repo)

	got, err := repo.FindProjectByName(ctx, "demo")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Demo", got.FriendlyName)

	missing, err := repo.FindProjectByName(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBuildNumberUniqueness(t *testing.T) {
	repo := repositories.NewCatalogRepository(setupDB(t))
	ctx := context.Background()
	project, version, _ := seedHierarchy(t, repo)

	dup := &models.Build{
		ID: "b2", ProjectID: project.ID, VersionID: version.ID, Number: 5,
		Time: time.Now(), Channel: models.BuildChannelStable,
	}
	err := repo.SaveBuild(ctx, dup)
	require.Error(t, err)
	assert.True(t, repositories.IsDuplicate(err))
}

func TestBuildChangesKeepIngestionOrder(t *testing.T) {
	repo := repositories.NewCatalogRepository(setupDB(t))
	ctx := context.Background()
	project, version, _ := seedHierarchy(t, repo)

	build, err := repo.FindBuildByNumber(ctx, project.ID, version.ID, 5)
	require.NoError(t, err)
	require.NotNil(t, build)
	require.Len(t, build.Changes, 2)
	assert.Equal(t, "aaa", build.Changes[0].Commit)
	assert.Equal(t, "bbb", build.Changes[1].Commit)
}

func TestArtifactsByBuild(t *testing.T) {
	repo := repositories.NewCatalogRepository(setupDB(t))
	ctx := context.Background()
	project, version, build := seedHierarchy(t, repo)

	artifact := &models.Artifact{
		ID: "a1", ProjectID: project.ID, VersionID: version.ID, BuildID: build.ID, Name: "server",
		Downloads: []models.Download{
			{ID: "d1", ArtifactID: "a1", Label: "jar", Name: "server.jar", Sha256: "d34d"},
		},
	}
	require.NoError(t, repo.SaveArtifacts(ctx, []*models.Artifact{artifact}))

	artifacts, err := repo.ArtifactsByBuild(ctx, project.ID, version.ID, build.ID)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	require.Len(t, artifacts[0].Downloads, 1)
	assert.Equal(t, "server.jar", artifacts[0].Downloads[0].Name)

	named, err := repo.FindArtifactByName(ctx, project.ID, version.ID, build.ID, "server")
	require.NoError(t, err)
	require.NotNil(t, named)
	assert.Equal(t, "server", named.Name)
}

func TestBuildsByVersionIn(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewCatalogRepository(db)
	ctx := context.Background()
	project, version, _ := seedHierarchy(t, repo)

	other := &models.Version{ID: "v2", ProjectID: project.ID, FamilyID: "f1", Name: "1.2.4"}
	require.NoError(t, repo.SaveVersion(ctx, other))
	require.NoError(t, repo.SaveBuild(ctx, &models.Build{
		ID: "b9", ProjectID: project.ID, VersionID: other.ID, Number: 1, Time: time.Now(),
	}))

	builds, err := repo.BuildsByVersionIn(ctx, project.ID, []string{version.ID, other.ID})
	require.NoError(t, err)
	assert.Len(t, builds, 2)

	none, err := repo.BuildsByVersionIn(ctx, project.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReplaceLatest(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewCatalogRepository(db)
	ctx := context.Background()
	project, version, build := seedHierarchy(t, repo)

	first := &models.Latest{ID: "l1", ProjectID: project.ID, VersionID: version.ID, BuildID: build.ID}
	require.NoError(t, repo.ReplaceLatest(ctx, nil, first))

	second := &models.Latest{ID: "l2", ProjectID: project.ID, VersionID: version.ID, BuildID: "b2"}
	require.NoError(t, repo.ReplaceLatest(ctx, first, second))

	got, err := repo.FindLatestByProject(ctx, project.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "l2", got.ID)
	assert.Equal(t, "b2", got.BuildID)

	// the swap never leaves two pointers behind
	var count int64
	require.NoError(t, db.Model(&models.Latest{}).Where("project_id = ?", project.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
