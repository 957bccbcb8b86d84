package services

import (
	"context"
	"strconv"

	problem "github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/helpers/problem"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/models"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/repositories"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/serializers"
)

// CatalogService is the read side of the catalog: hierarchical lookups
// mirroring the entity tree. Lookups targeting one entity fail with the
// entity's not-found kind; collection lookups only require their parent.
type CatalogService struct {
	repo repositories.CatalogRepository
}

func NewCatalogService(repo repositories.CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) Projects(ctx context.Context) (*models.ProjectsResponse, error) {
	projects, err := s.repo.AllProjects(ctx)
	if err != nil {
		return nil, problem.NewStoreUnavailable(err)
	}
	return serializers.ToProjectsResponse(projects), nil
}

func (s *CatalogService) Project(ctx context.Context, name string) (*models.ProjectResponse, error) {
	project, err := s.resolveProject(ctx, name)
	if err != nil {
		return nil, err
	}
	families, err := s.repo.FamiliesByProject(ctx, project.ID)
	if err != nil {
		return nil, problem.NewStoreUnavailable(err)
	}
	versions, err := s.repo.VersionsByProject(ctx, project.ID)
	if err != nil {
		return nil, problem.NewStoreUnavailable(err)
	}
	return serializers.ToProjectResponse(project, families, versions), nil
}

func (s *CatalogService) Family(ctx context.Context, projectName, familyName string) (*models.FamilyResponse, error) {
	project, family, err := s.resolveFamily(ctx, projectName, familyName)
	if err != nil {
		return nil, err
	}
	versions, err := s.repo.VersionsByFamily(ctx, project.ID, family.ID)
	if err != nil {
		return nil, problem.NewStoreUnavailable(err)
	}
	return serializers.ToFamilyResponse(project, family, versions), nil
}

// FamilyBuilds aggregates the builds of every version belonging to the
// family. Build order is store-native; only version names are sorted.
func (s *CatalogService) FamilyBuilds(ctx context.Context, projectName, familyName string) (*models.FamilyBuildsResponse, error) {
	project, family, err := s.resolveFamily(ctx, projectName, familyName)
	if err != nil {
		return nil, err
	}
	versions, err := s.repo.VersionsByFamily(ctx, project.ID, family.ID)
	if err != nil {
		return nil, problem.NewStoreUnavailable(err)
	}
	versionIDs := make([]string, len(versions))
	for i, v := range versions {
		versionIDs[i] = v.ID
	}
	builds, err := s.repo.BuildsByVersionIn(ctx, project.ID, versionIDs)
	if err != nil {
		return nil, problem.NewStoreUnavailable(err)
	}
	return serializers.ToFamilyBuildsResponse(project, family, versions, builds), nil
}

func (s *CatalogService) Version(ctx context.Context, projectName, versionName string) (*models.VersionResponse, error) {
	project, version, err := s.resolveVersion(ctx, projectName, versionName)
	if err != nil {
		return nil, err
	}
	builds, err := s.repo.BuildsByVersion(ctx, project.ID, version.ID)
	if err != nil {
		return nil, problem.NewStoreUnavailable(err)
	}
	return serializers.ToVersionResponse(project, version, builds), nil
}

func (s *CatalogService) VersionBuilds(ctx context.Context, projectName, versionName string) (*models.VersionBuildsResponse, error) {
	project, version, err := s.resolveVersion(ctx, projectName, versionName)
	if err != nil {
		return nil, err
	}
	builds, err := s.repo.BuildsByVersion(ctx, project.ID, version.ID)
	if err != nil {
		return nil, problem.NewStoreUnavailable(err)
	}
	return serializers.ToVersionBuildsResponse(project, version, builds), nil
}

func (s *CatalogService) Build(ctx context.Context, projectName, versionName string, number int) (*models.BuildResponse, error) {
	project, version, build, err := s.resolveBuild(ctx, projectName, versionName, number)
	if err != nil {
		return nil, err
	}
	return serializers.ToBuildResponse(project, version, build), nil
}

func (s *CatalogService) Artifacts(ctx context.Context, projectName, versionName string, number int) (*models.ArtifactsResponse, error) {
	project, version, build, err := s.resolveBuild(ctx, projectName, versionName, number)
	if err != nil {
		return nil, err
	}
	artifacts, err := s.repo.ArtifactsByBuild(ctx, project.ID, version.ID, build.ID)
	if err != nil {
		return nil, problem.NewStoreUnavailable(err)
	}
	return serializers.ToArtifactsResponse(project, version, build, artifacts), nil
}

func (s *CatalogService) Artifact(ctx context.Context, projectName, versionName string, number int, artifactName string) (*models.ArtifactResponse, error) {
	project, version, build, artifact, err := s.resolveArtifact(ctx, projectName, versionName, number, artifactName)
	if err != nil {
		return nil, err
	}
	return serializers.ToArtifactResponse(project, version, build, artifact), nil
}

func (s *CatalogService) Latest(ctx context.Context, projectName string) (*models.LatestResponse, error) {
	project, version, build, artifacts, err := s.ResolveLatest(ctx, projectName)
	if err != nil {
		return nil, err
	}
	return serializers.ToLatestResponse(project, version, build, artifacts), nil
}

// ResolveLatest expands a project's latest pointer to the referenced
// version, build and artifact set. Also used by the download resolver and
// the storage sweep.
func (s *CatalogService) ResolveLatest(ctx context.Context, projectName string) (*models.Project, *models.Version, *models.Build, []models.Artifact, error) {
	project, err := s.resolveProject(ctx, projectName)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	latest, err := s.repo.FindLatestByProject(ctx, project.ID)
	if err != nil {
		return nil, nil, nil, nil, problem.NewStoreUnavailable(err)
	}
	if latest == nil {
		return nil, nil, nil, nil, problem.NewNotFound("latest", projectName, "no latest build recorded for project")
	}
	version, err := s.repo.FindVersionByID(ctx, latest.VersionID)
	if err != nil {
		return nil, nil, nil, nil, problem.NewStoreUnavailable(err)
	}
	if version == nil {
		return nil, nil, nil, nil, problem.NewNotFound("version", latest.VersionID, "version referenced by latest pointer is gone")
	}
	build, err := s.repo.FindBuildByID(ctx, latest.BuildID)
	if err != nil {
		return nil, nil, nil, nil, problem.NewStoreUnavailable(err)
	}
	if build == nil {
		return nil, nil, nil, nil, problem.NewNotFound("build", latest.BuildID, "build referenced by latest pointer is gone")
	}
	artifacts, err := s.repo.ArtifactsByBuild(ctx, project.ID, version.ID, build.ID)
	if err != nil {
		return nil, nil, nil, nil, problem.NewStoreUnavailable(err)
	}
	return project, version, build, artifacts, nil
}

func (s *CatalogService) resolveProject(ctx context.Context, name string) (*models.Project, error) {
	project, err := s.repo.FindProjectByName(ctx, name)
	if err != nil {
		return nil, problem.NewStoreUnavailable(err)
	}
	if project == nil {
		return nil, problem.NewNotFound("project", name, "project does not exist")
	}
	return project, nil
}

func (s *CatalogService) resolveFamily(ctx context.Context, projectName, familyName string) (*models.Project, *models.VersionFamily, error) {
	project, err := s.resolveProject(ctx, projectName)
	if err != nil {
		return nil, nil, err
	}
	family, err := s.repo.FindFamilyByProjectAndName(ctx, project.ID, familyName)
	if err != nil {
		return nil, nil, problem.NewStoreUnavailable(err)
	}
	if family == nil {
		return nil, nil, problem.NewNotFound("version_family", familyName, "version group does not exist")
	}
	return project, family, nil
}

func (s *CatalogService) resolveVersion(ctx context.Context, projectName, versionName string) (*models.Project, *models.Version, error) {
	project, err := s.resolveProject(ctx, projectName)
	if err != nil {
		return nil, nil, err
	}
	version, err := s.repo.FindVersionByProjectAndName(ctx, project.ID, versionName)
	if err != nil {
		return nil, nil, problem.NewStoreUnavailable(err)
	}
	if version == nil {
		return nil, nil, problem.NewNotFound("version", versionName, "version does not exist")
	}
	return project, version, nil
}

func (s *CatalogService) resolveBuild(ctx context.Context, projectName, versionName string, number int) (*models.Project, *models.Version, *models.Build, error) {
	project, version, err := s.resolveVersion(ctx, projectName, versionName)
	if err != nil {
		return nil, nil, nil, err
	}
	build, err := s.repo.FindBuildByNumber(ctx, project.ID, version.ID, number)
	if err != nil {
		return nil, nil, nil, problem.NewStoreUnavailable(err)
	}
	if build == nil {
		return nil, nil, nil, problem.NewNotFound("build", strconv.Itoa(number), "build does not exist")
	}
	return project, version, build, nil
}

func (s *CatalogService) resolveArtifact(ctx context.Context, projectName, versionName string, number int, artifactName string) (*models.Project, *models.Version, *models.Build, *models.Artifact, error) {
	project, version, build, err := s.resolveBuild(ctx, projectName, versionName, number)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	artifact, err := s.repo.FindArtifactByName(ctx, project.ID, version.ID, build.ID, artifactName)
	if err != nil {
		return nil, nil, nil, nil, problem.NewStoreUnavailable(err)
	}
	if artifact == nil {
		return nil, nil, nil, nil, problem.NewNotFound("artifact", artifactName, "artifact does not exist")
	}
	return project, version, build, artifact, nil
}
