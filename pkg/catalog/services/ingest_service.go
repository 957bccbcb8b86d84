package services

import (
	"context"
	"fmt"
	"log"
	"strconv"

	problem "github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/helpers/problem"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/models"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/repositories"
	"github.com/google/uuid"
	"github.com/teris-io/shortid"
)

// IngestService is the write side of the catalog: project registration and
// the build ingestion pipeline.
type IngestService struct {
	repo repositories.CatalogRepository
}

func NewIngestService(repo repositories.CatalogRepository) *IngestService {
	return &IngestService{repo: repo}
}

// CreateProject registers a project. Projects are never created by
// ingestion, only here.
func (s *IngestService) CreateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	if !models.ProjectNamePattern.MatchString(project.Name) {
		return nil, problem.NewBadRequest(project.Name, "project name must be lowercase letters only",
			problem.InvalidParam{Name: "name", Reason: "must match [a-z]+"})
	}
	existing, err := s.repo.FindProjectByName(ctx, project.Name)
	if err != nil {
		return nil, problem.NewStoreUnavailable(err)
	}
	if existing != nil {
		return nil, problem.NewConflict(project.Name, "project already exists")
	}
	project.ID = shortid.MustGenerate()
	if err := s.repo.SaveProject(ctx, project); err != nil {
		if repositories.IsDuplicate(err) {
			return nil, problem.NewConflict(project.Name, "project already exists")
		}
		return nil, problem.NewStoreUnavailable(err)
	}
	return project, nil
}

// Ingest runs the multi-level upsert protocol for one build: resolve the
// project, create-or-reuse the version family and version, write the build,
// write the artifact batch, then swap the latest pointer. Each level is
// idempotent on its own; a duplicate build number rejects the whole request.
func (s *IngestService) Ingest(ctx context.Context, req *models.IngestRequest) (*models.IngestResponse, error) {
	if bad := req.Validate(); len(bad) > 0 {
		params := make([]problem.InvalidParam, len(bad))
		for i, name := range bad {
			params[i] = problem.InvalidParam{Name: name, Reason: "does not match the required pattern"}
		}
		return nil, problem.NewBadRequest(req.ProjectName, "invalid ingestion record", params...)
	}
	channel, err := models.ParseBuildChannel(req.Channel)
	if err != nil {
		return nil, problem.NewBadRequest(req.ProjectName, err.Error(),
			problem.InvalidParam{Name: "channel", Reason: "must be stable, experimental or pr"})
	}
	familyName, err := models.FamilyName(req.Version)
	if err != nil {
		return nil, problem.NewBadRequest(req.Version, err.Error(),
			problem.InvalidParam{Name: "version", Reason: "must contain a family separator"})
	}

	project, err := s.repo.FindProjectByName(ctx, req.ProjectName)
	if err != nil {
		return nil, problem.NewStoreUnavailable(err)
	}
	if project == nil {
		return nil, problem.NewNotFound("project", req.ProjectName, "ingestion never creates projects")
	}

	familyID, err := s.resolveOrCreateFamily(ctx, project.ID, familyName, req)
	if err != nil {
		return nil, err
	}

	versionID, err := s.resolveOrCreateVersion(ctx, project.ID, familyID, req)
	if err != nil {
		return nil, err
	}

	buildID, err := s.createBuild(ctx, project.ID, versionID, channel, req)
	if err != nil {
		return nil, err
	}

	artifactIDs, err := s.createArtifacts(ctx, project.ID, versionID, buildID, req)
	if err != nil {
		return nil, err
	}

	if err := s.swapLatest(ctx, project.ID, versionID, buildID); err != nil {
		return nil, err
	}

	log.Printf("[ingest] project=%s version=%s build=%d artifacts=%d",
		req.ProjectName, req.Version, req.BuildNumber, len(artifactIDs))

	return &models.IngestResponse{
		ProjectID:       project.ID,
		VersionFamilyID: familyID,
		VersionID:       versionID,
		BuildID:         buildID,
		ArtifactIDs:     artifactIDs,
	}, nil
}

func (s *IngestService) resolveOrCreateFamily(ctx context.Context, projectID, familyName string, req *models.IngestRequest) (string, error) {
	family, err := s.repo.FindFamilyByProjectAndName(ctx, projectID, familyName)
	if err != nil {
		return "", problem.NewStoreUnavailable(err)
	}
	if family != nil {
		return family.ID, nil
	}
	created := &models.VersionFamily{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      familyName,
		Time:      req.VersionFamilyTime,
	}
	if err := s.repo.SaveFamily(ctx, created); err != nil {
		return "", problem.NewStoreUnavailable(err)
	}
	return created.ID, nil
}

// resolveOrCreateVersion reuses an existing version untouched: its family
// linkage wins over whatever family this request resolved.
func (s *IngestService) resolveOrCreateVersion(ctx context.Context, projectID, familyID string, req *models.IngestRequest) (string, error) {
	version, err := s.repo.FindVersionByProjectAndName(ctx, projectID, req.Version)
	if err != nil {
		return "", problem.NewStoreUnavailable(err)
	}
	if version != nil {
		return version.ID, nil
	}
	created := &models.Version{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		FamilyID:  familyID,
		Name:      req.Version,
		Time:      req.VersionTime,
	}
	if err := s.repo.SaveVersion(ctx, created); err != nil {
		return "", problem.NewStoreUnavailable(err)
	}
	return created.ID, nil
}

func (s *IngestService) createBuild(ctx context.Context, projectID, versionID string, channel models.BuildChannel, req *models.IngestRequest) (string, error) {
	existing, err := s.repo.FindBuildByNumber(ctx, projectID, versionID, req.BuildNumber)
	if err != nil {
		return "", problem.NewStoreUnavailable(err)
	}
	if existing != nil {
		return "", problem.NewConflict(strconv.Itoa(req.BuildNumber), "build number already recorded")
	}
	build := &models.Build{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		VersionID: versionID,
		Number:    req.BuildNumber,
		Time:      req.BuildTime,
		Channel:   channel,
	}
	for i, c := range req.BuildChanges {
		build.Changes = append(build.Changes, models.Change{
			ID:       uuid.New().String(),
			BuildID:  build.ID,
			Position: i,
			Commit:   c.Commit,
			Summary:  c.Summary,
			Message:  c.Message,
		})
	}
	if err := s.repo.SaveBuild(ctx, build); err != nil {
		// The loser of a concurrent ingestion race for the same build
		// number fails here on the uniqueness constraint.
		if repositories.IsDuplicate(err) {
			return "", problem.NewConflict(strconv.Itoa(req.BuildNumber), "build number already recorded")
		}
		return "", problem.NewStoreUnavailable(err)
	}
	return build.ID, nil
}

// createArtifacts writes the artifact batch. The existence check runs after
// the build write; a conflict here leaves the build behind, and a retried
// ingestion then hits the build-level conflict, which is the designed
// recovery path.
func (s *IngestService) createArtifacts(ctx context.Context, projectID, versionID, buildID string, req *models.IngestRequest) (map[string]string, error) {
	existing, err := s.repo.ArtifactsByBuild(ctx, projectID, versionID, buildID)
	if err != nil {
		return nil, problem.NewStoreUnavailable(err)
	}
	if len(existing) > 0 {
		return nil, problem.NewConflict(fmt.Sprintf("%s/%d", req.Version, req.BuildNumber), "artifacts already recorded for build")
	}
	artifacts := make([]*models.Artifact, 0, len(req.Artifacts))
	ids := make(map[string]string, len(req.Artifacts))
	for name, downloads := range req.Artifacts {
		artifact := &models.Artifact{
			ID:        uuid.New().String(),
			ProjectID: projectID,
			VersionID: versionID,
			BuildID:   buildID,
			Name:      name,
		}
		for label, d := range downloads {
			artifact.Downloads = append(artifact.Downloads, models.Download{
				ID:         uuid.New().String(),
				ArtifactID: artifact.ID,
				Label:      label,
				Name:       d.Name,
				Sha256:     d.Sha256,
			})
		}
		artifacts = append(artifacts, artifact)
		ids[name] = artifact.ID
	}
	if err := s.repo.SaveArtifacts(ctx, artifacts); err != nil {
		if repositories.IsDuplicate(err) {
			return nil, problem.NewConflict(fmt.Sprintf("%s/%d", req.Version, req.BuildNumber), "artifacts already recorded for build")
		}
		return nil, problem.NewStoreUnavailable(err)
	}
	return ids, nil
}

// swapLatest repoints the project's latest pointer as an atomic
// delete-and-insert pair.
func (s *IngestService) swapLatest(ctx context.Context, projectID, versionID, buildID string) error {
	old, err := s.repo.FindLatestByProject(ctx, projectID)
	if err != nil {
		return problem.NewStoreUnavailable(err)
	}
	latest := &models.Latest{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		VersionID: versionID,
		BuildID:   buildID,
	}
	if err := s.repo.ReplaceLatest(ctx, old, latest); err != nil {
		return problem.NewStoreUnavailable(err)
	}
	return nil
}
