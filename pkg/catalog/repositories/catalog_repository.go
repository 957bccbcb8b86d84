package repositories

import (
	"context"
	"errors"

	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/models"
	"gorm.io/gorm"
)

// CatalogRepository is the persistence capability set the catalog core
// needs. Lookups targeting a single entity return (nil, nil) when nothing
// matches; every other error is a store failure the caller must not drop.
type CatalogRepository interface {
	FindProjectByName(ctx context.Context, name string) (*models.Project, error)
	AllProjects(ctx context.Context) ([]models.Project, error)
	SaveProject(ctx context.Context, project *models.Project) error

	FindFamilyByProjectAndName(ctx context.Context, projectID, name string) (*models.VersionFamily, error)
	FamiliesByProject(ctx context.Context, projectID string) ([]models.VersionFamily, error)
	SaveFamily(ctx context.Context, family *models.VersionFamily) error

	FindVersionByID(ctx context.Context, id string) (*models.Version, error)
	FindVersionByProjectAndName(ctx context.Context, projectID, name string) (*models.Version, error)
	VersionsByProject(ctx context.Context, projectID string) ([]models.Version, error)
	VersionsByFamily(ctx context.Context, projectID, familyID string) ([]models.Version, error)
	SaveVersion(ctx context.Context, version *models.Version) error

	FindBuildByID(ctx context.Context, id string) (*models.Build, error)
	FindBuildByNumber(ctx context.Context, projectID, versionID string, number int) (*models.Build, error)
	BuildsByVersion(ctx context.Context, projectID, versionID string) ([]models.Build, error)
	BuildsByVersionIn(ctx context.Context, projectID string, versionIDs []string) ([]models.Build, error)
	SaveBuild(ctx context.Context, build *models.Build) error

	ArtifactsByBuild(ctx context.Context, projectID, versionID, buildID string) ([]models.Artifact, error)
	FindArtifactByName(ctx context.Context, projectID, versionID, buildID, name string) (*models.Artifact, error)
	SaveArtifacts(ctx context.Context, artifacts []*models.Artifact) error

	FindLatestByProject(ctx context.Context, projectID string) (*models.Latest, error)
	ReplaceLatest(ctx context.Context, old *models.Latest, latest *models.Latest) error
}

// IsDuplicate reports whether a save failed on a uniqueness constraint.
// The loser of a concurrent ingestion race lands here.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// findOne hides gorm's not-found error behind the (nil, nil) contract.
func findOne[T any](tx *gorm.DB) (*T, error) {
	var entity T
	if err := tx.First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

func (r *catalogRepository) FindProjectByName(ctx context.Context, name string) (*models.Project, error) {
	return findOne[models.Project](r.db.WithContext(ctx).Where("name = ?", name))
}

func (r *catalogRepository) AllProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.WithContext(ctx).Order("name").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *catalogRepository) SaveProject(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *catalogRepository) FindFamilyByProjectAndName(ctx context.Context, projectID, name string) (*models.VersionFamily, error) {
	return findOne[models.VersionFamily](r.db.WithContext(ctx).Where("project_id = ? AND name = ?", projectID, name))
}

func (r *catalogRepository) FamiliesByProject(ctx context.Context, projectID string) ([]models.VersionFamily, error) {
	var families []models.VersionFamily
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Find(&families).Error; err != nil {
		return nil, err
	}
	return families, nil
}

func (r *catalogRepository) SaveFamily(ctx context.Context, family *models.VersionFamily) error {
	return r.db.WithContext(ctx).Create(family).Error
}

func (r *catalogRepository) FindVersionByID(ctx context.Context, id string) (*models.Version, error) {
	return findOne[models.Version](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *catalogRepository) FindVersionByProjectAndName(ctx context.Context, projectID, name string) (*models.Version, error) {
	return findOne[models.Version](r.db.WithContext(ctx).Where("project_id = ? AND name = ?", projectID, name))
}

func (r *catalogRepository) VersionsByProject(ctx context.Context, projectID string) ([]models.Version, error) {
	var versions []models.Version
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *catalogRepository) VersionsByFamily(ctx context.Context, projectID, familyID string) ([]models.Version, error) {
	var versions []models.Version
	if err := r.db.WithContext(ctx).Where("project_id = ? AND family_id = ?", projectID, familyID).Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *catalogRepository) SaveVersion(ctx context.Context, version *models.Version) error {
	return r.db.WithContext(ctx).Create(version).Error
}

// withChanges preloads a build's change list in ingestion order.
func withChanges(db *gorm.DB) *gorm.DB {
	return db.Preload("Changes", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC")
	})
}

func (r *catalogRepository) FindBuildByID(ctx context.Context, id string) (*models.Build, error) {
	return findOne[models.Build](withChanges(r.db.WithContext(ctx)).Where("id = ?", id))
}

func (r *catalogRepository) FindBuildByNumber(ctx context.Context, projectID, versionID string, number int) (*models.Build, error) {
	return findOne[models.Build](withChanges(r.db.WithContext(ctx)).
		Where("project_id = ? AND version_id = ? AND number = ?", projectID, versionID, number))
}

func (r *catalogRepository) BuildsByVersion(ctx context.Context, projectID, versionID string) ([]models.Build, error) {
	var builds []models.Build
	if err := withChanges(r.db.WithContext(ctx)).
		Where("project_id = ? AND version_id = ?", projectID, versionID).
		Order("number ASC").
		Find(&builds).Error; err != nil {
		return nil, err
	}
	return builds, nil
}

func (r *catalogRepository) BuildsByVersionIn(ctx context.Context, projectID string, versionIDs []string) ([]models.Build, error) {
	if len(versionIDs) == 0 {
		return nil, nil
	}
	var builds []models.Build
	if err := withChanges(r.db.WithContext(ctx)).
		Where("project_id = ? AND version_id IN ?", projectID, versionIDs).
		Order("number ASC").
		Find(&builds).Error; err != nil {
		return nil, err
	}
	return builds, nil
}

func (r *catalogRepository) SaveBuild(ctx context.Context, build *models.Build) error {
	return r.db.WithContext(ctx).Create(build).Error
}

func (r *catalogRepository) ArtifactsByBuild(ctx context.Context, projectID, versionID, buildID string) ([]models.Artifact, error) {
	var artifacts []models.Artifact
	if err := r.db.WithContext(ctx).Preload("Downloads").
		Where("project_id = ? AND version_id = ? AND build_id = ?", projectID, versionID, buildID).
		Find(&artifacts).Error; err != nil {
		return nil, err
	}
	return artifacts, nil
}

func (r *catalogRepository) FindArtifactByName(ctx context.Context, projectID, versionID, buildID, name string) (*models.Artifact, error) {
	return findOne[models.Artifact](r.db.WithContext(ctx).Preload("Downloads").
		Where("project_id = ? AND version_id = ? AND build_id = ? AND name = ?", projectID, versionID, buildID, name))
}

func (r *catalogRepository) SaveArtifacts(ctx context.Context, artifacts []*models.Artifact) error {
	if len(artifacts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(artifacts).Error
}

func (r *catalogRepository) FindLatestByProject(ctx context.Context, projectID string) (*models.Latest, error) {
	return findOne[models.Latest](r.db.WithContext(ctx).Where("project_id = ?", projectID))
}

// ReplaceLatest swaps the latest pointer of a project: the old row is
// removed and the new one written with all-or-nothing visibility. This is
// the only multi-write in the system that must be atomic.
func (r *catalogRepository) ReplaceLatest(ctx context.Context, old *models.Latest, latest *models.Latest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if old != nil {
			if err := tx.Delete(&models.Latest{}, "id = ?", old.ID).Error; err != nil {
				return err
			}
		}
		return tx.Create(latest).Error
	})
}
