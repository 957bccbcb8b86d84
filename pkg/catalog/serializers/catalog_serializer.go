// Package serializers converts persisted catalog entities into the wire
// DTOs of the v1 API.
package serializers

import (
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/helpers/ordering"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/models"
)

func ToProjectsResponse(projects []models.Project) *models.ProjectsResponse {
	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
	}
	return &models.ProjectsResponse{Projects: names}
}

func ToProjectResponse(project *models.Project, families []models.VersionFamily, versions []models.Version) *models.ProjectResponse {
	return &models.ProjectResponse{
		ProjectID:     project.Name,
		ProjectName:   project.FriendlyName,
		VersionGroups: ordering.SortedNames(families),
		Versions:      ordering.SortedNames(versions),
	}
}

func ToFamilyResponse(project *models.Project, family *models.VersionFamily, versions []models.Version) *models.FamilyResponse {
	return &models.FamilyResponse{
		ProjectID:    project.Name,
		ProjectName:  project.FriendlyName,
		VersionGroup: family.Name,
		Versions:     ordering.SortedNames(versions),
	}
}

func ToFamilyBuildsResponse(project *models.Project, family *models.VersionFamily, versions []models.Version, builds []models.Build) *models.FamilyBuildsResponse {
	versionNames := make(map[string]string, len(versions))
	for _, v := range versions {
		versionNames[v.ID] = v.Name
	}
	familyBuilds := make([]models.FamilyBuild, len(builds))
	for i, b := range builds {
		familyBuilds[i] = models.FamilyBuild{
			Version: versionNames[b.VersionID],
			Build:   b.Number,
			Time:    b.Time,
			Changes: changeList(b),
			Channel: b.ChannelOrDefault(),
		}
	}
	return &models.FamilyBuildsResponse{
		ProjectID:    project.Name,
		ProjectName:  project.FriendlyName,
		VersionGroup: family.Name,
		Versions:     ordering.SortedNames(versions),
		Builds:       familyBuilds,
	}
}

func ToVersionResponse(project *models.Project, version *models.Version, builds []models.Build) *models.VersionResponse {
	numbers := make([]int, len(builds))
	for i, b := range builds {
		numbers[i] = b.Number
	}
	return &models.VersionResponse{
		ProjectID:   project.Name,
		ProjectName: project.FriendlyName,
		Version:     version.Name,
		Builds:      numbers,
	}
}

func ToVersionBuildsResponse(project *models.Project, version *models.Version, builds []models.Build) *models.VersionBuildsResponse {
	versionBuilds := make([]models.VersionBuild, len(builds))
	for i, b := range builds {
		versionBuilds[i] = models.VersionBuild{
			Build:   b.Number,
			Time:    b.Time,
			Changes: changeList(b),
			Channel: b.ChannelOrDefault(),
		}
	}
	return &models.VersionBuildsResponse{
		ProjectID:   project.Name,
		ProjectName: project.FriendlyName,
		Version:     version.Name,
		Builds:      versionBuilds,
	}
}

func ToBuildResponse(project *models.Project, version *models.Version, build *models.Build) *models.BuildResponse {
	return &models.BuildResponse{
		ProjectID:   project.Name,
		ProjectName: project.FriendlyName,
		Version:     version.Name,
		Build:       build.Number,
		Time:        build.Time,
		Changes:     changeList(*build),
	}
}

func ToArtifactsResponse(project *models.Project, version *models.Version, build *models.Build, artifacts []models.Artifact) *models.ArtifactsResponse {
	refs := make([]models.ArtifactRef, len(artifacts))
	for i, a := range artifacts {
		refs[i] = models.ArtifactRef{Name: a.Name, Downloads: ToDownloadMap(a)}
	}
	return &models.ArtifactsResponse{
		ProjectID:   project.Name,
		ProjectName: project.FriendlyName,
		Version:     version.Name,
		Build:       build.Number,
		Artifacts:   refs,
	}
}

func ToArtifactResponse(project *models.Project, version *models.Version, build *models.Build, artifact *models.Artifact) *models.ArtifactResponse {
	return &models.ArtifactResponse{
		ProjectID:   project.Name,
		ProjectName: project.FriendlyName,
		Version:     version.Name,
		Build:       build.Number,
		Artifact:    artifact.Name,
		Downloads:   ToDownloadMap(*artifact),
	}
}

func ToLatestResponse(project *models.Project, version *models.Version, build *models.Build, artifacts []models.Artifact) *models.LatestResponse {
	latestArtifacts := make([]models.LatestArtifact, len(artifacts))
	for i, a := range artifacts {
		latestArtifacts[i] = models.LatestArtifact{ID: a.Name, Downloads: ToDownloadMap(a)}
	}
	return &models.LatestResponse{
		ProjectID:   project.Name,
		ProjectName: project.FriendlyName,
		VersionID:   version.Name,
		BuildNumber: build.Number,
		Artifacts:   latestArtifacts,
	}
}

// ToDownloadMap rebuilds the label-keyed download map of an artifact. The
// stored name and sha256 pass through unchanged.
func ToDownloadMap(artifact models.Artifact) map[string]models.DownloadResponse {
	downloads := make(map[string]models.DownloadResponse, len(artifact.Downloads))
	for _, d := range artifact.Downloads {
		downloads[d.Label] = models.DownloadResponse{Name: d.Name, Sha256: d.Sha256}
	}
	return downloads
}

// changeList never serializes as null; a build without changes has an
// empty list on the wire.
func changeList(b models.Build) []models.Change {
	if b.Changes == nil {
		return []models.Change{}
	}
	return b.Changes
}
