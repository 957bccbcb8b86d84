package models

import "time"

// Response DTOs for the read-side endpoints. Field names follow the wire
// contract of the v1 API.

type ProjectsResponse struct {
	Projects []string `json:"projects"`
}

type ProjectResponse struct {
	ProjectID     string   `json:"project_id"`
	ProjectName   string   `json:"project_name"`
	VersionGroups []string `json:"version_groups"`
	Versions      []string `json:"versions"`
}

type FamilyResponse struct {
	ProjectID    string   `json:"project_id"`
	ProjectName  string   `json:"project_name"`
	VersionGroup string   `json:"version_group"`
	Versions     []string `json:"versions"`
}

type FamilyBuild struct {
	Version string       `json:"version"`
	Build   int          `json:"build"`
	Time    time.Time    `json:"time"`
	Changes []Change     `json:"changes"`
	Channel BuildChannel `json:"channel"`
}

type FamilyBuildsResponse struct {
	ProjectID    string        `json:"project_id"`
	ProjectName  string        `json:"project_name"`
	VersionGroup string        `json:"version_group"`
	Versions     []string      `json:"versions"`
	Builds       []FamilyBuild `json:"builds"`
}

type VersionResponse struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	Version     string `json:"version"`
	Builds      []int  `json:"builds"`
}

type VersionBuild struct {
	Build   int          `json:"build"`
	Time    time.Time    `json:"time"`
	Changes []Change     `json:"changes"`
	Channel BuildChannel `json:"channel"`
}

type VersionBuildsResponse struct {
	ProjectID   string         `json:"project_id"`
	ProjectName string         `json:"project_name"`
	Version     string         `json:"version"`
	Builds      []VersionBuild `json:"builds"`
}

type BuildResponse struct {
	ProjectID   string   `json:"project_id"`
	ProjectName string   `json:"project_name"`
	Version     string   `json:"version"`
	Build       int      `json:"build"`
	Time        time.Time `json:"time"`
	Changes     []Change `json:"changes"`
}

// DownloadResponse mirrors the stored download metadata unchanged.
type DownloadResponse struct {
	Name   string `json:"name"`
	Sha256 string `json:"sha256"`
}

type ArtifactRef struct {
	Name      string                      `json:"name"`
	Downloads map[string]DownloadResponse `json:"downloads"`
}

type ArtifactsResponse struct {
	ProjectID   string        `json:"project_id"`
	ProjectName string        `json:"project_name"`
	Version     string        `json:"version"`
	Build       int           `json:"build"`
	Artifacts   []ArtifactRef `json:"artifacts"`
}

type ArtifactResponse struct {
	ProjectID   string                      `json:"project_id"`
	ProjectName string                      `json:"project_name"`
	Version     string                      `json:"version"`
	Build       int                         `json:"build"`
	Artifact    string                      `json:"artifact"`
	Downloads   map[string]DownloadResponse `json:"downloads"`
}

type LatestArtifact struct {
	ID        string                      `json:"id"`
	Downloads map[string]DownloadResponse `json:"downloads"`
}

type LatestResponse struct {
	ProjectID   string           `json:"project_id"`
	ProjectName string           `json:"project_name"`
	VersionID   string           `json:"version_id"`
	BuildNumber int              `json:"buildNumber"`
	Artifacts   []LatestArtifact `json:"artifacts"`
}

// IngestResponse carries the identifiers created or reused by an accepted
// ingestion, keyed the way the pipeline resolved them.
type IngestResponse struct {
	ProjectID       string            `json:"projectId"`
	VersionFamilyID string            `json:"versionFamilyId"`
	VersionID       string            `json:"versionId"`
	BuildID         string            `json:"buildId"`
	ArtifactIDs     map[string]string `json:"artifactIds"`
}
