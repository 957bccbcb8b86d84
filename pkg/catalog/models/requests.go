package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Path parameter grammars, taken over from the public route contracts.
// NOTE: these patterns must not contain capturing groups.
var (
	ProjectNamePattern  = regexp.MustCompile(`^[a-z]+$`)
	VersionNamePattern  = regexp.MustCompile(`^[0-9.]+-?(?:pre|SNAPSHOT)?(?:[0-9.]+)?$`)
	ArtifactNamePattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	DownloadNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	Sha256Pattern       = regexp.MustCompile(`^[a-f0-9]{64}$`)
)

// FamilyName derives a version's family name by truncating the version name
// at its last dot. A dotless version name has no derivable family; rather
// than invent a fallback the caller gets an error.
func FamilyName(version string) (string, error) {
	i := strings.LastIndex(version, ".")
	if i < 0 {
		return "", fmt.Errorf("version %q has no family separator", version)
	}
	return version[:i], nil
}

type ProjectParams struct {
	Project string `path:"project" validate:"required"`
}

type VersionParams struct {
	Project string `path:"project" validate:"required"`
	Version string `path:"version" validate:"required"`
}

type FamilyParams struct {
	Project string `path:"project" validate:"required"`
	Family  string `path:"family" validate:"required"`
}

type BuildParams struct {
	Project string `path:"project" validate:"required"`
	Version string `path:"version" validate:"required"`
	Build   int    `path:"build" validate:"required"`
}

type ArtifactParams struct {
	Project  string `path:"project" validate:"required"`
	Version  string `path:"version" validate:"required"`
	Build    int    `path:"build" validate:"required"`
	Artifact string `path:"artifact" validate:"required"`
}

type DownloadParams struct {
	Project  string `path:"project"`
	Version  string `path:"version"`
	Build    int    `path:"build"`
	Artifact string `path:"artifact"`
	Download string `path:"download"`
}

// DownloadSpec is the per-file metadata of an ingestion request.
type DownloadSpec struct {
	Name   string `json:"name"`
	Sha256 string `json:"sha256"`
}

type ChangeSpec struct {
	Commit  string `json:"commit"`
	Summary string `json:"summary"`
	Message string `json:"message"`
}

// IngestRequest is the normalized ingestion record accepted by the admin
// upload endpoint. Artifacts maps artifact name to a map of download label
// to file metadata.
type IngestRequest struct {
	ProjectName       string                             `json:"projectName" binding:"required"`
	VersionFamilyTime *time.Time                         `json:"versionFamilyTime"`
	Version           string                             `json:"version" binding:"required"`
	VersionTime       *time.Time                         `json:"versionTime"`
	BuildNumber       int                                `json:"buildNumber" binding:"required"`
	BuildTime         time.Time                          `json:"buildTime" binding:"required"`
	BuildChanges      []ChangeSpec                       `json:"buildChanges"`
	Artifacts         map[string]map[string]DownloadSpec `json:"artifacts" binding:"required"`
	Channel           string                             `json:"channel"`
}

// Validate checks the request against the entity grammars before any store
// access happens.
func (r *IngestRequest) Validate() []string {
	var bad []string
	if !ProjectNamePattern.MatchString(r.ProjectName) {
		bad = append(bad, "projectName")
	}
	if !VersionNamePattern.MatchString(r.Version) {
		bad = append(bad, "version")
	}
	if r.BuildNumber < 1 {
		bad = append(bad, "buildNumber")
	}
	for name, downloads := range r.Artifacts {
		if !ArtifactNamePattern.MatchString(name) {
			bad = append(bad, "artifacts."+name)
		}
		for label, d := range downloads {
			if !DownloadNamePattern.MatchString(d.Name) {
				bad = append(bad, fmt.Sprintf("artifacts.%s.%s.name", name, label))
			}
			if !Sha256Pattern.MatchString(d.Sha256) {
				bad = append(bad, fmt.Sprintf("artifacts.%s.%s.sha256", name, label))
			}
		}
	}
	return bad
}
