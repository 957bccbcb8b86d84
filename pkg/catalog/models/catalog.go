package models

import (
	"fmt"
	"time"
)

// BuildChannel is the release channel a build was published on.
type BuildChannel string

const (
	BuildChannelStable       BuildChannel = "stable"
	BuildChannelExperimental BuildChannel = "experimental"
	BuildChannelPR           BuildChannel = "pr"
)

// ParseBuildChannel maps a wire value onto a known channel. An empty value
// is valid and resolves to the stable default.
func ParseBuildChannel(s string) (BuildChannel, error) {
	switch BuildChannel(s) {
	case "":
		return BuildChannelStable, nil
	case BuildChannelStable, BuildChannelExperimental, BuildChannelPR:
		return BuildChannel(s), nil
	}
	return "", fmt.Errorf("unknown build channel %q", s)
}

// ArtifactChannel is the channel an artifact belongs to within its build.
type ArtifactChannel string

const (
	ArtifactChannelDefault      ArtifactChannel = "default"
	ArtifactChannelExperimental ArtifactChannel = "experimental"
)

func ParseArtifactChannel(s string) (ArtifactChannel, error) {
	switch ArtifactChannel(s) {
	case "":
		return ArtifactChannelDefault, nil
	case ArtifactChannelDefault, ArtifactChannelExperimental:
		return ArtifactChannel(s), nil
	}
	return "", fmt.Errorf("unknown artifact channel %q", s)
}

// Project is the root of the catalog hierarchy. Projects are created through
// the admin endpoint only; ingestion never creates them.
type Project struct {
	ID           string `gorm:"column:id;primaryKey" json:"-"`
	Name         string `gorm:"column:name;uniqueIndex" json:"name" binding:"required"`
	FriendlyName string `gorm:"column:friendly_name" json:"friendlyName" binding:"required"`
}

// VersionFamily groups versions sharing a name prefix (a version's family
// name is the version name truncated at its last dot).
type VersionFamily struct {
	ID        string     `gorm:"column:id;primaryKey"`
	ProjectID string     `gorm:"column:project_id;uniqueIndex:idx_family_project_name"`
	Name      string     `gorm:"column:name;uniqueIndex:idx_family_project_name"`
	Time      *time.Time `gorm:"column:time"`
}

func (f VersionFamily) OrderingName() string     { return f.Name }
func (f VersionFamily) OrderingTime() *time.Time { return f.Time }

type Version struct {
	ID        string     `gorm:"column:id;primaryKey"`
	ProjectID string     `gorm:"column:project_id;uniqueIndex:idx_version_project_name"`
	FamilyID  string     `gorm:"column:family_id;index"`
	Name      string     `gorm:"column:name;uniqueIndex:idx_version_project_name"`
	Time      *time.Time `gorm:"column:time"`
}

func (v Version) OrderingName() string     { return v.Name }
func (v Version) OrderingTime() *time.Time { return v.Time }

// Build is immutable once persisted. The composite unique index is what
// makes a concurrent duplicate ingestion lose at write time instead of
// corrupting the catalog.
type Build struct {
	ID        string       `gorm:"column:id;primaryKey"`
	ProjectID string       `gorm:"column:project_id;uniqueIndex:idx_build_identity"`
	VersionID string       `gorm:"column:version_id;uniqueIndex:idx_build_identity"`
	Number    int          `gorm:"column:number;uniqueIndex:idx_build_identity"`
	Time      time.Time    `gorm:"column:time"`
	Channel   BuildChannel `gorm:"column:channel"`
	Changes   []Change     `gorm:"foreignKey:BuildID"`
}

func (b Build) ChannelOrDefault() BuildChannel {
	if b.Channel == "" {
		return BuildChannelStable
	}
	return b.Channel
}

// Change is one commit recorded against a build. Position keeps the
// ingestion order; changes are never addressed outside their build.
type Change struct {
	ID       string `gorm:"column:id;primaryKey" json:"-"`
	BuildID  string `gorm:"column:build_id;index" json:"-"`
	Position int    `gorm:"column:position" json:"-"`
	Commit   string `gorm:"column:commit_id" json:"commit"`
	Summary  string `gorm:"column:summary" json:"summary"`
	Message  string `gorm:"column:message" json:"message"`
}

type Artifact struct {
	ID        string          `gorm:"column:id;primaryKey"`
	ProjectID string          `gorm:"column:project_id;uniqueIndex:idx_artifact_identity"`
	VersionID string          `gorm:"column:version_id;uniqueIndex:idx_artifact_identity"`
	BuildID   string          `gorm:"column:build_id;uniqueIndex:idx_artifact_identity"`
	Name      string          `gorm:"column:name;uniqueIndex:idx_artifact_identity"`
	Channel   ArtifactChannel `gorm:"column:channel"`
	Downloads []Download      `gorm:"foreignKey:ArtifactID"`
}

func (a Artifact) ChannelOrDefault() ArtifactChannel {
	if a.Channel == "" {
		return ArtifactChannelDefault
	}
	return a.Channel
}

// DownloadByFileName scans the artifact's downloads for one whose file name
// matches. The label under which a download was registered is not a file
// name; lookup is by the name field.
func (a Artifact) DownloadByFileName(name string) *Download {
	for i := range a.Downloads {
		if a.Downloads[i].Name == name {
			return &a.Downloads[i]
		}
	}
	return nil
}

// Download is one file of an artifact, registered under a logical label
// ("mirror", "normal", ...). Both the label and the file name are unique
// within the owning artifact.
type Download struct {
	ID         string `gorm:"column:id;primaryKey" json:"-"`
	ArtifactID string `gorm:"column:artifact_id;uniqueIndex:idx_download_label;uniqueIndex:idx_download_name" json:"-"`
	Label      string `gorm:"column:label;uniqueIndex:idx_download_label" json:"-"`
	Name       string `gorm:"column:name;uniqueIndex:idx_download_name" json:"name"`
	Sha256     string `gorm:"column:sha256" json:"sha256"`
}

// Latest points at the newest build of a project. A latest row is replaced,
// never updated: the swap deletes the old row and inserts a fresh one in a
// single transaction.
type Latest struct {
	ID        string `gorm:"column:id;primaryKey"`
	ProjectID string `gorm:"column:project_id;uniqueIndex"`
	VersionID string `gorm:"column:version_id"`
	BuildID   string `gorm:"column:build_id"`
}
