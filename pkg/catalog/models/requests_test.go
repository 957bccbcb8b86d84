package models_test

import (
	"testing"
	"time"

	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFamilyName(t *testing.T) {
	name, err := models.FamilyName("1.19.4")
	require.NoError(t, err)
	assert.Equal(t, "1.19", name)

	name, err = models.FamilyName("1.20.0-pre1")
	require.NoError(t, err)
	assert.Equal(t, "1.20", name)
}

func TestFamilyName_NoDot(t *testing.T) {
	_, err := models.FamilyName("119")
	assert.Error(t, err)
}

func TestVersionNamePattern(t *testing.T) {
	for _, ok := range []string{"1.19.4", "1.20", "1.20.0-pre1", "1.20-SNAPSHOT"} {
		assert.True(t, models.VersionNamePattern.MatchString(ok), ok)
	}
	for _, bad := range []string{"v1.19", "1.19 ", "release"} {
		assert.False(t, models.VersionNamePattern.MatchString(bad), bad)
	}
}

func TestIngestRequestValidate(t *testing.T) {
	req := validIngestRequest()
	assert.Empty(t, req.Validate())

	req = validIngestRequest()
	req.ProjectName = "Demo"
	assert.Contains(t, req.Validate(), "projectName")

	req = validIngestRequest()
	req.BuildNumber = 0
	assert.Contains(t, req.Validate(), "buildNumber")

	req = validIngestRequest()
	req.Artifacts["server"]["jar"] = models.DownloadSpec{Name: "server.jar", Sha256: "nothex"}
	assert.Contains(t, req.Validate(), "artifacts.server.jar.sha256")
}

func TestChannelDefaults(t *testing.T) {
	build := models.Build{}
	assert.Equal(t, models.BuildChannelStable, build.ChannelOrDefault())

	artifact := models.Artifact{}
	assert.Equal(t, models.ArtifactChannelDefault, artifact.ChannelOrDefault())

	_, err := models.ParseBuildChannel("nightly")
	assert.Error(t, err)

	ch, err := models.ParseBuildChannel("")
	assert.NoError(t, err)
	assert.Equal(t, models.BuildChannelStable, ch)
}

func validIngestRequest() *models.IngestRequest {
	return &models.IngestRequest{
		ProjectName: "demo",
		Version:     "1.2.3",
		BuildNumber: 5,
		BuildTime:   time.Now(),
		Artifacts: map[string]map[string]models.DownloadSpec{
			"server": {
				"jar": {
					Name:   "server.jar",
					Sha256: "d34db33fd34db33fd34db33fd34db33fd34db33fd34db33fd34db33fd34db33f",
				},
			},
		},
	}
}
