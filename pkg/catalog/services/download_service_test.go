package services_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	problem "github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/helpers/problem"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/models"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/services"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/storage"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStoreFile(t *testing.T, fs billy.Filesystem, logicalPath string, content []byte) {
	require.NoError(t, util.WriteFile(fs, logicalPath, content, 0o644))
}

func TestResolveDownload_MatchesByFileName(t *testing.T) {
	repo := setupRepo(t)
	catalog := seedCatalog(t, repo)

	fs := memfs.New()
	payload := []byte("jar bytes")
	writeStoreFile(t, fs, storage.FilePath("demo", "1.2.3", 1, "server", "server.jar"), payload)

	downloads := services.NewDownloadService(catalog, storage.New(fs))

	// "server.jar" is the file name; "jar" is only the map label and must
	// not resolve.
	got, err := downloads.ResolveDownload(context.Background(), "demo", "1.2.3", 1, "server", "server.jar")
	require.NoError(t, err)
	defer got.Content.Close()
	assert.Equal(t, "server.jar", got.FileName)
	assert.Equal(t, int64(len(payload)), got.Size)
	data, err := io.ReadAll(got.Content)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = downloads.ResolveDownload(context.Background(), "demo", "1.2.3", 1, "server", "jar")
	require.Error(t, err)
	assert.Equal(t, "download_not_found", problem.Code(err))
}

func TestResolveDownload_MissingBytes(t *testing.T) {
	repo := setupRepo(t)
	catalog := seedCatalog(t, repo)

	downloads := services.NewDownloadService(catalog, storage.New(memfs.New()))

	// Metadata knows the file, the store does not: a server fault, not 404.
	_, err := downloads.ResolveDownload(context.Background(), "demo", "1.2.3", 1, "server", "server.jar")
	require.Error(t, err)
	assert.False(t, problem.IsNotFound(err))
	assert.Equal(t, "download_failed", problem.Code(err))
}

func TestResolveDownload_UnknownArtifact(t *testing.T) {
	repo := setupRepo(t)
	catalog := seedCatalog(t, repo)

	downloads := services.NewDownloadService(catalog, storage.New(memfs.New()))

	_, err := downloads.ResolveDownload(context.Background(), "demo", "1.2.3", 1, "client", "client.jar")
	require.Error(t, err)
	assert.Equal(t, "artifact_not_found", problem.Code(err))
}

func TestBundleLatest_ArchivesEveryFile(t *testing.T) {
	repo := setupRepo(t)
	ingest := services.NewIngestService(repo)
	ctx := context.Background()
	createProject(t, ingest, "demo")

	req := ingestRequest(7)
	req.Artifacts["api"] = map[string]models.DownloadSpec{
		"jar": {Name: "api.jar", Sha256: testSha},
	}
	_, err := ingest.Ingest(ctx, req)
	require.NoError(t, err)

	fs := memfs.New()
	writeStoreFile(t, fs, storage.FilePath("demo", "1.2.3", 7, "server", "server.jar"), []byte("server payload"))
	writeStoreFile(t, fs, storage.FilePath("demo", "1.2.3", 7, "api", "api.jar"), []byte("api"))

	downloads := services.NewDownloadService(services.NewCatalogService(repo), storage.New(fs))

	var buf bytes.Buffer
	require.NoError(t, downloads.BundleLatest(ctx, "demo", &buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	sizes := map[string]uint64{}
	for _, f := range zr.File {
		sizes[f.Name] = f.UncompressedSize64
	}
	assert.Equal(t, uint64(len("server payload")), sizes["server.jar"])
	assert.Equal(t, uint64(len("api")), sizes["api.jar"])
}

func TestBundleLatest_MissingFileAborts(t *testing.T) {
	repo := setupRepo(t)
	catalog := seedCatalog(t, repo)

	downloads := services.NewDownloadService(catalog, storage.New(memfs.New()))

	var buf bytes.Buffer
	err := downloads.BundleLatest(context.Background(), "demo", &buf)
	require.Error(t, err)
	assert.Equal(t, "download_failed", problem.Code(err))
}
