package services

import (
	"context"
	"io"
	"path"
	"time"

	problem "github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/helpers/problem"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/storage"
	"github.com/klauspost/compress/zip"
)

// FileDownload is a resolved, opened download file ready to stream.
// Callers own Content and must close it.
type FileDownload struct {
	FileName string
	Size     int64
	ModTime  time.Time
	Content  io.ReadCloser
}

// DownloadService maps resolved catalog coordinates onto the content store
// and streams files and build archives.
type DownloadService struct {
	catalog *CatalogService
	store   storage.Store
}

func NewDownloadService(catalog *CatalogService, store storage.Store) *DownloadService {
	return &DownloadService{catalog: catalog, store: store}
}

// ResolveDownload finds the download of the artifact whose file name equals
// downloadName. The download map is keyed by logical label, not file name,
// so the scan matches on the name field.
func (s *DownloadService) ResolveDownload(ctx context.Context, projectName, versionName string, number int, artifactName, downloadName string) (*FileDownload, error) {
	project, version, build, artifact, err := s.catalog.resolveArtifact(ctx, projectName, versionName, number, artifactName)
	if err != nil {
		return nil, err
	}
	download := artifact.DownloadByFileName(downloadName)
	if download == nil {
		return nil, problem.NewNotFound("download", downloadName, "no download with that file name")
	}
	logicalPath := storage.FilePath(project.Name, version.Name, build.Number, artifact.Name, download.Name)
	content, info, err := s.store.Open(logicalPath)
	if err != nil {
		// Metadata says the file should exist; the bytes are unavailable.
		return nil, problem.NewDownloadFailed(err.Error())
	}
	return &FileDownload{
		FileName: download.Name,
		Size:     info.Size,
		ModTime:  info.ModTime,
		Content:  content,
	}, nil
}

// BundleLatest streams every file of the project's latest build into one
// zip archive written to w. Files are streamed one at a time, each handle
// closed before the next is opened. A missing file aborts the bundle with
// DownloadFailed; whatever was already written to w is garbage the caller
// must discard.
func (s *DownloadService) BundleLatest(ctx context.Context, projectName string, w io.Writer) error {
	project, version, build, artifacts, err := s.catalog.ResolveLatest(ctx, projectName)
	if err != nil {
		return err
	}

	var paths []string
	for _, artifact := range artifacts {
		for _, download := range artifact.Downloads {
			paths = append(paths, storage.FilePath(project.Name, version.Name, build.Number, artifact.Name, download.Name))
		}
	}

	zw := zip.NewWriter(w)
	for _, logicalPath := range paths {
		if err := s.bundleOne(zw, logicalPath); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return problem.NewDownloadFailed(err.Error())
	}
	return nil
}

func (s *DownloadService) bundleOne(zw *zip.Writer, logicalPath string) error {
	content, info, err := s.store.Open(logicalPath)
	if err != nil {
		return problem.NewDownloadFailed(err.Error())
	}
	defer content.Close()

	entry, err := zw.CreateHeader(&zip.FileHeader{
		Name:     path.Base(logicalPath),
		Method:   zip.Deflate,
		Modified: info.ModTime,
	})
	if err != nil {
		return problem.NewDownloadFailed(err.Error())
	}
	if _, err := io.Copy(entry, content); err != nil {
		return problem.NewDownloadFailed(err.Error())
	}
	return nil
}
