// Package jobs holds the scheduled background work of the service.
package jobs

import (
	"context"
	"log"

	problem "github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/helpers/problem"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/services"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/catalog/storage"
	"github.com/ThoriumCubeLTD/ISDownload-API/pkg/tools"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ScheduleDailySweep sets up a cron job that checks every project's latest
// build against the content store once a day. The sweep only reports drift
// between catalog metadata and the files on disk; it never mutates either.
func ScheduleDailySweep(ctx context.Context, catalog *services.CatalogService, store storage.Store) *cron.Cron {
	c := cron.New()
	_, _ = c.AddFunc("@daily", func() {
		tools.Dispatch(context.Background(), "storage_sweep", func(ctx context.Context) error {
			return SweepAll(ctx, catalog, store)
		})
	})
	c.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return c
}

// SweepAll walks all projects and stats every download file of each
// project's latest build. Missing files are logged; a store failure aborts
// the sweep.
func SweepAll(ctx context.Context, catalog *services.CatalogService, store storage.Store) error {
	projects, err := catalog.Projects(ctx)
	if err != nil {
		return err
	}

	const maxConcurrent = 2
	sem := semaphore.NewWeighted(int64(maxConcurrent))
	g, ctx := errgroup.WithContext(ctx)

	for _, name := range projects.Projects {
		name := name

		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		g.Go(func() error {
			defer sem.Release(1)
			return sweepProject(ctx, catalog, store, name)
		})
	}

	return g.Wait()
}

func sweepProject(ctx context.Context, catalog *services.CatalogService, store storage.Store, name string) error {
	project, version, build, artifacts, err := catalog.ResolveLatest(ctx, name)
	if err != nil {
		// A project without ingested builds has no latest pointer yet; that
		// is not drift.
		if problem.IsNotFound(err) {
			return nil
		}
		return err
	}

	var missing int
	for _, artifact := range artifacts {
		for _, download := range artifact.Downloads {
			logicalPath := storage.FilePath(project.Name, version.Name, build.Number, artifact.Name, download.Name)
			if _, err := store.Stat(logicalPath); err != nil {
				missing++
				log.Printf("[sweep] project=%s missing file %s: %v", name, logicalPath, err)
			}
		}
	}
	if missing > 0 {
		log.Printf("[sweep] project=%s build=%d missing=%d", name, build.Number, missing)
	}
	return nil
}
