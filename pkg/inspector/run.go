package inspector

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/grovetools/sigscope/pkg/coordinator"
	"github.com/grovetools/sigscope/pkg/source"
)

// Run starts the periodic poll and consumes the given sources until ctx is
// done. Source failures are logged and counted, never returned.
func (i *Inspector) Run(ctx context.Context, sources ...source.Source) error {
	g, ctx := errgroup.WithContext(ctx)

	if err := i.coord.Start(ctx); err != nil {
		return err
	}

	if i.journal != nil {
		sub := i.coord.Subscribe()
		g.Go(func() error {
			defer i.coord.Unsubscribe(sub)
			i.persist(ctx, sub)
			return nil
		})
	}

	updates := make(chan source.Update, 100)
	for _, src := range sources {
		g.Go(func() error {
			i.logger.WithField("source", src.Name()).Debug("Starting source")
			if err := src.Run(ctx, updates); err != nil {
				i.metrics.IncSourceError(src.Name())
				i.logger.WithError(err).WithField("source", src.Name()).Error("Source stopped")
			}
			return nil
		})
	}

	g.Go(func() error {
		for {
			select {
			case u := <-updates:
				i.handleUpdate(u)
			case <-ctx.Done():
				return nil
			}
		}
	})

	return g.Wait()
}

func (i *Inspector) handleUpdate(u source.Update) {
	log := i.logger.WithField("source", u.Source)
	switch {
	case u.Err != nil:
		i.metrics.IncSourceError(u.Source)
		log.WithError(u.Err).Warn("Source reported an error")
	case u.Root != nil:
		i.metrics.IncSourceUpdate(u.Source)
		if !i.HasRoot() {
			i.Discover(u.Root)
			return
		}
		i.coord.SetRoot(u.Root)
		changed := i.coord.Poll()
		log.WithField("changed", changed).Debug("Root reloaded")
	case len(u.Patch) > 0:
		i.metrics.IncSourceUpdate(u.Source)
		entries := i.ApplyPatch(u.Patch)
		log.WithFields(logrus.Fields{
			"paths":   len(u.Patch),
			"changes": len(entries),
		}).Debug("Patch received")
	}
}

// persist appends every patch's changes to the journal.
func (i *Inspector) persist(ctx context.Context, sub chan coordinator.Notification) {
	for {
		select {
		case n, ok := <-sub:
			if !ok {
				return
			}
			if len(n.Changes) == 0 {
				continue
			}
			if err := i.journal.Append(ctx, i.id, n.Changes); err != nil {
				i.logger.WithError(err).Warn("Failed to append to change journal")
			}
		case <-ctx.Done():
			return
		}
	}
}
