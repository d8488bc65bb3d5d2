package cmd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/sigscope/config"
	"github.com/grovetools/sigscope/pkg/client"
	"github.com/grovetools/sigscope/pkg/inspector"
	"github.com/grovetools/sigscope/pkg/journal"
	"github.com/grovetools/sigscope/pkg/metrics"
	"github.com/grovetools/sigscope/pkg/source"
)

// session bundles an inspector with the sources that feed it.
type session struct {
	insp    *inspector.Inspector
	sources []source.Source
	root    *source.FileRoot
}

// newSession builds an inspector from cfg. The journal is opened when
// enabled, and metrics are registered on reg when it is not nil.
func newSession(cfg *config.Config, reg *prometheus.Registry, logger *logrus.Entry) (*session, error) {
	opts := inspector.OptionsFromConfig(cfg)
	opts.Logger = logger
	if reg != nil {
		opts.Metrics = metrics.NewPrometheusRecorder(reg)
	}
	if cfg.Journal.Enabled {
		j, err := journal.Open(client.JournalPath(cfg))
		if err != nil {
			return nil, err
		}
		opts.Journal = j
	}

	insp, err := inspector.Create(opts)
	if err != nil {
		if opts.Journal != nil {
			_ = opts.Journal.Close()
		}
		return nil, err
	}

	sources, err := source.FromConfig(cfg.Sources)
	if err != nil {
		_ = insp.Dispose()
		return nil, err
	}

	s := &session{insp: insp, sources: sources}
	if cfg.Root.File != "" {
		s.root = source.NewFileRoot(cfg.Root.File, cfg.Root.Format)
		s.sources = append([]source.Source{s.root}, s.sources...)
	}
	return s, nil
}

// sourceNames lists the session's sources for the running config.
func (s *session) sourceNames() []string {
	names := make([]string, 0, len(s.sources))
	for _, src := range s.sources {
		names = append(names, src.Name())
	}
	return names
}
