package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/raysh454/vexora/internal/analyzer"
	"github.com/raysh454/vexora/internal/assessor"
	"github.com/raysh454/vexora/internal/history"
	"github.com/raysh454/vexora/internal/logging"
	"github.com/raysh454/vexora/internal/mediaprobe"
	"github.com/raysh454/vexora/internal/metrics"
	"github.com/raysh454/vexora/internal/policy"
	"github.com/raysh454/vexora/internal/webclient"
)

// Application is the global runtime state container. It holds the config and
// the services shared by the CLI and the API server. Pass Application into
// modules that need access to the global state rather than using
// package-level variables.
type Application struct {
	Config *Config
	Logger logging.Logger

	Metrics  *metrics.Metrics
	Policy   *policy.Store
	Analyzer *analyzer.DefaultAnalyzer
	History  *history.Store
	Orch     *Orchestrator

	webClient webclient.WebClient
	watcher   *policy.Watcher

	// internal context for cancellation / lifecycle
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
}

// NewApplication constructs every service from cfg. The caller owns the
// returned Application and must call Shutdown.
func NewApplication(ctx context.Context, cfg *Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := &Application{Config: cfg, Logger: logger, Metrics: metrics.New()}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	pol := policy.Default()
	if cfg.Policy.Path != "" {
		p, err := policy.Load(cfg.Policy.Path)
		if err != nil {
			a.cancel()
			return nil, fmt.Errorf("load policy: %w", err)
		}
		pol = p
	}
	a.Policy = policy.NewStore(pol)

	webclient.RegisterDefaultBackends()
	wc, err := webclient.NewWebClient(cfg.WebClientConfig(), logger)
	if err != nil {
		a.cancel()
		return nil, fmt.Errorf("new webclient: %w", err)
	}
	a.webClient = wc

	scorer, err := assessor.NewScorer(nil)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("new scorer: %w", err)
	}

	a.Analyzer, err = analyzer.NewDefaultAnalyzer(analyzer.Options{
		Policy:  a.Policy,
		Scorer:  scorer,
		Prober:  webclient.NewProber(wc, logger),
		Media:   mediaprobe.New(logger, a.Metrics),
		Metrics: a.Metrics,
	}, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("new analyzer: %w", err)
	}

	hc, err := cfg.HistoryConfig()
	if err != nil {
		a.close()
		return nil, err
	}
	hs, err := history.Open(ctx, hc, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("open history: %w", err)
	}
	a.History = hs

	a.Orch = NewOrchestrator(cfg.Batch, a.Analyzer, a.History, a.Metrics, logger)
	return a, nil
}

// Start begins background work: the policy watcher when configured.
func (a *Application) Start() error {
	if a == nil {
		return errors.New("application is nil")
	}
	if a.Config.Policy.Watch && a.Config.Policy.Path != "" {
		w, err := policy.NewWatcher(a.Config.Policy.Path, a.Policy, a.Logger, func(_ *policy.Policy, err error) {
			a.Metrics.PolicyReloaded(err)
		})
		if err != nil {
			return fmt.Errorf("start policy watcher: %w", err)
		}
		a.watcher = w
		go w.Start(a.ctx)
	}
	a.Logger.Info("application started",
		logging.Field{Key: "history_driver", Value: a.Config.History.Driver},
		logging.Field{Key: "probe_client", Value: a.Config.Probe.Client},
		logging.Field{Key: "policy_version", Value: a.Policy.Current().Version})
	return nil
}

// Shutdown attempts a graceful shutdown, delegating to the orchestrator first.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	var err error
	a.shutdownOnce.Do(func() {
		a.Logger.Info("application shutdown initiated")

		// Ask orchestrator to shut down first with a bounded timeout.
		shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if a.Orch != nil {
			if oerr := a.Orch.Shutdown(shutdownCtx); oerr != nil {
				a.Logger.Warn("orchestrator shutdown returned error", logging.Err(oerr))
			}
		}
		err = a.close()
	})
	return err
}

func (a *Application) close() error {
	a.cancel()
	var errs []error
	if a.watcher != nil {
		if err := a.watcher.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop policy watcher: %w", err))
		}
	}
	if a.History != nil {
		if err := a.History.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close history: %w", err))
		}
	}
	if a.webClient != nil {
		if err := a.webClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close webclient: %w", err))
		}
	}
	return errors.Join(errs...)
}
