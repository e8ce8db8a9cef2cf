package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmrzaf/empgen/internal/domain"
	"github.com/mmrzaf/empgen/internal/exporter"
	"github.com/mmrzaf/empgen/internal/generators"
	"github.com/mmrzaf/empgen/internal/hashing"
	"github.com/mmrzaf/empgen/internal/infra/repos/exports"
	"github.com/mmrzaf/empgen/internal/infra/repos/profiles"
	"github.com/mmrzaf/empgen/internal/logging"
	"github.com/mmrzaf/empgen/internal/metrics"
	"github.com/mmrzaf/empgen/internal/registry"
	"github.com/mmrzaf/empgen/internal/validation"
)

var ErrProfileNotFound = errors.New("profile not found")

type ServiceOptions struct {
	// MaxCount caps a single batch. Zero disables the cap.
	MaxCount        int
	DefaultProvider string
	Metrics         *metrics.Metrics
}

type ExportService struct {
	profileRepo     profiles.Repository
	historyRepo     exports.Repository
	providers       *registry.ProviderRegistry
	validator       *validation.Validator
	exporter        *exporter.Exporter
	metrics         *metrics.Metrics
	logger          *logging.Logger
	maxCount        int
	defaultProvider string
	now             func() time.Time
}

func NewExportService(
	profileRepo profiles.Repository,
	historyRepo exports.Repository,
	providers *registry.ProviderRegistry,
	logger *logging.Logger,
	opts ServiceOptions,
) *ExportService {
	if logger == nil {
		logger = logging.Nop()
	}
	if historyRepo == nil {
		historyRepo = exports.NopRepository{}
	}
	v := validation.NewValidator(providers)
	return &ExportService{
		profileRepo:     profileRepo,
		historyRepo:     historyRepo,
		providers:       providers,
		validator:       v,
		exporter:        exporter.New(v, logger),
		metrics:         opts.Metrics,
		logger:          logger.WithComponent("app"),
		maxCount:        opts.MaxCount,
		defaultProvider: opts.DefaultProvider,
		now:             time.Now,
	}
}

// Generate builds a new batch. The request is validated before any profile
// is loaded.
func (s *ExportService) Generate(req *domain.GenerateRequest) (*domain.Batch, error) {
	if err := s.validator.ValidateGenerateRequest(req, s.maxCount); err != nil {
		return nil, err
	}

	profile, err := s.resolveProfile(req.Profile)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateProfile(profile); err != nil {
		return nil, fmt.Errorf("profile validation failed: %w", err)
	}
	resolved := profile.WithDefaults()

	providerName := req.Provider
	if providerName == "" && profile.Provider != "" {
		providerName = profile.Provider
	}
	if providerName == "" {
		providerName = s.defaultProvider
	}
	if providerName == "" {
		providerName = registry.ProviderStatic
	}
	factory, err := s.providers.Get(providerName)
	if err != nil {
		return nil, err
	}

	profileHash, err := hashing.HashProfile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to hash profile: %w", err)
	}

	rng := generators.NewRand(req.Seed)
	gen, err := generators.NewEmployeeGenerator(generators.Options{
		Names:   factory(rng, resolved),
		Profile: resolved,
		Rand:    rng,
		Now:     s.now,
	})
	if err != nil {
		return nil, err
	}

	batch := &domain.Batch{
		ID:          uuid.New().String(),
		Provider:    providerName,
		ProfileID:   resolved.ID,
		ProfileHash: profileHash,
		Seed:        req.Seed,
		GeneratedAt: s.now(),
		Records:     gen.Generate(req.Count),
	}

	s.metrics.ObserveGenerated(len(batch.Records))
	s.logger.Infow("batch generated", map[string]any{
		"batch_id": batch.ID,
		"count":    len(batch.Records),
		"provider": providerName,
		"profile":  resolved.ID,
	})
	return batch, nil
}

// resolveProfile treats ref as a file when it has a profile extension or a
// path separator, otherwise as an ID or name.
func (s *ExportService) resolveProfile(ref string) (*domain.Profile, error) {
	ref = strings.TrimSpace(ref)
	if s.profileRepo == nil {
		if ref == "" || ref == domain.DefaultProfileID {
			return domain.DefaultProfile(), nil
		}
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, ref)
	}
	if ref == "" {
		ref = domain.DefaultProfileID
	}

	if looksLikePath(ref) {
		p, err := s.profileRepo.GetByPath(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
		return p, nil
	}
	p, err := s.profileRepo.Get(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, ref)
	}
	return p, nil
}

func looksLikePath(ref string) bool {
	switch filepath.Ext(ref) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return strings.ContainsRune(ref, '/') || strings.ContainsRune(ref, filepath.Separator)
}

// Export writes batch to destination and records the attempt. The returned
// run is non-nil whenever batch is, even on failure.
func (s *ExportService) Export(batch *domain.Batch, destination string) (*domain.ExportRun, error) {
	if batch == nil {
		return nil, ErrNoData
	}

	run := &domain.ExportRun{
		ID:          uuid.New().String(),
		BatchID:     batch.ID,
		Path:        destination,
		Rows:        len(batch.Records),
		Provider:    batch.Provider,
		ProfileHash: batch.ProfileHash,
		Status:      domain.ExportStatusRunning,
		StartedAt:   s.now(),
	}
	recorded := true
	if err := s.historyRepo.Create(run); err != nil {
		recorded = false
		s.logger.Warn("Failed to record export %s: %v", run.ID, err)
	}

	start := time.Now()
	res, err := s.exporter.Export(batch.Records, destination)
	elapsed := time.Since(start)

	completed := s.now()
	run.CompletedAt = &completed
	if err != nil {
		run.Status = domain.ExportStatusFailed
		run.Error = err.Error()
	} else {
		run.Status = domain.ExportStatusSuccess
		run.Path = res.Path
	}
	if recorded {
		if uerr := s.historyRepo.Update(run); uerr != nil {
			s.logger.Warn("Failed to update export %s: %v", run.ID, uerr)
		}
	}
	s.metrics.ObserveExport(run.Status, elapsed)

	if err != nil {
		s.logger.Errorw("export failed", map[string]any{
			"export_id": run.ID,
			"batch_id":  batch.ID,
			"path":      destination,
			"error":     err.Error(),
		})
		return run, fmt.Errorf("failed to export file: %w", err)
	}

	s.logger.Infow("export completed", map[string]any{
		"export_id":    run.ID,
		"batch_id":     batch.ID,
		"path":         res.Path,
		"rows":         res.Rows,
		"summary_rows": res.SummaryRows,
		"duration_ms":  elapsed.Milliseconds(),
	})
	return run, nil
}

func (s *ExportService) GetExport(id string) (*domain.ExportRun, error) {
	return s.historyRepo.Get(id)
}

func (s *ExportService) ListExports(limit int, status string) ([]*domain.ExportRun, error) {
	return s.historyRepo.List(limit, status)
}

func (s *ExportService) Providers() []string {
	return s.providers.List()
}
