package services

import (
	"fmt"
	"strings"

	"dslf/internal/config"
	"dslf/internal/httpclient"
	"dslf/internal/provider"
	"dslf/internal/rebrandly"

	"go.uber.org/zap"
)

// CompositeService bundles the auxiliary modes sharing one HTTP client and logger.
type CompositeService struct {
	Validator *Validator
	Checker   *Checker
	doer      httpclient.HTTPDoer
	sugar     *zap.SugaredLogger
}

// NewCompositeService builds the services from the application configuration.
func NewCompositeService(conf *config.Config, doer httpclient.HTTPDoer, sugar *zap.SugaredLogger) *CompositeService {
	return &CompositeService{
		Validator: NewValidator(doer, ValidatorOptions{
			Concurrency:    conf.Concurrency,
			ProbeTimeout:   conf.ProbeTimeout,
			OverallTimeout: conf.ValidateTimeout,
		}, sugar),
		Checker: NewChecker(),
		doer:    doer,
		sugar:   sugar,
	}
}

// Importer returns an importer for the named provider.
func (s *CompositeService) Importer(name string, opts ImporterOptions) (*Importer, error) {
	p, err := NewLinkProvider(name, s.doer)
	if err != nil {
		return nil, err
	}
	return NewImporter(p, opts, s.sugar.With("provider", strings.ToLower(name))), nil
}

// NewLinkProvider returns the provider client for name with credentials from the environment.
func NewLinkProvider(name string, doer httpclient.HTTPDoer) (provider.LinkProvider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case rebrandly.Name:
		key, err := rebrandly.APIKeyFromEnv()
		if err != nil {
			return nil, err
		}
		return rebrandly.NewClient(doer, key), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)", provider.ErrUnsupportedProvider, name, rebrandly.Name)
	}
}
