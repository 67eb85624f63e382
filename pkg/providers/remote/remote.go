// Package remote implements a provider whose algorithm catalog lives behind
// an HTTP service. The catalog is fetched on every refresh; algorithm runs
// are forwarded to the service. Requests are authenticated with OAuth2
// client credentials when a token endpoint is configured, and throttled with
// a client-side rate limiter.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	ihttp "github.com/cecil-the-coder/geoprocessing-kit/internal/http"
	"github.com/cecil-the-coder/geoprocessing-kit/pkg/logging"
	"github.com/cecil-the-coder/geoprocessing-kit/pkg/provider"
	"github.com/cecil-the-coder/geoprocessing-kit/pkg/types"
)

const (
	defaultTimeout           = 30 * time.Second
	defaultRequestsPerSecond = 4
	defaultBurst             = 2
)

// catalogEntry is one algorithm as described by the remote catalog endpoint.
type catalogEntry struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Group       string         `json:"group"`
	Params      map[string]any `json:"params"`
}

// Provider fetches its algorithms from a remote catalog service.
type Provider struct {
	*provider.Base

	baseURL string
	client  *ihttp.Client
	limiter *rate.Limiter
	timeout time.Duration
	log     zerolog.Logger

	// cancel tears down the token source context on Unload.
	cancel context.CancelFunc
}

// New creates a remote provider from config. BaseURL is required. When
// TokenURL is set the provider authenticates with OAuth2 client credentials;
// the client secret may be supplied indirectly through ClientSecretEnv.
func New(config types.ProviderConfig) (*Provider, error) {
	id := config.ID
	if id == "" {
		id = "remote"
	}
	if config.BaseURL == "" {
		return nil, types.NewProviderError(id, types.ErrCodeInvalidConfig, "remote provider requires base_url")
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	rps := config.RequestsPerSecond
	if rps == 0 {
		rps = defaultRequestsPerSecond
	}
	burst := config.Burst
	if burst == 0 {
		burst = defaultBurst
	}

	ctx, cancel := context.WithCancel(context.Background())

	var transport http.RoundTripper
	if config.TokenURL != "" {
		secret := config.ClientSecret
		if secret == "" && config.ClientSecretEnv != "" {
			secret = os.Getenv(config.ClientSecretEnv)
		}
		if config.ClientID == "" || secret == "" {
			cancel()
			return nil, types.NewProviderError(id, types.ErrCodeInvalidConfig,
				"remote provider with token_url requires client_id and client_secret")
		}
		cc := clientcredentials.Config{
			ClientID:     config.ClientID,
			ClientSecret: secret,
			TokenURL:     config.TokenURL,
			Scopes:       config.Scopes,
		}
		transport = &oauth2.Transport{Source: cc.TokenSource(ctx)}
	}

	name := config.Name
	if name == "" {
		name = "Remote catalog"
	}

	p := &Provider{
		baseURL: config.BaseURL,
		client: ihttp.NewClient(ihttp.Config{
			Timeout:   timeout,
			UserAgent: "geoprocessing-kit",
			Transport: transport,
		}),
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		timeout: timeout,
		log:     logging.GetLogger("provider." + id),
		cancel:  cancel,
	}
	p.Base = provider.NewBase(provider.Config{
		ID:               id,
		Name:             name,
		LongName:         config.LongName,
		Description:      config.Description,
		VectorExtensions: []string{"gpkg", "geojson"},
		RasterExtensions: []string{"tif"},
		NonFileOutputs:   true,
	})
	p.Base.SetLoader(p)
	return p, nil
}

// CanBeActivated reports whether the catalog endpoint is configured.
func (p *Provider) CanBeActivated() bool {
	return p.baseURL != ""
}

// Unload releases the token source.
func (p *Provider) Unload() {
	p.cancel()
}

// LoadAlgorithms fetches the catalog and registers one algorithm per entry.
func (p *Provider) LoadAlgorithms(add provider.AddAlgorithmFunc) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	var entries []catalogEntry
	if err := p.client.GetJSON(ctx, p.baseURL+"/algorithms", &entries); err != nil {
		return types.NewNetworkError(p.ID(), err).WithOperation("fetch_catalog")
	}

	for _, entry := range entries {
		add(&remoteAlgorithm{entry: entry, provider: p})
	}
	p.log.Debug().Int("entries", len(entries)).Msg("fetched remote catalog")
	return nil
}

// invoke posts params to the service's run endpoint for an algorithm.
func (p *Provider) invoke(ctx context.Context, name string, params map[string]any) (map[string]any, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")
	header.Set("X-Request-ID", uuid.NewString())

	url := fmt.Sprintf("%s/algorithms/%s/run", p.baseURL, name)
	resp, err := p.client.Do(ctx, http.MethodPost, url, body, header)
	if err != nil {
		return nil, types.NewNetworkError(p.ID(), err).WithOperation("run").WithAlgorithm(name)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, types.NewProviderError(p.ID(), types.ErrCodeRunFailed, "remote run failed").
			WithOperation("run").WithAlgorithm(name).WithStatusCode(resp.StatusCode)
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, types.NewProviderError(p.ID(), types.ErrCodeRunFailed, "decoding remote response").
			WithOperation("run").WithAlgorithm(name).WithOriginalErr(err)
	}
	return out, nil
}

// remoteAlgorithm proxies execution to the catalog service.
type remoteAlgorithm struct {
	entry    catalogEntry
	provider *Provider
}

func (a *remoteAlgorithm) Name() string { return a.entry.Name }

func (a *remoteAlgorithm) DisplayName() string {
	if a.entry.DisplayName != "" {
		return a.entry.DisplayName
	}
	return a.entry.Name
}

func (a *remoteAlgorithm) Group() string { return a.entry.Group }

func (a *remoteAlgorithm) Validate() error {
	if a.entry.Name == "" {
		return fmt.Errorf("catalog entry has no name")
	}
	return nil
}

func (a *remoteAlgorithm) Run(ctx context.Context, params map[string]any) (map[string]any, error) {
	return a.provider.invoke(ctx, a.entry.Name, params)
}

var _ types.Algorithm = (*remoteAlgorithm)(nil)
