package explorer

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

const (
	DefaultBaseURL = "https://api.etherscan.io/v2/api"

	statusOK = "1"

	maxResponseBytes = 4 << 20
)

var (
	// ErrNotOK is returned when the explorer answers with status "0".
	ErrNotOK = errors.New("explorer returned an error status")
	// ErrUnavailable is returned while the breaker is open.
	ErrUnavailable = errors.New("explorer temporarily unavailable")
)

type Config struct {
	BaseURL string
	APIKey  string
	ChainID int64
	Timeout time.Duration

	// breaker
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
	HalfOpenRequests    uint32
}

// abandonedError marks a request whose caller gave up. It says nothing about the
// explorer's health and does not count against the breaker.
type abandonedError struct {
	err error
}

func (e *abandonedError) Error() string { return e.err.Error() }

func (e *abandonedError) Unwrap() error { return e.err }

// Client talks to an Etherscan compatible explorer API.
type Client struct {
	config  Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// GasOracle is the gastracker/gasoracle result, all values in gwei.
type GasOracle struct {
	LastBlock       string `json:"LastBlock"`
	SafeGasPrice    string `json:"SafeGasPrice"`
	ProposeGasPrice string `json:"ProposeGasPrice"`
	FastGasPrice    string `json:"FastGasPrice"`
	SuggestBaseFee  string `json:"suggestBaseFee"`
	GasUsedRatio    string `json:"gasUsedRatio"`
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.ConsecutiveFailures == 0 {
		config.ConsecutiveFailures = 5
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = 30 * time.Second
	}
	if config.HalfOpenRequests == 0 {
		config.HalfOpenRequests = 1
	}

	threshold := config.ConsecutiveFailures

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "explorer",
		MaxRequests: config.HalfOpenRequests,
		Timeout:     config.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			var abandoned *abandonedError
			return err == nil || errors.As(err, &abandoned)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Explorer circuit breaker changed state")
		},
	})

	return &Client{
		config:  config,
		http:    &http.Client{Timeout: config.Timeout},
		breaker: breaker,
	}
}

// GasOracle fetches the current gas price levels.
func (c *Client) GasOracle(ctx context.Context) (*GasOracle, error) {
	params := url.Values{}
	params.Set("module", "gastracker")
	params.Set("action", "gasoracle")

	var oracle GasOracle
	if err := c.get(ctx, params, &oracle); err != nil {
		return nil, errors.Wrap(err, "failed to fetch gas oracle")
	}

	return &oracle, nil
}

// ContractABI fetches the verified ABI JSON of a contract.
func (c *Client) ContractABI(ctx context.Context, address common.Address) (string, error) {
	params := url.Values{}
	params.Set("module", "contract")
	params.Set("action", "getabi")
	params.Set("address", address.Hex())

	// result is the ABI encoded as a JSON string
	var raw string
	if err := c.get(ctx, params, &raw); err != nil {
		return "", errors.Wrapf(err, "failed to fetch abi of %s", address.Hex())
	}

	return raw, nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	if c.config.ChainID > 0 {
		params.Set("chainid", strconv.FormatInt(c.config.ChainID, 10))
	}
	if c.config.APIKey != "" {
		params.Set("apikey", c.config.APIKey)
	}

	endpoint := c.config.BaseURL + "?" + params.Encode()

	body, err := c.breaker.Execute(func() (interface{}, error) {
		b, err := c.fetch(ctx, endpoint)
		if err != nil && ctx.Err() != nil {
			return nil, &abandonedError{err: err}
		}

		return b, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return errors.Wrap(ErrUnavailable, err.Error())
		}

		return err
	}

	var env envelope
	if err := json.Unmarshal(body.([]byte), &env); err != nil {
		return errors.Wrap(err, "failed to decode explorer response")
	}

	if env.Status != statusOK {
		// on error the result holds a human readable string
		var detail string
		_ = json.Unmarshal(env.Result, &detail)

		return errors.Wrapf(ErrNotOK, "%s: %s", env.Message, detail)
	}

	if err := json.Unmarshal(env.Result, out); err != nil {
		return errors.Wrap(err, "failed to decode explorer result")
	}

	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build explorer request")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read explorer response")
	}

	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("explorer responded with status %d", res.StatusCode)
	}

	return body, nil
}
