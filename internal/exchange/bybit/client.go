package bybit

import (
	bybit_api "github.com/bybit-exchange/bybit.go.api"
)

// Client wraps the Bybit API client for public market-data access.
type Client struct {
	httpClient *bybit_api.Client
	category   string
	testnet    bool
}

// Config holds the configuration for the Bybit client. Market-data
// endpoints are public; API credentials are optional.
type Config struct {
	APIKey    string
	APISecret string
	Category  string // "spot", "linear", "inverse"
	Testnet   bool
}

// NewClient creates a new Bybit client.
func NewClient(config Config) *Client {
	baseURL := bybit_api.MAINNET
	if config.Testnet {
		baseURL = bybit_api.TESTNET
	}

	category := config.Category
	if category == "" {
		category = "spot"
	}

	return &Client{
		httpClient: bybit_api.NewBybitHttpClient(
			config.APIKey,
			config.APISecret,
			bybit_api.WithBaseURL(baseURL),
		),
		category: category,
		testnet:  config.Testnet,
	}
}

// IsTestnet returns whether the client is configured for testnet.
func (c *Client) IsTestnet() bool {
	return c.testnet
}
