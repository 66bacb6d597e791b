package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"cryptotracker/src/config"
	"cryptotracker/src/utils/requests"
)

// MaxPerPage is the largest page size accepted by the markets endpoint and
// the largest id batch the price refresh sends per request.
const MaxPerPage = 250

type CoinGeckoServiceClientI interface {
	GetSimplePrice(ctx context.Context, ids []string, vsCurrency string) (SimplePriceResponse, error)
	GetMarkets(ctx context.Context, vsCurrency string, perPage, page int) ([]Market, error)
}

type CoinGeckoServiceClient struct {
	API     *requests.ExternalAPIService
	BaseURL string
}

// NewClient creates a new instance of CoinGeckoServiceClient. httpClient may be
// nil, in which case one bounded by the configured timeout is used.
func NewClient(cfg *config.Config, httpClient *http.Client) *CoinGeckoServiceClient {
	cgCfg := cfg.ExternalClients.CoinGecko
	api := requests.NewExternalAPIService(httpClient, cgCfg.Timeout)
	if cgCfg.APIKey != "" {
		api.SetHeader("x-cg-demo-api-key", cgCfg.APIKey)
	}
	return &CoinGeckoServiceClient{
		API:     api,
		BaseURL: strings.TrimRight(cgCfg.BaseURL, "/"),
	}
}

// GetSimplePrice fetches the current price of every id in one request.
func (c *CoinGeckoServiceClient) GetSimplePrice(ctx context.Context, ids []string, vsCurrency string) (SimplePriceResponse, error) {
	if len(ids) == 0 {
		return SimplePriceResponse{}, nil
	}
	endpoint := fmt.Sprintf("%s/simple/price", c.BaseURL)

	params := url.Values{}
	params.Add("ids", strings.Join(ids, ","))
	params.Add("vs_currencies", vsCurrency)

	var response SimplePriceResponse
	if err := c.API.GetJSON(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// GetMarkets fetches one page of coins ordered by market capitalization.
func (c *CoinGeckoServiceClient) GetMarkets(ctx context.Context, vsCurrency string, perPage, page int) ([]Market, error) {
	if perPage <= 0 || perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page <= 0 {
		page = 1
	}
	endpoint := fmt.Sprintf("%s/coins/markets", c.BaseURL)

	params := url.Values{}
	params.Add("vs_currency", vsCurrency)
	params.Add("order", "market_cap_desc")
	params.Add("per_page", strconv.Itoa(perPage))
	params.Add("page", strconv.Itoa(page))
	params.Add("sparkline", "false")

	var markets []Market
	if err := c.API.GetJSON(ctx, endpoint, params, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}
