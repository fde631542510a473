package opensearch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mstgnz/idpay/infra/config"
	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"go.uber.org/zap"
)

const (
	indexPrefix     = "idpay-"
	systemLogsIndex = indexPrefix + "system-logs"
)

// Client wraps the OpenSearch client
type Client struct {
	client  *opensearch.Client
	enabled bool
}

// NewClient creates a new OpenSearch client and prepares the log indices when logging is enabled
func NewClient(cfg *config.AppConfig) (*Client, error) {
	opensearchConfig := opensearch.Config{
		Addresses:     []string{cfg.OpenSearchURL},
		MaxRetries:    3,
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			return time.Duration(i) * 100 * time.Millisecond
		},
	}

	if cfg.OpenSearchUser != "" && cfg.OpenSearchPass != "" {
		opensearchConfig.Username = cfg.OpenSearchUser
		opensearchConfig.Password = cfg.OpenSearchPass
	}

	client, err := opensearch.NewClient(opensearchConfig)
	if err != nil {
		return nil, err
	}

	osClient := &Client{
		client:  client,
		enabled: cfg.EnableLogging,
	}

	if osClient.enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := osClient.setupIndices(ctx); err != nil {
			zap.L().Warn("failed to setup opensearch indices", zap.Error(err))
		}
	}

	return osClient, nil
}

// GetClient returns the underlying OpenSearch client
func (c *Client) GetClient() *opensearch.Client {
	return c.client
}

// IsEnabled returns whether OpenSearch logging is enabled
func (c *Client) IsEnabled() bool {
	return c != nil && c.enabled
}

// GetLogIndexName returns the payment log index of a merchant's provider
func (c *Client) GetLogIndexName(merchantID, provider string) string {
	if merchantID == "" {
		return indexPrefix + provider + "-logs"
	}
	return indexPrefix + strings.ToLower(merchantID) + "-" + provider + "-logs"
}

func (c *Client) setupIndices(ctx context.Context) error {
	for _, indexName := range []string{c.GetLogIndexName("", "idpay"), systemLogsIndex} {
		exists, err := c.indexExists(ctx, indexName)
		if err != nil {
			return fmt.Errorf("checking index %s: %w", indexName, err)
		}
		if exists {
			continue
		}

		mapping := paymentLogMapping
		if indexName == systemLogsIndex {
			mapping = systemLogMapping
		}
		if err := c.createIndex(ctx, indexName, mapping); err != nil {
			return fmt.Errorf("creating index %s: %w", indexName, err)
		}
		zap.L().Info("created opensearch index", zap.String("index", indexName))
	}

	return nil
}

func (c *Client) indexExists(ctx context.Context, indexName string) (bool, error) {
	req := opensearchapi.IndicesExistsRequest{
		Index: []string{indexName},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	return res.StatusCode == 200, nil
}

func (c *Client) createIndex(ctx context.Context, indexName, mapping string) error {
	req := opensearchapi.IndicesCreateRequest{
		Index: indexName,
		Body:  strings.NewReader(mapping),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index creation error: %s", res.String())
	}

	return nil
}

const paymentLogMapping = `{
	"mappings": {
		"properties": {
			"timestamp": {"type": "date", "format": "strict_date_optional_time||epoch_millis"},
			"merchant_id": {"type": "keyword"},
			"provider": {"type": "keyword"},
			"action": {"type": "keyword"},
			"request_id": {"type": "keyword"},
			"client_ip": {"type": "ip"},
			"request": {
				"type": "object",
				"properties": {"body": {"type": "text"}}
			},
			"response": {
				"type": "object",
				"properties": {
					"status_code": {"type": "integer"},
					"body": {"type": "text"},
					"processing_time_ms": {"type": "integer"}
				}
			},
			"payment_info": {
				"type": "object",
				"properties": {
					"payment_id": {"type": "keyword"},
					"order_id": {"type": "keyword"},
					"track_id": {"type": "keyword"},
					"amount": {"type": "long"},
					"status": {"type": "keyword"}
				}
			},
			"error": {
				"type": "object",
				"properties": {
					"kind": {"type": "keyword"},
					"code": {"type": "keyword"},
					"message": {"type": "text"}
				}
			}
		}
	},
	"settings": {"number_of_shards": 1, "number_of_replicas": 0}
}`

const systemLogMapping = `{
	"mappings": {
		"properties": {
			"timestamp": {"type": "date"},
			"level": {"type": "keyword"},
			"component": {"type": "keyword"},
			"message": {"type": "text"},
			"merchant_id": {"type": "keyword"},
			"provider": {"type": "keyword"},
			"request_id": {"type": "keyword"},
			"error": {"type": "text"}
		}
	},
	"settings": {"number_of_shards": 1, "number_of_replicas": 0}
}`
