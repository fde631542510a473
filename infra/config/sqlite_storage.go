package config

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// ErrConfigNotFound is returned when no stored configuration matches a merchant and provider
var ErrConfigNotFound = errors.New("configuration not found")

const maxBusyRetries = 3

// SQLiteStorage persists merchant gateway configurations
type SQLiteStorage struct {
	db   *sql.DB
	path string
	log  *zap.Logger
	mu   sync.Mutex
}

// NewSQLiteStorage opens (or creates) the configuration database at dbPath
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_timeout=20000&_txlock=immediate", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	storage := &SQLiteStorage{
		db:   db,
		path: dbPath,
		log:  zap.L().Named("config.sqlite"),
	}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	storage.log.Info("sqlite storage initialized", zap.String("path", dbPath))
	return storage, nil
}

func (s *SQLiteStorage) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS merchant_configs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		merchant_id TEXT NOT NULL,
		provider_name TEXT NOT NULL,
		config_data TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(merchant_id, provider_name)
	);

	CREATE INDEX IF NOT EXISTS idx_merchant_provider ON merchant_configs(merchant_id, provider_name);
	`

	_, err := s.db.Exec(query)
	return err
}

// retryOperation retries op while SQLite reports the database as busy
func (s *SQLiteStorage) retryOperation(op func() error) error {
	var lastErr error

	for attempt := 0; attempt <= maxBusyRetries; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		if !isBusy(err) {
			return err
		}

		lastErr = err
		if attempt < maxBusyRetries {
			backoff := time.Duration(10*(1<<attempt)) * time.Millisecond
			s.log.Warn("sqlite busy, retrying",
				zap.Duration("backoff", backoff),
				zap.Int("attempt", attempt+1))
			time.Sleep(backoff)
		}
	}

	return fmt.Errorf("operation failed after %d retries, last error: %w", maxBusyRetries+1, lastErr)
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// SaveMerchantConfig inserts or replaces the configuration of a merchant for a provider
func (s *SQLiteStorage) SaveMerchantConfig(merchantID, providerName string, config map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	configJSON, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return s.retryOperation(func() error {
		query := `
		INSERT INTO merchant_configs (merchant_id, provider_name, config_data, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(merchant_id, provider_name)
		DO UPDATE SET
			config_data = excluded.config_data,
			updated_at = CURRENT_TIMESTAMP
		`

		if _, err := s.db.Exec(query, merchantID, providerName, string(configJSON)); err != nil {
			return fmt.Errorf("failed to save merchant config: %w", err)
		}
		return nil
	})
}

// LoadMerchantConfig loads the configuration of a merchant for a provider
func (s *SQLiteStorage) LoadMerchantConfig(merchantID, providerName string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config map[string]string
	err := s.retryOperation(func() error {
		var configJSON string
		err := s.db.QueryRow(
			`SELECT config_data FROM merchant_configs WHERE merchant_id = ? AND provider_name = ?`,
			merchantID, providerName,
		).Scan(&configJSON)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: merchant %s, provider %s", ErrConfigNotFound, merchantID, providerName)
		}
		if err != nil {
			return fmt.Errorf("failed to load merchant config: %w", err)
		}

		return json.Unmarshal([]byte(configJSON), &config)
	})

	return config, err
}

// LoadAllMerchantConfigs returns every stored configuration keyed by merchantKey
func (s *SQLiteStorage) LoadAllMerchantConfigs() (map[string]map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs := make(map[string]map[string]string)
	err := s.retryOperation(func() error {
		rows, err := s.db.Query(`SELECT merchant_id, provider_name, config_data FROM merchant_configs ORDER BY merchant_id, provider_name`)
		if err != nil {
			return fmt.Errorf("failed to query merchant configs: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var merchantID, providerName, configJSON string
			if err := rows.Scan(&merchantID, &providerName, &configJSON); err != nil {
				return fmt.Errorf("failed to scan row: %w", err)
			}

			var config map[string]string
			if err := json.Unmarshal([]byte(configJSON), &config); err != nil {
				s.log.Warn("skipping unreadable merchant config",
					zap.String("merchant_id", merchantID),
					zap.String("provider", providerName),
					zap.Error(err))
				continue
			}
			configs[merchantKey(merchantID, providerName)] = config
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return configs, nil
}

// DeleteMerchantConfig removes the configuration of a merchant for a provider
func (s *SQLiteStorage) DeleteMerchantConfig(merchantID, providerName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.retryOperation(func() error {
		result, err := s.db.Exec(
			`DELETE FROM merchant_configs WHERE merchant_id = ? AND provider_name = ?`,
			merchantID, providerName,
		)
		if err != nil {
			return fmt.Errorf("failed to delete merchant config: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("%w: merchant %s, provider %s", ErrConfigNotFound, merchantID, providerName)
		}
		return nil
	})
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetStats returns database statistics
func (s *SQLiteStorage) GetStats() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make(map[string]any)

	var totalConfigs, merchants int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM merchant_configs").Scan(&totalConfigs); err != nil {
		return nil, fmt.Errorf("failed to count configs: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(DISTINCT merchant_id) FROM merchant_configs").Scan(&merchants); err != nil {
		return nil, fmt.Errorf("failed to count merchants: %w", err)
	}

	stats["total_configs"] = totalConfigs
	stats["unique_merchants"] = merchants
	stats["db_path"] = s.path
	if fileInfo, err := os.Stat(s.path); err == nil {
		stats["db_size_bytes"] = fileInfo.Size()
	}

	return stats, nil
}
