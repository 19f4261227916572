package database

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"tradingview-telegram-relay/internal/types"
)

// SaveMetrics upserts every sample in one transaction.
func (s *Store) SaveMetrics(samples []types.MetricSample) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT OR REPLACE INTO metrics (metric_name, labels, metric_value, updated_at)
	VALUES (?, ?, ?, CURRENT_TIMESTAMP);`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare metric upsert: %w", err)
	}
	defer stmt.Close()

	for _, sample := range samples {
		labels, err := encodeLabels(sample.Labels)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(sample.Name, labels, sample.Value); err != nil {
			return fmt.Errorf("failed to save metric %s: %w", sample.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit metrics: %w", err)
	}
	log.Debugf("Saved %d metric samples", len(samples))
	return nil
}

// LoadMetrics returns every stored sample.
func (s *Store) LoadMetrics() ([]types.MetricSample, error) {
	query := `SELECT metric_name, labels, metric_value FROM metrics ORDER BY metric_name, labels;`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	var samples []types.MetricSample
	for rows.Next() {
		var sample types.MetricSample
		var labels string
		if err := rows.Scan(&sample.Name, &labels, &sample.Value); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(labels), &sample.Labels); err != nil {
			log.Warnf("Skipping metric %s with unreadable labels %q: %v", sample.Name, labels, err)
			continue
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metrics: %w", err)
	}
	return samples, nil
}

// encodeLabels renders labels as JSON; map keys are sorted so equal label sets
// always produce the same primary key.
func encodeLabels(labels map[string]string) (string, error) {
	if len(labels) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(labels)
	if err != nil {
		return "", fmt.Errorf("failed to encode labels: %w", err)
	}
	return string(b), nil
}
