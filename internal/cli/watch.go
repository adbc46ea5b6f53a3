package cli

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/joist/internal/validator"
	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/ports"
)

// DefaultWatchInterval is how often Watch polls the file.
const DefaultWatchInterval = 500 * time.Millisecond

// ReadDocument loads a serialized document from a JSON file.
func ReadDocument(path string) (domain.SerializedNodes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var doc domain.SerializedNodes
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// CheckDocument reads and validates a document file.
func CheckDocument(path string, resolver ports.Resolver) (domain.SerializedNodes, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	if err := validator.ValidateDocument(doc, resolver); err != nil {
		return doc, err
	}
	return doc, nil
}

// Watch calls onChange with the validation result of path every time its
// content changes, starting with the current content. It returns when ctx is
// done.
func Watch(ctx context.Context, path string, interval time.Duration, resolver ports.Resolver, logger *slog.Logger, onChange func(domain.SerializedNodes, error)) error {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	logger.Info("Starting Watcher", "path", path, "interval", interval)

	var last [md5.Size]byte
	first := true
	check := func() {
		data, err := os.ReadFile(path)
		if err != nil {
			if first {
				first = false
				onChange(nil, fmt.Errorf("failed to read %s: %w", path, err))
			}
			return
		}
		sum := md5.Sum(data)
		if !first && sum == last {
			return
		}
		if !first {
			logger.Info("Change detected", "path", path)
		}
		first = false
		last = sum
		onChange(CheckDocument(path, resolver))
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping watcher", "path", path)
			return ctx.Err()
		case <-ticker.C:
			check()
		}
	}
}
