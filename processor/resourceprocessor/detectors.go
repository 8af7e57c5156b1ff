// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package resourceprocessor // import "github.com/signalpipe/signalpipe/processor/resourceprocessor"

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"
)

// envResourceVar holds resource attributes as a comma separated list of
// key=value pairs.
const envResourceVar = "SIGNALPIPE_RESOURCE"

// detector discovers attributes of the environment the collector runs in.
type detector interface {
	Detect(ctx context.Context) (map[string]string, error)
}

func newDetector(name string, cfg *Config) (detector, error) {
	switch name {
	case detectorEnv:
		return envDetector{}, nil
	case detectorSystem:
		return systemDetector{}, nil
	case detectorMetadata:
		return &metadataDetector{endpoint: cfg.MetadataEndpoint}, nil
	default:
		return nil, fmt.Errorf("unknown detector %q", name)
	}
}

type envDetector struct{}

func (envDetector) Detect(context.Context) (map[string]string, error) {
	raw := strings.TrimSpace(os.Getenv(envResourceVar))
	if raw == "" {
		return nil, nil
	}
	attrs := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			return nil, fmt.Errorf("invalid %s entry %q, expected key=value", envResourceVar, pair)
		}
		attrs[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return attrs, nil
}

type systemDetector struct{}

func (systemDetector) Detect(context.Context) (map[string]string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("failed to get hostname: %w", err)
	}
	return map[string]string{
		"host.name": hostname,
		"os.type":   runtime.GOOS,
	}, nil
}

// metadataDetector queries an instance metadata endpoint returning a flat
// JSON object of string attributes.
type metadataDetector struct {
	endpoint string
}

func (d *metadataDetector) Detect(ctx context.Context) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata endpoint returned HTTP status %s", resp.Status)
	}
	var attrs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&attrs); err != nil {
		return nil, fmt.Errorf("failed to decode metadata response: %w", err)
	}
	return attrs, nil
}
