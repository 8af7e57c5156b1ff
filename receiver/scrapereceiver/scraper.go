// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package scrapereceiver periodically pulls metrics from Prometheus
// exposition endpoints and converts them into metric records.
package scrapereceiver // import "github.com/signalpipe/signalpipe/receiver/scrapereceiver"

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/internal/obsreport"
	"github.com/signalpipe/signalpipe/model"
)

type scrapeReceiver struct {
	cfg          *Config
	logger       *zap.Logger
	nextConsumer consumer.Records
	obsrep       *obsreport.Receiver

	client    *http.Client
	resources map[string]*model.Resource

	done chan struct{}
	wg   sync.WaitGroup
}

func newReceiver(cfg *Config, set component.CreateSettings, nextConsumer consumer.Records) *scrapeReceiver {
	resources := make(map[string]*model.Resource, len(cfg.Targets))
	for _, target := range cfg.Targets {
		attrs := make(map[string]string, len(cfg.Labels)+1)
		for k, v := range cfg.Labels {
			attrs[k] = v
		}
		attrs["scrape.target"] = target
		resources[target] = model.NewResource(attrs)
	}
	return &scrapeReceiver{
		cfg:          cfg,
		logger:       set.Logger,
		nextConsumer: nextConsumer,
		obsrep:       obsreport.NewReceiver(cfg.ID()),
		resources:    resources,
		done:         make(chan struct{}),
	}
}

// Start begins the periodic scrape loop.
func (r *scrapeReceiver) Start(context.Context, component.Host) error {
	r.client = &http.Client{}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.cfg.CollectionInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.scrapeAll()
			case <-r.done:
				return
			}
		}
	}()
	return nil
}

// Shutdown stops the scrape loop and waits for in-flight scrapes.
func (r *scrapeReceiver) Shutdown(context.Context) error {
	close(r.done)
	r.wg.Wait()
	return nil
}

// scrapeAll scrapes every target concurrently so one slow or failing target
// does not delay the others.
func (r *scrapeReceiver) scrapeAll() {
	var wg sync.WaitGroup
	for _, target := range r.cfg.Targets {
		wg.Add(1)
		go func(target string) {
			defer wg.Done()
			r.scrapeTarget(target)
		}(target)
	}
	wg.Wait()
}

func (r *scrapeReceiver) scrapeTarget(target string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.ScrapeTimeout)
	defer cancel()

	records, err := r.fetch(ctx, target)
	if err != nil {
		r.obsrep.ScrapeError()
		r.logger.Warn("Scrape failed", zap.String("target", target), zap.Error(err))
		return
	}
	if len(records) == 0 {
		return
	}

	batch := model.NewBatchFromRecords(model.MetricsSignal, records)
	if err := r.nextConsumer.ConsumeRecords(ctx, batch); err != nil {
		r.obsrep.RefusedRecords(batch.Len())
		r.logger.Warn("Failed to consume scraped records", zap.String("target", target), zap.Error(err))
		return
	}
	r.obsrep.AcceptedRecords(batch.Len())
}

func (r *scrapeReceiver) fetch(ctx context.Context, target string) ([]model.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned HTTP status %s", resp.Status)
	}

	samples, err := parseExposition(resp.Body, time.Now())
	if err != nil {
		return nil, err
	}

	res := r.resources[target]
	records := make([]model.Record, 0, len(samples))
	for _, sample := range samples {
		records = append(records, model.NewMetricRecord(sample, res))
	}
	return records, nil
}
