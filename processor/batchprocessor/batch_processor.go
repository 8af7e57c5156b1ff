// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package batchprocessor coalesces incoming batches and forwards them
// downstream once either the configured size is reached or the configured
// timeout expires, whichever comes first.
package batchprocessor // import "github.com/signalpipe/signalpipe/processor/batchprocessor"

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/internal/obsreport"
	"github.com/signalpipe/signalpipe/model"
)

var errShutdown = errors.New("batch processor is shut down")

// All accumulation happens on the single processing goroutine, so the pending
// slice needs no lock.
type batchProcessor struct {
	logger       *zap.Logger
	nextConsumer consumer.Records
	obsrep       *obsreport.Processor

	sendBatchSize int
	timeout       time.Duration

	timer   *time.Timer
	newItem chan model.Batch

	signal  model.Signal
	pending []model.Record

	shutdownC  chan struct{}
	goroutines sync.WaitGroup
}

var _ component.Processor = (*batchProcessor)(nil)

func newBatchProcessor(cfg *Config, set component.CreateSettings, nextConsumer consumer.Records) *batchProcessor {
	return &batchProcessor{
		logger:        set.Logger,
		nextConsumer:  nextConsumer,
		obsrep:        obsreport.NewProcessor(cfg.ID()),
		sendBatchSize: int(cfg.SendBatchSize),
		timeout:       cfg.Timeout,
		newItem:       make(chan model.Batch, 1),
		shutdownC:     make(chan struct{}),
	}
}

func (bp *batchProcessor) Capabilities() consumer.Capabilities {
	return consumer.Capabilities{MutatesData: true}
}

// Start launches the processing goroutine.
func (bp *batchProcessor) Start(context.Context, component.Host) error {
	bp.goroutines.Add(1)
	go bp.startProcessingCycle()
	return nil
}

// Shutdown flushes whatever has accumulated and stops the processing
// goroutine. The orchestrator stops upstream components first, so no new
// batches arrive while draining.
func (bp *batchProcessor) Shutdown(context.Context) error {
	close(bp.shutdownC)
	bp.goroutines.Wait()
	return nil
}

func (bp *batchProcessor) ConsumeRecords(_ context.Context, batch model.Batch) error {
	// Refuse new batches once shutdown has begun; without the guard a send
	// with no processing goroutine left would block forever.
	select {
	case <-bp.shutdownC:
		return errShutdown
	default:
	}
	select {
	case bp.newItem <- batch:
		return nil
	case <-bp.shutdownC:
		return errShutdown
	}
}

func (bp *batchProcessor) startProcessingCycle() {
	defer bp.goroutines.Done()
	bp.timer = time.NewTimer(bp.timeout)
	for {
		select {
		case batch := <-bp.newItem:
			bp.processBatch(batch)
		case <-bp.timer.C:
			if len(bp.pending) > 0 {
				bp.sendItems(obsreport.TriggerTimeout)
			}
			bp.resetTimer()
		case <-bp.shutdownC:
		DONE:
			for {
				select {
				case batch := <-bp.newItem:
					bp.processBatch(batch)
				default:
					break DONE
				}
			}
			for len(bp.pending) > 0 {
				bp.sendItems(obsreport.TriggerShutdown)
			}
			return
		}
	}
}

func (bp *batchProcessor) processBatch(batch model.Batch) {
	if batch.Len() == 0 {
		return
	}
	bp.signal = batch.Signal()
	bp.pending = append(bp.pending, batch.Records()...)
	for len(bp.pending) >= bp.sendBatchSize {
		bp.timer.Stop()
		bp.sendItems(obsreport.TriggerSize)
		bp.resetTimer()
	}
}

// sendItems sends at most sendBatchSize records downstream, leaving any
// remainder accumulating for the next trigger.
func (bp *batchProcessor) sendItems(trigger string) {
	n := len(bp.pending)
	if n > bp.sendBatchSize {
		n = bp.sendBatchSize
	}
	records := make([]model.Record, n)
	copy(records, bp.pending)
	remaining := copy(bp.pending, bp.pending[n:])
	bp.pending = bp.pending[:remaining]

	bp.obsrep.BatchSent(n, trigger)
	if err := bp.nextConsumer.ConsumeRecords(context.Background(), model.NewBatchFromRecords(bp.signal, records)); err != nil {
		bp.logger.Warn("Failed to send batch downstream", zap.Error(err))
	}
}

func (bp *batchProcessor) resetTimer() {
	bp.timer.Reset(bp.timeout)
}
