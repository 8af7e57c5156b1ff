// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package fanoutconsumer contains the consumer that fans a batch out to
// multiple pipelines. Consumers that mutate data get their own deep copy so
// sibling pipelines never observe each other's changes.
package fanoutconsumer // import "github.com/signalpipe/signalpipe/service/internal/fanoutconsumer"

import (
	"context"

	"go.uber.org/multierr"

	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/model"
)

// NewRecords wraps multiple record consumers in a single one.
func NewRecords(rcs []consumer.Records) consumer.Records {
	if len(rcs) == 1 {
		// Don't wrap if no need to do it.
		return rcs[0]
	}
	var pass, clone []consumer.Records
	for _, rc := range rcs {
		if rc.Capabilities().MutatesData {
			clone = append(clone, rc)
		} else {
			pass = append(pass, rc)
		}
	}
	// When every consumer mutates, one of them can still take the original.
	if len(pass) == 0 && len(clone) > 0 {
		pass = append(pass, clone[len(clone)-1])
		clone = clone[:len(clone)-1]
	}
	return &recordsFanout{pass: pass, clone: clone}
}

type recordsFanout struct {
	pass  []consumer.Records
	clone []consumer.Records
}

var _ consumer.Records = (*recordsFanout)(nil)

func (rfc *recordsFanout) Capabilities() consumer.Capabilities {
	return consumer.Capabilities{MutatesData: false}
}

// ConsumeRecords delivers the batch to every wrapped consumer. A failing
// consumer never prevents delivery to its siblings, the errors are combined.
func (rfc *recordsFanout) ConsumeRecords(ctx context.Context, batch model.Batch) error {
	var errs error
	for _, rc := range rfc.clone {
		errs = multierr.Append(errs, rc.ConsumeRecords(ctx, batch.Clone()))
	}
	for _, rc := range rfc.pass {
		errs = multierr.Append(errs, rc.ConsumeRecords(ctx, batch))
	}
	return errs
}
