// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wallet

import "github.com/luxfi/metric"

type metrics struct {
	numSubmitted metric.Counter
	numConfirmed metric.Counter
	numRevoked   metric.Counter
	numExecuted  metric.Counter
	numCallFails metric.Counter
}

func newMetrics(metric.Registerer) (*metrics, error) {
	return &metrics{
		numSubmitted: metric.NewCounter(metric.CounterOpts{
			Namespace: "wallet",
			Name:      "transactions_submitted",
			Help:      "Number of transactions submitted",
		}),
		numConfirmed: metric.NewCounter(metric.CounterOpts{
			Namespace: "wallet",
			Name:      "confirmations",
			Help:      "Number of confirmations recorded",
		}),
		numRevoked: metric.NewCounter(metric.CounterOpts{
			Namespace: "wallet",
			Name:      "revocations",
			Help:      "Number of confirmations revoked",
		}),
		numExecuted: metric.NewCounter(metric.CounterOpts{
			Namespace: "wallet",
			Name:      "transactions_executed",
			Help:      "Number of transactions executed",
		}),
		numCallFails: metric.NewCounter(metric.CounterOpts{
			Namespace: "wallet",
			Name:      "call_failures",
			Help:      "Number of executed transactions whose downstream call failed",
		}),
	}, nil
}
