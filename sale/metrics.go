// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sale

import "github.com/luxfi/metric"

type metrics struct {
	numPurchases metric.Counter
	amountRaised metric.Counter
}

func newMetrics(metric.Registerer) (*metrics, error) {
	return &metrics{
		numPurchases: metric.NewCounter(metric.CounterOpts{
			Namespace: "sale",
			Name:      "purchases",
			Help:      "Number of successful token purchases",
		}),
		amountRaised: metric.NewCounter(metric.CounterOpts{
			Namespace: "sale",
			Name:      "amount_raised",
			Help:      "Native units raised by the sale",
		}),
	}, nil
}
