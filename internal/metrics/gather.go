package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// CounterValue reads one counter back from a gatherer. An empty label
// matches the first series of the family.
func CounterValue(g prometheus.Gatherer, name, label, value string) (float64, error) {
	mfs, err := g.Gather()
	if err != nil {
		return 0, fmt.Errorf("failed to gather metrics: %w", err)
	}
	return counterValue(mfs, name, label, value)
}

func counterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if label == "" || matchesLabel(metric.GetLabel(), label, value) {
				return metric.GetCounter().GetValue(), nil
			}
		}
		return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
	}
	return 0, fmt.Errorf("metric %q not found", name)
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, lp := range labels {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}
