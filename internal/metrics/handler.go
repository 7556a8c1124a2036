package metrics

import (
	"encoding/json"
	"net/http"

	dto "github.com/prometheus/client_model/go"
)

// Summary is the JSON response for the metrics summary endpoint.
type Summary struct {
	Transfers transfersInfo `json:"transfers"`
	Offers    offersInfo    `json:"offers"`
	HTTP      httpInfo      `json:"http"`
	Auth      authInfo      `json:"auth"`
	RateLimit rateLimitInfo `json:"rateLimit"`
}

type transfersInfo struct {
	Hired    float64 `json:"hired"`
	Released float64 `json:"released"`
	Left     float64 `json:"left"`
}

type offersInfo struct {
	Active   float64 `json:"active"`
	Proposed float64 `json:"proposed"`
	Accepted float64 `json:"accepted"`
	Declined float64 `json:"declined"`
}

type httpInfo struct {
	TotalRequests    float64 `json:"totalRequests"`
	AnnounceFailures float64 `json:"announceFailures"`
	NotifyFailures   float64 `json:"notifyFailures"`
}

type authInfo struct {
	Failures float64 `json:"failures"`
}

type rateLimitInfo struct {
	Rejections float64 `json:"rejections"`
}

// SummaryHandler returns an http.HandlerFunc that serves live metrics as JSON.
func (m *Metrics) SummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		families, err := m.registry.Gather()
		if err != nil {
			http.Error(w, "failed to gather metrics", http.StatusInternalServerError)
			return
		}

		fam := make(map[string]*dto.MetricFamily, len(families))
		for _, f := range families {
			fam[f.GetName()] = f
		}

		summary := Summary{
			Transfers: transfersInfo{
				Hired:    sumCounterWithLabel(fam["transferdesk_transfers_total"], "action", "hired"),
				Released: sumCounterWithLabel(fam["transferdesk_transfers_total"], "action", "released"),
				Left:     sumCounterWithLabel(fam["transferdesk_transfers_total"], "action", "left"),
			},
			Offers: offersInfo{
				Active:   sumGauge(fam["transferdesk_offers_active"]),
				Proposed: sumCounterWithLabel(fam["transferdesk_offer_outcomes_total"], "outcome", "proposed"),
				Accepted: sumCounterWithLabel(fam["transferdesk_offer_outcomes_total"], "outcome", "accepted"),
				Declined: sumCounterWithLabel(fam["transferdesk_offer_outcomes_total"], "outcome", "declined"),
			},
			HTTP: httpInfo{
				TotalRequests:    sumCounter(fam["transferdesk_http_requests_total"]),
				AnnounceFailures: sumCounter(fam["transferdesk_announce_failures_total"]),
				NotifyFailures:   sumCounter(fam["transferdesk_notify_failures_total"]),
			},
			Auth: authInfo{
				Failures: sumCounter(fam["transferdesk_auth_failures_total"]),
			},
			RateLimit: rateLimitInfo{
				Rejections: sumCounter(fam["transferdesk_ratelimit_rejections_total"]),
			},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(summary)
	}
}

// sumCounter totals all samples of a counter family.
func sumCounter(f *dto.MetricFamily) float64 {
	if f == nil {
		return 0
	}
	var total float64
	for _, metric := range f.GetMetric() {
		total += metric.GetCounter().GetValue()
	}
	return total
}

// sumCounterWithLabel totals samples whose label matches the given value.
func sumCounterWithLabel(f *dto.MetricFamily, label, value string) float64 {
	if f == nil {
		return 0
	}
	var total float64
	for _, metric := range f.GetMetric() {
		for _, lp := range metric.GetLabel() {
			if lp.GetName() == label && lp.GetValue() == value {
				total += metric.GetCounter().GetValue()
			}
		}
	}
	return total
}

// sumGauge totals all samples of a gauge family.
func sumGauge(f *dto.MetricFamily) float64 {
	if f == nil {
		return 0
	}
	var total float64
	for _, metric := range f.GetMetric() {
		total += metric.GetGauge().GetValue()
	}
	return total
}
