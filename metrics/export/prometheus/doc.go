// Package prometheus exposes engine counters through client_golang. Series
// are named goaccount_*_total; Authenticate latency is exported as
// goaccount_authenticate_latency_seconds.
//
// The Exporter is a prometheus.Collector reading engine snapshots at scrape
// time. Handler serves a private registry; Register adds the collector to
// any other registry.
package prometheus
