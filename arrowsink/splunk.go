package arrowsink

import (
	"crypto/tls"
	"net/http"
	"time"

	hec "github.com/aristanetworks/splunk-hec-go"
	"github.com/cenkalti/backoff/v4"
)

// MisuseReport is the fact an arrowtrace replay mismatch produces: the
// host it was observed on, the trace line that diverged, and a
// human-readable explanation of the divergence (typically
// arrowtrace.Mismatch.Diff).
type MisuseReport struct {
	Host   string
	Line   int
	Reason string
}

// SplunkSink forwards MisuseReports to a Splunk HTTP Event Collector
// cluster, retrying transient failures with an exponential backoff.
type SplunkSink struct {
	cluster hec.Cluster
	index   string
}

// NewSplunkSink dials a Splunk HEC cluster. insecureSkipVerify mirrors
// the common operational shortcut of pointing at a cluster with a
// self-signed certificate; callers connecting to a properly-certified
// cluster should pass false.
func NewSplunkSink(urls []string, token, index string, insecureSkipVerify bool) *SplunkSink {
	cluster := hec.NewCluster(urls, token)
	cluster.SetHTTPClient(&http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: insecureSkipVerify},
		},
	})
	return &SplunkSink{cluster: cluster, index: index}
}

// Send writes r to Splunk, retrying up to a minute of exponential
// backoff on failure before giving up.
func (s *SplunkSink) Send(r MisuseReport) error {
	sourceType := "arrowtrace"
	source := "mismatch"
	event := &hec.Event{
		Host:       &r.Host,
		Index:      &s.index,
		Source:     &source,
		SourceType: &sourceType,
		Event: map[string]interface{}{
			"line":   r.Line,
			"reason": r.Reason,
		},
	}
	event.SetTime(time.Now())

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = time.Minute
	return backoff.Retry(func() error {
		return s.cluster.WriteEvent(event)
	}, bo)
}

