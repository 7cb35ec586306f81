// The arrowtrace command replays a PUT/GET/DEL trace against an
// arrowtable.Table, optionally watching a directory or a Kafka topic
// for more traces, exposing Prometheus metrics, and forwarding
// mismatches to Splunk and periodic table snapshots to InfluxDB.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/aristanetworks/glog"
	"github.com/arrowtable/arrowtable/arrowhash"
	"github.com/arrowtable/arrowtable/arrowmetrics"
	"github.com/arrowtable/arrowtable/arrowsink"
	"github.com/arrowtable/arrowtable/arrowtable"
	"github.com/arrowtable/arrowtable/arrowtrace"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"
)

func exitWithError(s string) {
	fmt.Fprintln(os.Stderr, s)
	os.Exit(1)
}

func main() {
	capacity := flag.Int("capacity", 1024, "Table capacity")
	tracePath := flag.String("trace", "", "Path to a trace file to replay before watching for more")
	metricsAddr := flag.String("metrics-addr", "", "Address to serve /metrics on (empty disables)")
	configPath := flag.String("config", "", "Path to a YAML sink config")
	watchDir := flag.String("watch-dir", "", "Directory to watch for new trace files (empty disables)")

	flag.Parse()

	if *capacity <= 0 {
		exitWithError("-capacity must be positive")
	}

	tbl, err := arrowtable.New[int, int](*capacity, arrowhash.Int(arrowhash.NewSeed()), arrowhash.Equal[int])
	if err != nil {
		glog.Fatal(err)
	}

	var cfg SinkConfig
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			glog.Fatalf("reading config %q: %s", *configPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			glog.Fatalf("parsing config %q: %s", *configPath, err)
		}
	}

	var splunk *arrowsink.SplunkSink
	if cfg.Splunk != nil {
		splunk = arrowsink.NewSplunkSink(cfg.Splunk.URLs, cfg.Splunk.Token, cfg.Splunk.Index, cfg.Splunk.InsecureSkipVerify)
	}

	host, _ := os.Hostname()
	replay := func(path string) error { return replayFile(tbl, path, host, splunk) }

	if *tracePath != "" {
		if err := replay(*tracePath); err != nil {
			glog.Fatalf("replaying trace %q: %s", *tracePath, err)
		}
	}

	reg := prometheus.NewRegistry()
	inst := arrowmetrics.NewInstrumented[int, int](tbl, reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		<-sig
		cancel()
	}()

	var g errgroup.Group

	if *metricsAddr != "" {
		srv := arrowmetrics.NewServer(*metricsAddr, reg, glogLogger{})
		g.Go(srv.Run)
	}

	if *watchDir != "" {
		watcher, err := arrowsink.NewTraceFileWatcher(*watchDir, glogLogger{}, replay)
		if err != nil {
			glog.Fatalf("watching %q: %s", *watchDir, err)
		}
		defer watcher.Close()
	}

	if cfg.Kafka != nil {
		client, err := arrowsink.NewKafkaClient(cfg.Kafka.Brokers)
		if err != nil {
			glog.Fatalf("dialing kafka brokers %v: %s", cfg.Kafka.Brokers, err)
		}
		source, err := arrowsink.NewKafkaTraceSource(client, cfg.Kafka.Topic, glogLogger{})
		if err != nil {
			glog.Fatalf("creating kafka trace source: %s", err)
		}
		stop := make(chan struct{})
		go func() { <-ctx.Done(); close(stop) }()
		g.Go(func() error {
			defer source.Close()
			return source.Run(stop, func(line string) error {
				rec, err := arrowtrace.ParseLine(line)
				if err != nil {
					return err
				}
				_, err = arrowtrace.Replay(tbl, []arrowtrace.Record{rec})
				return err
			})
		})
	}

	if cfg.Influx != nil {
		exporter, err := arrowsink.NewInfluxExporter(cfg.Influx.Addr, cfg.Influx.Database, cfg.Influx.Measurement)
		if err != nil {
			glog.Fatalf("connecting to influx at %q: %s", cfg.Influx.Addr, err)
		}
		interval := time.Duration(cfg.Influx.IntervalSec) * time.Second
		if interval <= 0 {
			interval = 30 * time.Second
		}
		g.Go(func() error {
			defer exporter.Close()
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					snap := arrowsink.TableSnapshot{
						Len:          inst.Len(),
						Cap:          inst.Cap(),
						MaxWindow:    inst.MaxWindowLen(),
						DisplacedSum: inst.DisplacedCount(),
					}
					inst.ObserveWindowLength(snap.MaxWindow)
					if err := exporter.Write("arrowtrace", snap); err != nil {
						glog.Errorf("influx export: %s", err)
					}
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		exitWithError(err.Error())
	}
}

// replayFile replays path against tbl and, if splunk is configured,
// forwards any divergence as a MisuseReport.
func replayFile(tbl *arrowtable.Table[int, int], path, host string, splunk *arrowsink.SplunkSink) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	records, err := arrowtrace.ParseAll(f)
	if err != nil {
		return err
	}
	report, err := arrowtrace.Replay(tbl, records)
	if err != nil {
		return err
	}
	if !report.OK() {
		glog.Errorf("trace %q diverged at line %d: %s", path, report.Mismatch.Record.Line, report.Mismatch.Diff)
		if splunk != nil {
			if err := splunk.Send(arrowsink.MisuseReport{
				Host:   host,
				Line:   report.Mismatch.Record.Line,
				Reason: report.Mismatch.Diff,
			}); err != nil {
				glog.Errorf("forwarding mismatch to splunk: %s", err)
			}
		}
	}
	return nil
}

// glogLogger adapts the package-level glog functions to logger.Logger
// so arrowsink and arrowmetrics components can log without depending
// on glog directly.
type glogLogger struct{}

func (glogLogger) Info(args ...interface{})                  { glog.Info(args...) }
func (glogLogger) Infof(format string, args ...interface{})  { glog.Infof(format, args...) }
func (glogLogger) Error(args ...interface{})                 { glog.Error(args...) }
func (glogLogger) Errorf(format string, args ...interface{}) { glog.Errorf(format, args...) }
func (glogLogger) Fatal(args ...interface{})                 { glog.Fatal(args...) }
func (glogLogger) Fatalf(format string, args ...interface{}) { glog.Fatalf(format, args...) }
