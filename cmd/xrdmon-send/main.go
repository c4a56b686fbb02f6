// xrdmon-send emits XRootD monitoring datagrams to exercise collectors.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/lmittmann/tint"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/opensciencegrid/xrootd-monitoring-shoveler/internal/metrics"
	"github.com/opensciencegrid/xrootd-monitoring-shoveler/internal/netutil"
	"github.com/opensciencegrid/xrootd-monitoring-shoveler/internal/sendudp"
	"github.com/opensciencegrid/xrootd-monitoring-shoveler/pkg/udp"
)

var (
	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	defaultCount          = 10
	defaultMessage        = "testmessage"
	defaultWriteBuffer    = 1 << 20
	defaultMaxConcurrency = 8
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if it exists
	_ = godotenv.Load()

	countFlag := flag.IntP("count", "c", defaultCount, "number of datagrams to send per destination")
	messageFlag := flag.StringP("message", "m", defaultMessage, "payload text")
	headerFlag := flag.Bool("header", true, "prepend the 8-byte monitoring header")
	appendCounterFlag := flag.Bool("append-counter", false, "append the decimal loop index to the payload text")
	codeFlag := flag.Uint8("code", 0, "header code byte")
	advanceSeqFlag := flag.Bool("advance-seq", false, "increment the header sequence byte per packet (collector traffic keeps it at 0)")
	intervalFlag := flag.DurationP("interval", "i", 0, "delay between sends within a stream (e.g. 10ms)")
	ttlFlag := flag.Int("ttl", 0, "IPv4 time-to-live for sent datagrams (0 leaves the OS default)")
	writeBufferFlag := flag.Int("write-buffer", defaultWriteBuffer, "socket send buffer hint in bytes")
	maxConcurrencyFlag := flag.Int("max-concurrency", defaultMaxConcurrency, "maximum number of destination streams in flight")
	targetsFileFlag := flag.String("targets-file", os.Getenv("XRDMON_SEND_TARGETS_FILE"), "YAML file with additional targets")
	recordFlag := flag.String("record", os.Getenv("XRDMON_SEND_RECORD"), "append every sent datagram to this file as JSON lines")
	metricsAddrFlag := flag.String("metrics-addr", os.Getenv("XRDMON_SEND_METRICS_ADDR"), "address to serve prometheus metrics on while running")
	quietFlag := flag.BoolP("quiet", "q", false, "suppress the per-destination summary")
	verboseFlag := flag.BoolP("verbose", "v", false, "verbose mode - show debug logs")
	showVersionFlag := flag.Bool("version", false, "show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: xrdmon-send [flags] host:port [host:port ...]\n\nFlags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *showVersionFlag {
		fmt.Printf("version: %s, commit: %s, date: %s\n", version, commit, date)
		return nil
	}

	targets := flag.Args()
	if *targetsFileFlag != "" {
		fromFile, err := netutil.LoadTargetsFile(*targetsFileFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(2)
		}
		targets = append(targets, fromFile...)
	}
	if len(targets) == 0 {
		fmt.Fprintln(os.Stderr, "error: at least one host:port target is required")
		flag.Usage()
		os.Exit(2)
	}
	if *countFlag <= 0 {
		fmt.Fprintln(os.Stderr, "error: --count must be > 0")
		os.Exit(2)
	}
	if *intervalFlag < 0 {
		fmt.Fprintln(os.Stderr, "error: --interval must not be negative")
		os.Exit(2)
	}

	resolved, err := netutil.ResolveTargets(targets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	log := newLogger(*verboseFlag)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Set up prometheus metrics server if enabled.
	if *metricsAddrFlag != "" {
		metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)
		go func() {
			listener, err := net.Listen("tcp", *metricsAddrFlag)
			if err != nil {
				log.Error("Failed to start prometheus metrics server listener", "error", err)
				os.Exit(1)
			}
			log.Info("Prometheus metrics server listening", "address", listener.Addr().String())
			http.Handle("/metrics", promhttp.Handler())
			if err := http.Serve(listener, nil); err != nil {
				log.Error("Failed to start prometheus metrics server", "error", err)
				os.Exit(1)
			}
		}()
	}

	var recorder *sendudp.Recorder
	if *recordFlag != "" {
		f, err := os.OpenFile(*recordFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open record file: %w", err)
		}
		defer f.Close()
		recorder = sendudp.NewRecorder(f, version)
	}

	dialer := udp.NewStandardDialer(log)
	dialer.TTL = *ttlFlag
	dialer.WriteBuffer = *writeBufferFlag

	sender, err := sendudp.New(sendudp.Config{
		Logger:         log,
		Clock:          clockwork.NewRealClock(),
		Dialer:         dialer,
		Targets:        resolved,
		Payload:        sendudp.Spec{Text: *messageFlag, AppendCounter: *appendCounterFlag, Count: *countFlag},
		WithHeader:     *headerFlag,
		Code:           *codeFlag,
		AdvanceSeq:     *advanceSeqFlag,
		Interval:       *intervalFlag,
		MaxConcurrency: *maxConcurrencyFlag,
		Recorder:       recorder,
	})
	if err != nil {
		return fmt.Errorf("failed to create sender: %w", err)
	}

	results, err := sender.Run(ctx)
	if err != nil {
		return err
	}

	if !*quietFlag {
		printSummary(results)
	}

	if results.Failed() {
		for _, r := range results.Reports {
			if r.Err != nil {
				log.Error("Stream failed", "target", r.Target, "sent", r.Sent, "error", r.Err)
			}
		}
		return errors.New("one or more destination streams failed")
	}
	log.Debug("Run complete", "targets", len(resolved), "sent", results.TotalSent())
	return nil
}

func printSummary(results *sendudp.Results) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Target", "Sent", "Bytes", "Elapsed", "Rate (pkt/s)", "Error"})
	for _, r := range results.Reports {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		table.Append([]string{
			r.Target,
			strconv.Itoa(r.Sent),
			strconv.FormatInt(r.Bytes, 10),
			r.Elapsed.Round(time.Microsecond).String(),
			fmt.Sprintf("%.0f", r.Rate()),
			errText,
		})
	}
	table.Render()
}

func newLogger(verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.RFC3339,
	}))
}
