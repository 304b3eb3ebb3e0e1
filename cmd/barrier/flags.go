package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/eleven-am/barrier"
	"github.com/eleven-am/barrier/internal/adapters/logging"
	"github.com/eleven-am/barrier/internal/helpers/metadata"
	"github.com/eleven-am/barrier/internal/ports"
)

type outputFormat string

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
)

type options struct {
	configFile string
	logLevel   string
	logFormat  string
	output     string

	// flagConfig holds only the flags that were set on the command line.
	flagConfig *barrier.Config
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("barrier", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: barrier -h <hostfile> [flags]\n\n")
		fs.PrintDefaults()
	}

	var (
		opts          options
		hostfile      string
		nodeID        string
		port          int
		bufferSize    int
		maxAttempts   int
		retryInterval time.Duration
		timeout       time.Duration
		bindAddr      string
		network       string
		strict        bool
		stopOnQuorum  bool
		sendRate      float64
		healthAddr    string
	)

	fs.StringVar(&hostfile, "h", "", "membership file, one hostname per line")
	fs.StringVar(&hostfile, "hostfile", "", "alias for -h")
	fs.StringVar(&opts.configFile, "config", "", "YAML or JSON config file")
	fs.StringVar(&nodeID, "node-id", "", "local identity as listed in the hostfile (default: hostname)")
	fs.IntVar(&port, "port", barrier.DefaultPort, "UDP port every participant listens on")
	fs.IntVar(&bufferSize, "buffer-size", barrier.DefaultBufferSize, "receive buffer size in bytes")
	fs.IntVar(&maxAttempts, "max-attempts", barrier.DefaultMaxAttempts, "announce rounds")
	fs.DurationVar(&retryInterval, "retry-interval", barrier.DefaultRetryInterval, "pause between announce rounds")
	fs.DurationVar(&timeout, "timeout", 0, "overall deadline, 0 waits forever")
	fs.StringVar(&bindAddr, "bind", "", "listen address (default: all interfaces)")
	fs.StringVar(&network, "network", "udp4", "udp, udp4 or udp6")
	fs.BoolVar(&strict, "strict", false, "reject blank and duplicate hostfile lines")
	fs.BoolVar(&stopOnQuorum, "stop-on-quorum", false, "stop announcing once every peer has been heard")
	fs.Float64Var(&sendRate, "send-rate", 0, "max datagrams per second, 0 is unlimited")
	fs.StringVar(&healthAddr, "health-addr", "", "serve gRPC health on this TCP address")
	fs.StringVar(&opts.logLevel, "log-level", string(ports.LogLevelInfo), "debug, info, warn or error")
	fs.StringVar(&opts.logFormat, "log-format", string(logging.FormatText), "text, json or hclog")
	fs.StringVar(&opts.output, "output", string(outputText), "text or json")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	switch outputFormat(opts.output) {
	case outputText, outputJSON:
	default:
		return nil, fmt.Errorf("unknown output format %q", opts.output)
	}

	cfg := &barrier.Config{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "h", "hostfile":
			cfg.MembershipFile = hostfile
		case "node-id":
			cfg.NodeID = nodeID
		case "port":
			cfg.Barrier.Port = port
		case "buffer-size":
			cfg.Barrier.BufferSize = bufferSize
		case "max-attempts":
			cfg.Barrier.MaxAttempts = maxAttempts
		case "retry-interval":
			cfg.Barrier.RetryInterval = retryInterval
		case "timeout":
			cfg.Barrier.Timeout = timeout
		case "bind":
			cfg.Barrier.BindAddr = bindAddr
		case "network":
			cfg.Barrier.Network = network
		case "strict":
			cfg.Membership.Strict = strict
		case "stop-on-quorum":
			cfg.Barrier.StopOnQuorum = stopOnQuorum
		case "send-rate":
			cfg.Barrier.SendRate = sendRate
		case "health-addr":
			cfg.Health.Addr = healthAddr
		}
	})
	opts.flagConfig = cfg

	return &opts, nil
}

// buildConfig layers defaults, the config file and explicit flags, in that
// order. The hostname fills in a missing node id.
func (o *options) buildConfig() (*barrier.Config, error) {
	layers := []*barrier.Config{}
	if o.configFile != "" {
		fileConfig, err := barrier.LoadConfigFile(o.configFile)
		if err != nil {
			return nil, err
		}
		layers = append(layers, fileConfig)
	}
	layers = append(layers, o.flagConfig)

	cfg, err := barrier.MergeConfig(barrier.DefaultConfig(), layers...)
	if err != nil {
		return nil, err
	}
	if cfg.NodeID == "" {
		cfg.NodeID = metadata.GetProvider().GetHostname()
	}
	return cfg, nil
}

func (o *options) loggingOptions(out io.Writer) logging.Options {
	return logging.Options{
		Format: logging.Format(o.logFormat),
		Level:  ports.LogLevel(o.logLevel),
		Output: out,
	}
}
