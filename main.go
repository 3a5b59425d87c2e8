package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"time"

	"github.com/alexcesaro/log"
	flags "github.com/jessevdk/go-flags"
	"github.com/vipnode/jsonrpc/jsonrpc"
)

// Version of the binary, assigned during build.
var Version string = "dev"

// Options contains the flag options
type Options struct {
	Verbose []bool `short:"v" long:"verbose" description:"Show verbose logging."`
	Version bool   `long:"version" description:"Print version and exit."`

	Call struct {
		Args struct {
			Method string   `positional-arg-name:"method" description:"Remote method name." required:"yes"`
			Params []string `positional-arg-name:"params" description:"Positional params as JSON literals. Other text is sent as a string."`
		} `positional-args:"yes"`
		Endpoint  string                  `long:"endpoint" description:"URL of the JSON-RPC endpoint. (http|https|ws|wss|tcp)" default:"http://localhost:8545/"`
		Protocol  jsonrpc.ProtocolVersion `long:"protocol" description:"Protocol version. (1.0|2.0)" default:"2.0"`
		IDs       string                  `long:"ids" description:"Call id generator." choice:"seq" choice:"uuid" default:"seq"`
		Websocket string                  `long:"websocket" description:"Websocket library for ws:// endpoints." choice:"gorilla" choice:"gobwas" default:"gorilla"`
		Timeout   time.Duration           `long:"timeout" description:"Time to wait for all replies." default:"5s"`
		Repeat    int                     `long:"repeat" description:"Number of concurrent calls to issue." default:"1"`
		DryRun    bool                    `long:"dry-run" description:"Print the request envelope without sending it."`
	} `command:"call" description:"Call a remote method and print the result."`
}

const callUsage = `Examples:
* Call a JSON-RPC 2.0 method over HTTP:
  $ jsonrpc call --endpoint="http://localhost:8545/" eth_blockNumber

* Call a JSON-RPC 1.0 method with params over a websocket:
  $ jsonrpc call --protocol=1.0 --endpoint="ws://localhost:8546/" getUser 42 '{"verbose":true}'

* Print the request without sending it:
  $ jsonrpc call --dry-run --ids=uuid echo hello
`

var logLevels = []log.Level{
	log.Warning,
	log.Info,
	log.Debug,
}

func subcommand(cmd string, options Options) error {
	switch cmd {
	case "call":
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Stop waiting for replies on ctrl+c
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt)
		defer signal.Stop(sigCh)
		go func() {
			for range sigCh {
				logger.Info("Shutting down...")
				cancel()
			}
		}()

		return runCall(ctx, options, os.Stdout)
	}

	return fmt.Errorf("unknown command: %s", cmd)
}

func main() {
	options := Options{}
	parser := flags.NewParser(&options, flags.Default)
	parser.SubcommandsOptional = true
	p, err := parser.Parse()
	if err != nil {
		if p == nil {
			fmt.Println(err)
		}
		if flagErr, ok := err.(*flags.Error); ok && flagErr.Type == flags.ErrHelp && parser.Active != nil {
			// Print additional usage help when run with --help
			switch parser.Active.Name {
			case "call":
				exit(0, callUsage)
			}
		}
		return
	}

	if options.Version {
		fmt.Println(Version)
		os.Exit(0)
	}

	// Figure out the log level
	numVerbose := len(options.Verbose)
	if numVerbose >= len(logLevels) {
		numVerbose = len(logLevels) - 1
	}

	logLevel := logLevels[numVerbose]
	logWriter := os.Stderr

	SetLogger(logWriter, logLevel)
	if logLevel == log.Debug {
		// Enable logging from subpackages
		jsonrpc.SetLogger(logWriter)
	}

	if parser.Active == nil {
		parser.WriteHelp(os.Stderr)
		exit(1, "\nMissing command.\n")
	}

	cmd := parser.Active.Name
	err = subcommand(cmd, options)
	if err == nil {
		return
	}

	if err == io.EOF {
		exit(3, "Connection closed.\n")
	}

	switch typedErr := err.(type) {
	case net.Error:
		err = ErrExplain{err, `Disconnected from the endpoint unexpectedly. Could be a connectivity issue or the server is down. Try again?`}
	case interface{ ErrorCode() int }:
		switch typedErr.ErrorCode() {
		case jsonrpc.ErrCodeMethodNotFound:
			err = ErrExplain{err, `The endpoint does not provide this method. Check the method name and the --protocol version.`}
		case jsonrpc.ErrCodeInvalidParams:
			err = ErrExplain{err, `The endpoint rejected the params. Params are parsed as JSON literals, quote strings that look like numbers.`}
		default:
			exit(4, "%s failed: %s\n", cmd, err)
		}
	case ErrExplain:
		// All good.
	default:
		err = ErrExplain{err, fmt.Sprintf(`Error type %T is missing an explanation. Please open an issue at https://github.com/vipnode/jsonrpc`, err)}
	}

	exit(2, "%s failed: %s\n", cmd, err)
}

func exit(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(code)
}

// ErrExplain annotates an error with an explanation.
type ErrExplain struct {
	Cause       error
	Explanation string
}

func (err ErrExplain) Error() string {
	return fmt.Sprintf("%s\n -> %s", err.Cause, err.Explanation)
}

func (err ErrExplain) Unwrap() error {
	return err.Cause
}
