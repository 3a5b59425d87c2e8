package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/vipnode/jsonrpc/internal/pretty"
	"github.com/vipnode/jsonrpc/jsonrpc"
	"github.com/vipnode/jsonrpc/jsonrpc/ws/gobwas"
	"github.com/vipnode/jsonrpc/jsonrpc/ws/gorilla"
	"golang.org/x/sync/errgroup"
)

// parseParams decodes each argument as a JSON literal. Arguments which are
// not valid JSON are sent as strings.
func parseParams(args []string) []interface{} {
	params := make([]interface{}, 0, len(args))
	for _, arg := range args {
		v, err := jsonrpc.ParseNode([]byte(arg))
		if err != nil {
			v = arg
		}
		params = append(params, v)
	}
	return params
}

func idGenerator(name string) (jsonrpc.IDGenerator, error) {
	switch name {
	case "", "seq":
		return &jsonrpc.SequentialIDs{}, nil
	case "uuid":
		return jsonrpc.UUIDs{}, nil
	}
	return nil, fmt.Errorf("unknown id generator: %q", name)
}

// newTransport picks a transport by the endpoint's scheme.
func newTransport(options Options) (jsonrpc.Transport, error) {
	opts := options.Call
	uri, err := url.Parse(opts.Endpoint)
	if err != nil {
		return nil, ErrExplain{err, "Failed to parse the --endpoint URL."}
	}

	switch uri.Scheme {
	case "http", "https":
		return &jsonrpc.HTTPTransport{
			HTTPClient: &http.Client{Timeout: opts.Timeout},
		}, nil
	case "ws", "wss":
		dial := gorilla.Dial
		if opts.Websocket == "gobwas" {
			dial = gobwas.Dial
		}
		return &jsonrpc.StreamTransport{Dial: dial}, nil
	case "tcp":
		return &jsonrpc.StreamTransport{Dial: dialTCP}, nil
	}
	return nil, ErrExplain{
		fmt.Errorf("unsupported endpoint scheme: %q", uri.Scheme),
		"Use an http://, https://, ws://, wss:// or tcp:// endpoint.",
	}
}

// dialTCP connects to a tcp://host:port address exchanging newline-delimited
// JSON.
func dialTCP(ctx context.Context, address string) (jsonrpc.Conn, error) {
	uri, err := url.Parse(address)
	if err != nil {
		return nil, err
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", uri.Host)
	if err != nil {
		return nil, err
	}
	return jsonrpc.IOConn(conn), nil
}

func printJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", out)
	return err
}

// reporter receives the outcome of every call issued by the command. It is
// only touched from the goroutine running the loop.
type reporter struct {
	out io.Writer
	err error
}

func (r *reporter) callback(call *jsonrpc.Call, result interface{}, err error) {
	if err != nil {
		if r.err == nil {
			r.err = err
		}
		return
	}
	logger.Debugf("Received result for %s", call)
	if err := printJSON(r.out, result); err != nil && r.err == nil {
		r.err = err
	}
}

// CallFailed explains internal failures and passes them on to the
// endpoint's default delegate.
func (r *reporter) CallFailed(call *jsonrpc.Call, err error) bool {
	if r.err == err {
		r.err = explain(err)
	}
	return true
}

// logFailure is the endpoint's default delegate.
func logFailure(call *jsonrpc.Call, err error) bool {
	logger.Warningf("Call %s failed: %s", call, err)
	return false
}

func explain(err error) error {
	var (
		transportErr  *jsonrpc.TransportError
		parseErr      *jsonrpc.ParseError
		conversionErr *jsonrpc.ConversionError
		httpErr       jsonrpc.HTTPRequestError
	)
	switch {
	case errors.As(err, &httpErr):
		return ErrExplain{err, "The endpoint rejected the request. Check the --endpoint URL."}
	case errors.As(err, &transportErr):
		return ErrExplain{err, "Failed to reach the endpoint. Make sure it is running and the --endpoint URL is correct."}
	case errors.As(err, &parseErr):
		return ErrExplain{err, fmt.Sprintf("The endpoint replied with something that is not JSON: %s", pretty.Abbrev(parseErr.Raw))}
	case errors.As(err, &conversionErr):
		return ErrExplain{err, "The reply is not a valid response to the call. Check the --protocol version."}
	}
	return err
}

func runCall(ctx context.Context, options Options, out io.Writer) error {
	opts := options.Call
	params := parseParams(opts.Args.Params)
	ids, err := idGenerator(opts.IDs)
	if err != nil {
		return err
	}

	if opts.DryRun {
		svc := jsonrpc.NewService(opts.Endpoint, jsonrpc.Options{
			Version: opts.Protocol,
			IDs:     ids,
		})
		call, err := svc.NewCall(opts.Args.Method, params...)
		if err != nil {
			return ErrExplain{err, "Failed to build the request."}
		}
		return printJSON(out, call)
	}

	transport, err := newTransport(options)
	if err != nil {
		return err
	}
	if closer, ok := transport.(io.Closer); ok {
		defer closer.Close()
	}

	loop := jsonrpc.NewLoop()
	svc := jsonrpc.NewService(opts.Endpoint, jsonrpc.Options{
		Version:    opts.Protocol,
		Transport:  transport,
		Dispatcher: loop,
		Delegate:   jsonrpc.ErrorHandlerFunc(logFailure),
		IDs:        ids,
	})

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	repeat := opts.Repeat
	if repeat < 1 {
		repeat = 1
	}

	r := &reporter{out: out}
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < repeat; i++ {
		h := svc.CallMethodWithName(opts.Args.Method, params).SetDelegate(r, r.callback)
		logger.Infof("Sent %s to %s", h.Call(), svc.Address())
		g.Go(func() error {
			select {
			case <-h.Done():
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	loopCtx, stop := context.WithCancel(ctx)
	defer stop()
	waitErr := make(chan error, 1)
	go func() {
		waitErr <- g.Wait()
		stop()
	}()
	loop.Run(loopCtx)

	if err := <-waitErr; err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrExplain{err, fmt.Sprintf("Timed out waiting for a reply after %s. Use --timeout to wait longer.", opts.Timeout)}
		}
		if errors.Is(err, context.Canceled) {
			return ErrExplain{err, "Interrupted before all replies arrived."}
		}
		return err
	}
	return r.err
}
