/*
Package jsonrpc implements an asynchronous JSON-RPC 1.0 and 2.0 client.

Service is a remote endpoint. It builds Calls, hands their encoded
requests to a Transport, and returns a ResponseHandler per call without
waiting for the reply.

ResponseHandler delivers the outcome of one call. Configure it with a
delegate and Callback, and optionally a ResultType to convert results
into; types implementing NodeUnmarshaler can be built from the generic
JSON node of a result, element-wise when the result is an array.

Server errors (an "error" object in the reply) go to the Callback only.
Internal failures (TransportError, ParseError, ConversionError) go to the
Callback and then to the error delegates: the handler's delegate first,
then the Service's default delegate if the first one is missing or asks
to fall back.

Completions are delivered through a Dispatcher. A Loop runs them on the
goroutine which owns it.
*/
package jsonrpc
