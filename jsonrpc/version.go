package jsonrpc

import "fmt"

// ProtocolVersion selects the JSON-RPC envelope format.
type ProtocolVersion string

const (
	// Version1 is JSON-RPC 1.0: no "jsonrpc" member, replies carry both
	// "result" and "error" with one of them null.
	Version1 ProtocolVersion = "1.0"
	// Version2 is JSON-RPC 2.0.
	Version2 ProtocolVersion = "2.0"
)

func (v ProtocolVersion) String() string {
	return string(v)
}

// UnmarshalFlag parses a version given on the command line.
func (v *ProtocolVersion) UnmarshalFlag(value string) error {
	switch value {
	case "1", "1.0":
		*v = Version1
	case "2", "2.0":
		*v = Version2
	default:
		return fmt.Errorf("unsupported version: %s", value)
	}
	return nil
}

// envelopeVersion returns the value of the "jsonrpc" request member, empty
// when the member is omitted.
func (v ProtocolVersion) envelopeVersion() ProtocolVersion {
	if v == Version1 {
		return ""
	}
	return Version2
}
