package dataverse

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire form of one Execute call: a request name plus the
// JSON-encoded request message. Both the web API client and the local
// emulation's HTTP handler speak this shape.
type Envelope struct {
	RequestName string          `json:"requestName"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Fault codes returned by the service.
const (
	FaultNotFound        = "NotFound"
	FaultInvalidRequest  = "InvalidRequest"
	FaultInvalidBlock    = "InvalidBlock"
	FaultUnknownToken    = "UnknownToken"
	FaultFileTooLarge    = "FileTooLarge"
	FaultAlreadyExists   = "AlreadyExists"
	FaultUnauthenticated = "Unauthenticated"
)

// Fault is the error shape the service returns for a failed message. It
// crosses the wire as the JSON body of a non-2xx response.
type Fault struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// Faultf builds a Fault with a formatted message.
func Faultf(code, format string, args ...interface{}) *Fault {
	return &Fault{Code: code, Message: fmt.Sprintf(format, args...)}
}

// FaultCode extracts the service fault code from err, or "" if err is not a
// service fault.
func FaultCode(err error) string {
	type causer interface {
		Cause() error
	}
	for err != nil {
		if f, ok := err.(*Fault); ok {
			return f.Code
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return ""
}

// IsNotFound reports whether err is the service saying the addressed column,
// record, or file does not exist.
func IsNotFound(err error) bool {
	return FaultCode(err) == FaultNotFound
}
