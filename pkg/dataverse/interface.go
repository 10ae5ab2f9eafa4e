// Standard interfaces and datatypes for talking to a Dataverse-style
// organization service.
// Terms:
//   "message"  : One request/response pair understood by the service (e.g. WhoAmI, UploadBlock)
//   "service"  : Anything that can execute messages (the hosted web API or the local emulation)
//   "file column" : A schema column on a record that stores an arbitrary binary payload out-of-row
package dataverse

import "context"

// BlockSize is the number of file bytes carried by one UploadBlock or
// DownloadBlock message. The service rejects larger blocks.
const BlockSize = 4 << 20

// Executor runs a single request/response round trip against the
// organization service. resp must be a pointer to the response type matching
// req; it is left untouched on error.
type Executor interface {
	Execute(ctx context.Context, req Request, resp interface{}) error
}

// Service is an Executor with a lifecycle. Users must call Destroy on any
// created service to release its resources. Failure to destroy may leak
// connections or in-progress transfer sessions.
type Service interface {
	Executor
	Destroy()
}

// Request is implemented by every request message. The request name selects
// the operation on the wire and in the local emulation.
type Request interface {
	RequestName() string
}

// FileRef names one file column on one record.
type FileRef struct {
	Entity   string `json:"entity"`
	RecordID string `json:"recordId"`
	Column   string `json:"column"`
}
