// HTTP front for the emulated service. It accepts the same single-endpoint
// envelope the web API client speaks, so a Service can stand in for a live
// environment behind any listener (including httptest).
package dataverselike

import (
	"encoding/json"
	"net/http"

	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverse"
)

// Handler returns the HTTP handler exposing the service at POST /api/execute.
func (self *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/execute", self.handleExecute)
	return mux
}

func (self *Service) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFault(w, http.StatusMethodNotAllowed,
			dataverse.Faultf(dataverse.FaultInvalidRequest, "only POST is supported"))
		return
	}
	if self.authToken != "" && r.Header.Get("Authorization") != "Bearer "+self.authToken {
		writeFault(w, http.StatusUnauthorized,
			dataverse.Faultf(dataverse.FaultUnauthenticated, "missing or invalid bearer token"))
		return
	}

	var env dataverse.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeFault(w, http.StatusBadRequest,
			dataverse.Faultf(dataverse.FaultInvalidRequest, "malformed envelope: %v", err))
		return
	}

	resp, err := self.dispatch(r, env)
	if err != nil {
		if f, ok := err.(*dataverse.Fault); ok {
			writeFault(w, faultStatus(f.Code), f)
		} else {
			writeFault(w, http.StatusInternalServerError,
				dataverse.Faultf(dataverse.FaultInvalidRequest, "%v", err))
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// dispatch decodes the request parameters into the typed message named by the
// envelope and executes it.
func (self *Service) dispatch(r *http.Request, env dataverse.Envelope) (interface{}, error) {
	decode := func(req interface{}) error {
		if len(env.Parameters) == 0 {
			return nil
		}
		if err := json.Unmarshal(env.Parameters, req); err != nil {
			return dataverse.Faultf(dataverse.FaultInvalidRequest, "malformed parameters: %v", err)
		}
		return nil
	}

	ctx := r.Context()
	switch env.RequestName {
	case dataverse.WhoAmIRequest{}.RequestName():
		var resp dataverse.WhoAmIResponse
		return &resp, self.Execute(ctx, dataverse.WhoAmIRequest{}, &resp)

	case dataverse.CreateFileColumnRequest{}.RequestName():
		var req dataverse.CreateFileColumnRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		var resp dataverse.CreateFileColumnResponse
		return &resp, self.Execute(ctx, req, &resp)

	case dataverse.DeleteColumnRequest{}.RequestName():
		var req dataverse.DeleteColumnRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		var resp dataverse.DeleteColumnResponse
		return &resp, self.Execute(ctx, req, &resp)

	case dataverse.CreateRecordRequest{}.RequestName():
		var req dataverse.CreateRecordRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		var resp dataverse.CreateRecordResponse
		return &resp, self.Execute(ctx, req, &resp)

	case dataverse.DeleteRecordRequest{}.RequestName():
		var req dataverse.DeleteRecordRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		var resp dataverse.DeleteRecordResponse
		return &resp, self.Execute(ctx, req, &resp)

	case dataverse.InitializeFileBlocksUploadRequest{}.RequestName():
		var req dataverse.InitializeFileBlocksUploadRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		var resp dataverse.InitializeFileBlocksUploadResponse
		return &resp, self.Execute(ctx, req, &resp)

	case dataverse.UploadBlockRequest{}.RequestName():
		var req dataverse.UploadBlockRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		var resp dataverse.UploadBlockResponse
		return &resp, self.Execute(ctx, req, &resp)

	case dataverse.CommitFileBlocksUploadRequest{}.RequestName():
		var req dataverse.CommitFileBlocksUploadRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		var resp dataverse.CommitFileBlocksUploadResponse
		return &resp, self.Execute(ctx, req, &resp)

	case dataverse.InitializeFileBlocksDownloadRequest{}.RequestName():
		var req dataverse.InitializeFileBlocksDownloadRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		var resp dataverse.InitializeFileBlocksDownloadResponse
		return &resp, self.Execute(ctx, req, &resp)

	case dataverse.DownloadBlockRequest{}.RequestName():
		var req dataverse.DownloadBlockRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		var resp dataverse.DownloadBlockResponse
		return &resp, self.Execute(ctx, req, &resp)

	case dataverse.DeleteFileRequest{}.RequestName():
		var req dataverse.DeleteFileRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		var resp dataverse.DeleteFileResponse
		return &resp, self.Execute(ctx, req, &resp)

	default:
		return nil, dataverse.Faultf(dataverse.FaultInvalidRequest, "unknown request %q", env.RequestName)
	}
}

func faultStatus(code string) int {
	switch code {
	case dataverse.FaultNotFound, dataverse.FaultUnknownToken:
		return http.StatusNotFound
	case dataverse.FaultAlreadyExists:
		return http.StatusConflict
	case dataverse.FaultFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case dataverse.FaultUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

func writeFault(w http.ResponseWriter, status int, f *dataverse.Fault) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(f)
}
