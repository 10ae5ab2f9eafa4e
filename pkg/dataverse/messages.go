// Request/response message shapes for the subset of the organization service
// exercised by the file column sample. Field names follow the vendor message
// contracts so the JSON envelope stays recognizable in traces.
package dataverse

// WhoAmIRequest asks the service for the authenticated caller. The sample
// uses it as a connection smoke test before doing any real work.
type WhoAmIRequest struct{}

func (WhoAmIRequest) RequestName() string { return "WhoAmI" }

type WhoAmIResponse struct {
	UserID string `json:"userId"`
}

// CreateFileColumnRequest provisions a file column on an entity.
type CreateFileColumnRequest struct {
	Entity      string `json:"entity"`
	SchemaName  string `json:"schemaName"`
	DisplayName string `json:"displayName"`
	MaxSizeKB   int    `json:"maxSizeInKb"`
}

func (CreateFileColumnRequest) RequestName() string { return "CreateFileColumn" }

type CreateFileColumnResponse struct{}

type DeleteColumnRequest struct {
	Entity     string `json:"entity"`
	SchemaName string `json:"schemaName"`
}

func (DeleteColumnRequest) RequestName() string { return "DeleteColumn" }

type DeleteColumnResponse struct{}

// CreateRecordRequest creates a record of the given entity. Attribute values
// are restricted to what JSON can carry; file columns can not be set here,
// they only accept the block upload path.
type CreateRecordRequest struct {
	Entity     string                 `json:"entity"`
	Attributes map[string]interface{} `json:"attributes"`
}

func (CreateRecordRequest) RequestName() string { return "CreateRecord" }

type CreateRecordResponse struct {
	RecordID string `json:"recordId"`
}

type DeleteRecordRequest struct {
	Entity   string `json:"entity"`
	RecordID string `json:"recordId"`
}

func (DeleteRecordRequest) RequestName() string { return "DeleteRecord" }

type DeleteRecordResponse struct{}

// InitializeFileBlocksUploadRequest opens an upload session for one file
// column. The returned continuation token correlates every subsequent
// UploadBlock and the final commit with this session.
type InitializeFileBlocksUploadRequest struct {
	Entity   string `json:"entity"`
	RecordID string `json:"recordId"`
	Column   string `json:"column"`
	FileName string `json:"fileName"`
}

func (InitializeFileBlocksUploadRequest) RequestName() string { return "InitializeFileBlocksUpload" }

type InitializeFileBlocksUploadResponse struct {
	ContinuationToken string `json:"continuationToken"`
}

// UploadBlockRequest carries one block of file bytes. Block IDs within a
// session must be distinct, equal-length base64 strings.
type UploadBlockRequest struct {
	ContinuationToken string `json:"continuationToken"`
	BlockID           string `json:"blockId"`
	Data              []byte `json:"data"`
}

func (UploadBlockRequest) RequestName() string { return "UploadBlock" }

type UploadBlockResponse struct{}

// CommitFileBlocksUploadRequest assembles the uploaded blocks, in BlockList
// order, into the stored file and closes the session.
type CommitFileBlocksUploadRequest struct {
	ContinuationToken string   `json:"continuationToken"`
	FileName          string   `json:"fileName"`
	MimeType          string   `json:"mimeType"`
	BlockList         []string `json:"blockList"`
}

func (CommitFileBlocksUploadRequest) RequestName() string { return "CommitFileBlocksUpload" }

type CommitFileBlocksUploadResponse struct {
	FileID          string `json:"fileId"`
	FileSizeInBytes int64  `json:"fileSizeInBytes"`
}

// InitializeFileBlocksDownloadRequest opens a download session and reports
// the stored file's identity and size. The client then pulls byte ranges
// with DownloadBlock until it has FileSizeInBytes bytes.
type InitializeFileBlocksDownloadRequest struct {
	Entity   string `json:"entity"`
	RecordID string `json:"recordId"`
	Column   string `json:"column"`
}

func (InitializeFileBlocksDownloadRequest) RequestName() string {
	return "InitializeFileBlocksDownload"
}

type InitializeFileBlocksDownloadResponse struct {
	ContinuationToken string `json:"continuationToken"`
	FileID            string `json:"fileId"`
	FileName          string `json:"fileName"`
	FileSizeInBytes   int64  `json:"fileSizeInBytes"`
}

// DownloadBlockRequest asks for BlockLength bytes starting at Offset. A
// range that extends past end-of-file returns only the remaining bytes.
type DownloadBlockRequest struct {
	ContinuationToken string `json:"continuationToken"`
	Offset            int64  `json:"offset"`
	BlockLength       int64  `json:"blockLength"`
}

func (DownloadBlockRequest) RequestName() string { return "DownloadBlock" }

type DownloadBlockResponse struct {
	Data []byte `json:"data"`
}

type DeleteFileRequest struct {
	FileID string `json:"fileId"`
}

func (DeleteFileRequest) RequestName() string { return "DeleteFile" }

type DeleteFileResponse struct{}
