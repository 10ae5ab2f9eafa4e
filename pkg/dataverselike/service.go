// Local emulation of the organization service's file column surface. It
// implements the same message contract as the hosted web API so the sample
// commands (and the tests) can run without a live environment.
package dataverselike

import (
	"context"
	"encoding/base64"
	"sync"

	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverse"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type columnMeta struct {
	displayName string
	maxSizeKB   int
}

type record struct {
	attrs map[string]interface{}
	// column schema name -> file ID
	files map[string]string
}

type storedFile struct {
	id       string
	name     string
	mimeType string
	data     []byte

	// Back-reference so DeleteFile can clear the owning column.
	entity   string
	recordID string
	column   string
}

type uploadSession struct {
	ref      dataverse.FileRef
	fileName string
	blocks   map[string][]byte
	// All block IDs in one session must decode to the same length.
	idLen int
}

type downloadSession struct {
	file *storedFile
}

// Service holds the whole emulated platform in memory. All message handling
// runs under one mutex; the sample's transfer sessions are small enough that
// finer locking buys nothing.
type Service struct {
	m         sync.Mutex
	log       logrus.FieldLogger
	userID    string
	authToken string
	columns   map[string]map[string]*columnMeta
	records   map[string]map[string]*record
	files     map[string]*storedFile
	uploads   map[string]*uploadSession
	downloads map[string]*downloadSession
}

type Option func(*Service)

// WithAuthToken makes the HTTP handler reject requests that don't carry the
// given bearer token. The in-process Execute path is not affected.
func WithAuthToken(token string) Option {
	return func(s *Service) {
		s.authToken = token
	}
}

func NewService(logger logrus.FieldLogger, opts ...Option) *Service {
	s := &Service{
		log:       logger,
		userID:    uuid.NewString(),
		columns:   make(map[string]map[string]*columnMeta),
		records:   make(map[string]map[string]*record),
		files:     make(map[string]*storedFile),
		uploads:   make(map[string]*uploadSession),
		downloads: make(map[string]*downloadSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Destroy drops all emulated state, including open transfer sessions.
func (self *Service) Destroy() {
	self.m.Lock()
	defer self.m.Unlock()
	self.columns = make(map[string]map[string]*columnMeta)
	self.records = make(map[string]map[string]*record)
	self.files = make(map[string]*storedFile)
	self.uploads = make(map[string]*uploadSession)
	self.downloads = make(map[string]*downloadSession)
}

// Execute dispatches one message against the in-memory state. resp must be a
// pointer to the response type paired with req.
func (self *Service) Execute(ctx context.Context, req dataverse.Request, resp interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	self.m.Lock()
	defer self.m.Unlock()

	switch r := req.(type) {
	case dataverse.WhoAmIRequest:
		out, ok := resp.(*dataverse.WhoAmIResponse)
		if !ok {
			return badRespType(req)
		}
		out.UserID = self.userID
		return nil

	case dataverse.CreateFileColumnRequest:
		if _, ok := resp.(*dataverse.CreateFileColumnResponse); !ok {
			return badRespType(req)
		}
		return self.createFileColumn(r)

	case dataverse.DeleteColumnRequest:
		if _, ok := resp.(*dataverse.DeleteColumnResponse); !ok {
			return badRespType(req)
		}
		return self.deleteColumn(r)

	case dataverse.CreateRecordRequest:
		out, ok := resp.(*dataverse.CreateRecordResponse)
		if !ok {
			return badRespType(req)
		}
		return self.createRecord(r, out)

	case dataverse.DeleteRecordRequest:
		if _, ok := resp.(*dataverse.DeleteRecordResponse); !ok {
			return badRespType(req)
		}
		return self.deleteRecord(r)

	case dataverse.InitializeFileBlocksUploadRequest:
		out, ok := resp.(*dataverse.InitializeFileBlocksUploadResponse)
		if !ok {
			return badRespType(req)
		}
		return self.initUpload(r, out)

	case dataverse.UploadBlockRequest:
		if _, ok := resp.(*dataverse.UploadBlockResponse); !ok {
			return badRespType(req)
		}
		return self.uploadBlock(r)

	case dataverse.CommitFileBlocksUploadRequest:
		out, ok := resp.(*dataverse.CommitFileBlocksUploadResponse)
		if !ok {
			return badRespType(req)
		}
		return self.commitUpload(r, out)

	case dataverse.InitializeFileBlocksDownloadRequest:
		out, ok := resp.(*dataverse.InitializeFileBlocksDownloadResponse)
		if !ok {
			return badRespType(req)
		}
		return self.initDownload(r, out)

	case dataverse.DownloadBlockRequest:
		out, ok := resp.(*dataverse.DownloadBlockResponse)
		if !ok {
			return badRespType(req)
		}
		return self.downloadBlock(r, out)

	case dataverse.DeleteFileRequest:
		if _, ok := resp.(*dataverse.DeleteFileResponse); !ok {
			return badRespType(req)
		}
		return self.deleteFile(r)

	default:
		return dataverse.Faultf(dataverse.FaultInvalidRequest, "unknown request %q", req.RequestName())
	}
}

func badRespType(req dataverse.Request) error {
	return errors.Errorf("response type does not match request %q", req.RequestName())
}

func (self *Service) createFileColumn(r dataverse.CreateFileColumnRequest) error {
	if r.Entity == "" || r.SchemaName == "" {
		return dataverse.Faultf(dataverse.FaultInvalidRequest, "entity and schema name are required")
	}
	cols := self.columns[r.Entity]
	if cols == nil {
		cols = make(map[string]*columnMeta)
		self.columns[r.Entity] = cols
	}
	if _, exists := cols[r.SchemaName]; exists {
		return dataverse.Faultf(dataverse.FaultAlreadyExists, "column %s.%s already exists", r.Entity, r.SchemaName)
	}
	cols[r.SchemaName] = &columnMeta{displayName: r.DisplayName, maxSizeKB: r.MaxSizeKB}
	self.log.WithFields(logrus.Fields{"entity": r.Entity, "column": r.SchemaName}).Debug("Created file column")
	return nil
}

func (self *Service) deleteColumn(r dataverse.DeleteColumnRequest) error {
	cols := self.columns[r.Entity]
	if _, exists := cols[r.SchemaName]; !exists {
		return dataverse.Faultf(dataverse.FaultNotFound, "column %s.%s does not exist", r.Entity, r.SchemaName)
	}
	delete(cols, r.SchemaName)

	// Dropping a column drops the payloads stored under it.
	for _, rec := range self.records[r.Entity] {
		if fileID, ok := rec.files[r.SchemaName]; ok {
			delete(self.files, fileID)
			delete(rec.files, r.SchemaName)
		}
	}
	return nil
}

func (self *Service) createRecord(r dataverse.CreateRecordRequest, out *dataverse.CreateRecordResponse) error {
	if r.Entity == "" {
		return dataverse.Faultf(dataverse.FaultInvalidRequest, "entity is required")
	}
	recs := self.records[r.Entity]
	if recs == nil {
		recs = make(map[string]*record)
		self.records[r.Entity] = recs
	}
	id := uuid.NewString()
	recs[id] = &record{attrs: r.Attributes, files: make(map[string]string)}
	out.RecordID = id
	return nil
}

func (self *Service) deleteRecord(r dataverse.DeleteRecordRequest) error {
	rec, ok := self.records[r.Entity][r.RecordID]
	if !ok {
		return dataverse.Faultf(dataverse.FaultNotFound, "record %s(%s) does not exist", r.Entity, r.RecordID)
	}
	for _, fileID := range rec.files {
		delete(self.files, fileID)
	}
	delete(self.records[r.Entity], r.RecordID)
	return nil
}

func (self *Service) initUpload(r dataverse.InitializeFileBlocksUploadRequest, out *dataverse.InitializeFileBlocksUploadResponse) error {
	if _, ok := self.columns[r.Entity][r.Column]; !ok {
		return dataverse.Faultf(dataverse.FaultNotFound, "column %s.%s does not exist", r.Entity, r.Column)
	}
	if _, ok := self.records[r.Entity][r.RecordID]; !ok {
		return dataverse.Faultf(dataverse.FaultNotFound, "record %s(%s) does not exist", r.Entity, r.RecordID)
	}
	token := uuid.NewString()
	self.uploads[token] = &uploadSession{
		ref:      dataverse.FileRef{Entity: r.Entity, RecordID: r.RecordID, Column: r.Column},
		fileName: r.FileName,
		blocks:   make(map[string][]byte),
	}
	out.ContinuationToken = token
	return nil
}

func (self *Service) uploadBlock(r dataverse.UploadBlockRequest) error {
	sess, ok := self.uploads[r.ContinuationToken]
	if !ok {
		return dataverse.Faultf(dataverse.FaultUnknownToken, "no upload session for token")
	}
	if len(r.Data) == 0 {
		return dataverse.Faultf(dataverse.FaultInvalidBlock, "block data must not be empty")
	}
	if int64(len(r.Data)) > dataverse.BlockSize {
		return dataverse.Faultf(dataverse.FaultInvalidBlock, "block exceeds %d bytes", dataverse.BlockSize)
	}
	if _, err := base64.StdEncoding.DecodeString(r.BlockID); err != nil || r.BlockID == "" {
		return dataverse.Faultf(dataverse.FaultInvalidBlock, "block ID must be a base64 string")
	}
	if sess.idLen == 0 {
		sess.idLen = len(r.BlockID)
	} else if len(r.BlockID) != sess.idLen {
		return dataverse.Faultf(dataverse.FaultInvalidBlock, "block IDs in a session must have equal length")
	}
	if _, dup := sess.blocks[r.BlockID]; dup {
		return dataverse.Faultf(dataverse.FaultInvalidBlock, "duplicate block ID %s", r.BlockID)
	}
	data := make([]byte, len(r.Data))
	copy(data, r.Data)
	sess.blocks[r.BlockID] = data
	return nil
}

func (self *Service) commitUpload(r dataverse.CommitFileBlocksUploadRequest, out *dataverse.CommitFileBlocksUploadResponse) error {
	sess, ok := self.uploads[r.ContinuationToken]
	if !ok {
		return dataverse.Faultf(dataverse.FaultUnknownToken, "no upload session for token")
	}

	var data []byte
	seen := make(map[string]bool, len(r.BlockList))
	for _, id := range r.BlockList {
		if seen[id] {
			return dataverse.Faultf(dataverse.FaultInvalidBlock, "block ID %s listed twice", id)
		}
		seen[id] = true
		block, ok := sess.blocks[id]
		if !ok {
			return dataverse.Faultf(dataverse.FaultInvalidBlock, "block ID %s was never uploaded", id)
		}
		data = append(data, block...)
	}

	col := self.columns[sess.ref.Entity][sess.ref.Column]
	rec := self.records[sess.ref.Entity][sess.ref.RecordID]
	if col == nil || rec == nil {
		// Column or record vanished while the session was open.
		delete(self.uploads, r.ContinuationToken)
		return dataverse.Faultf(dataverse.FaultNotFound, "upload target no longer exists")
	}
	if col.maxSizeKB > 0 && int64(len(data)) > int64(col.maxSizeKB)*1024 {
		return dataverse.Faultf(dataverse.FaultFileTooLarge,
			"file of %d bytes exceeds column limit of %d KB", len(data), col.maxSizeKB)
	}

	fileName := r.FileName
	if fileName == "" {
		fileName = sess.fileName
	}
	file := &storedFile{
		id:       uuid.NewString(),
		name:     fileName,
		mimeType: r.MimeType,
		data:     data,
		entity:   sess.ref.Entity,
		recordID: sess.ref.RecordID,
		column:   sess.ref.Column,
	}

	// Committing over an existing payload replaces it.
	if old, ok := rec.files[sess.ref.Column]; ok {
		delete(self.files, old)
	}
	self.files[file.id] = file
	rec.files[sess.ref.Column] = file.id
	delete(self.uploads, r.ContinuationToken)

	out.FileID = file.id
	out.FileSizeInBytes = int64(len(data))
	self.log.WithFields(logrus.Fields{
		"fileId": file.id,
		"blocks": len(r.BlockList),
		"bytes":  len(data),
	}).Debug("Committed upload")
	return nil
}

func (self *Service) initDownload(r dataverse.InitializeFileBlocksDownloadRequest, out *dataverse.InitializeFileBlocksDownloadResponse) error {
	rec, ok := self.records[r.Entity][r.RecordID]
	if !ok {
		return dataverse.Faultf(dataverse.FaultNotFound, "record %s(%s) does not exist", r.Entity, r.RecordID)
	}
	fileID, ok := rec.files[r.Column]
	if !ok {
		return dataverse.Faultf(dataverse.FaultNotFound, "column %s.%s holds no file on this record", r.Entity, r.Column)
	}
	file := self.files[fileID]

	token := uuid.NewString()
	self.downloads[token] = &downloadSession{file: file}
	out.ContinuationToken = token
	out.FileID = file.id
	out.FileName = file.name
	out.FileSizeInBytes = int64(len(file.data))
	return nil
}

func (self *Service) downloadBlock(r dataverse.DownloadBlockRequest, out *dataverse.DownloadBlockResponse) error {
	sess, ok := self.downloads[r.ContinuationToken]
	if !ok {
		return dataverse.Faultf(dataverse.FaultUnknownToken, "no download session for token")
	}
	if r.Offset < 0 || r.Offset > int64(len(sess.file.data)) {
		return dataverse.Faultf(dataverse.FaultInvalidRequest, "offset %d out of range", r.Offset)
	}
	if r.BlockLength <= 0 || r.BlockLength > dataverse.BlockSize {
		return dataverse.Faultf(dataverse.FaultInvalidRequest, "block length %d out of range", r.BlockLength)
	}

	end := r.Offset + r.BlockLength
	if end > int64(len(sess.file.data)) {
		end = int64(len(sess.file.data))
	}
	out.Data = append([]byte(nil), sess.file.data[r.Offset:end]...)
	return nil
}

func (self *Service) deleteFile(r dataverse.DeleteFileRequest) error {
	file, ok := self.files[r.FileID]
	if !ok {
		return dataverse.Faultf(dataverse.FaultNotFound, "file %s does not exist", r.FileID)
	}
	if rec, ok := self.records[file.entity][file.recordID]; ok {
		delete(rec.files, file.column)
	}
	delete(self.files, r.FileID)
	return nil
}
