// Chunked upload of a file column payload. The protocol is a fixed sequence:
// initialize a session, upload each block under a generated block ID, then
// commit the ordered block list. Blocks may go up concurrently; the commit
// list is what fixes their order.
package fileblocks

import (
	"context"
	"encoding/base64"
	"io"

	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverse"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Uploader struct {
	svc         dataverse.Executor
	log         logrus.FieldLogger
	blockSize   int64
	concurrency int
	mimeType    string
}

type UploadOption func(*Uploader)

// WithUploadBlockSize overrides the block size. The service caps blocks at
// dataverse.BlockSize; smaller values only make sense in tests.
func WithUploadBlockSize(n int64) UploadOption {
	return func(u *Uploader) {
		if n > 0 {
			u.blockSize = n
		}
	}
}

// WithUploadConcurrency allows up to n blocks in flight at once. The default
// of 1 uploads strictly sequentially.
func WithUploadConcurrency(n int) UploadOption {
	return func(u *Uploader) {
		if n > 0 {
			u.concurrency = n
		}
	}
}

// WithMimeType sets the MIME type recorded at commit. Without it the type is
// detected from the first block of payload bytes.
func WithMimeType(mt string) UploadOption {
	return func(u *Uploader) {
		u.mimeType = mt
	}
}

func NewUploader(svc dataverse.Executor, logger logrus.FieldLogger, opts ...UploadOption) *Uploader {
	u := &Uploader{
		svc:         svc,
		log:         logger,
		blockSize:   dataverse.BlockSize,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload streams r into the file column named by ref. It returns the commit
// response carrying the stored file's ID and size.
func (self *Uploader) Upload(ctx context.Context, ref dataverse.FileRef, fileName string, r io.Reader) (*dataverse.CommitFileBlocksUploadResponse, error) {
	var initResp dataverse.InitializeFileBlocksUploadResponse
	initReq := dataverse.InitializeFileBlocksUploadRequest{
		Entity:   ref.Entity,
		RecordID: ref.RecordID,
		Column:   ref.Column,
		FileName: fileName,
	}
	if err := self.svc.Execute(ctx, initReq, &initResp); err != nil {
		return nil, errors.Wrap(err, "Failed to initialize upload session")
	}
	token := initResp.ContinuationToken

	mimeType := self.mimeType
	var blockList []string
	var total int64

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(self.concurrency)

	for blockNum := 0; ; blockNum++ {
		buf := make([]byte, self.blockSize)
		n, err := io.ReadFull(r, buf)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			// Drain whatever is already in flight before reporting.
			grp.Wait()
			return nil, errors.Wrap(err, "Failed to read payload")
		}
		if n == 0 {
			break
		}

		if blockNum == 0 && mimeType == "" {
			mimeType = mimetype.Detect(buf[:n]).String()
		}

		blockID := newBlockID()
		blockList = append(blockList, blockID)
		total += int64(n)

		data := buf[:n]
		num := blockNum
		grp.Go(func() error {
			blockReq := dataverse.UploadBlockRequest{
				ContinuationToken: token,
				BlockID:           blockID,
				Data:              data,
			}
			if err := self.svc.Execute(grpCtx, blockReq, &dataverse.UploadBlockResponse{}); err != nil {
				return errors.Wrapf(err, "Failed to upload block %d", num)
			}
			self.log.WithFields(logrus.Fields{"block": num, "bytes": len(data)}).Debug("Uploaded block")
			return nil
		})

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}

	if mimeType == "" {
		// Zero-length payload, nothing to sniff.
		mimeType = "application/octet-stream"
	}

	var commitResp dataverse.CommitFileBlocksUploadResponse
	commitReq := dataverse.CommitFileBlocksUploadRequest{
		ContinuationToken: token,
		FileName:          fileName,
		MimeType:          mimeType,
		BlockList:         blockList,
	}
	if err := self.svc.Execute(ctx, commitReq, &commitResp); err != nil {
		return nil, errors.Wrap(err, "Failed to commit upload")
	}

	self.log.WithFields(logrus.Fields{
		"fileId": commitResp.FileID,
		"blocks": len(blockList),
		"bytes":  total,
		"mime":   mimeType,
	}).Info("Upload committed")
	return &commitResp, nil
}

// Block IDs must be distinct, equal-length base64 strings within a session.
// Base64 of a fresh UUID satisfies all three.
func newBlockID() string {
	id := uuid.New()
	return base64.StdEncoding.EncodeToString(id[:])
}
