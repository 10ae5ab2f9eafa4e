// Chunked download of a file column payload: initialize a session to learn
// the file's size, then walk an (offset, blockLength) cursor until the byte
// sequence is rebuilt.
package fileblocks

import (
	"context"
	"io"

	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverse"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Downloader struct {
	svc       dataverse.Executor
	log       logrus.FieldLogger
	blockSize int64
}

type DownloadOption func(*Downloader)

// WithDownloadBlockSize overrides the slice size requested per block.
func WithDownloadBlockSize(n int64) DownloadOption {
	return func(d *Downloader) {
		if n > 0 {
			d.blockSize = n
		}
	}
}

func NewDownloader(svc dataverse.Executor, logger logrus.FieldLogger, opts ...DownloadOption) *Downloader {
	d := &Downloader{
		svc:       svc,
		log:       logger,
		blockSize: dataverse.BlockSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download rebuilds the file stored in the column named by ref, writing the
// bytes to w in order. It returns the session metadata (file ID, name, and
// size) reported by the service.
func (self *Downloader) Download(ctx context.Context, ref dataverse.FileRef, w io.Writer) (*dataverse.InitializeFileBlocksDownloadResponse, error) {
	var initResp dataverse.InitializeFileBlocksDownloadResponse
	initReq := dataverse.InitializeFileBlocksDownloadRequest{
		Entity:   ref.Entity,
		RecordID: ref.RecordID,
		Column:   ref.Column,
	}
	if err := self.svc.Execute(ctx, initReq, &initResp); err != nil {
		return nil, errors.Wrap(err, "Failed to initialize download session")
	}

	size := initResp.FileSizeInBytes
	blockNum := 0
	for offset := int64(0); offset < size; blockNum++ {
		length := self.blockSize
		if size-offset < length {
			length = size - offset
		}

		var blockResp dataverse.DownloadBlockResponse
		blockReq := dataverse.DownloadBlockRequest{
			ContinuationToken: initResp.ContinuationToken,
			Offset:            offset,
			BlockLength:       length,
		}
		if err := self.svc.Execute(ctx, blockReq, &blockResp); err != nil {
			return nil, errors.Wrapf(err, "Failed to download block at offset %d", offset)
		}
		if int64(len(blockResp.Data)) != length {
			return nil, errors.Errorf("Short block at offset %d: expected %d bytes, got %d",
				offset, length, len(blockResp.Data))
		}

		if _, err := w.Write(blockResp.Data); err != nil {
			return nil, errors.Wrap(err, "Failed to write downloaded block")
		}
		self.log.WithFields(logrus.Fields{"block": blockNum, "bytes": length}).Debug("Downloaded block")
		offset += length
	}

	self.log.WithFields(logrus.Fields{
		"fileId":   initResp.FileID,
		"fileName": initResp.FileName,
		"blocks":   blockNum,
		"bytes":    size,
	}).Info("Download complete")
	return &initResp, nil
}
