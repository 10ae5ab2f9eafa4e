package fileblocks_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"sync"
	"testing"

	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverse"
	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverselike"
	"github.com/NivineZakhari/PowerApps-Samples/pkg/fileblocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBlockSize = 64 << 10

func testLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newTarget provisions a file column and a record on a fresh emulated
// service and returns both, plus the ref naming the column on the record.
func newTarget(t *testing.T) (*dataverselike.Service, dataverse.FileRef) {
	svc := dataverselike.NewService(testLogger())

	ctx := context.Background()
	colReq := dataverse.CreateFileColumnRequest{
		Entity:     "account",
		SchemaName: "sample_filecolumn",
	}
	require.NoError(t, svc.Execute(ctx, colReq, &dataverse.CreateFileColumnResponse{}))

	var recResp dataverse.CreateRecordResponse
	recReq := dataverse.CreateRecordRequest{Entity: "account"}
	require.NoError(t, svc.Execute(ctx, recReq, &recResp))

	return svc, dataverse.FileRef{
		Entity:   "account",
		RecordID: recResp.RecordID,
		Column:   "sample_filecolumn",
	}
}

func testPayload(n int) []byte {
	payload := make([]byte, n)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	return payload
}

func TestRoundTrip(t *testing.T) {
	sizes := map[string]int{
		"empty":            0,
		"oneByte":          1,
		"justUnderBlock":   testBlockSize - 1,
		"exactlyOneBlock":  testBlockSize,
		"justOverBlock":    testBlockSize + 1,
		"manyBlocks":       3*testBlockSize + 100,
		"exactlyTwoBlocks": 2 * testBlockSize,
	}

	for name, size := range sizes {
		size := size
		t.Run(name, func(t *testing.T) {
			svc, ref := newTarget(t)
			ctx := context.Background()
			payload := testPayload(size)

			uploader := fileblocks.NewUploader(svc, testLogger(),
				fileblocks.WithUploadBlockSize(testBlockSize))
			commit, err := uploader.Upload(ctx, ref, "payload.bin", bytes.NewReader(payload))
			require.NoError(t, err)
			assert.Equal(t, int64(size), commit.FileSizeInBytes)
			assert.NotEmpty(t, commit.FileID)

			downloader := fileblocks.NewDownloader(svc, testLogger(),
				fileblocks.WithDownloadBlockSize(testBlockSize))
			var got bytes.Buffer
			info, err := downloader.Download(ctx, ref, &got)
			require.NoError(t, err)
			assert.Equal(t, "payload.bin", info.FileName)
			assert.Equal(t, int64(size), info.FileSizeInBytes)
			assert.True(t, bytes.Equal(payload, got.Bytes()))
		})
	}
}

func TestConcurrentUpload(t *testing.T) {
	svc, ref := newTarget(t)
	ctx := context.Background()
	payload := testPayload(16*testBlockSize + 17)

	uploader := fileblocks.NewUploader(svc, testLogger(),
		fileblocks.WithUploadBlockSize(testBlockSize),
		fileblocks.WithUploadConcurrency(4))
	commit, err := uploader.Upload(ctx, ref, "big.bin", bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), commit.FileSizeInBytes)

	downloader := fileblocks.NewDownloader(svc, testLogger(),
		fileblocks.WithDownloadBlockSize(testBlockSize))
	var got bytes.Buffer
	_, err = downloader.Download(ctx, ref, &got)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(payload, got.Bytes()))
}

// recordingService wraps the emulation and keeps the block traffic so tests
// can check protocol-level invariants the round trip alone can't see.
type recordingService struct {
	inner dataverse.Executor

	m         sync.Mutex
	blockIDs  []string
	blockLens []int
	commits   []dataverse.CommitFileBlocksUploadRequest
}

func (self *recordingService) Execute(ctx context.Context, req dataverse.Request, resp interface{}) error {
	self.m.Lock()
	switch r := req.(type) {
	case dataverse.UploadBlockRequest:
		self.blockIDs = append(self.blockIDs, r.BlockID)
		self.blockLens = append(self.blockLens, len(r.Data))
	case dataverse.CommitFileBlocksUploadRequest:
		self.commits = append(self.commits, r)
	}
	self.m.Unlock()
	return self.inner.Execute(ctx, req, resp)
}

func TestBlockInvariants(t *testing.T) {
	svc, ref := newTarget(t)
	rec := &recordingService{inner: svc}
	ctx := context.Background()
	payload := testPayload(4*testBlockSize + 99)

	uploader := fileblocks.NewUploader(rec, testLogger(),
		fileblocks.WithUploadBlockSize(testBlockSize))
	_, err := uploader.Upload(ctx, ref, "payload.bin", bytes.NewReader(payload))
	require.NoError(t, err)

	require.Len(t, rec.blockIDs, 5)

	// Distinct, equal-length, valid base64.
	seen := make(map[string]bool)
	for _, id := range rec.blockIDs {
		assert.False(t, seen[id], "block ID %s reused", id)
		seen[id] = true
		assert.Len(t, id, len(rec.blockIDs[0]))
		_, err := base64.StdEncoding.DecodeString(id)
		assert.NoError(t, err)
	}

	// Every block but the last is exactly the block size.
	for i, n := range rec.blockLens[:4] {
		assert.Equal(t, testBlockSize, n, "block %d", i)
	}
	assert.Equal(t, 99, rec.blockLens[4])

	// The committed list is the blocks in upload order.
	require.Len(t, rec.commits, 1)
	assert.Equal(t, rec.blockIDs, rec.commits[0].BlockList)
}

func TestMimeDetection(t *testing.T) {
	svc, ref := newTarget(t)
	rec := &recordingService{inner: svc}
	ctx := context.Background()

	// %PDF header is unambiguous for the sniffer.
	payload := append([]byte("%PDF-1.4\n"), testPayload(100)...)

	uploader := fileblocks.NewUploader(rec, testLogger())
	_, err := uploader.Upload(ctx, ref, "doc.pdf", bytes.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, rec.commits, 1)
	assert.Equal(t, "application/pdf", rec.commits[0].MimeType)

	// An explicit MIME type wins over detection.
	uploader = fileblocks.NewUploader(rec, testLogger(),
		fileblocks.WithMimeType("application/x-custom"))
	_, err = uploader.Upload(ctx, ref, "doc.pdf", bytes.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, rec.commits, 2)
	assert.Equal(t, "application/x-custom", rec.commits[1].MimeType)
}

func TestEmptyPayloadMime(t *testing.T) {
	svc, ref := newTarget(t)
	rec := &recordingService{inner: svc}
	ctx := context.Background()

	uploader := fileblocks.NewUploader(rec, testLogger())
	commit, err := uploader.Upload(ctx, ref, "empty.bin", bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Equal(t, int64(0), commit.FileSizeInBytes)

	require.Len(t, rec.commits, 1)
	assert.Empty(t, rec.commits[0].BlockList)
	assert.Equal(t, "application/octet-stream", rec.commits[0].MimeType)
}

func TestUploadMissingColumn(t *testing.T) {
	svc, ref := newTarget(t)
	ctx := context.Background()
	ref.Column = "no_such_column"

	uploader := fileblocks.NewUploader(svc, testLogger())
	_, err := uploader.Upload(ctx, ref, "payload.bin", bytes.NewReader(testPayload(10)))
	require.Error(t, err)
	assert.True(t, dataverse.IsNotFound(err))
}

func TestDownloadNoFile(t *testing.T) {
	svc, ref := newTarget(t)
	ctx := context.Background()

	downloader := fileblocks.NewDownloader(svc, testLogger())
	_, err := downloader.Download(ctx, ref, io.Discard)
	require.Error(t, err)
	assert.True(t, dataverse.IsNotFound(err))
}

func TestUploadReplacesExisting(t *testing.T) {
	svc, ref := newTarget(t)
	ctx := context.Background()

	uploader := fileblocks.NewUploader(svc, testLogger(),
		fileblocks.WithUploadBlockSize(testBlockSize))
	first, err := uploader.Upload(ctx, ref, "first.bin", bytes.NewReader(testPayload(testBlockSize*2)))
	require.NoError(t, err)

	second := testPayload(testBlockSize / 2)
	commit, err := uploader.Upload(ctx, ref, "second.bin", bytes.NewReader(second))
	require.NoError(t, err)
	assert.NotEqual(t, first.FileID, commit.FileID)

	downloader := fileblocks.NewDownloader(svc, testLogger(),
		fileblocks.WithDownloadBlockSize(testBlockSize))
	var got bytes.Buffer
	info, err := downloader.Download(ctx, ref, &got)
	require.NoError(t, err)
	assert.Equal(t, "second.bin", info.FileName)
	assert.True(t, bytes.Equal(second, got.Bytes()))

	// The replaced payload's file ID is gone.
	err = svc.Execute(ctx, dataverse.DeleteFileRequest{FileID: first.FileID}, &dataverse.DeleteFileResponse{})
	require.Error(t, err)
	assert.True(t, dataverse.IsNotFound(err))
}
