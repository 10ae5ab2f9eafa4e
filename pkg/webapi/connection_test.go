package webapi_test

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverse"
	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverselike"
	"github.com/NivineZakhari/PowerApps-Samples/pkg/fileblocks"
	"github.com/NivineZakhari/PowerApps-Samples/pkg/webapi"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newWireService(t *testing.T, token string) *webapi.Connection {
	var opts []dataverselike.Option
	if token != "" {
		opts = append(opts, dataverselike.WithAuthToken(token))
	}
	svc := dataverselike.NewService(testLogger(), opts...)
	server := httptest.NewServer(svc.Handler())
	t.Cleanup(server.Close)

	conn := webapi.NewConnection(server.URL, token, testLogger())
	t.Cleanup(conn.Destroy)
	return conn
}

func TestWhoAmIOverWire(t *testing.T) {
	conn := newWireService(t, "s3cret")

	var resp dataverse.WhoAmIResponse
	require.NoError(t, conn.Execute(context.Background(), dataverse.WhoAmIRequest{}, &resp))
	assert.NotEmpty(t, resp.UserID)
}

func TestBadToken(t *testing.T) {
	svc := dataverselike.NewService(testLogger(), dataverselike.WithAuthToken("s3cret"))
	server := httptest.NewServer(svc.Handler())
	t.Cleanup(server.Close)

	conn := webapi.NewConnection(server.URL, "wrong", testLogger())
	t.Cleanup(conn.Destroy)

	err := conn.Execute(context.Background(), dataverse.WhoAmIRequest{}, &dataverse.WhoAmIResponse{})
	require.Error(t, err)
	assert.Equal(t, dataverse.FaultUnauthenticated, dataverse.FaultCode(err))
}

func TestFaultMapping(t *testing.T) {
	conn := newWireService(t, "")

	err := conn.Execute(context.Background(),
		dataverse.DeleteColumnRequest{Entity: "account", SchemaName: "missing"},
		&dataverse.DeleteColumnResponse{})
	require.Error(t, err)
	assert.True(t, dataverse.IsNotFound(err))
}

// The full block protocol through the HTTP envelope, not just single calls.
func TestRoundTripOverWire(t *testing.T) {
	conn := newWireService(t, "s3cret")
	ctx := context.Background()

	require.NoError(t, conn.Execute(ctx, dataverse.CreateFileColumnRequest{
		Entity:     "account",
		SchemaName: "sample_filecolumn",
	}, &dataverse.CreateFileColumnResponse{}))

	var recResp dataverse.CreateRecordResponse
	require.NoError(t, conn.Execute(ctx, dataverse.CreateRecordRequest{Entity: "account"}, &recResp))

	ref := dataverse.FileRef{Entity: "account", RecordID: recResp.RecordID, Column: "sample_filecolumn"}
	payload := make([]byte, 150<<10)
	for i := range payload {
		payload[i] = byte(i)
	}

	uploader := fileblocks.NewUploader(conn, testLogger(),
		fileblocks.WithUploadBlockSize(64<<10))
	commit, err := uploader.Upload(ctx, ref, "wire.bin", bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), commit.FileSizeInBytes)

	downloader := fileblocks.NewDownloader(conn, testLogger(),
		fileblocks.WithDownloadBlockSize(64<<10))
	var got bytes.Buffer
	info, err := downloader.Download(ctx, ref, &got)
	require.NoError(t, err)
	assert.Equal(t, "wire.bin", info.FileName)
	assert.True(t, bytes.Equal(payload, got.Bytes()))
}
