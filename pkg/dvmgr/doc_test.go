package dvmgr

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverse"
	"github.com/NivineZakhari/PowerApps-Samples/pkg/fileblocks"
	"github.com/sirupsen/logrus"
)

func Example() {
	mgrArgs := map[string]interface{}{}
	// ./dvfile.yaml is a dvfile configuration that's been setup for your environment
	mgrArgs["config-file"] = "./dvfile.yaml"

	// Adding a custom logger is optional
	dvLogger := logrus.New()
	dvLogger.SetLevel(logrus.WarnLevel)
	mgrArgs["logger"] = dvLogger

	mgr, err := NewManager(mgrArgs)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer mgr.Destroy()

	ctx := context.Background()

	// Provision a file column and a record to hang the file on
	colReq := dataverse.CreateFileColumnRequest{
		Entity:     "account",
		SchemaName: "sample_filecolumn",
	}
	if err := mgr.Service.Execute(ctx, colReq, &dataverse.CreateFileColumnResponse{}); err != nil {
		fmt.Printf("Failed to provision column: %v\n", err)
		os.Exit(1)
	}

	var recResp dataverse.CreateRecordResponse
	recReq := dataverse.CreateRecordRequest{Entity: "account"}
	if err := mgr.Service.Execute(ctx, recReq, &recResp); err != nil {
		fmt.Printf("Failed to create record: %v\n", err)
		os.Exit(1)
	}

	// Push a payload up in blocks and pull it back down
	ref := dataverse.FileRef{
		Entity:   "account",
		RecordID: recResp.RecordID,
		Column:   "sample_filecolumn",
	}
	uploader := fileblocks.NewUploader(mgr.Service, mgr.Logger)
	if _, err := uploader.Upload(ctx, ref, "hello.txt", bytes.NewReader([]byte("hello"))); err != nil {
		fmt.Printf("Upload failed: %v\n", err)
		os.Exit(1)
	}

	downloader := fileblocks.NewDownloader(mgr.Service, mgr.Logger)
	var roundTrip bytes.Buffer
	if _, err := downloader.Download(ctx, ref, &roundTrip); err != nil {
		fmt.Printf("Download failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(roundTrip.String())
}
