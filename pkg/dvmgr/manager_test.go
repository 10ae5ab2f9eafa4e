package dvmgr

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverse"
	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverselike"
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

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dvfile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestDefaultsToLocalProvider(t *testing.T) {
	mgr, err := NewManager(map[string]interface{}{"logger": testLogger()})
	require.NoError(t, err)
	defer mgr.Destroy()

	_, ok := mgr.Service.(*dataverselike.Service)
	assert.True(t, ok, "expected the local emulation without any configuration")
	assert.Equal(t, "account", mgr.Cfg.GetString("entity"))

	var resp dataverse.WhoAmIResponse
	require.NoError(t, mgr.Service.Execute(context.Background(), dataverse.WhoAmIRequest{}, &resp))
	assert.NotEmpty(t, resp.UserID)
}

func TestWebapiProvider(t *testing.T) {
	cfgPath := writeConfig(t, `
default-provider: webapi
service:
  webapi:
    url: https://example.crm.dynamics.com
    token: tok
`)
	mgr, err := NewManager(map[string]interface{}{
		"config-file": cfgPath,
		"logger":      testLogger(),
	})
	require.NoError(t, err)
	defer mgr.Destroy()

	_, ok := mgr.Service.(*webapi.Connection)
	assert.True(t, ok, "expected the web API connection")
}

func TestWebapiProviderRequiresURL(t *testing.T) {
	cfgPath := writeConfig(t, "default-provider: webapi\n")
	_, err := NewManager(map[string]interface{}{
		"config-file": cfgPath,
		"logger":      testLogger(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service.webapi.url")
}

func TestUnknownProvider(t *testing.T) {
	cfgPath := writeConfig(t, "default-provider: carrier-pigeon\n")
	_, err := NewManager(map[string]interface{}{
		"config-file": cfgPath,
		"logger":      testLogger(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unrecognized service provider")
}

func TestBadConfigOptions(t *testing.T) {
	_, err := NewManager(map[string]interface{}{"config-file": 42})
	require.Error(t, err)

	_, err = NewManager(map[string]interface{}{"logger": "not a logger"})
	require.Error(t, err)
}
