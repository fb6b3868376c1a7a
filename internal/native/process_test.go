package native

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aki/amber/internal/core/logger"
	"github.com/aki/amber/internal/protocol"
)

const helperEnv = "AMBER_TEST_COMPANION"

// TestHelperCompanion is not a real test: when started as a subprocess it
// behaves as a minimal companion that answers create requests.
func TestHelperCompanion(t *testing.T) {
	switch os.Getenv(helperEnv) {
	case "1":
	case "stderr":
		for i := 1; i <= 200; i++ {
			fmt.Fprintf(os.Stderr, "diagnostic %d\n", i)
		}
		os.Exit(0)
	default:
		t.Skip("helper process")
	}

	for {
		data, err := ReadFrame(os.Stdin)
		if err != nil {
			os.Exit(0)
		}
		m, err := protocol.Decode(data)
		if err != nil {
			continue
		}
		if req, ok := m.(*protocol.CreateSessionRequest); ok {
			reply, _ := protocol.Encode(protocol.NewCreateSessionResult(req.ID, req.SessionName, "file:///sessions/"+req.SessionName+".yaml"))
			_ = WriteFrame(os.Stdout, reply)
		}
	}
}

func writeManifest(t *testing.T, dir string, m Manifest) string {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	file := filepath.Join(dir, m.Name+".json")
	require.NoError(t, os.WriteFile(file, data, 0o644))
	return file
}

func TestFindManifest(t *testing.T) {
	empty := t.TempDir()
	dir := t.TempDir()
	file := writeManifest(t, dir, Manifest{
		Name:              "com.example.amber",
		Path:              "bin/amber-host",
		Type:              "stdio",
		AllowedExtensions: []string{"amber@example.com"},
	})

	m, err := FindManifest("com.example.amber", []string{empty, dir})
	require.NoError(t, err)
	assert.Equal(t, file, m.File)
	assert.Equal(t, filepath.Join(dir, "bin", "amber-host"), m.Executable())
	assert.True(t, m.Allows("amber@example.com"))
	assert.False(t, m.Allows("other@example.com"))

	_, err = FindManifest("com.example.missing", []string{dir})
	assert.ErrorIs(t, err, ErrManifestNotFound)
}

func TestFindManifest_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, Manifest{Name: "com.example.amber", Path: "/bin/host", Type: "socket"})

	_, err := FindManifest("com.example.amber", []string{dir})
	assert.ErrorContains(t, err, "unsupported type")
}

func TestResolveCommand(t *testing.T) {
	argv, err := ResolveCommand(ProcessConfig{
		Command:     []string{"/usr/bin/amber-host", "--verbose"},
		ExtensionID: "amber@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/bin/amber-host", "--verbose", "amber@example.com"}, argv)

	dir := t.TempDir()
	file := writeManifest(t, dir, Manifest{Name: "com.example.amber", Path: "/opt/amber/host", Type: "stdio"})

	argv, err = ResolveCommand(ProcessConfig{
		Name:         "com.example.amber",
		ManifestDirs: []string{dir},
		ExtensionID:  "amber@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/opt/amber/host", file, "amber@example.com"}, argv)

	writeManifest(t, dir, Manifest{
		Name:              "com.example.locked",
		Path:              "/opt/amber/host",
		Type:              "stdio",
		AllowedExtensions: []string{"someone@else"},
	})
	_, err = ResolveCommand(ProcessConfig{Name: "com.example.locked", ManifestDirs: []string{dir}, ExtensionID: "amber@example.com"})
	assert.Error(t, err)
}

func TestProcessPort_Companion(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a subprocess")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	port, err := StartProcess(ctx, ProcessConfig{
		Command:     []string{os.Args[0], "-test.run=TestHelperCompanion"},
		ExtensionID: "amber@example.com",
		Env:         []string{helperEnv + "=1"},
		StopTimeout: 2 * time.Second,
	}, logger.Nop())
	require.NoError(t, err)
	assert.NotZero(t, port.Pid())

	c := NewConnector(func() (Port, error) { return port, nil }, logger.Nop())

	received := make(chan protocol.Message, 1)
	c.OnMessage(func(m protocol.Message) { received <- m })

	request := protocol.NewCreateSessionRequest("work", "uuid: s1\n")
	c.Send(request)

	reply := waitMessage(t, received)
	result, ok := reply.(*protocol.CreateSessionResult)
	require.True(t, ok)
	assert.Equal(t, request.ID, result.Context)
	assert.Equal(t, "file:///sessions/work.yaml", result.Data.URI)

	require.NoError(t, c.Close())
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestProcessPort_KeepsTrailingStderr(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a subprocess")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out syncBuffer
	log := logger.New(logger.WithOutput(&out), logger.WithLevel(slog.LevelDebug))

	port, err := StartProcess(ctx, ProcessConfig{
		Command:     []string{os.Args[0], "-test.run=TestHelperCompanion"},
		ExtensionID: "amber@example.com",
		Env:         []string{helperEnv + "=stderr"},
		StopTimeout: 2 * time.Second,
	}, log)
	require.NoError(t, err)

	require.NoError(t, port.Close())
	assert.Contains(t, out.String(), "diagnostic 1\"")
	assert.Contains(t, out.String(), "diagnostic 200")
}
