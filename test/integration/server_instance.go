package integration

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campuscord/rolesync/pkg/platform"
	"github.com/campuscord/rolesync/pkg/server"
	"github.com/campuscord/rolesync/pkg/server/endpoints"
	gormstore "github.com/campuscord/rolesync/pkg/store/gorm"
	"github.com/campuscord/rolesync/pkg/sync"
)

// portCounter is used to allocate unique ports for each test server
var portCounter int32 = 19000

// ServerInstance represents a running rolesync server for the suite
type ServerInstance struct {
	Server        *server.Server
	ServerURL     string
	Port          int
	cancel        context.CancelFunc
	listener      net.Listener
	serverProcess *exec.Cmd
	inlineMode    bool
}

// StartServer starts the server against the suite's database and fake
// platform, either in-process or as the real binary.
func StartServer(tc *TestContext) (*ServerInstance, error) {
	if tc.InlineMode {
		return startInlineServerInstance(tc)
	}
	return startBinaryServerInstance(tc)
}

// startInlineServerInstance starts an in-process server
func startInlineServerInstance(tc *TestContext) (*ServerInstance, error) {
	port := int(atomic.AddInt32(&portCounter, 1))

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		DSN:                  tc.DatabaseURL,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	identities := gormstore.NewIdentityStore(db)
	settings := gormstore.NewSettingsStore(db)
	client := platform.NewClient(tc.Platform.URL(), fakePlatformToken)
	synchronizer := sync.New(identities, settings, client, sync.WithJoinDelay(0))

	s := server.NewServer(identities, settings, synchronizer, "127.0.0.1", fmt.Sprintf("%d", port), testTokenSecret)
	endpoints.RegisterAll(s)

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to create listener on port %d: %w", port, err)
	}

	_, cancel := context.WithCancel(context.Background())

	instance := &ServerInstance{
		Server:     s,
		ServerURL:  fmt.Sprintf("http://127.0.0.1:%d", port),
		Port:       port,
		cancel:     cancel,
		listener:   listener,
		inlineMode: true,
	}

	go func() {
		_ = s.StartWithListener(listener)
	}()

	if err := waitForServer(instance.ServerURL, 10*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}

	return instance, nil
}

// startBinaryServerInstance starts a server using the rolesyncctl binary
func startBinaryServerInstance(tc *TestContext) (*ServerInstance, error) {
	port := int(atomic.AddInt32(&portCounter, 1))
	portStr := fmt.Sprintf("%d", port)

	ctx, cancel := context.WithCancel(context.Background())

	// Migrations already ran in the suite setup.
	cmd := exec.CommandContext(ctx, tc.BinaryPath, "server", "--no-migrate", "-b", "127.0.0.1", "-p", portStr)
	cmd.Env = append(os.Environ(),
		"DATABASE_URL="+tc.DatabaseURL,
		"ROLESYNC_PLATFORM_URL="+tc.Platform.URL(),
		"ROLESYNC_PLATFORM_TOKEN="+fakePlatformToken,
		"ROLESYNC_API_TOKEN_SECRET="+string(testTokenSecret),
		"ROLESYNC_JOIN_DELAY_SECONDS=0",
		"ROLESYNC_AUDIT_ENABLED=false",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start binary: %w", err)
	}

	instance := &ServerInstance{
		ServerURL:     fmt.Sprintf("http://127.0.0.1:%d", port),
		Port:          port,
		cancel:        cancel,
		serverProcess: cmd,
		inlineMode:    false,
	}

	if err := waitForServer(instance.ServerURL, 30*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}

	return instance, nil
}

// Stop shuts down the server instance
func (si *ServerInstance) Stop() {
	if si.cancel != nil {
		si.cancel()
	}
	if si.listener != nil {
		_ = si.listener.Close()
	}
	if si.serverProcess != nil && si.serverProcess.Process != nil {
		_ = si.serverProcess.Process.Kill()
		_ = si.serverProcess.Wait()
	}
}

// waitForServer polls the health endpoint until it responds or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}
