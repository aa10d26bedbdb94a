//go:build integration
// +build integration

// TestDaemon 管理独立服务进程的启动与关闭
package framework

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// TestDaemon 测试服务进程
type TestDaemon struct {
	Name     string
	HTTPPort int
	DataDir  string
	DropDir  string

	cmd     *exec.Cmd
	baseURL string
}

// DaemonOption 服务进程配置选项
type DaemonOption func(*TestDaemon)

// WithEnv 追加环境变量
func WithEnv(key, value string) DaemonOption {
	return func(d *TestDaemon) {
		d.cmd.Env = append(d.cmd.Env, key+"="+value)
	}
}

// NewTestDaemon 创建测试服务进程
// 外部依赖（Qdrant、embedding、reranker、LLM）指向未监听的端口，验证降级路径
func NewTestDaemon(binaryPath, name string, opts ...DaemonOption) (*TestDaemon, error) {
	httpPort, err := getFreePort()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate HTTP port: %w", err)
	}
	deadPort, err := getFreePort()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate dependency port: %w", err)
	}

	dataDir, err := os.MkdirTemp("", fmt.Sprintf("ontario-triage-test-%s-", name))
	if err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	dropDir := filepath.Join(dataDir, "drop")

	d := &TestDaemon{
		Name:     name,
		HTTPPort: httpPort,
		DataDir:  dataDir,
		DropDir:  dropDir,
		baseURL:  fmt.Sprintf("http://localhost:%d", httpPort),
	}

	deadURL := fmt.Sprintf("http://127.0.0.1:%d", deadPort)
	d.cmd = exec.Command(binaryPath, "serve")
	d.cmd.Env = append(os.Environ(),
		"TRIAGE_DATA_DIR="+dataDir,
		fmt.Sprintf("TRIAGE_HTTP_PORT=:%d", httpPort),
		"CORPUS_DROP_DIR="+dropDir,
		"QDRANT_HOST=127.0.0.1",
		fmt.Sprintf("QDRANT_PORT=%d", deadPort),
		"EMBEDDING_URL="+deadURL,
		"RERANKER_URL="+deadURL,
		"LLM_URL="+deadURL,
		"RETRIEVAL_TIMEOUT=2s",
		"GENERATION_TIMEOUT=2s",
		"GIN_MODE=test",
	)
	d.cmd.Stdout = os.Stdout
	d.cmd.Stderr = os.Stderr

	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Start 启动服务进程并等待就绪
func (d *TestDaemon) Start() error {
	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon %s: %w", d.Name, err)
	}
	return d.waitForReady(30 * time.Second)
}

// Stop 停止服务进程并清理数据目录
func (d *TestDaemon) Stop() error {
	if d.cmd.Process != nil {
		_ = d.cmd.Process.Signal(os.Interrupt)

		done := make(chan error, 1)
		go func() {
			done <- d.cmd.Wait()
		}()

		select {
		case <-done:
		case <-time.After(10 * time.Second):
			_ = d.cmd.Process.Kill()
			<-done
		}
	}
	return os.RemoveAll(d.DataDir)
}

// BaseURL 返回 HTTP 基础 URL
func (d *TestDaemon) BaseURL() string {
	return d.baseURL
}

// waitForReady 等待 health 端点就绪
func (d *TestDaemon) waitForReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 10 * time.Second}

	for time.Now().Before(deadline) {
		resp, err := client.Get(d.baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	return fmt.Errorf("daemon %s failed to become ready within %v", d.Name, timeout)
}

// getFreePort 获取一个空闲的 TCP 端口
func getFreePort() (int, error) {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, err
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port, nil
}
