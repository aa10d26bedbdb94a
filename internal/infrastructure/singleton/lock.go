package singleton

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
)

// HealthCheckTimeout 探测已有实例的超时
const HealthCheckTimeout = 2 * time.Second

// ErrPortBusy 端口被非本服务进程占用
var ErrPortBusy = errors.New("port is in use by another process")

// CheckAndLock 启动前确认监听端口可用
// 端口空闲时返回 listener；已有本服务实例在运行时返回 nil, nil，调用者应退出
func CheckAndLock(port string) (net.Listener, error) {
	listener, err := net.Listen("tcp", port)
	if err == nil {
		return listener, nil
	}

	if !isAddrInUse(err) {
		return nil, fmt.Errorf("listen on %s: %w", port, err)
	}
	if isInstanceRunning(port) {
		return nil, nil
	}
	return nil, fmt.Errorf("%s: %w", port, ErrPortBusy)
}

// isAddrInUse 是否为地址已占用错误
func isAddrInUse(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.EADDRINUSE) {
		return true
	}
	// Windows 下 WSAEADDRINUSE 不映射为 EADDRINUSE
	return strings.Contains(err.Error(), "address already in use") ||
		strings.Contains(err.Error(), "Only one usage of each socket address")
}

// isInstanceRunning 端口上的进程是否为本服务：/health 返回 200 且带 status 字段
func isInstanceRunning(port string) bool {
	client := &http.Client{Timeout: HealthCheckTimeout}

	resp, err := client.Get(healthURL(port))
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}
	return body.Status != ""
}

func healthURL(port string) string {
	_, p, err := net.SplitHostPort(port)
	if err != nil {
		p = strings.TrimPrefix(port, ":")
	}
	return "http://localhost:" + p + "/health"
}
