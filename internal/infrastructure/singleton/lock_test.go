package singleton

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAndLock_PortAvailable(t *testing.T) {
	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := listener.Addr().String()
	listener.Close()

	result, err := CheckAndLock(port)
	require.NoError(t, err)
	require.NotNil(t, result)
	defer result.Close()
}

func TestCheckAndLock_PortInUse(t *testing.T) {
	t.Run("本服务实例已在运行", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"degraded","services":[]}`))
		}))
		defer server.Close()

		_, port, err := net.SplitHostPort(server.Listener.Addr().String())
		require.NoError(t, err)

		result, err := CheckAndLock("127.0.0.1:" + port)
		assert.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("被其他进程占用", func(t *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer listener.Close()

		result, err := CheckAndLock(listener.Addr().String())
		assert.ErrorIs(t, err, ErrPortBusy)
		assert.Nil(t, result)
	})
}

func TestIsAddrInUse(t *testing.T) {
	l1, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l1.Close()

	_, inUse := net.Listen("tcp", l1.Addr().String())
	assert.True(t, isAddrInUse(inUse))

	_, invalid := net.Listen("tcp", "invalid")
	assert.False(t, isAddrInUse(invalid))
	assert.False(t, isAddrInUse(nil))
}

func TestIsInstanceRunning(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		running bool
	}{
		{"健康响应", http.StatusOK, `{"status":"healthy"}`, true},
		{"非 200", http.StatusInternalServerError, `{"status":"healthy"}`, false},
		{"非本服务响应", http.StatusOK, `hello`, false},
		{"缺少 status", http.StatusOK, `{"ok":true}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, port, err := net.SplitHostPort(server.Listener.Addr().String())
			require.NoError(t, err)
			assert.Equal(t, tt.running, isInstanceRunning(":"+port))
		})
	}

	t.Run("无实例", func(t *testing.T) {
		assert.False(t, isInstanceRunning(":1"))
	})
}

func TestHealthURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/health", healthURL(":8080"))
	assert.Equal(t, "http://localhost:8080/health", healthURL("0.0.0.0:8080"))
	assert.Equal(t, "http://localhost:8080/health", healthURL("8080"))
}
