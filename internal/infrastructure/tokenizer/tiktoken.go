// Package tokenizer 提供基于 tiktoken 的 BPE 编码，用于按 token 窗口切分语料
package tokenizer

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// 离线加载 BPE 文件，避免运行时下载
func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// EncodingName 使用的编码
const EncodingName = "cl100k_base"

// Tokenizer 线程安全的 BPE 编码器
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
	mu       sync.RWMutex
}

var (
	instance *Tokenizer
	once     sync.Once
	initErr  error
)

// Get 获取 Tokenizer 单例，编码文件只加载一次
func Get() (*Tokenizer, error) {
	once.Do(func() {
		enc, err := tiktoken.GetEncoding(EncodingName)
		if err != nil {
			initErr = err
			return
		}
		instance = &Tokenizer{encoding: enc}
	})

	if initErr != nil {
		return nil, initErr
	}
	return instance, nil
}

// Encode 编码为 token id 序列
func (t *Tokenizer) Encode(text string) []int {
	if text == "" {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.encoding.Encode(text, nil, nil)
}

// Decode 解码 token id 序列
func (t *Tokenizer) Decode(tokens []int) string {
	if len(tokens) == 0 {
		return ""
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.encoding.Decode(tokens)
}

// Count 计算文本 token 数
func (t *Tokenizer) Count(text string) int {
	return len(t.Encode(text))
}
