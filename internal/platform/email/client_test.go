package email

import (
	"context"
	"net"
	"testing"
	"time"

	"tradekeep/internal/config"
	"tradekeep/pkg/socialiface"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishMockMode(t *testing.T) {
	c := NewClient(config.SMTPConfig{}, nil, true)

	res := c.Publish(context.Background(), &socialiface.Post{Text: "周报"})
	assert.True(t, res.Success)
	assert.True(t, res.Mock)
	assert.NotEmpty(t, res.PostID)
}

func TestPublishUnconfigured(t *testing.T) {
	c := NewClient(config.SMTPConfig{}, nil, false)

	res := c.Publish(context.Background(), &socialiface.Post{Text: "周报"})
	assert.False(t, res.Success)
	assert.Equal(t, "SMTP 或收件人未配置", res.Error)
}

// 挂死的 SMTP 服务端（接受连接但不回应）不能拖垮发布协程：
// 发送必须在 ctx 超时后返回失败
func TestPublishHonorsContextDeadline(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	hold := make(chan struct{})
	defer close(hold)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		<-hold // 不发送 SMTP 问候，模拟挂死
	}()

	addr := ln.Addr().(*net.TCPAddr)
	c := NewClient(config.SMTPConfig{
		Host: "127.0.0.1",
		Port: addr.Port,
		From: "noreply@tradekeep.test",
	}, []string{"subscriber@tradekeep.test"}, false)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := c.Publish(ctx, &socialiface.Post{Text: "周度市场观察\n本周行情回顾"})

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Less(t, time.Since(start), 5*time.Second, "发送应在 ctx 超时后尽快返回")
}
