package signals

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

var onlyOneSignalHandler = make(chan struct{})

// SetupSignalHandler 收到 SIGINT/SIGTERM 时取消返回的 context，第二次收到信号直接退出。
// 只能调用一次。
func SetupSignalHandler() context.Context {
	close(onlyOneSignalHandler) // 重复调用会 panic

	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
