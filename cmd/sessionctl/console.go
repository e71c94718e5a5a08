package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	khttp "github.com/heattrack/sessionkit/core/net/http"
	"github.com/heattrack/sessionkit/session"
)

const consoleHelp = `commands:
  login <username> <password>
  whoami
  status
  refresh
  get <path>
  logout
  help
any other line counts as a key press`

// console 操作员终端：每一行输入都记作一次按键活动
type console struct {
	manager *session.Manager
	bus     *session.Bus
	api     *khttp.Client
	in      io.Reader
	out     io.Writer
}

// Run 逐行处理输入，EOF 或 ctx 取消时返回
func (c *console) Run(ctx context.Context) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			return err
		case line := <-lines:
			c.bus.Publish(session.SignalKeyPress)
			c.handle(ctx, line)
		}
	}
}

func (c *console) handle(ctx context.Context, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "help":
		fmt.Fprintln(c.out, consoleHelp)
	case "login":
		if len(fields) != 3 {
			fmt.Fprintln(c.out, "usage: login <username> <password>")
			return
		}
		if _, err := c.manager.Login(ctx, fields[1], fields[2]); err != nil {
			fmt.Fprintf(c.out, "login failed: %v\n", err)
			return
		}
		fmt.Fprintln(c.out, "logged in")
	case "whoami":
		user, err := c.manager.CurrentUser(ctx)
		if err != nil {
			fmt.Fprintf(c.out, "whoami failed: %v\n", err)
			return
		}
		fmt.Fprintf(c.out, "%v (%v)\n", user["username"], user["role"])
	case "status":
		fmt.Fprintf(c.out, "%s, idle %s\n", c.manager.State(ctx), c.manager.TimeSinceActivity().Truncate(time.Second))
	case "refresh":
		cred, err := c.manager.Refresh(ctx)
		switch {
		case err != nil:
			fmt.Fprintf(c.out, "refresh failed: %v\n", err)
		case cred == nil:
			fmt.Fprintln(c.out, "refresh skipped")
		default:
			fmt.Fprintln(c.out, "token refreshed")
		}
	case "get":
		if len(fields) != 2 {
			fmt.Fprintln(c.out, "usage: get <path>")
			return
		}
		resp, err := c.api.Request(ctx, http.MethodGet, fields[1], nil)
		if err != nil {
			fmt.Fprintf(c.out, "GET %s failed: %v\n", fields[1], err)
			return
		}
		fmt.Fprintf(c.out, "GET %s: %d\n", fields[1], resp.StatusCode)
	case "logout":
		if c.manager.Logout(ctx) {
			fmt.Fprintln(c.out, "logged out")
		} else {
			fmt.Fprintln(c.out, "no active session")
		}
	}
}
