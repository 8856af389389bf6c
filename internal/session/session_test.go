// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package session

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestOptions_Endpoint(t *testing.T) {
	opts := Options{Region: "us-east-1"}
	assert.Equal(t, "https://ssm.us-east-1.amazonaws.com", opts.endpoint())

	opts.Endpoint = "https://ssm.example.test"
	assert.Equal(t, "https://ssm.example.test", opts.endpoint())
}

func TestBuildPluginArgs(t *testing.T) {
	out := &ssm.StartSessionOutput{
		SessionId:  aws.String("sess-123"),
		StreamUrl:  aws.String("wss://ssmmessages.us-east-1.amazonaws.com/v1/data-channel/sess-123"),
		TokenValue: aws.String("token"),
	}
	input := &ssm.StartSessionInput{
		Target:       aws.String("i-0123456789abcdef0"),
		DocumentName: aws.String("SSM-SessionManagerRunShell"),
	}
	opts := Options{
		Region:  "us-east-1",
		Profile: "ops",
	}

	args, err := buildPluginArgs(out, input, opts)

	require.NoError(t, err)
	require.Len(t, args, 6)
	assert.Equal(t, "sess-123", gjson.Get(args[0], "SessionId").String())
	assert.Equal(t, "token", gjson.Get(args[0], "TokenValue").String())
	assert.Equal(t, "us-east-1", args[1])
	assert.Equal(t, "StartSession", args[2])
	assert.Equal(t, "ops", args[3])
	assert.Equal(t, "i-0123456789abcdef0", gjson.Get(args[4], "Target").String())
	assert.Equal(t, "https://ssm.us-east-1.amazonaws.com", args[5])
}

func TestWrapCommand(t *testing.T) {
	got := wrapCommand("uname -a", "BEGIN", "END")

	assert.Equal(t, "echo 'BEGIN'; uname -a; echo \"$? END\"\n", got)
}

func TestParseExitCode(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    int
		wantErr bool
	}{
		{name: "zero", line: "0 END", want: 0},
		{name: "nonzero", line: "127 END", want: 127},
		{name: "padded", line: "  2 END  ", want: 2},
		{name: "garbage", line: "notanumber END", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseExitCode(tt.line, "END")

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// wrapRe picks the generated sentinels back out of a wrapped command.
var wrapRe = regexp.MustCompile(`^echo '([^']+)'; (.*); echo "\$\? ([^"]+)"\n$`)

// scriptedStdin plays the remote side of a session: it parses the sentinels
// from whatever Exec writes and feeds a scripted response into the line
// channel.
type scriptedStdin struct {
	s      *Session
	output []string
	rc     string
}

func (w *scriptedStdin) Write(p []byte) (int, error) {
	if m := wrapRe.FindStringSubmatch(string(p)); m != nil {
		w.s.lines <- "login noise"
		w.s.lines <- m[1]
		for _, line := range w.output {
			w.s.lines <- line
		}
		w.s.lines <- w.rc + " " + m[3]
	}
	return len(p), nil
}

func (w *scriptedStdin) Close() error { return nil }

func newTestSession(timeout time.Duration) *Session {
	return &Session{
		target: "i-0123456789abcdef0",
		opts:   Options{Timeout: timeout},
		lines:  make(chan string, 64),
	}
}

func TestSession_Exec(t *testing.T) {
	s := newTestSession(2 * time.Second)
	s.stdin = &scriptedStdin{s: s, output: []string{"hello", "world"}, rc: "0"}

	out, rc, err := s.Exec(context.Background(), "echo hello; echo world")

	require.NoError(t, err)
	assert.Equal(t, 0, rc)
	assert.Equal(t, "hello\nworld\n", out)
}

func TestSession_Exec_NonzeroExit(t *testing.T) {
	s := newTestSession(2 * time.Second)
	s.stdin = &scriptedStdin{s: s, rc: "127"}

	out, rc, err := s.Exec(context.Background(), "nosuchcommand")

	require.NoError(t, err)
	assert.Equal(t, 127, rc)
	assert.Empty(t, out)
}

func TestSession_Exec_Timeout(t *testing.T) {
	s := newTestSession(50 * time.Millisecond)
	s.stdin = nopWriteCloser{}

	_, rc, err := s.Exec(context.Background(), "sleep 600")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Equal(t, -1, rc)
}

func TestSession_Exec_ClosedChannel(t *testing.T) {
	s := newTestSession(time.Second)
	s.stdin = nopWriteCloser{}
	close(s.lines)

	_, _, err := s.Exec(context.Background(), "true")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "closed mid-command")
}

func TestSession_Exec_ContextCanceled(t *testing.T) {
	s := newTestSession(time.Minute)
	s.stdin = nopWriteCloser{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Exec(ctx, "true")

	assert.ErrorIs(t, err, context.Canceled)
}

type nopWriteCloser struct{}

func (nopWriteCloser) Write(p []byte) (int, error) { return len(p), nil }
func (nopWriteCloser) Close() error                { return nil }
