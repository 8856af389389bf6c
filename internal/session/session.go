// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/google/uuid"

	"github.com/awsctl/awsctl/internal/log"
)

// Options configures a session against a single target instance.
type Options struct {
	// Path to the session-manager-plugin binary.
	Plugin string
	// Region the target instance lives in.
	Region string
	// Optional shared credentials profile handed to the plugin.
	Profile string
	// SSM document backing the session.
	DocumentName string
	// Number of attempts for opening the session.
	Retries int
	// How long Exec waits for the end sentinel.
	Timeout time.Duration
	// SSM endpoint handed to the plugin. Derived from Region when empty.
	Endpoint string
}

// endpoint returns the SSM endpoint the plugin should talk to.
func (o Options) endpoint() string {
	if o.Endpoint != "" {
		return o.Endpoint
	}
	return fmt.Sprintf("https://ssm.%s.amazonaws.com", o.Region)
}

// Session is an open Session Manager channel to one instance, multiplexed
// through a session-manager-plugin subprocess.
type Session struct {
	client *ssm.Client
	opts   Options
	target string

	id    *string
	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan string

	mu     sync.Mutex
	closed bool
}

// Open starts an SSM session against target and attaches the plugin
// subprocess to it. Opening is attempted up to opts.Retries times.
func Open(ctx context.Context, client *ssm.Client, target string, opts Options) (*Session, error) {
	if opts.Retries < 1 {
		opts.Retries = 1
	}

	input := &ssm.StartSessionInput{
		Target: aws.String(target),
	}
	if opts.DocumentName != "" {
		input.DocumentName = aws.String(opts.DocumentName)
	}

	var out *ssm.StartSessionOutput
	var err error
	for attempt := 1; attempt <= opts.Retries; attempt++ {
		out, err = client.StartSession(ctx, input)
		if err == nil {
			break
		}
		log.Warnf("start session attempt %d/%d failed: %v", attempt, opts.Retries, err)
		if attempt < opts.Retries {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("starting session on %s: %w", target, err)
	}

	args, err := buildPluginArgs(out, input, opts)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // The plugin path is operator supplied configuration.
	cmd := exec.CommandContext(ctx, opts.Plugin, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("plugin stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("plugin stdout: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawning %s: %w", opts.Plugin, err)
	}
	log.Debugf("plugin started: pid=%d, session=%s", cmd.Process.Pid, aws.ToString(out.SessionId))

	s := &Session{
		client: client,
		opts:   opts,
		target: target,
		id:     out.SessionId,
		cmd:    cmd,
		stdin:  stdin,
		lines:  make(chan string, 64),
	}

	// Pump plugin output into the line channel so Exec can apply a deadline.
	go func() {
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			s.lines <- scanner.Text()
		}
		close(s.lines)
	}()

	if err := s.prepareTerminal(); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// prepareTerminal quiets the remote shell. Echo has to go or the wrapped
// command text would pollute the frame we parse, and the prompt would race
// the sentinels.
func (s *Session) prepareTerminal() error {
	for _, setup := range []string{"stty -echo", "PS1=''"} {
		if _, err := fmt.Fprintf(s.stdin, "%s\n", setup); err != nil {
			return fmt.Errorf("preparing terminal: %w", err)
		}
	}
	return nil
}

// Exec runs a single command on the target and returns its combined output
// and exit code. The command is framed between random sentinels so that the
// surrounding shell noise never leaks into the result.
func (s *Session) Exec(ctx context.Context, command string) (string, int, error) {
	markBegin := uuid.NewString()
	markEnd := uuid.NewString()

	wrapped := wrapCommand(command, markBegin, markEnd)
	log.Tracef("exec wrapped: target=%s, command=%s", s.target, command)

	if _, err := io.WriteString(s.stdin, wrapped); err != nil {
		return "", -1, fmt.Errorf("writing command: %w", err)
	}

	timer := time.NewTimer(s.opts.Timeout)
	defer timer.Stop()

	var buf strings.Builder
	began := false
	for {
		select {
		case <-ctx.Done():
			return "", -1, ctx.Err()
		case <-timer.C:
			return "", -1, fmt.Errorf("timed out after %s waiting for command sentinel on %s",
				s.opts.Timeout, s.target)
		case line, ok := <-s.lines:
			if !ok {
				return "", -1, fmt.Errorf("session to %s closed mid-command", s.target)
			}

			if !began {
				if strings.TrimSpace(line) == markBegin {
					began = true
				}
				continue
			}

			if strings.Contains(line, markEnd) {
				rc, err := parseExitCode(line, markEnd)
				if err != nil {
					return buf.String(), -1, err
				}
				return buf.String(), rc, nil
			}

			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}
}

// Interactive hands the terminal over to a fresh plugin subprocess for the
// lifetime of the shell. The framed channel is not used here.
func Interactive(ctx context.Context, client *ssm.Client, target string, opts Options) error {
	input := &ssm.StartSessionInput{
		Target: aws.String(target),
	}
	if opts.DocumentName != "" {
		input.DocumentName = aws.String(opts.DocumentName)
	}

	out, err := client.StartSession(ctx, input)
	if err != nil {
		return fmt.Errorf("starting session on %s: %w", target, err)
	}
	defer func() {
		_, terr := client.TerminateSession(context.Background(),
			&ssm.TerminateSessionInput{SessionId: out.SessionId})
		if terr != nil {
			log.Warnf("terminate session %s: %v", aws.ToString(out.SessionId), terr)
		}
	}()

	args, err := buildPluginArgs(out, input, opts)
	if err != nil {
		return err
	}

	//nolint:gosec // The plugin path is operator supplied configuration.
	cmd := exec.CommandContext(ctx, opts.Plugin, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("session to %s: %w", target, err)
	}
	return nil
}

// Close terminates the SSM session and tears down the plugin subprocess.
// Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error

	if s.id != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := s.client.TerminateSession(ctx,
			&ssm.TerminateSessionInput{SessionId: s.id}); err != nil {
			errs = append(errs, fmt.Errorf("terminating session: %w", err))
		}
	}

	if s.stdin != nil {
		_ = s.stdin.Close()
	}
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
		_ = s.cmd.Wait()
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// buildPluginArgs marshals the handoff arguments the session-manager-plugin
// expects: the StartSession response, the region, the operation name, the
// profile, the StartSession request and the SSM endpoint.
func buildPluginArgs(out *ssm.StartSessionOutput, input *ssm.StartSessionInput, opts Options) ([]string, error) {
	payload, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshaling session payload: %w", err)
	}
	request, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshaling session request: %w", err)
	}

	return []string{
		string(payload),
		opts.Region,
		"StartSession",
		opts.Profile,
		string(request),
		opts.endpoint(),
	}, nil
}

// wrapCommand frames a command between begin/end sentinels. The end line
// carries the command's exit code, which `;` chaining preserves.
func wrapCommand(command, markBegin, markEnd string) string {
	return fmt.Sprintf("echo '%s'; %s; echo \"$? %s\"\n", markBegin, command, markEnd)
}

// parseExitCode extracts the remote exit code from the end sentinel line.
func parseExitCode(line, markEnd string) (int, error) {
	fieldsStr := strings.TrimSpace(strings.ReplaceAll(line, markEnd, ""))
	rc, err := strconv.Atoi(fieldsStr)
	if err != nil {
		return -1, fmt.Errorf("parsing exit code from %q: %w", line, err)
	}
	return rc, nil
}
