package attest

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/st3v3nmw/hiscore/pkg/threadsafe"
)

// Do provides the test harness and acts as the test runner
type Do struct {
	processes  *threadsafe.Map[string, *Process]
	config     *Config
	workingDir string

	ctx    context.Context
	cancel context.CancelFunc
}

// newDo creates a new Do instance with custom configuration
func newDo(ctx context.Context, config *Config) *Do {
	doCtx, cancel := context.WithCancel(ctx)

	// Build working directory path with timestamp
	timestamp := time.Now().Format("20060102-150405.000")
	workingDir := filepath.Join(config.WorkingDir, fmt.Sprintf("run-%s", timestamp))

	return &Do{
		processes:  threadsafe.NewMap[string, *Process](),
		config:     config,
		workingDir: workingDir,
		ctx:        doCtx,
		cancel:     cancel,
	}
}

// Process represents a running server process
type Process struct {
	cmd     *exec.Cmd
	args    []string
	logFile *os.File
	done    chan struct{}

	port int
	addr string
}

// exited reports whether the process has terminated, closing its log if so
func (proc *Process) exited() bool {
	select {
	case <-proc.done:
		if proc.logFile != nil {
			proc.logFile.Close()
			proc.logFile = nil
		}
		return true
	default:
		return false
	}
}

// getProcess retrieves a process by name or panics if not found
func (do *Do) getProcess(name string) *Process {
	if proc, exists := do.processes.Get(name); exists {
		return proc
	}

	panic(fmt.Sprintf("process %q not found", name))
}

// Start starts the server with an OS-assigned port
func (do *Do) Start(name string, args ...string) {
	do.startWithPort(name, 0, args...)
}

// startWithPort starts the server on the specified port
func (do *Do) startWithPort(name string, port int, args ...string) {
	select {
	case <-do.ctx.Done():
		return
	default:
	}

	if do.config.Attach != "" {
		proc := &Process{addr: do.config.Attach, done: make(chan struct{})}
		do.processes.Set(name, proc)
		do.waitForPort(proc, "")
		return
	}

	if err := os.MkdirAll(do.workingDir, 0755); err != nil {
		panic(fmt.Sprintf("failed to create working directory: %v", err))
	}

	// Get OS-assigned port
	if port == 0 {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			panic(fmt.Sprintf("failed to get OS-assigned port: %v", err))
		}
		port = listener.Addr().(*net.TCPAddr).Port
		listener.Close()
	}

	// Start the process
	newArgs := append([]string{}, do.config.Args...)
	newArgs = append(newArgs,
		fmt.Sprintf("--port=%d", port),
		fmt.Sprintf("--working-dir=%s", do.workingDir),
	)
	newArgs = append(newArgs, args...)

	cmd := exec.CommandContext(do.ctx, do.config.Command, newArgs...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// Redirect stdout/stderr to log file
	logPath := filepath.Join(do.workingDir, fmt.Sprintf("%s.log", name))
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		panic(fmt.Sprintf("failed to create log file: %v", err))
	}
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	err = cmd.Start()
	if err != nil {
		logFile.Close()
		panic(err.Error())
	}

	proc := &Process{
		port:    port,
		addr:    fmt.Sprintf("127.0.0.1:%d", port),
		cmd:     cmd,
		args:    args,
		logFile: logFile,
		done:    make(chan struct{}),
	}
	go func() {
		cmd.Wait()
		close(proc.done)
	}()

	do.processes.Set(name, proc)
	do.waitForPort(proc, logPath)
}

// waitForPort waits for a process to accept connections on its port
func (do *Do) waitForPort(proc *Process, logPath string) {
	host := proc.addr

	succeeded := eventually(do.ctx, func() bool {
		conn, err := net.DialTimeout("tcp", host, 100*time.Millisecond)
		if err != nil {
			return false
		}

		conn.Close()
		return true
	}, do.config.ProcessStartTimeout, do.config.RetryPollInterval)

	if !succeeded {
		select {
		case <-do.ctx.Done():
			return
		default:
			if logPath == "" {
				panic(fmt.Sprintf("Could not connect to http://%s.\n\n"+
					"Check that the server is running and reachable.", host))
			}

			panic(fmt.Sprintf(
				"Could not connect to http://%s.\n\n"+
					"Possible issues:\n"+
					"- Server not listening on the --port it was given (%d)\n"+
					"- Server crashing during startup\n\n"+
					"Check the server log at %s", host, proc.port, logPath,
			))
		}
	}
}

// Stop sends SIGTERM to the process, then SIGKILL after timeout
func (do *Do) Stop(name string) {
	proc := do.getProcess(name)
	if proc.cmd == nil || proc.cmd.Process == nil || proc.exited() {
		return
	}

	pgid := proc.cmd.Process.Pid
	err := syscall.Kill(-pgid, syscall.SIGTERM)
	if err != nil {
		fmt.Fprintln(do.config.Output, red("Error stopping process running @"), red(proc.addr))
		return
	}

	// Wait for graceful exit, force kill if timeout
	select {
	case <-proc.done:
	case <-time.After(do.config.ProcessShutdownTimeout):
		do.Kill(name)
	}

	// Close log file after process exits
	if proc.logFile != nil {
		proc.logFile.Close()
		proc.logFile = nil
	}
}

// Kill sends SIGKILL to kill the process immediately
func (do *Do) Kill(name string) {
	proc := do.getProcess(name)
	if proc.cmd == nil || proc.cmd.Process == nil || proc.exited() {
		return
	}

	pgid := proc.cmd.Process.Pid
	err := syscall.Kill(-pgid, syscall.SIGKILL)
	if err != nil {
		fmt.Fprintln(do.config.Output, red("Error killing process running @"), red(proc.addr))
	}
	<-proc.done

	// Close log file if not already closed (e.g., when called directly, not via Stop)
	if proc.logFile != nil {
		proc.logFile.Close()
		proc.logFile = nil
	}
}

// Restart stops the process and starts it again on the same port and
// working directory
func (do *Do) Restart(name string, sig ...syscall.Signal) {
	proc := do.getProcess(name)
	if proc.cmd == nil {
		panic(fmt.Sprintf("Cannot restart %q: the server at http://%s was not started by the harness.\n"+
			"Run this stage without --addr.", name, proc.addr))
	}

	signal := syscall.SIGTERM
	if len(sig) > 0 {
		signal = sig[0]
	}

	switch signal {
	case syscall.SIGKILL:
		do.Kill(name)
	default:
		do.Stop(name)
	}

	time.Sleep(do.config.ProcessRestartDelay)

	do.startWithPort(name, proc.port, proc.args...)
}

// Done cleans up all running processes
func (do *Do) Done() {
	var processNames []string
	do.processes.Range(func(name string, _ *Process) bool {
		processNames = append(processNames, name)
		return true
	})

	for _, name := range processNames {
		do.Stop(name)
	}

	do.cancel()
}

// Concurrently runs multiple functions in parallel and waits for completion
func (do *Do) Concurrently(fns ...func()) {
	var wg sync.WaitGroup
	var panicErr any
	var panicMu sync.Mutex

	for _, fn := range fns {
		wg.Add(1)
		go func(f func()) {
			defer wg.Done()
			defer func() {
				err := recover()
				if err != nil {
					panicMu.Lock()
					if panicErr == nil {
						panicErr = err
					}
					panicMu.Unlock()
				}
			}()

			f()
		}(fn)
	}

	wg.Wait()

	if panicErr != nil {
		panic(panicErr)
	}
}

// HTTP creates a deferred HTTP request with query parameters
func (do *Do) HTTP(name, method, path string, params url.Values) *HTTPPromise {
	proc := do.getProcess(name)

	target := fmt.Sprintf("http://%s%s", proc.addr, path)
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	return &HTTPPromise{
		ctx:    do.ctx,
		config: do.config,
		method: method,
		url:    target,
	}
}
