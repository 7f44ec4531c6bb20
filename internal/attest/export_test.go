package attest

import "strconv"

// Do

func (do *Do) Cancel() {
	do.cancel()
}

func (do *Do) MockProcess(name, port string) {
	proc := &Process{addr: "127.0.0.1:" + port, done: make(chan struct{})}

	proc.port, _ = strconv.Atoi(port)

	do.processes.Set(name, proc)
}
