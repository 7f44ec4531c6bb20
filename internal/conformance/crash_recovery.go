package conformance

import (
	"fmt"
	"syscall"

	. "github.com/st3v3nmw/hiscore/internal/attest"
)

func CrashRecovery() *Suite {
	return New().
		// 0
		Setup(func(do *Do) {
			do.Start(server)
		}).

		// 1
		Test("Acknowledged Scores Survive a Crash", func(do *Do) {
			submit(do, "3", "1", "Linus", "9500", true,
				"Your server should accept submissions.")

			do.Restart(server, syscall.SIGKILL)

			expectNames(do, "3", "1", []string{"Linus", "Emily", "Callum", "Debbie", "Oli"},
				"Your server acknowledged the submission but lost it after crashing.\n"+
					"Ensure saves are durable (fsync) before responding to the client.")
		}).

		// 2
		Test("Lists Are Never Half Written", func(do *Do) {
			for i := 1; i <= 50; i++ {
				submit(do, "3", "burst", fmt.Sprintf("P%d", i), fmt.Sprint(5000+i*10), true,
					"Your server should accept a rapid burst of submissions.")
			}

			do.Restart(server, syscall.SIGKILL)

			do.HTTP(server, "GET", "/get", scope("3", "burst")).
				Returns().Status(Is(200)).
				JSON("#", Is("5")).
				JSON("0.name", Is("P50")).
				JSON("4.name", Is("P46")).
				Assert("Your server should recover a complete list after a crash.\n" +
					"Write to a temporary file and rename it over the old one so a crash\n" +
					"never leaves a truncated or empty list behind.")
		})
}
