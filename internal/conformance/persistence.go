package conformance

import (
	"fmt"

	. "github.com/st3v3nmw/hiscore/internal/attest"
)

func Persistence() *Suite {
	return New().
		// 0
		Setup(func(do *Do) {
			do.Start(server)
		}).

		// 1
		Test("Store Initial Scores", func(do *Do) {
			submit(do, "2", "1", "Ada", "7000", true,
				"Your server should accept submissions.")
			submit(do, "2", "2", "Grace", "6000", true,
				"Your server should accept submissions.")

			expectNames(do, "2", "1", []string{"Ada", "Emily", "Callum", "Debbie", "Oli"},
				"Your server should return submitted scores before the restart.")
		}).

		// 2
		Test("Verify Scores Survive Restart", func(do *Do) {
			do.Restart(server)

			expectNames(do, "2", "1", []string{"Ada", "Emily", "Callum", "Debbie", "Oli"},
				"Your server should persist lists across clean shutdowns.\n"+
					"Write every accepted submission to disk before responding.")
			expectNames(do, "2", "2", []string{"Grace", "Emily", "Callum", "Debbie", "Oli"},
				"Your server should persist every scope, not just the last one written.")
		}).

		// 3
		Test("Check Integrity After Multiple Restarts", func(do *Do) {
			for cycle := 1; cycle <= 3; cycle++ {
				level := fmt.Sprintf("cycle%d", cycle)
				submit(do, "2", level, fmt.Sprintf("Cycle%d", cycle), "8000", true,
					"Your server should accept submissions between restarts.")

				do.Restart(server)

				do.HTTP(server, "GET", "/get", scope("2", level)).
					Returns().Status(Is(200)).
					JSON("0.name", Is(fmt.Sprintf("Cycle%d", cycle))).
					JSON("#", Is("5")).
					Assert("Your server should keep lists intact across repeated restarts.")
			}

			expectNames(do, "2", "1", []string{"Ada", "Emily", "Callum", "Debbie", "Oli"},
				"Your server should keep older lists intact across repeated restarts.")
		})
}
