package conformance

import (
	"fmt"

	. "github.com/st3v3nmw/hiscore/internal/attest"
)

func Concurrency() *Suite {
	return New().
		// 0
		Setup(func(do *Do) {
			do.Start(server)
		}).

		// 1
		Test("Concurrent Qualifying Submissions", func(do *Do) {
			racers := []string{"racer1", "racer2", "racer3", "racer4", "racer5"}

			fns := []func(){}
			for i, name := range racers {
				fns = append(fns, func() {
					submit(do, "4", "1", name, fmt.Sprint(9001+i), true,
						"Your server should report every qualifying concurrent submission as placed.")
				})
			}
			do.Concurrently(fns...)

			expectNames(do, "4", "1", []string{"racer5", "racer4", "racer3", "racer2", "racer1"},
				"Your server lost a concurrent submission.\n"+
					"Serialize load, merge and save per (version, level) so updates are not overwritten.")
		}).

		// 2
		Test("Concurrent Non-Qualifying Submissions", func(do *Do) {
			before := get(do, "4", "2", "Your server should return the stored list.")

			fns := []func(){}
			for i := 1; i <= 50; i++ {
				fns = append(fns, func() {
					submit(do, "4", "2", fmt.Sprintf("low%d", i), fmt.Sprint(i), false,
						"Your server should reject scores below the lowest kept record.")
				})
			}
			do.Concurrently(fns...)

			do.HTTP(server, "GET", "/get", scope("4", "2")).
				Returns().Status(Is(200)).Body(Is(before)).
				Assert("Your server should leave the list unchanged after losing submissions.")
		}).

		// 3
		Test("Concurrent Reads and Writes Across Scopes", func(do *Do) {
			fns := []func(){}
			for i := 1; i <= 20; i++ {
				level := fmt.Sprintf("mixed%d", i%4)
				fns = append(fns,
					func() { get(do, "4", level, "Your server should serve reads during writes.") },
					func() {
						do.HTTP(server, "POST", "/submit", submission("4", level, fmt.Sprintf("m%d", i), fmt.Sprint(6000+i))).
							Returns().Status(Is(200)).
							Assert("Your server should serve writes during reads.")
					},
				)
			}
			do.Concurrently(fns...)

			for l := 0; l < 4; l++ {
				do.HTTP(server, "GET", "/get", scope("4", fmt.Sprintf("mixed%d", l))).
					Returns().Status(Is(200)).
					JSON("#", Is("5")).
					JSON("0.name", Not[string](Is("Emily"))).
					JSON("4.score", AtLeast(6000)).
					Assert("Your server should keep every list capped at five records.\n" +
						"Every concurrent write outranks the defaults, so none of them may remain.")
			}
		})
}
