package conformance

import (
	"time"

	. "github.com/st3v3nmw/hiscore/internal/attest"
)

func StrictReads() *Suite {
	return New().
		// 0
		Setup(func(do *Do) {
			do.Start(server)
		}).

		// 1
		Test("GET on an Unseen Scope Is Not Found", func(do *Do) {
			do.HTTP(server, "GET", "/get", scope("strict", "1")).
				Consistently().For(500 * time.Millisecond).
				Returns().Status(Is(404)).
				JSON("success", Is("false")).
				Assert("Your server should not create lists on read in strict mode.\n" +
					"Return 404 for a (version, level) that has never been submitted to.")
		}).

		// 2
		Test("SUBMIT Starts a Scope", func(do *Do) {
			submit(do, "strict", "1", "First", "100", false,
				"Your server should create the list on the first submission, even in strict mode.")

			do.HTTP(server, "GET", "/get", scope("strict", "1")).
				Returns().Status(Is(200)).
				JSON("#", Is("5")).
				JSON("0.name", Is("Emily")).
				JSON("4.name", Is("PJ")).
				Assert("Your server should seed the default records before merging the first submission.\n" +
					"A score of 100 does not beat the defaults, so the list stays at the defaults.")
		})
}
