package conformance

import (
	. "github.com/st3v3nmw/hiscore/internal/attest"
)

func Isolation() *Suite {
	return New().
		// 0
		Setup(func(do *Do) {
			do.Start(server)
		}).

		// 1
		Test("Scopes Start Independently", func(do *Do) {
			submit(do, "5", "1", "Zoe", "10000", true,
				"Your server should accept submissions to version 5 level 1.")

			for _, s := range [][2]string{{"5", "2"}, {"6", "1"}, {"6", "2"}} {
				expectNames(do, s[0], s[1], defaultNames,
					"Your server should keep each (version, level) pair in its own list.\n"+
						"A submission to version 5 level 1 must not appear anywhere else.")
			}
		}).

		// 2
		Test("Identifiers Are Compared Exactly", func(do *Do) {
			submit(do, "05", "1", "Padded", "9000", true,
				"Your server should accept numeric-looking identifiers with leading zeros.")

			expectNames(do, "5", "1", []string{"Zoe", "Emily", "Callum", "Debbie", "Oli"},
				"Your server should treat version \"05\" and version \"5\" as different scopes.\n"+
					"Use the identifiers as given instead of parsing them as numbers.")
			expectNames(do, "05", "1", []string{"Padded", "Emily", "Callum", "Debbie", "Oli"},
				"Your server should keep the submitted record in the scope it was sent to.")
		})
}
