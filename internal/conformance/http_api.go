package conformance

import (
	"net/url"
	"strings"
	"time"

	. "github.com/st3v3nmw/hiscore/internal/attest"
)

func HTTPAPI() *Suite {
	return New().
		// 0
		Setup(func(do *Do) {
			do.Start(server)
		}).

		// 1
		Test("GET Seeds the Default List", func(do *Do) {
			do.HTTP(server, "GET", "/get", scope("1", "1")).
				Returns().Status(Is(200)).
				Header("Content-Type", Contains("application/json")).
				JSON("#", Is("5")).
				JSON("0.name", Is("Emily")).JSON("0.score", Is("5000")).
				JSON("1.name", Is("Callum")).JSON("1.score", Is("4000")).
				JSON("2.name", Is("Debbie")).JSON("2.score", Is("3000")).
				JSON("3.name", Is("Oli")).JSON("3.score", Is("2000")).
				JSON("4.name", Is("PJ")).JSON("4.score", Is("1000")).
				Assert("Your server should create a new scope with the five default records.\n" +
					"Ensure GET returns a JSON array of {\"name\", \"score\"} objects, highest first.")
		}).

		// 2
		Test("Repeated GETs Are Identical", func(do *Do) {
			first := get(do, "1", "1", "Your server should return the stored list.")

			do.HTTP(server, "GET", "/get", scope("1", "1")).
				Consistently().For(time.Second).
				Returns().Status(Is(200)).Body(Is(first)).
				Assert("Your server should not change a list on read.\n" +
					"Ensure GET only seeds a scope once and never re-ranks or rewrites it.")
		}).

		// 3
		Test("SUBMIT a New High Score", func(do *Do) {
			submit(do, "1", "1", "Zoe", "10000", true,
				"Your server should report a score that places as a new high score.\n"+
					"Respond with [{\"success\": true}, {\"new_high_score\": true}].")

			expectNames(do, "1", "1", []string{"Zoe", "Emily", "Callum", "Debbie", "Oli"},
				"Your server should insert the new record and keep only the top five.\n"+
					"Ensure the list is sorted by score, highest first, and truncated after merging.")
		}).

		// 4
		Test("SUBMIT a Score That Does Not Place", func(do *Do) {
			before := get(do, "1", "1", "Your server should return the stored list.")

			submit(do, "1", "1", "Bob", "1", false,
				"Your server should accept the submission but report new_high_score false.\n"+
					"A score below the lowest kept record must not enter the list.")

			do.HTTP(server, "GET", "/get", scope("1", "1")).
				Returns().Status(Is(200)).Body(Is(before)).
				Assert("Your server should leave the list unchanged when a score does not place.")
		}).

		// 5
		Test("Equal Scores Keep Their Order", func(do *Do) {
			submit(do, "tie", "1", "Late", "3000", true,
				"Your server should accept a score equal to an existing one.")

			do.HTTP(server, "GET", "/get", scope("tie", "1")).
				Returns().Status(Is(200)).
				JSON("2.name", Is("Debbie")).
				JSON("3.name", Is("Late")).
				Assert("Your server should rank equal scores by their existing order.\n" +
					"Use a stable sort so the earlier record stays ahead of the newcomer.")
		}).

		// 6
		Test("Invalid Requests Are Rejected", func(do *Do) {
			bad := []struct {
				method string
				path   string
				params map[string]string
				help   string
			}{
				{"GET", "/get", map[string]string{"level": "1"}, "a missing version"},
				{"GET", "/get", map[string]string{"version": "1"}, "a missing level"},
				{"GET", "/get", map[string]string{"version": "../../etc", "level": "1"}, "a version containing path separators"},
				{"POST", "/submit", map[string]string{"version": "1", "level": "1", "name": "Zoe"}, "a missing score"},
				{"POST", "/submit", map[string]string{"version": "1", "level": "1", "name": "Zoe", "score": "lots"}, "a non-numeric score"},
				{"POST", "/submit", map[string]string{"version": "1", "level": "1", "score": "10"}, "a missing name"},
				{"POST", "/submit", map[string]string{"version": "1", "level": "1", "name": strings.Repeat("z", 65), "score": "10"}, "an overlong name"},
			}

			for _, tc := range bad {
				params := make(url.Values)
				for k, v := range tc.params {
					params.Set(k, v)
				}

				do.HTTP(server, tc.method, tc.path, params).
					Returns().Status(Is(400)).
					JSON("success", Is("false")).
					Assert("Your server should reject " + tc.help + " with 400 Bad Request.\n" +
						"Validate every parameter before touching storage.")
			}
		}).

		// 7
		Test("Wrong Methods Are Rejected", func(do *Do) {
			do.HTTP(server, "POST", "/get", scope("1", "1")).
				Returns().Status(Is(405)).
				Assert("Your server should only serve /get for GET requests.")

			do.HTTP(server, "GET", "/submit", submission("1", "1", "Zoe", "1")).
				Returns().Status(Is(405)).
				Assert("Your server should only accept /submit as POST.")
		})
}
