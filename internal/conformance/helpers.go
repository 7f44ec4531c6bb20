package conformance

import (
	"fmt"
	"net/url"

	. "github.com/st3v3nmw/hiscore/internal/attest"
)

const server = "server"

var defaultNames = []string{"Emily", "Callum", "Debbie", "Oli", "PJ"}

func scope(version, level string) url.Values {
	return url.Values{"version": {version}, "level": {level}}
}

func submission(version, level, name, score string) url.Values {
	params := scope(version, level)
	params.Set("name", name)
	params.Set("score", score)
	return params
}

// get asserts a successful read and returns the raw body.
func get(do *Do, version, level, help string) string {
	return do.HTTP(server, "GET", "/get", scope(version, level)).
		Returns().Status(Is(200)).
		Header("Content-Type", Contains("application/json")).
		BodyString(help)
}

// submit asserts a successful submission with the expected placement.
func submit(do *Do, version, level, name, score string, placed bool, help string) {
	do.HTTP(server, "POST", "/submit", submission(version, level, name, score)).
		Returns().Status(Is(200)).
		JSON("0.success", Is("true")).
		JSON("1.new_high_score", Is(fmt.Sprint(placed))).
		Assert(help)
}

// expectNames asserts the list at scope holds exactly names, in order.
func expectNames(do *Do, version, level string, names []string, help string) {
	a := do.HTTP(server, "GET", "/get", scope(version, level)).
		Returns().Status(Is(200)).
		JSON("#", Is(fmt.Sprint(len(names))))

	for i, name := range names {
		a = a.JSON(fmt.Sprintf("%d.name", i), Is(name))
	}

	a.Assert(help)
}
