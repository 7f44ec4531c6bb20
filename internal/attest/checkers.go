package attest

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Checker is a predicate over a response value with a description for
// failure reports.
type Checker[T any] interface {
	Check(actual T) bool
	Expected() string
}

type isChecker[T comparable] struct {
	want T
}

// Is matches values equal to want.
func Is[T comparable](want T) isChecker[T] {
	return isChecker[T]{want: want}
}

func (c isChecker[T]) Check(actual T) bool { return actual == c.want }

func (c isChecker[T]) Expected() string { return fmt.Sprint(c.want) }

type containsChecker struct {
	part string
}

// Contains matches strings that include part.
func Contains(part string) containsChecker {
	return containsChecker{part: part}
}

func (c containsChecker) Check(actual string) bool { return strings.Contains(actual, c.part) }

func (c containsChecker) Expected() string { return fmt.Sprintf("containing %q", c.part) }

type atLeastChecker struct {
	bound float64
}

// AtLeast matches numeric strings, such as JSON scores, that are >= bound.
func AtLeast(bound float64) atLeastChecker {
	return atLeastChecker{bound: bound}
}

func (c atLeastChecker) Check(actual string) bool {
	v, err := strconv.ParseFloat(actual, 64)
	return err == nil && v >= c.bound
}

func (c atLeastChecker) Expected() string { return fmt.Sprintf("at least %v", c.bound) }

type notChecker[T any] struct {
	inner Checker[T]
}

// Not inverts inner.
func Not[T any](inner Checker[T]) notChecker[T] {
	return notChecker[T]{inner: inner}
}

func (c notChecker[T]) Check(actual T) bool { return !c.inner.Check(actual) }

func (c notChecker[T]) Expected() string { return "not " + c.inner.Expected() }

// checkAll reports whether value passes every checker, calling onFail (when
// set) with the first one that does not.
func checkAll[T any](value T, checkers []Checker[T], onFail func(Checker[T], T)) bool {
	for _, c := range checkers {
		if c.Check(value) {
			continue
		}

		if onFail != nil {
			onFail(c, value)
		}
		return false
	}

	return true
}

// JSONFieldChecker applies Checker to the field at a gjson path. Missing
// fields read as the empty string.
type JSONFieldChecker struct {
	Path    string
	Checker Checker[string]
}

func checkAllJSON(body string, checkers []JSONFieldChecker, onFail func(JSONFieldChecker, any)) bool {
	for _, m := range checkers {
		value := gjson.Get(body, m.Path).String()
		if m.Checker.Check(value) {
			continue
		}

		if onFail != nil {
			onFail(m, value)
		}
		return false
	}

	return true
}

// HeaderChecker applies Checker to one response header.
type HeaderChecker struct {
	Name    string
	Checker Checker[string]
}

func checkAllHeaders(header http.Header, checkers []HeaderChecker, onFail func(HeaderChecker, string)) bool {
	for _, m := range checkers {
		value := header.Get(m.Name)
		if m.Checker.Check(value) {
			continue
		}

		if onFail != nil {
			onFail(m, value)
		}
		return false
	}

	return true
}
