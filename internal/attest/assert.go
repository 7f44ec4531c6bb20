package attest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// eventually checks that the condition becomes true within the given period.
func eventually(ctx context.Context, condition func() bool, timeout, pollInterval time.Duration) bool {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(pollInterval):
			if condition() {
				return true
			}
		}
	}

	return false
}

// consistently checks that the condition is always true for the given period.
func consistently(ctx context.Context, condition func() bool, timeout, pollInterval time.Duration) bool {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(pollInterval):
			if !condition() {
				return false
			}
		}
	}

	return true
}

// HTTPAssert provides assertions for HTTP response validation.
type HTTPAssert struct {
	help   string
	config *Config

	promise        *HTTPPromise
	responseBody   string
	responseStatus int
	responseHeader http.Header
	requestErr     error

	statusCheckers []Checker[int]
	bodyCheckers   []Checker[string]
	headerCheckers []HeaderChecker
	jsonCheckers   []JSONFieldChecker
}

// Status adds expected HTTP response status code checkers.
// All checkers must pass.
func (a *HTTPAssert) Status(checkers ...Checker[int]) *HTTPAssert {
	a.statusCheckers = append(a.statusCheckers, checkers...)
	return a
}

// Body adds expected HTTP response body checkers.
// All checkers must pass.
func (a *HTTPAssert) Body(checkers ...Checker[string]) *HTTPAssert {
	a.bodyCheckers = append(a.bodyCheckers, checkers...)
	return a
}

// Header adds expected checkers for a response header.
// All checkers must pass.
func (a *HTTPAssert) Header(name string, checkers ...Checker[string]) *HTTPAssert {
	for _, checker := range checkers {
		a.headerCheckers = append(a.headerCheckers, HeaderChecker{
			Name:    name,
			Checker: checker,
		})
	}

	return a
}

// JSON adds expected checkers for a JSON field at the given gjson path.
// All checkers must pass.
func (a *HTTPAssert) JSON(path string, checkers ...Checker[string]) *HTTPAssert {
	for _, checker := range checkers {
		a.jsonCheckers = append(a.jsonCheckers, JSONFieldChecker{
			Path:    path,
			Checker: checker,
		})
	}

	return a
}

// Assert runs the request according to the promise's timing and panics with
// help appended if the response does not match.
func (a *HTTPAssert) Assert(help string) {
	a.help = help

	p := a.promise
	switch p.mode {
	case untilPass:
		eventually(p.ctx, a.execute, p.timeout, a.config.RetryPollInterval)
	case whileHolding:
		consistently(p.ctx, a.execute, p.timeout, a.config.RetryPollInterval)
	default:
		a.execute()
	}

	a.check()
}

// BodyString runs the request once, asserts it, and returns the body.
func (a *HTTPAssert) BodyString(help string) string {
	a.Assert(help)
	return a.responseBody
}

func (a *HTTPAssert) execute() bool {
	client := &http.Client{Timeout: a.config.ExecuteTimeout}
	p := a.promise

	req, err := http.NewRequestWithContext(p.ctx, p.method, p.url, nil)
	if err != nil {
		panic(fmt.Sprintf("An error occurred: %v", err))
	}

	resp, err := client.Do(req)
	if err != nil {
		a.requestErr = err
		return false
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		a.requestErr = err
		return false
	}

	a.requestErr = nil
	a.responseBody = string(responseBody)
	a.responseStatus = resp.StatusCode
	a.responseHeader = resp.Header

	return checkAll(a.responseStatus, a.statusCheckers, nil) &&
		checkAll(a.responseBody, a.bodyCheckers, nil) &&
		checkAllHeaders(a.responseHeader, a.headerCheckers, nil) &&
		checkAllJSON(a.responseBody, a.jsonCheckers, nil)
}

func (a *HTTPAssert) check() {
	p := a.promise

	if a.requestErr != nil {
		panic(fmt.Sprintf("%s %s\n  Request failed: %v%s", p.method, p.url, a.requestErr, a.formatHelp()))
	}

	checkAll(a.responseStatus, a.statusCheckers, func(m Checker[int], actual int) {
		msg := fmt.Sprintf("%s %s\n  Expected status: %s\n  Actual status: %d %s%s",
			p.method, p.url, m.Expected(), actual,
			http.StatusText(actual), a.formatHelp())
		panic(msg)
	})

	checkAll(a.responseBody, a.bodyCheckers, func(m Checker[string], actual string) {
		msg := fmt.Sprintf("%s %s\n  Expected response: %s\n  Actual response: %q%s",
			p.method, p.url, m.Expected(), actual, a.formatHelp())
		panic(msg)
	})

	checkAllHeaders(a.responseHeader, a.headerCheckers, func(m HeaderChecker, actual string) {
		msg := fmt.Sprintf("%s %s\n  Expected header %s: %s\n  Actual value: %q%s",
			p.method, p.url, m.Name, m.Checker.Expected(), actual, a.formatHelp())
		panic(msg)
	})

	checkAllJSON(a.responseBody, a.jsonCheckers, func(m JSONFieldChecker, actual any) {
		msg := fmt.Sprintf("%s %s\n  Expected JSON field %q: %s\n  Actual value: %v%s",
			p.method, p.url, m.Path, m.Checker.Expected(), actual, a.formatHelp())
		panic(msg)
	})
}

func (a *HTTPAssert) formatHelp() string {
	return "\n\n  " + strings.ReplaceAll(a.help, "\n", "\n  ")
}
