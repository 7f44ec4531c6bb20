package attest

import (
	"context"
	"time"
)

// retryMode controls how an assertion evaluates its request over time.
type retryMode int

const (
	// once sends the request a single time.
	once retryMode = iota
	// untilPass retries until the checks pass or the timeout expires.
	untilPass
	// whileHolding repeats the request and requires every attempt to pass.
	whileHolding
)

// HTTPPromise is a request that has not been sent yet. Returns().Assert
// sends it according to its retry mode.
type HTTPPromise struct {
	ctx    context.Context
	config *Config

	method string
	url    string

	mode    retryMode
	timeout time.Duration
}

// Eventually retries the request until the assertion passes.
func (p *HTTPPromise) Eventually() *HTTPPromise {
	p.mode = untilPass
	p.timeout = p.config.DefaultRetryTimeout
	return p
}

// Within overrides how long Eventually keeps retrying.
func (p *HTTPPromise) Within(timeout time.Duration) *HTTPPromise {
	if p.mode != untilPass {
		panic("Within() can only be called after Eventually()")
	}

	p.timeout = timeout
	return p
}

// Consistently requires the assertion to keep passing.
func (p *HTTPPromise) Consistently() *HTTPPromise {
	p.mode = whileHolding
	p.timeout = p.config.DefaultRetryTimeout
	return p
}

// For overrides how long Consistently keeps checking.
func (p *HTTPPromise) For(timeout time.Duration) *HTTPPromise {
	if p.mode != whileHolding {
		panic("For() can only be called after Consistently()")
	}

	p.timeout = timeout
	return p
}

// Returns starts the list of expectations for the response.
func (p *HTTPPromise) Returns() *HTTPAssert {
	return &HTTPAssert{config: p.config, promise: p}
}
