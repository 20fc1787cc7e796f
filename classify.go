package goSession

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"syscall"
)

// Classify maps a login failure to its ErrorKind. The checks run in a fixed
// order: invalid response, timeout, cancellation, network, HTTP status, and
// finally unclassified.
func Classify(err error) ErrorKind {
	kind, _ := classify(err)
	return kind
}

// classify also reports whether the error carried a server status, which
// decides whether an offline probe may override the result.
func classify(err error) (ErrorKind, bool) {
	if err == nil {
		return KindNone, false
	}
	if errors.Is(err, ErrInvalidResponse) {
		return KindInvalidResponse, false
	}

	var ae *AuthError
	hasAuthErr := errors.As(err, &ae)

	if isTimeout(err, ae) {
		return KindTimeout, false
	}
	if errors.Is(err, context.Canceled) {
		return KindUnclassified, false
	}
	if isNetwork(err, ae) {
		return KindNetworkUnreachable, false
	}

	status := 0
	if hasAuthErr {
		status = ae.Status
	} else {
		var sc interface{ StatusCode() int }
		if errors.As(err, &sc) {
			status = sc.StatusCode()
		}
	}

	switch {
	case status == 401:
		return KindInvalidCredentials, true
	case status == 403:
		return KindForbidden, true
	case status == 429:
		return KindRateLimited, true
	case status >= 500 && status <= 599:
		return KindServerError, true
	}
	return KindUnclassified, status > 0
}

func isTimeout(err error, ae *AuthError) bool {
	if ae != nil && ae.Timeout {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isNetwork(err error, ae *AuthError) bool {
	if ae != nil && ae.NetworkError {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	for _, errno := range []error{
		syscall.ECONNREFUSED,
		syscall.ECONNRESET,
		syscall.ENETUNREACH,
		syscall.EHOSTUNREACH,
		syscall.ECONNABORTED,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}

	// A transport failure surfaced by net/http without a more specific cause,
	// e.g. the connection closing mid-response.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return errors.Is(urlErr.Err, io.EOF) || errors.Is(urlErr.Err, io.ErrUnexpectedEOF)
	}
	return false
}

// rawMessage is the text shown for unclassified failures.
func rawMessage(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func (s *Store) classify(ctx context.Context, err error) ErrorKind {
	kind, hasStatus := classify(err)
	if kind == KindUnclassified && !hasStatus && s.probe != nil && !s.probe.Online(ctx) {
		return KindNetworkUnreachable
	}
	return kind
}
