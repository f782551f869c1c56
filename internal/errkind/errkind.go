// Package errkind provides short constructors for the closed kac.Error
// kinds used throughout the engine, following the same
// fmt.Errorf("...: %w", err) wrapping idiom used elsewhere but
// attaching a Kind.
package errkind

import "github.com/s2ungeda/kac/pkg/kac"

func Network(msg string, cause error) *kac.Error {
	return kac.New(kac.NetworkError, msg, cause)
}

func Timeout(msg string, cause error) *kac.Error {
	return kac.New(kac.ConnectionTimeout, msg, cause)
}

func Closed(msg string, cause error) *kac.Error {
	return kac.New(kac.ConnectionClosed, msg, cause)
}

func Api(msg string, cause error) *kac.Error {
	return kac.New(kac.ApiError, msg, cause)
}

func Auth(msg string, cause error) *kac.Error {
	return kac.New(kac.AuthenticationFailed, msg, cause)
}

func RateLimited(msg string, cause error) *kac.Error {
	return kac.New(kac.RateLimited, msg, cause)
}

func InsufficientBalance(msg string, cause error) *kac.Error {
	return kac.New(kac.InsufficientBalance, msg, cause)
}

func OrderNotFound(msg string, cause error) *kac.Error {
	return kac.New(kac.OrderNotFound, msg, cause)
}

func Exchange(msg string, cause error) *kac.Error {
	return kac.New(kac.ExchangeError, msg, cause)
}

func Parse(msg string, cause error) *kac.Error {
	return kac.New(kac.ParseError, msg, cause)
}

func Config(msg string, cause error) *kac.Error {
	return kac.New(kac.ConfigError, msg, cause)
}

func InvalidRequest(msg string, cause error) *kac.Error {
	return kac.New(kac.InvalidRequest, msg, cause)
}

func InvalidState(msg string, cause error) *kac.Error {
	return kac.New(kac.InvalidState, msg, cause)
}

func PremiumTooLow(msg string, cause error) *kac.Error {
	return kac.New(kac.PremiumTooLow, msg, cause)
}

func RiskLimitExceeded(msg string, cause error) *kac.Error {
	return kac.New(kac.RiskLimitExceeded, msg, cause)
}
