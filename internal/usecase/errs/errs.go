// Package errs is the catalog of expected failures returned by use cases.
package errs

import (
	"fmt"

	"userapi/internal/result"
)

// KindRateLimited is the custom subkind for throttled requests.
const KindRateLimited = 429

const (
	general = "General"
	user    = "User"
)

// RateLimitExceeded carries the custom subkind KindRateLimited.
func RateLimitExceeded(retryAfterSeconds int) result.Error {
	if retryAfterSeconds <= 0 {
		return result.Custom(KindRateLimited, general+".RateLimitExceeded", "Too many requests. Please try again later.")
	}
	return result.Custom(KindRateLimited, general+".RateLimitExceeded",
		fmt.Sprintf("Too many requests. Please try again in %d seconds.", retryAfterSeconds),
		result.WithMetadata("retryAfterSeconds", retryAfterSeconds),
	)
}

func UserNotFoundByID(id int64) result.Error {
	return result.NotFound(user+".NotFound",
		fmt.Sprintf("User with ID '%d' was not found.", id),
		result.WithMetadata("userId", id),
	)
}

// InvalidCredentials is a validation error so login failures map to 400.
func InvalidCredentials() result.Error {
	return result.Validation(user+".InvalidCredentials", "The provided credentials are invalid.")
}

func UserAlreadyExists() result.Error {
	return result.Conflict(user+".AlreadyExists", "A user with the given email already exists.")
}

func UserAlreadyExistsByEmail(email string) result.Error {
	return result.Conflict(user+".AlreadyExists",
		fmt.Sprintf("A user with email '%s' already exists.", email),
		result.WithMetadata("email", email),
	)
}

func Unauthorized() result.Error {
	return result.Unauthorized(user+".Unauthorized", "You are not authorized to perform this action.")
}

func UnauthorizedFor(action string) result.Error {
	return result.Unauthorized(user+".Unauthorized",
		fmt.Sprintf("You are not authorized to %s.", action),
		result.WithMetadata("action", action),
	)
}
