// Package shared holds the sentinel errors that classify failures escaping
// the result channel: collaborator outages, argument defects, timeouts and
// the like.
//
// Adapters mark third-party errors with a kind so the HTTP boundary can map
// them without knowing the adapter:
//
//	if pgErr.Code == "23505" {
//	    return shared.MarkKind(err, shared.KindConflict)
//	}
//
// KindOf classifies an error using a fixed priority order, so joined errors
// resolve deterministically:
//
//	Priority | Kind
//	---------|--------------------
//	1        | KindCanceled
//	2        | KindTimeout
//	3        | KindNotFound
//	4        | KindValidation
//	5        | KindUnauthorized
//	6        | KindForbidden
//	7        | KindConflict
//	8        | KindNotImplemented
//	9        | KindUnavailable
//	10       | KindInternal
//
// Expected business failures never use these sentinels; they travel as
// result.Error values instead.
package shared
