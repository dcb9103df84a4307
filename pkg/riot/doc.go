// Package riot provides a rate-limited client for the Riot Games API.
//
// Every request passes through a single dispatcher that consults the
// client's sliding-window rate limiter, issues the GET, and classifies
// the outcome. Transient failures (timeouts, 5xx) are retried with
// exponential backoff up to the retry budget; 429 responses are retried
// after the server's Retry-After delay without consuming the budget;
// everything else is terminal.
//
// Example usage:
//
//	client, err := riot.NewClient(apiKey, riot.Options{Region: "na1"})
//	if err != nil {
//	    // unknown region, listed valid codes in the error
//	}
//
//	account, err := client.AccountByRiotID(ctx, "Doublelift", "NA1")
//	if err != nil {
//	    var apiErr *errors.Error
//	    if errors.As(err, &apiErr) {
//	        switch apiErr.Kind {
//	        case errors.KindNotFound:
//	            // no such player
//	        case errors.KindForbidden:
//	            // key invalid or revoked
//	        }
//	    }
//	}
//
//	ids, err := client.MatchIDs(ctx, account.PUUID, riot.MatchIDsQuery{Count: 20})
package riot
