package testutil

import (
	"net/http"
	"time"

	id "examreg/pkg/domain"
	"examreg/pkg/requestcontext"
)

// AsApplicant puts the account id and actor on the request the way the bearer
// middleware does.
func AsApplicant(req *http.Request, accountID id.AccountID) *http.Request {
	ctx := requestcontext.WithAccountID(req.Context(), accountID)
	ctx = requestcontext.WithActor(ctx, "account:"+accountID.String())
	return req.WithContext(ctx)
}

// AsAdmin marks the request as passed through the admin token check.
func AsAdmin(req *http.Request) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), "admin"))
}

// At pins the request time so created dates are deterministic.
func At(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
