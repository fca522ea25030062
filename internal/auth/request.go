package auth

import (
	"context"
	"sync"
	"time"
)

// DefaultRequestTTL is how long a pending authorization request stays valid.
const DefaultRequestTTL = 10 * time.Minute

// AuthorizationRequest is one in-flight PKCE authorization. It lives only in
// memory and is consumed by the first callback carrying its state.
type AuthorizationRequest struct {
	URL           string
	State         string
	CodeVerifier  string
	CodeChallenge string
	RedirectURI   string
	ClientID      string
	ExpiresAt     time.Time

	once   sync.Once
	done   chan struct{}
	cred   *Credential
	err    error
	expiry *time.Timer
}

func newAuthorizationRequest() *AuthorizationRequest {
	return &AuthorizationRequest{done: make(chan struct{})}
}

// Done is closed once the request has been completed or has expired.
func (r *AuthorizationRequest) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the callback for this request has been handled and
// returns its outcome, or until ctx is done.
func (r *AuthorizationRequest) Wait(ctx context.Context) (*Credential, error) {
	select {
	case <-r.done:
		return r.cred, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *AuthorizationRequest) resolve(cred *Credential, err error) {
	r.once.Do(func() {
		r.cred, r.err = cred, err
		close(r.done)
	})
}

// pendingRequests indexes outstanding requests by state.
type pendingRequests struct {
	mu       sync.Mutex
	requests map[string]*AuthorizationRequest
}

func newPendingRequests() *pendingRequests {
	return &pendingRequests{requests: make(map[string]*AuthorizationRequest)}
}

// add registers req and arms a timer that expires it at req.ExpiresAt even
// if no later call prunes the set.
func (p *pendingRequests) add(req *AuthorizationRequest, now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pruneLocked(now)
	p.requests[req.State] = req
	req.expiry = time.AfterFunc(req.ExpiresAt.Sub(now), func() {
		p.expire(req)
	})
}

// expire drops req if it is still pending and resolves it as expired.
func (p *pendingRequests) expire(req *AuthorizationRequest) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.requests[req.State] != req {
		return
	}
	delete(p.requests, req.State)
	req.resolve(nil, ErrRequestExpired)
}

// take removes and returns the request for state. Expired requests are
// removed and reported as missing.
func (p *pendingRequests) take(state string, now time.Time) *AuthorizationRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pruneLocked(now)

	req, ok := p.requests[state]
	if !ok {
		return nil
	}
	delete(p.requests, state)
	if req.expiry != nil {
		req.expiry.Stop()
	}
	return req
}

func (p *pendingRequests) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func (p *pendingRequests) pruneLocked(now time.Time) {
	for state, req := range p.requests {
		if !now.Before(req.ExpiresAt) {
			delete(p.requests, state)
			if req.expiry != nil {
				req.expiry.Stop()
			}
			req.resolve(nil, ErrRequestExpired)
		}
	}
}
