package testrun

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrRoleMismatch indicates the pair invocations do not carry the expected
// server/client roles.
var ErrRoleMismatch = errors.New("pair requires one server and one client invocation")

// PairResult holds both peers' outcomes.
type PairResult struct {
	Server *Result
	Client *Result
}

// Passed reports whether both peers succeeded.
func (p *PairResult) Passed() bool {
	return p.Server != nil && p.Server.Passed() &&
		p.Client != nil && p.Client.Passed()
}

// RunPair coordinates one client/server test pair: the server invocation is
// always launched first, the client after delay. The delay is a simple
// readiness grace period, not a handshake — the harness deliberately offers
// no rendezvous protocol between peers, and out-of-order starts surface as
// ordinary connection failures.
//
// Both results are always collected; a non-nil error means one of the
// invocations could not be run at all.
func RunPair(ctx context.Context, r *Runner, server, client Invocation, delay time.Duration) (*PairResult, error) {
	if server.Role != RoleServer || client.Role != RoleClient {
		return nil, ErrRoleMismatch
	}

	pr := &PairResult{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, err := r.Run(gctx, server)
		if err != nil {
			return err
		}
		pr.Server = res
		return nil
	})

	g.Go(func() error {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-gctx.Done():
			return gctx.Err()
		}
		res, err := r.Run(gctx, client)
		if err != nil {
			return err
		}
		pr.Client = res
		return nil
	})

	if err := g.Wait(); err != nil {
		return pr, err
	}
	return pr, nil
}
