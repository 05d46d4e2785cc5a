// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-twon.
//
// go-twon is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-twon/pkg/metrics"
	"github.com/jeremyhahn/go-twon/pkg/shareio"
	"github.com/jeremyhahn/go-twon/pkg/twon"
)

type recoverOptions struct {
	setID  string
	verify bool
}

func newRecoverCmd(a *app) *cobra.Command {
	var opts recoverOptions

	cmd := &cobra.Command{
		Use:   "recover [file|-]...",
		Short: "Recover a secret from two shares",
		Long: `Recover a secret from share files (or stdin with "-") and write the raw
secret bytes to stdout.

Only the first two shares read are used. Pass --verify to check that every
share lies on the same line first, which catches corrupted or mixed shares.
With --store and --set-id the shares of a stored set are loaded as well.`,
		Example: `  twon recover shares.txt
  twon recover alice.json bob.json --verify
  twon recover --store /var/lib/twon --set-id 0b8f0d9e-5c1f-4a57-9a43-6f2c1c9f7d10`,
		Args: usageArgs(cobra.ArbitraryArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.checkSources(args, opts.setID); err != nil {
				return err
			}
			return a.recover(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.setID, "set-id", "", "load the shares of this set from --store")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "check that all shares are consistent before recovering")

	return cmd
}

// checkSources rejects invocations that name no shares at all.
func (a *app) checkSources(inputs []string, setID string) error {
	if len(inputs) == 0 && setID == "" {
		return fmt.Errorf("%w: no share files given", ErrUsage)
	}
	if setID != "" && a.cfg.Store == "" {
		return fmt.Errorf("%w: --set-id requires --store", ErrUsage)
	}
	return nil
}

func (a *app) recover(ctx context.Context, inputs []string, opts recoverOptions) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordOperation(metrics.OpRecover, start, err)
	}()

	shares, err := a.collectShares(ctx, inputs, opts.setID)
	if err != nil {
		return err
	}

	var secret *big.Int
	if opts.verify {
		secret, err = twon.Verify(shares)
	} else {
		if len(shares) < shareio.Threshold {
			return fmt.Errorf("%w: got %d", twon.ErrNotEnoughShares, len(shares))
		}
		if len(shares) > shareio.Threshold {
			a.logger.Debug("using the first two shares", "ignored", len(shares)-shareio.Threshold)
		}
		secret, err = twon.Recover(shares[0], shares[1])
	}
	if err != nil {
		return err
	}
	if secret.Sign() < 0 {
		return fmt.Errorf("%w: recovered value is negative", twon.ErrInconsistentShares)
	}

	data := twon.Decode(secret)
	metrics.RecordSecretSize(metrics.OpRecover, len(data))
	if a.isTerminal(a.stdout) {
		a.logger.Warn("writing recovered secret to a terminal")
	}

	if _, err := a.stdout.Write(data); err != nil {
		return fmt.Errorf("failed to write secret: %w", err)
	}
	return nil
}

// collectShares reads the shares of every input in order, followed by the
// shares of the stored set when setID is given.
func (a *app) collectShares(ctx context.Context, inputs []string, setID string) ([]twon.Share, error) {
	var shares []twon.Share
	for _, input := range inputs {
		data, err := a.readInput(input, false)
		if err != nil {
			return nil, err
		}
		decoded, err := shareio.Decode(data, a.cfg.InputFormat())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", inputName(input), err)
		}
		a.logger.Debug("read shares", "input", inputName(input), "count", len(decoded))
		shares = append(shares, decoded...)
	}

	if setID == "" {
		return shares, nil
	}

	backend, err := openStore(ctx, a.cfg.Store, a.cfg)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	stored, err := shareio.Collect(backend, setID)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("loaded stored shares", "set_id", setID, "count", len(stored))

	return append(shares, stored...), nil
}
