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
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-twon/pkg/metrics"
	"github.com/jeremyhahn/go-twon/pkg/shareio"
	"github.com/jeremyhahn/go-twon/pkg/storage"
	"github.com/jeremyhahn/go-twon/pkg/twon"
)

func newSplitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "split <file|-> <n>",
		Short: "Split a secret into n shares",
		Long: `Split the contents of a file (or stdin with "-") into n shares. Any two
shares recover the secret.

Shares are written to stdout in the --output format, one text line per share
by default. With --store the shares are stored one per key instead and the
share set id is printed.`,
		Example: `  twon split secret.txt 5
  twon split - 3 -o json < secret.txt
  twon split secret.txt 5 --store /var/lib/twon`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: invalid share count %q", ErrUsage, args[1])
			}
			return a.split(cmd.Context(), args[0], n)
		},
	}
}

func (a *app) split(ctx context.Context, input string, n int) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordOperation(metrics.OpSplit, start, err)
	}()

	data, err := a.readInput(input, true)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("%s: %w", inputName(input), twon.ErrEncodingUnderflow)
	}
	metrics.RecordSecretSize(metrics.OpSplit, len(data))

	shares, err := twon.NewSplitter(a.source).Split(twon.Encode(data), n)
	if err != nil {
		return err
	}
	metrics.RecordShares(len(shares))
	a.logger.Debug("split secret", "bytes", len(data), "shares", len(shares))

	set, err := shareio.NewShareSet(shares)
	if err != nil {
		return err
	}

	format := a.cfg.OutputFormat()
	if a.cfg.Store == "" {
		return shareio.Write(a.stdout, set, format)
	}

	backend, err := openStore(ctx, a.cfg.Store, a.cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	opts := storage.DefaultOptions()
	opts.TTL = a.cfg.StoreTTL
	keys, err := shareio.Distribute(backend, set, format, opts)
	if err != nil {
		return err
	}
	a.logger.Debug("stored shares", "set_id", set.ID, "count", len(keys))

	return a.printer(a.stdout).PrintStored(set.ID, displayURL(a.cfg.Store), keys)
}
