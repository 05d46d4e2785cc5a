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
	"time"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-twon/pkg/metrics"
	"github.com/jeremyhahn/go-twon/pkg/twon"
)

func newVerifyCmd(a *app) *cobra.Command {
	var setID string

	cmd := &cobra.Command{
		Use:   "verify [file|-]...",
		Short: "Check that shares belong to the same secret",
		Long: `Check that every share lies on the line defined by the first two, without
revealing the secret. Exits non-zero when the shares are inconsistent.`,
		Args: usageArgs(cobra.ArbitraryArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.checkSources(args, setID); err != nil {
				return err
			}
			return a.verify(cmd.Context(), args, setID)
		},
	}

	cmd.Flags().StringVar(&setID, "set-id", "", "load the shares of this set from --store")

	return cmd
}

func (a *app) verify(ctx context.Context, inputs []string, setID string) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordOperation(metrics.OpVerify, start, err)
	}()

	shares, err := a.collectShares(ctx, inputs, setID)
	if err != nil {
		return err
	}
	if _, err := twon.Verify(shares); err != nil {
		return err
	}
	a.logger.Debug("shares verified", "count", len(shares))

	return a.printer(a.stdout).PrintVerified(len(shares))
}
