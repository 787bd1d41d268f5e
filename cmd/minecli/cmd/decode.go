package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave-mining/x/mining"
	"github.com/iov-one/weave/errors"
	"github.com/spf13/cobra"
)

// entities lists the state entities that can be decoded.
var entities = map[string]func() weave.Persistent{
	"pool":  func() weave.Persistent { return &mining.Pool{} },
	"round": func() weave.Persistent { return &mining.Round{} },
	"conf":  func() weave.Persistent { return &mining.Configuration{} },
}

func decodeEntity(kind, raw string) ([]byte, error) {
	fn, ok := entities[kind]
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "unknown entity %q", kind)
	}
	bin, err := hex.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	obj := fn()
	if err := obj.Unmarshal(bin); err != nil {
		return nil, errors.Wrapf(err, "cannot decode %s", kind)
	}
	pretty, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "serialize")
	}
	return pretty, nil
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <pool|round|conf> <hex>",
		Short: "Decode a hex encoded mining state entity.",
		Long: "`decode pool 0a02...` prints the entity stored under a pool, " +
			"round or configuration key as JSON.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pretty, err := decodeEntity(args[0], args[1])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
			return err
		},
	}
}
