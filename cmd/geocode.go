package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/address-mapper/pkg/geocode"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode ADDRESS...",
	Short: "Geocode addresses through the configured provider cascade",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("geocode"); err != nil {
			return err
		}
		ctx := cmd.Context()
		gc, closeGeocoder, err := initGeocoder(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeGeocoder()
		return printGeocodes(ctx, cmd.OutOrStdout(), gc, args)
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
}

// printGeocodes writes "address<TAB>lat<TAB>lon<TAB>source" per matched
// address and "address<TAB>no match" otherwise.
func printGeocodes(ctx context.Context, w io.Writer, gc geocode.Client, addresses []string) error {
	for _, addr := range addresses {
		res, err := gc.Geocode(ctx, geocode.AddressInput{Query: addr})
		if err != nil {
			return eris.Wrapf(err, "geocode %q", addr)
		}
		if res == nil || !res.Matched {
			_, err = fmt.Fprintf(w, "%s\tno match\n", addr)
		} else {
			_, err = fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%s\n", addr, res.Latitude, res.Longitude, res.Source)
		}
		if err != nil {
			return eris.Wrap(err, "write result")
		}
	}
	return nil
}
