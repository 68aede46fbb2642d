package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"provkit/internal/rfc822"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>...",
	Short: "Parse record files and print their records",
	Long: `parse reads files in the record format unit definitions use and
prints every record back in canonical form, with a comment naming the
lines it came from. Useful for checking a file before shipping it in
a provider.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, arg := range args {
			f, err := os.Open(arg)
			if err != nil {
				return err
			}
			records, err := rfc822.Parse(f, rfc822.FileTextSource{Filename: arg})
			f.Close()
			if err != nil {
				return err
			}
			for _, rec := range records {
				fmt.Printf("# %s\n", rec.Origin())
				if err := rfc822.Write(os.Stdout, rec); err != nil {
					return err
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
