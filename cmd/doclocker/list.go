package main

import (
	"encoding/json"

	"github.com/meowdada/doclocker/drive"
	"github.com/spf13/cobra"
)

var (
	listMask    uint32
	listSummary bool
	listJSON    bool
)

var listCmd = &cobra.Command{
	Use:     "list [substring]",
	Aliases: []string{"ls"},
	Short:   "List indexed documents",
	Long: `List indexed documents whose token id contains the given substring.

The --mask flag selects columns: 1 key, 2 cid, 4 size, 8 time, 16 owner,
32 name, 64 metadata url. The default prints every column.

Examples:
  doclocker list
  doclocker list 42 --mask 37
  doclocker list --summary

The store is opened read only. It is still locked while doclocker serve
runs, so stop the server or use GET /api/documents instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

var statCmd = &cobra.Command{
	Use:   "stat <token-id>",
	Short: "Print the index entry of a token id as JSON",
	Long: `Print the index entry of a token id as JSON.

The store is opened read only. It is still locked while doclocker serve
runs, so stop the server first.`,
	Args: cobra.ExactArgs(1),
	RunE: runStat,
}

func init() {
	listCmd.Flags().Uint32VarP(&listMask, "mask", "m", drive.ListMask, "bitmask of columns to print")
	listCmd.Flags().BoolVarP(&listSummary, "summary", "s", false, "print one line per document and a total")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print documents as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openReadOnlyApp()
	if err != nil {
		return err
	}
	defer a.close()

	var sub string
	if len(args) == 1 {
		sub = args[0]
	}

	lr, err := a.drive.List(cmd.Context(), sub)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case listJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(lr.Files())
	case listSummary:
		_, err = lr.WriteTo(out)
		return err
	default:
		_, err = out.Write(lr.Bytes(listMask))
		return err
	}
}

func runStat(cmd *cobra.Command, args []string) error {
	a, err := openReadOnlyApp()
	if err != nil {
		return err
	}
	defer a.close()

	f, err := a.drive.Stat(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}
