package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kbukum/httpkit/validation"
)

var contextFormats = []string{"yaml", "json"}

func newContextCommand(a *app) *cobra.Command {
	var (
		rf     requestFlags
		format string
	)
	cmd := &cobra.Command{
		Use:   "context METHOD URL",
		Short: "Print the stream transport options for a request without sending it",
		Long: `context runs the stream context builder on the request and prints the
result: the mapped proxy (tcp:// or ssl://), the header block including any
Proxy-Authorization line, and whether the request target is absolute.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.New().OneOf("format", format, contextFormats).Validate(); err != nil {
				return err
			}
			req, err := rf.build(args)
			if err != nil {
				return err
			}
			if err := a.setup(cmd); err != nil {
				return err
			}
			defer a.teardown()

			client, err := a.client.Client(a.context(cmd))
			if err != nil {
				return err
			}
			opts, err := client.StreamContext(req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(opts)
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(opts)
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "o", "yaml", "Output format: yaml or json")
	return cmd
}
