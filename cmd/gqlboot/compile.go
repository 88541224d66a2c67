package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	bootstrap "github.com/hanpama/gqlboot/internal/bootstrap"
	logging "github.com/hanpama/gqlboot/internal/logging"
	model "github.com/hanpama/gqlboot/internal/model"
	schema "github.com/hanpama/gqlboot/internal/schema"
)

func newCompileCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a schema model and print the resulting SDL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			path, _ := cmd.Flags().GetString("model")
			m, err := model.Load(path)
			if err != nil {
				return err
			}
			res, err := bootstrap.Bootstrap(m,
				bootstrap.WithContext(cmd.Context()),
				bootstrap.WithConfig(cfg),
				bootstrap.WithLogger(logger))
			if err != nil {
				return err
			}
			if res.Empty() {
				return fmt.Errorf("model %s declares no operations", path)
			}

			sdl := schema.Render(res.Schema)
			if out == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), sdl)
				return err
			}
			return os.WriteFile(out, []byte(sdl), 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write SDL to file instead of stdout")
	return cmd
}
